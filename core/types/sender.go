// Package types holds the identity of a transaction signer.
package types

import (
	"fmt"

	"github.com/anoideaopen/tipledger/core/address"
	"github.com/anoideaopen/tipledger/keys"
	"golang.org/x/crypto/sha3"
)

// Sender is the verified signer of a transaction.
type Sender struct {
	Address   address.Address
	PublicKey []byte
	KeyType   keys.KeyType
}

// AddressFromPublicKey returns the address a public key signs for.
func AddressFromPublicKey(publicKey []byte) address.Address {
	return sha3.Sum256(publicKey)
}

// NewSender returns the sender owning publicKey.
func NewSender(publicKey []byte) (*Sender, error) {
	keyType := keys.KeyTypeByPublicKey(publicKey)
	if keyType == keys.KeyTypeUnknown {
		return nil, fmt.Errorf("unexpected public key length %d", len(publicKey))
	}

	return &Sender{
		Address:   AddressFromPublicKey(publicKey),
		PublicKey: publicKey,
		KeyType:   keyType,
	}, nil
}

func (s *Sender) String() string {
	return s.Address.String()
}
