package holding

import (
	"fmt"

	"github.com/anoideaopen/tipledger/core/address"
)

// Authorizer proves control over a holding account authority.
type Authorizer interface {
	Authorize(deriver *address.Deriver, authority address.Address) error
}

// Signer is a top-level signer whose signature was verified by the runtime.
type Signer address.Address

// Authorize implements Authorizer.
func (s Signer) Authorize(_ *address.Deriver, authority address.Address) error {
	if !address.Address(s).Equal(authority) {
		return fmt.Errorf("%w: signer %s, authority %s", ErrAuthorityMismatch, address.Address(s), authority)
	}
	return nil
}

// Derived signs for a derived address by presenting its seeds and nonce.
type Derived struct {
	Tag   string
	Seeds [][]byte
	Nonce uint8
}

// Authorize implements Authorizer.
func (d Derived) Authorize(deriver *address.Deriver, authority address.Address) error {
	addr, err := deriver.CreateWithNonce(d.Tag, d.Nonce, d.Seeds...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthorityMismatch, err)
	}
	if !addr.Equal(authority) {
		return fmt.Errorf("%w: derived %s, authority %s", ErrAuthorityMismatch, addr, authority)
	}
	return nil
}
