package keys

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/anoideaopen/tipledger/keys/eth"
	"github.com/anoideaopen/tipledger/keys/gost"
)

var ErrSignatureRejected = errors.New("signature rejected by own public key")

// SignMessageByKeyType signs message with the key of keyType and checks the
// signature against the public key. It returns the signed digest and the
// signature.
func SignMessageByKeyType(keyType KeyType, keys *Keys, message []byte) ([]byte, []byte, error) {
	digest, err := Digest(keyType, message)
	if err != nil {
		return nil, nil, err
	}

	var signature []byte
	switch keyType {
	case KeyTypeEd25519:
		if len(keys.PrivateKeyEd25519) != ed25519.PrivateKeySize {
			return nil, nil, errors.New("ed25519 private key is not set")
		}
		signature = ed25519.Sign(keys.PrivateKeyEd25519, digest)
	case KeyTypeSecp256k1:
		if keys.PrivateKeySecp256k1 == nil {
			return nil, nil, errors.New("secp256k1 private key is not set")
		}
		signature, err = eth.Sign(digest, keys.PrivateKeySecp256k1)
	case KeyTypeGOST:
		if keys.PrivateKeyGOST == nil {
			return nil, nil, errors.New("GOST private key is not set")
		}
		signature, err = gost.Sign(keys.PrivateKeyGOST, digest)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", keyType, err)
	}

	valid, err := verifyDigest(keyType, keys.PublicKeyBytes, digest, signature)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", keyType, err)
	}
	if !valid {
		return nil, nil, fmt.Errorf("%s: %w", keyType, ErrSignatureRejected)
	}
	return digest, signature, nil
}
