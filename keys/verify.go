package keys

import (
	"crypto/ed25519"
	"fmt"

	"github.com/anoideaopen/tipledger/keys/eth"
	"github.com/anoideaopen/tipledger/keys/gost"
	"golang.org/x/crypto/sha3"
)

// Public key lengths in bytes.
const (
	KeyLengthEd25519   = 32
	KeyLengthSecp256k1 = 65
	KeyLengthGOST      = 64
)

// PrefixUncompressedSecp256k1Key opens every uncompressed secp256k1 public key.
const PrefixUncompressedSecp256k1Key = 0x04

func ValidateKeyLength(key []byte) bool {
	return KeyTypeByPublicKey(key) != KeyTypeUnknown
}

// Digest returns the digest of message that a key of keyType signs.
// ed25519 signs sha3-256 of the message, secp256k1 the keccak-256 of that
// and GOST signs the Streebog-256 of the message itself.
func Digest(keyType KeyType, message []byte) ([]byte, error) {
	switch keyType {
	case KeyTypeEd25519:
		sum := sha3.Sum256(message)
		return sum[:], nil
	case KeyTypeSecp256k1:
		sum := sha3.Sum256(message)
		return eth.Hash(sum[:]), nil
	case KeyTypeGOST:
		sum := gost.Sum256(message)
		return sum[:], nil
	default:
		return nil, fmt.Errorf("invalid key type: %s", keyType)
	}
}

func verifyDigest(keyType KeyType, publicKey, digest, signature []byte) (bool, error) {
	switch keyType {
	case KeyTypeEd25519:
		return len(publicKey) == ed25519.PublicKeySize && ed25519.Verify(publicKey, digest, signature), nil
	case KeyTypeSecp256k1:
		return eth.Verify(publicKey, digest, signature), nil
	case KeyTypeGOST:
		valid, err := gost.Verify(publicKey, digest, signature)
		if err != nil {
			return false, fmt.Errorf("incorrect signature: %w", err)
		}
		return valid, nil
	default:
		return false, fmt.Errorf("invalid key type: %s", keyType)
	}
}

// VerifySignatureByKeyType reports whether signature over message was made
// by the public key of keyType.
func VerifySignatureByKeyType(keyType KeyType, publicKey, message, signature []byte) (bool, error) {
	digest, err := Digest(keyType, message)
	if err != nil {
		return false, err
	}
	return verifyDigest(keyType, publicKey, digest, signature)
}

// VerifySignature infers the key type from the public key and checks the
// signature over message.
func VerifySignature(publicKey, message, signature []byte) (bool, error) {
	keyType := KeyTypeByPublicKey(publicKey)
	if keyType == KeyTypeUnknown {
		return false, fmt.Errorf("unexpected public key length %d", len(publicKey))
	}
	return VerifySignatureByKeyType(keyType, publicKey, message, signature)
}
