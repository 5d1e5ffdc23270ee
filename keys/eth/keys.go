// Package eth wraps the secp256k1 primitives of go-ethereum.
package eth

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
)

// signatureLength is the length of r || s, without the recovery byte.
const signatureLength = 64

// Hash returns the Ethereum signed-text hash of message.
func Hash(message []byte) []byte {
	return accounts.TextHash(message)
}

// NewKey generates a secp256k1 private key.
func NewKey() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

// PublicKeyBytes returns the uncompressed form of publicKey.
func PublicKeyBytes(publicKey *ecdsa.PublicKey) []byte {
	return crypto.FromECDSAPub(publicKey)
}

// PrivateKeyFromBytes parses a raw secp256k1 private key.
func PrivateKeyFromBytes(bytes []byte) (*ecdsa.PrivateKey, error) {
	return crypto.ToECDSA(bytes)
}

// PrivateKeyBytes returns the raw form of privateKey.
func PrivateKeyBytes(privateKey *ecdsa.PrivateKey) []byte {
	return crypto.FromECDSA(privateKey)
}

// Sign signs digest and returns r || s || v with v in {27, 28}.
func Sign(digest []byte, privateKey *ecdsa.PrivateKey) ([]byte, error) {
	const recoveryBits = 27

	signature, err := crypto.Sign(digest, privateKey)
	if err != nil {
		return nil, err
	}
	signature[signatureLength] += recoveryBits
	return signature, nil
}

// Verify reports whether signature over digest was made by the uncompressed
// publicKey. A trailing recovery byte is ignored.
func Verify(publicKey, digest, signature []byte) bool {
	if len(signature) > signatureLength {
		signature = signature[:signatureLength]
	}
	return crypto.VerifySignature(publicKey, digest, signature)
}
