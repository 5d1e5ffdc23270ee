package keys

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/anoideaopen/tipledger/keys/eth"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/ddulesov/gogost/gost3410"
)

// Keys holds a key pair of one of the supported key types together with its
// raw and base58 encodings.
type Keys struct {
	KeyType             KeyType
	PublicKeyEd25519    ed25519.PublicKey
	PrivateKeyEd25519   ed25519.PrivateKey
	PublicKeySecp256k1  *ecdsa.PublicKey
	PrivateKeySecp256k1 *ecdsa.PrivateKey
	PublicKeyGOST       *gost3410.PublicKey
	PrivateKeyGOST      *gost3410.PrivateKey
	PublicKeyBytes      []byte
	PrivateKeyBytes     []byte
	PublicKeyBase58     string
}

func generateGOSTKeys() (*gost3410.PublicKey, *gost3410.PrivateKey, error) {
	sKeyGOST, err := gost3410.GenPrivateKey(
		gost3410.CurveIdGostR34102001CryptoProXchAParamSet(),
		gost3410.Mode2001,
		rand.Reader,
	)
	if err != nil {
		return nil, nil, err
	}

	pKeyGOST, err := sKeyGOST.PublicKey()
	if err != nil {
		return nil, nil, err
	}

	return pKeyGOST, sKeyGOST, nil
}

// GenerateKeysByKeyType generates private and public keys based on specified key type
func GenerateKeysByKeyType(keyType KeyType) (*Keys, error) {
	keys := &Keys{KeyType: keyType}
	switch keyType {
	case KeyTypeEd25519:
		pKey, sKey, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		keys.PrivateKeyEd25519 = sKey
		keys.PublicKeyEd25519 = pKey
		keys.PrivateKeyBytes = sKey
		keys.PublicKeyBytes = pKey
	case KeyTypeSecp256k1:
		sKey, err := eth.NewKey()
		if err != nil {
			return nil, err
		}
		keys.PrivateKeySecp256k1 = sKey
		keys.PublicKeySecp256k1 = &sKey.PublicKey
		keys.PrivateKeyBytes = eth.PrivateKeyBytes(sKey)
		keys.PublicKeyBytes = eth.PublicKeyBytes(&sKey.PublicKey)
	case KeyTypeGOST:
		pKey, sKey, err := generateGOSTKeys()
		if err != nil {
			return nil, err
		}
		keys.PrivateKeyGOST = sKey
		keys.PublicKeyGOST = pKey
		keys.PrivateKeyBytes = sKey.Raw()
		keys.PublicKeyBytes = pKey.Raw()
	default:
		return nil, fmt.Errorf("unexpected key type: %s", keyType)
	}

	keys.PublicKeyBase58 = base58.Encode(keys.PublicKeyBytes)
	return keys, nil
}

// GenerateEd25519FromBase58 restores an ed25519 key pair from a base58check
// encoded private key, the version byte being its first byte.
func GenerateEd25519FromBase58(base58encoded string) (*Keys, error) {
	decoded, ver, err := base58.CheckDecode(base58encoded)
	if err != nil {
		return nil, err
	}
	return ed25519Keys(append([]byte{ver}, decoded...))
}

// GenerateEd25519FromHex restores an ed25519 key pair from a hex encoded
// private key.
func GenerateEd25519FromHex(hexEncoded string) (*Keys, error) {
	decoded, err := hex.DecodeString(hexEncoded)
	if err != nil {
		return nil, err
	}
	return ed25519Keys(decoded)
}

func ed25519Keys(raw []byte) (*Keys, error) {
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("ed25519 private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	sKey := ed25519.PrivateKey(raw)
	pKey, ok := sKey.Public().(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("error converting private key to public")
	}

	return &Keys{
		KeyType:           KeyTypeEd25519,
		PrivateKeyEd25519: sKey,
		PublicKeyEd25519:  pKey,
		PrivateKeyBytes:   sKey,
		PublicKeyBytes:    pKey,
		PublicKeyBase58:   base58.Encode(pKey),
	}, nil
}
