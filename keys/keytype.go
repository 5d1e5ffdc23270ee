package keys

import (
	"fmt"
	"strings"
)

// KeyType is the signature scheme of a signer key.
type KeyType int

const (
	KeyTypeUnknown KeyType = iota
	KeyTypeEd25519
	KeyTypeSecp256k1
	KeyTypeGOST
)

func (kt KeyType) String() string {
	switch kt {
	case KeyTypeEd25519:
		return "ed25519"
	case KeyTypeSecp256k1:
		return "secp256k1"
	case KeyTypeGOST:
		return "gost"
	case KeyTypeUnknown:
		fallthrough
	default:
		return "unknown"
	}
}

// ParseKeyType parses the name of a key type.
func ParseKeyType(s string) (KeyType, error) {
	switch strings.ToLower(s) {
	case "ed25519":
		return KeyTypeEd25519, nil
	case "secp256k1":
		return KeyTypeSecp256k1, nil
	case "gost":
		return KeyTypeGOST, nil
	default:
		return KeyTypeUnknown, fmt.Errorf("unknown key type '%s'", s)
	}
}

// KeyTypeByPublicKey infers the key type from the public key length.
func KeyTypeByPublicKey(key []byte) KeyType {
	switch {
	case len(key) == KeyLengthEd25519:
		return KeyTypeEd25519
	case len(key) == KeyLengthSecp256k1 && key[0] == PrefixUncompressedSecp256k1Key:
		return KeyTypeSecp256k1
	case len(key) == KeyLengthGOST:
		return KeyTypeGOST
	default:
		return KeyTypeUnknown
	}
}
