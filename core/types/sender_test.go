package types

import (
	"testing"

	"github.com/anoideaopen/tipledger/keys"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func TestNewSender(t *testing.T) {
	for _, keyType := range []keys.KeyType{keys.KeyTypeEd25519, keys.KeyTypeSecp256k1, keys.KeyTypeGOST} {
		t.Run(keyType.String(), func(t *testing.T) {
			k, err := keys.GenerateKeysByKeyType(keyType)
			require.NoError(t, err)

			sender, err := NewSender(k.PublicKeyBytes)
			require.NoError(t, err)
			require.Equal(t, keyType, sender.KeyType)

			hash := sha3.Sum256(k.PublicKeyBytes)
			require.Equal(t, base58.CheckEncode(hash[1:], hash[0]), sender.String())
		})
	}

	_, err := NewSender([]byte{1, 2, 3})
	require.Error(t, err)
}
