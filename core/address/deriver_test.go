package address

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDeriver(t *testing.T) *Deriver {
	d, err := NewDeriver("tipledger")
	require.NoError(t, err)
	return d
}

func TestDeriveIsDeterministic(t *testing.T) {
	d := newTestDeriver(t)
	authority := bytes.Repeat([]byte{7}, Length)

	first, firstNonce, err := d.Derive(TagMaster, authority)
	require.NoError(t, err)
	second, secondNonce, err := d.Derive(TagMaster, authority)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, firstNonce, secondNonce)
	require.False(t, onCurve(first))
}

func TestDeriveDependsOnEveryInput(t *testing.T) {
	d := newTestDeriver(t)
	master := bytes.Repeat([]byte{1}, Length)

	base, _, err := d.Derive(TagUser, []byte("alice"), master)
	require.NoError(t, err)

	tests := []struct {
		name  string
		tag   string
		seeds [][]byte
	}{
		{name: "other tag", tag: TagEscrow, seeds: [][]byte{[]byte("alice"), master}},
		{name: "other handle", tag: TagUser, seeds: [][]byte{[]byte("alicf"), master}},
		{name: "other master", tag: TagUser, seeds: [][]byte{[]byte("alice"), bytes.Repeat([]byte{2}, Length)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other, _, err := d.Derive(tt.tag, tt.seeds...)
			require.NoError(t, err)
			require.NotEqual(t, base, other)
		})
	}

	otherDeployment, err := NewDeriver("other")
	require.NoError(t, err)
	other, _, err := otherDeployment.Derive(TagUser, []byte("alice"), master)
	require.NoError(t, err)
	require.NotEqual(t, base, other)
}

func TestCreateWithNonce(t *testing.T) {
	d := newTestDeriver(t)
	seed := []byte("carol")

	addr, nonce, err := d.Derive(TagEscrow, seed)
	require.NoError(t, err)

	recreated, err := d.CreateWithNonce(TagEscrow, nonce, seed)
	require.NoError(t, err)
	require.Equal(t, addr, recreated)

	// every nonce above the found one produced an on-curve candidate
	for n := int(nonce) + 1; n <= MaxNonce; n++ {
		_, err = d.CreateWithNonce(TagEscrow, uint8(n), seed)
		require.ErrorIs(t, err, ErrOnCurve)
	}
}

func TestExpect(t *testing.T) {
	d := newTestDeriver(t)
	seed := []byte("bob")

	addr, nonce, err := d.Derive(TagUser, seed)
	require.NoError(t, err)

	got, err := d.Expect(addr, TagUser, seed)
	require.NoError(t, err)
	require.Equal(t, nonce, got)

	_, err = d.Expect(addr, TagEscrow, seed)
	require.ErrorIs(t, err, ErrAddressMismatch)
}

func TestSeedLimits(t *testing.T) {
	d := newTestDeriver(t)

	_, _, err := d.Derive(TagUser, make([]byte, MaxSeedLength+1))
	require.ErrorIs(t, err, ErrMaxSeedLength)

	_, _, err = d.Derive(TagUser, make([][]byte, MaxSeeds+1)...)
	require.ErrorIs(t, err, ErrMaxSeeds)

	_, err = NewDeriver("")
	require.ErrorIs(t, err, ErrEmptyProgramID)
}

func TestOnCurve(t *testing.T) {
	// x-coordinate of the secp256k1 generator
	gx, err := hex.DecodeString("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	require.NoError(t, err)

	var candidate Address
	copy(candidate[:], gx)
	require.True(t, onCurve(candidate))
}

func TestAddressText(t *testing.T) {
	d := newTestDeriver(t)
	addr, _, err := d.Derive(TagMaster, []byte("x"))
	require.NoError(t, err)

	parsed, err := FromBase58Check(addr.String())
	require.NoError(t, err)
	require.Equal(t, addr, parsed)

	_, err = FromBase58Check("not-an-address")
	require.Error(t, err)

	_, err = FromBytes([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidLength)
}
