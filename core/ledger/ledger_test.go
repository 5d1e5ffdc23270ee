package ledger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/anoideaopen/tipledger/core/address"
	"github.com/stretchr/testify/require"
)

type mapState map[string][]byte

func (m mapState) GetState(key string) ([]byte, error) { return m[key], nil }

func (m mapState) PutState(key string, value []byte) error {
	m[key] = value
	return nil
}

func testAddress(b byte) address.Address {
	var a address.Address
	copy(a[:], bytes.Repeat([]byte{b}, address.Length))
	return a
}

func TestRecordLayoutSizes(t *testing.T) {
	require.Equal(t, 49, MasterSize)
	require.Equal(t, 85, UserSize)
	require.Equal(t, 45, EscrowSize)

	tests := []struct {
		name string
		rec  Record
		size int
	}{
		{name: "master", rec: &MasterRegistry{Authority: testAddress(1), TotalUsers: 3, TotalEscrows: 4, Nonce: 254}, size: MasterSize},
		{name: "user", rec: &UserAccount{Handle: "alice", Owner: testAddress(2), Balance: 70, EscrowBalance: 50, Nonce: 255}, size: UserSize},
		{name: "user with longest handle", rec: &UserAccount{Handle: strings.Repeat("h", MaxHandleLength)}, size: UserSize},
		{name: "escrow", rec: &EscrowAccount{RecipientHandle: "carol", Amount: 50, Nonce: 253}, size: EscrowSize},
		{name: "unbound escrow", rec: &EscrowAccount{}, size: EscrowSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.rec)
			require.NoError(t, err)
			require.Len(t, data, tt.size+1)
			require.Equal(t, byte(tt.rec.Kind()), data[0])

			decoded, err := Unmarshal(data)
			require.NoError(t, err)
			require.Equal(t, tt.rec, decoded)
		})
	}
}

func TestCodecErrors(t *testing.T) {
	_, err := Marshal(&UserAccount{Handle: strings.Repeat("h", MaxHandleLength+1)})
	require.ErrorIs(t, err, ErrHandleTooLong)

	_, err = Unmarshal(nil)
	require.ErrorIs(t, err, ErrBadRecordSize)

	_, err = Unmarshal([]byte{byte(KindUser), 1, 2})
	require.ErrorIs(t, err, ErrBadRecordSize)

	_, err = Unmarshal([]byte{99})
	require.ErrorIs(t, err, ErrUnknownKind)

	data, err := Marshal(&EscrowAccount{RecipientHandle: "x"})
	require.NoError(t, err)
	data[1] = 200 // length prefix beyond the handle field
	_, err = Unmarshal(data)
	require.ErrorIs(t, err, ErrHandleTooLong)
}

func TestStore(t *testing.T) {
	state := mapState{}
	store := NewStore(state)
	masterAddr := testAddress(10)
	userAddr := testAddress(11)
	escrowAddr := testAddress(12)

	_, err := store.LoadMaster(masterAddr)
	require.ErrorIs(t, err, ErrAccountNotFound)

	master := &MasterRegistry{Authority: testAddress(1), Nonce: 255}
	require.NoError(t, store.Create(masterAddr, master))
	require.ErrorIs(t, store.Create(masterAddr, master), ErrAccountExists)

	loaded, err := store.LoadMaster(masterAddr)
	require.NoError(t, err)
	require.Equal(t, master, loaded)

	_, err = store.LoadUser(masterAddr)
	require.ErrorIs(t, err, ErrWrongAccountKind)

	require.NoError(t, store.Create(userAddr, &UserAccount{Handle: "alice", Owner: testAddress(2)}))
	user, err := store.LoadUser(userAddr)
	require.NoError(t, err)
	user.Balance = 42
	require.NoError(t, store.Save(userAddr, user))
	user, err = store.LoadUser(userAddr)
	require.NoError(t, err)
	require.Equal(t, uint64(42), user.Balance)

	escrow, created, err := store.LoadOrInitEscrow(escrowAddr, 250)
	require.NoError(t, err)
	require.True(t, created)
	require.False(t, escrow.IsBound())
	require.Equal(t, uint8(250), escrow.Nonce)

	escrow.RecipientHandle = "carol"
	require.NoError(t, store.Save(escrowAddr, escrow))
	escrow, created, err = store.LoadOrInitEscrow(escrowAddr, 250)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "carol", escrow.RecipientHandle)

	_, _, err = store.LoadOrInitEscrow(userAddr, 0)
	require.ErrorIs(t, err, ErrWrongAccountKind)

	require.Len(t, state, 3)
}
