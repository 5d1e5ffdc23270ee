// Package ledger holds the account records of the tipping ledger and their
// persisted layout.
package ledger

import (
	"fmt"

	"github.com/anoideaopen/tipledger/core/address"
)

// MaxHandleLength is the maximum handle size in bytes.
const MaxHandleLength = 32

// Kind is the discriminator of a stored record.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindMaster
	KindUser
	KindEscrow
)

func (k Kind) String() string {
	switch k {
	case KindMaster:
		return "master"
	case KindUser:
		return "user"
	case KindEscrow:
		return "escrow"
	case KindUnknown:
		fallthrough
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Record is implemented by every account kind.
type Record interface {
	Kind() Kind
}

// MasterRegistry is the root record of one deployment authority.
type MasterRegistry struct {
	Authority    address.Address
	TotalUsers   uint64
	TotalEscrows uint64
	Nonce        uint8
}

func (*MasterRegistry) Kind() Kind { return KindMaster }

// Seeds returns the derivation seeds of the registry address.
func (m *MasterRegistry) Seeds() [][]byte {
	return [][]byte{m.Authority.Bytes()}
}

// UserAccount is the custodial account of one registered handle.
type UserAccount struct {
	Handle string
	Owner  address.Address
	// Balance is backed by the bound holding account.
	Balance uint64
	// EscrowBalance is the amount claimed from escrow on registration.
	// It is written once and never follows Balance.
	EscrowBalance uint64
	Nonce         uint8
}

func (*UserAccount) Kind() Kind { return KindUser }

// EscrowAccount parks value for a handle that is not registered yet.
type EscrowAccount struct {
	RecipientHandle string
	Amount          uint64
	Nonce           uint8
}

func (*EscrowAccount) Kind() Kind { return KindEscrow }

// IsBound reports whether the escrow was already reserved for a handle.
func (e *EscrowAccount) IsBound() bool {
	return e.RecipientHandle != ""
}

// UserSeeds returns the derivation seeds of a user account.
func UserSeeds(handle string, master address.Address) [][]byte {
	return [][]byte{[]byte(handle), master.Bytes()}
}

// EscrowSeeds returns the derivation seeds of an escrow account.
func EscrowSeeds(handle string, master address.Address) [][]byte {
	return [][]byte{[]byte(handle), master.Bytes()}
}
