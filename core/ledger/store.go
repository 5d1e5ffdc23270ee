package ledger

import (
	"errors"
	"fmt"

	"github.com/anoideaopen/tipledger/core/address"
	"github.com/hyperledger/fabric-chaincode-go/shim"
)

// AccountObjectType is the composite key prefix of account records.
const AccountObjectType = "40"

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

// State is the key/value view an operation runs on.
type State interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
}

// Store loads and stores account records keyed by their address.
type Store struct {
	state State
}

// NewStore returns store over state.
func NewStore(state State) *Store {
	return &Store{state: state}
}

// Key returns the state key of the account.
func Key(addr address.Address) (string, error) {
	return shim.CreateCompositeKey(AccountObjectType, []string{addr.String()})
}

// Exists reports whether any record is stored at addr.
func (s *Store) Exists(addr address.Address) (bool, error) {
	data, err := s.get(addr)
	if err != nil {
		return false, err
	}
	return len(data) != 0, nil
}

// Load returns the record at addr of any kind.
func (s *Store) Load(addr address.Address) (Record, error) {
	data, err := s.get(addr)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}

	rec, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decoding account %s: %w", addr, err)
	}
	return rec, nil
}

// LoadMaster returns the master registry at addr.
func (s *Store) LoadMaster(addr address.Address) (*MasterRegistry, error) {
	rec, err := s.Load(addr)
	if err != nil {
		return nil, err
	}
	m, ok := rec.(*MasterRegistry)
	if !ok {
		return nil, kindError(addr, KindMaster, rec)
	}
	return m, nil
}

// LoadUser returns the user account at addr.
func (s *Store) LoadUser(addr address.Address) (*UserAccount, error) {
	rec, err := s.Load(addr)
	if err != nil {
		return nil, err
	}
	u, ok := rec.(*UserAccount)
	if !ok {
		return nil, kindError(addr, KindUser, rec)
	}
	return u, nil
}

// LoadEscrow returns the escrow account at addr.
func (s *Store) LoadEscrow(addr address.Address) (*EscrowAccount, error) {
	rec, err := s.Load(addr)
	if err != nil {
		return nil, err
	}
	e, ok := rec.(*EscrowAccount)
	if !ok {
		return nil, kindError(addr, KindEscrow, rec)
	}
	return e, nil
}

// LoadOrInitEscrow returns the escrow at addr or a fresh unbound one.
// created reports whether the record did not exist.
func (s *Store) LoadOrInitEscrow(addr address.Address, nonce uint8) (e *EscrowAccount, created bool, err error) {
	exists, err := s.Exists(addr)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return &EscrowAccount{Nonce: nonce}, true, nil
	}

	e, err = s.LoadEscrow(addr)
	return e, false, err
}

// Create stores a new record and fails if addr is taken.
func (s *Store) Create(addr address.Address, rec Record) error {
	exists, err := s.Exists(addr)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s %s", ErrAccountExists, rec.Kind(), addr)
	}
	return s.Save(addr, rec)
}

// Save stores rec at addr.
func (s *Store) Save(addr address.Address, rec Record) error {
	data, err := Marshal(rec)
	if err != nil {
		return err
	}
	key, err := Key(addr)
	if err != nil {
		return err
	}
	return s.state.PutState(key, data)
}

func (s *Store) get(addr address.Address) ([]byte, error) {
	key, err := Key(addr)
	if err != nil {
		return nil, err
	}
	return s.state.GetState(key)
}

func kindError(addr address.Address, want Kind, got Record) error {
	return fmt.Errorf("%w: %s is %s, expected %s", ErrWrongAccountKind, addr, got.Kind(), want)
}
