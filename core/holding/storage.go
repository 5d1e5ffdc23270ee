package holding

import (
	"errors"
	"math/big"
	"strconv"

	"github.com/anoideaopen/tipledger/core/address"
	"github.com/hyperledger/fabric-chaincode-go/shim"
)

// ObjectType represents the state key prefixes of the holding ledger.
type ObjectType byte

// String returns the hexadecimal string representation of the ObjectType.
func (ot ObjectType) String() string {
	return strconv.FormatUint(uint64(ot), 16)
}

const (
	ObjectTypeBalance ObjectType = 0x2b
	ObjectTypeAccount ObjectType = 0x41
)

var (
	ErrAmountMustBeNonNegative = errors.New("amount must be non-negative")
	ErrInsufficientFunds       = errors.New("insufficient funds")
)

// State is the key/value view the holding ledger runs on.
type State interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
}

func stateKey(objectType ObjectType, addr address.Address) (string, error) {
	return shim.CreateCompositeKey(objectType.String(), []string{addr.String()})
}

// getBalance retrieves the balance of a holding account.
func getBalance(state State, addr address.Address) (*big.Int, error) {
	key, err := stateKey(ObjectTypeBalance, addr)
	if err != nil {
		return nil, err
	}

	data, err := state.GetState(key)
	if err != nil {
		return nil, err
	}

	return new(big.Int).SetBytes(data), nil
}

func putBalance(state State, addr address.Address, value *big.Int) error {
	key, err := stateKey(ObjectTypeBalance, addr)
	if err != nil {
		return err
	}

	return state.PutState(key, value.Bytes())
}

// add adds the given amount to the balance of addr.
func add(state State, addr address.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrAmountMustBeNonNegative
	}

	current, err := getBalance(state, addr)
	if err != nil {
		return err
	}

	return putBalance(state, addr, new(big.Int).Add(current, amount))
}

// sub subtracts the given amount from the balance of addr.
func sub(state State, addr address.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrAmountMustBeNonNegative
	}

	current, err := getBalance(state, addr)
	if err != nil {
		return err
	}

	if current.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}

	return putBalance(state, addr, new(big.Int).Sub(current, amount))
}

// move moves amount from one balance to another.
func move(state State, from, to address.Address, amount *big.Int) error {
	if err := sub(state, from, amount); err != nil {
		return err
	}

	return add(state, to, amount)
}
