// Package holding is the external value ledger: holding accounts that store
// units of the deployment asset, their creation and the transfer and mint
// primitives.
package holding

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/anoideaopen/tipledger/core/address"
)

var (
	ErrHoldingNotFound   = errors.New("holding account not found")
	ErrHoldingExists     = errors.New("holding account already exists")
	ErrAssetMismatch     = errors.New("holding account asset mismatch")
	ErrAuthorityMismatch = errors.New("transfer is not authorized by the holding account authority")
	ErrEmptyAsset        = errors.New("asset is empty")
)

// Account is a holding account bound to one owner.
type Account struct {
	Owner     address.Address `json:"owner"`
	Authority address.Address `json:"authority"`
	Asset     string          `json:"asset"`
	Payer     address.Address `json:"payer"`
}

// Ledger operates holding accounts of one asset.
type Ledger struct {
	deriver *address.Deriver
	asset   string
}

// New returns ledger for asset.
func New(deriver *address.Deriver, asset string) (*Ledger, error) {
	if asset == "" {
		return nil, ErrEmptyAsset
	}
	if len(asset) > address.MaxSeedLength {
		return nil, fmt.Errorf("asset '%s': %w", asset, address.ErrMaxSeedLength)
	}
	return &Ledger{deriver: deriver, asset: asset}, nil
}

// Asset returns the asset symbol of the ledger.
func (l *Ledger) Asset() string {
	return l.asset
}

// Address returns the canonical holding account address bound to owner.
func (l *Ledger) Address(owner address.Address) (address.Address, error) {
	addr, _, err := l.deriver.Derive(address.TagHolding, owner.Bytes(), []byte(l.asset))
	return addr, err
}

// Get returns the holding account at addr.
func (l *Ledger) Get(state State, addr address.Address) (*Account, error) {
	key, err := stateKey(ObjectTypeAccount, addr)
	if err != nil {
		return nil, err
	}

	data, err := state.GetState(key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrHoldingNotFound, addr)
	}

	acc := new(Account)
	if err = json.Unmarshal(data, acc); err != nil {
		return nil, fmt.Errorf("decoding holding account %s: %w", addr, err)
	}
	return acc, nil
}

// Create creates the holding account bound to owner.
func (l *Ledger) Create(state State, payer, owner, authority address.Address) (address.Address, error) {
	addr, err := l.Address(owner)
	if err != nil {
		return address.Zero, err
	}

	if _, err = l.Get(state, addr); err == nil {
		return address.Zero, fmt.Errorf("%w: %s", ErrHoldingExists, addr)
	} else if !errors.Is(err, ErrHoldingNotFound) {
		return address.Zero, err
	}

	data, err := json.Marshal(&Account{
		Owner:     owner,
		Authority: authority,
		Asset:     l.asset,
		Payer:     payer,
	})
	if err != nil {
		return address.Zero, err
	}

	key, err := stateKey(ObjectTypeAccount, addr)
	if err != nil {
		return address.Zero, err
	}

	return addr, state.PutState(key, data)
}

// Ensure returns the holding account bound to owner, creating it if absent.
// An existing account must already be controlled by authority.
func (l *Ledger) Ensure(state State, payer, owner, authority address.Address) (addr address.Address, created bool, err error) {
	addr, err = l.Address(owner)
	if err != nil {
		return address.Zero, false, err
	}

	acc, err := l.Get(state, addr)
	switch {
	case errors.Is(err, ErrHoldingNotFound):
		addr, err = l.Create(state, payer, owner, authority)
		return addr, err == nil, err
	case err != nil:
		return address.Zero, false, err
	}

	if !acc.Authority.Equal(authority) {
		return address.Zero, false, fmt.Errorf("%w: %s is controlled by %s", ErrAuthorityMismatch, addr, acc.Authority)
	}
	return addr, false, nil
}

// Balance returns the balance of the holding account at addr.
func (l *Ledger) Balance(state State, addr address.Address) (*big.Int, error) {
	return getBalance(state, addr)
}

// Transfer moves amount between two holding accounts of the ledger asset.
// auth must prove control over the authority of the source account.
func (l *Ledger) Transfer(state State, from, to address.Address, amount uint64, auth Authorizer) error {
	src, err := l.Get(state, from)
	if err != nil {
		return err
	}
	dst, err := l.Get(state, to)
	if err != nil {
		return err
	}

	if src.Asset != l.asset || dst.Asset != l.asset {
		return fmt.Errorf("%w: %s -> %s, expected %s", ErrAssetMismatch, src.Asset, dst.Asset, l.asset)
	}

	if err = auth.Authorize(l.deriver, src.Authority); err != nil {
		return err
	}

	return move(state, from, to, new(big.Int).SetUint64(amount))
}

// Mint credits amount to an existing holding account.
func (l *Ledger) Mint(state State, to address.Address, amount uint64) error {
	if _, err := l.Get(state, to); err != nil {
		return err
	}

	return add(state, to, new(big.Int).SetUint64(amount))
}
