// Package tipbot is the custodial tipping ledger: registration of handles
// under a master registry, deposits, tips between registered users, escrow for
// handles that are not registered yet and withdrawals.
//
// Every operation runs on a State that commits all of its writes or none of
// them. Handlers check every precondition before they touch a holding account,
// so a failed operation leaves nothing behind once its writes are discarded.
package tipbot

import (
	"fmt"

	"github.com/anoideaopen/tipledger/core/address"
	"github.com/anoideaopen/tipledger/core/config"
	"github.com/anoideaopen/tipledger/core/holding"
	"github.com/anoideaopen/tipledger/core/ledger"
)

// State is the unit of work an operation reads and writes.
type State interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
}

// Program runs the ledger operations of one deployment.
type Program struct {
	deriver *address.Deriver
	holding *holding.Ledger
	issuer  address.Address
}

// New returns the program configured by cfg.
func New(cfg *config.Config) (*Program, error) {
	deriver, err := address.NewDeriver(cfg.ProgramID)
	if err != nil {
		return nil, err
	}

	hl, err := holding.New(deriver, cfg.Asset.Symbol)
	if err != nil {
		return nil, err
	}

	return &Program{
		deriver: deriver,
		holding: hl,
		issuer:  cfg.IssuerAddress(),
	}, nil
}

// Deriver returns the address deriver of the deployment.
func (p *Program) Deriver() *address.Deriver {
	return p.deriver
}

// Holding returns the holding ledger of the deployment asset.
func (p *Program) Holding() *holding.Ledger {
	return p.holding
}

func checkHandle(handle string) error {
	if handle == "" {
		return ErrHandleEmpty
	}
	if len(handle) > ledger.MaxHandleLength {
		return fmt.Errorf("%w: %d bytes", ErrHandleTooLong, len(handle))
	}
	return nil
}

func checkAmount(amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	return nil
}

// loadMaster loads the registry at addr and checks it lives at its canonical
// address.
func (p *Program) loadMaster(store *ledger.Store, addr address.Address) (*ledger.MasterRegistry, error) {
	master, err := store.LoadMaster(addr)
	if err != nil {
		return nil, err
	}
	if _, err = p.deriver.Expect(addr, address.TagMaster, master.Seeds()...); err != nil {
		return nil, err
	}
	return master, nil
}

// loadUser loads a user account registered under master.
func (p *Program) loadUser(store *ledger.Store, addr, master address.Address) (*ledger.UserAccount, error) {
	user, err := store.LoadUser(addr)
	if err != nil {
		return nil, err
	}
	if _, err = p.deriver.Expect(addr, address.TagUser, ledger.UserSeeds(user.Handle, master)...); err != nil {
		return nil, err
	}
	return user, nil
}

// loadEscrow loads an escrow account reserved under master.
func (p *Program) loadEscrow(store *ledger.Store, addr, master address.Address) (*ledger.EscrowAccount, error) {
	escrow, err := store.LoadEscrow(addr)
	if err != nil {
		return nil, err
	}
	if _, err = p.deriver.Expect(addr, address.TagEscrow, ledger.EscrowSeeds(escrow.RecipientHandle, master)...); err != nil {
		return nil, err
	}
	return escrow, nil
}

// expectHolding checks that supplied is the holding account bound to owner.
func (p *Program) expectHolding(supplied, owner address.Address) error {
	expected, err := p.holding.Address(owner)
	if err != nil {
		return err
	}
	if !expected.Equal(supplied) {
		return fmt.Errorf("%w: holding account %s, expected %s", address.ErrAddressMismatch, supplied, expected)
	}
	return nil
}

// masterAuthority is the derived signature of the registry over the pooled
// holding accounts.
func masterAuthority(master *ledger.MasterRegistry) holding.Derived {
	return holding.Derived{Tag: address.TagMaster, Seeds: master.Seeds(), Nonce: master.Nonce}
}

// checkExternal rejects holding accounts controlled by master or owned by a
// ledger record.
func (p *Program) checkExternal(state State, store *ledger.Store, addr, master address.Address) error {
	acc, err := p.holding.Get(state, addr)
	if err != nil {
		return err
	}
	if acc.Authority.Equal(master) || acc.Owner.Equal(master) {
		return fmt.Errorf("%w: %s is a pool of the ledger", ErrUnauthorized, addr)
	}
	pooled, err := store.Exists(acc.Owner)
	if err != nil {
		return err
	}
	if pooled {
		return fmt.Errorf("%w: %s is a pool of the ledger", ErrUnauthorized, addr)
	}
	return nil
}

// bindEscrow reserves escrow for handle or checks the existing reservation.
func bindEscrow(escrow *ledger.EscrowAccount, handle string) error {
	if !escrow.IsBound() {
		escrow.RecipientHandle = handle
		return nil
	}
	if escrow.RecipientHandle != handle {
		return fmt.Errorf("%w: escrow is bound to '%s', got '%s'", ErrEscrowHandleMismatch, escrow.RecipientHandle, handle)
	}
	return nil
}
