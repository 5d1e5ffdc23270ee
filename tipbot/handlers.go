package tipbot

import (
	"fmt"

	"github.com/anoideaopen/tipledger/core/address"
	"github.com/anoideaopen/tipledger/core/holding"
	"github.com/anoideaopen/tipledger/core/ledger"
	"github.com/anoideaopen/tipledger/core/logger"
	"github.com/anoideaopen/tipledger/core/safemath"
)

// Initialize creates the master registry of authority at master.
func (p *Program) Initialize(state State, authority, master address.Address) (*ledger.MasterRegistry, error) {
	nonce, err := p.deriver.Expect(master, address.TagMaster, authority.Bytes())
	if err != nil {
		return nil, err
	}

	registry := &ledger.MasterRegistry{
		Authority: authority,
		Nonce:     nonce,
	}
	if err = ledger.NewStore(state).Create(master, registry); err != nil {
		return nil, err
	}

	logger.Logger().WithField("master", master).Debug("master registry initialized")
	return registry, nil
}

// RegisterAccounts are the accounts RegisterUser operates on.
type RegisterAccounts struct {
	Master        address.Address
	User          address.Address
	Escrow        address.Address
	UserHolding   address.Address
	EscrowHolding address.Address
}

// RegisterUser creates the user account of handle owned by owner and claims
// whatever was tipped to the handle before it registered.
func (p *Program) RegisterUser(state State, owner address.Address, handle string, acc RegisterAccounts) (*ledger.UserAccount, error) {
	if err := checkHandle(handle); err != nil {
		return nil, err
	}

	store := ledger.NewStore(state)
	master, err := p.loadMaster(store, acc.Master)
	if err != nil {
		return nil, err
	}
	if master.TotalUsers, err = safemath.Inc(master.TotalUsers); err != nil {
		return nil, fmt.Errorf("total users: %w", err)
	}

	userNonce, err := p.deriver.Expect(acc.User, address.TagUser, ledger.UserSeeds(handle, acc.Master)...)
	if err != nil {
		return nil, err
	}
	exists, err := store.Exists(acc.User)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: user '%s'", ErrAccountExists, handle)
	}
	user := &ledger.UserAccount{
		Handle: handle,
		Owner:  owner,
		Nonce:  userNonce,
	}

	escrowNonce, err := p.deriver.Expect(acc.Escrow, address.TagEscrow, ledger.EscrowSeeds(handle, acc.Master)...)
	if err != nil {
		return nil, err
	}
	escrow, _, err := store.LoadOrInitEscrow(acc.Escrow, escrowNonce)
	if err != nil {
		return nil, err
	}
	if err = bindEscrow(escrow, handle); err != nil {
		return nil, err
	}

	if err = p.expectHolding(acc.UserHolding, acc.User); err != nil {
		return nil, err
	}
	if err = p.expectHolding(acc.EscrowHolding, acc.Escrow); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEscrowTokenAccount, err)
	}

	if _, _, err = p.holding.Ensure(state, owner, acc.User, acc.Master); err != nil {
		return nil, err
	}

	if claimed := escrow.Amount; claimed > 0 {
		auth := holding.Derived{
			Tag:   address.TagEscrow,
			Seeds: ledger.EscrowSeeds(handle, acc.Master),
			Nonce: escrow.Nonce,
		}
		if err = p.holding.Transfer(state, acc.EscrowHolding, acc.UserHolding, claimed, auth); err != nil {
			return nil, err
		}
		user.Balance = claimed
		user.EscrowBalance = claimed
		escrow.Amount = 0
	}

	if err = store.Save(acc.Master, master); err != nil {
		return nil, err
	}
	if err = store.Save(acc.User, user); err != nil {
		return nil, err
	}
	if err = store.Save(acc.Escrow, escrow); err != nil {
		return nil, err
	}

	logger.Logger().WithField("handle", handle).WithField("claimed", user.EscrowBalance).Debug("user registered")
	return user, nil
}

// DepositAccounts are the accounts Deposit operates on.
type DepositAccounts struct {
	Master           address.Address
	User             address.Address
	DepositorHolding address.Address
	UserHolding      address.Address
}

// Deposit moves amount from a holding account of depositor into the pool of
// a registered user. A zero amount is accepted.
func (p *Program) Deposit(state State, depositor address.Address, amount uint64, acc DepositAccounts) (*ledger.UserAccount, error) {
	store := ledger.NewStore(state)
	if _, err := p.loadMaster(store, acc.Master); err != nil {
		return nil, err
	}
	user, err := p.loadUser(store, acc.User, acc.Master)
	if err != nil {
		return nil, err
	}
	if err = p.expectHolding(acc.UserHolding, acc.User); err != nil {
		return nil, err
	}

	if user.Balance, err = safemath.Add(user.Balance, amount); err != nil {
		return nil, fmt.Errorf("balance of '%s': %w", user.Handle, err)
	}

	if err = p.holding.Transfer(state, acc.DepositorHolding, acc.UserHolding, amount, holding.Signer(depositor)); err != nil {
		return nil, err
	}
	if err = store.Save(acc.User, user); err != nil {
		return nil, err
	}

	logger.Logger().WithField("handle", user.Handle).WithField("amount", amount).Debug("deposit")
	return user, nil
}

// TipAccounts are the accounts Tip operates on.
type TipAccounts struct {
	Master           address.Address
	Sender           address.Address
	Recipient        address.Address
	SenderHolding    address.Address
	RecipientHolding address.Address
}

// TipResult is the state of both parties after a tip.
type TipResult struct {
	Sender    *ledger.UserAccount `json:"sender"`
	Recipient *ledger.UserAccount `json:"recipient"`
}

// Tip moves amount between two registered users. signer must be the sender's
// owner or the registry authority.
func (p *Program) Tip(state State, signer address.Address, amount uint64, recipientHandle string, acc TipAccounts) (*TipResult, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	if acc.Sender.Equal(acc.Recipient) {
		return nil, ErrSelfTip
	}

	store := ledger.NewStore(state)
	master, err := p.loadMaster(store, acc.Master)
	if err != nil {
		return nil, err
	}
	sender, err := p.loadUser(store, acc.Sender, acc.Master)
	if err != nil {
		return nil, err
	}
	if err = authorizeSender(signer, sender, master); err != nil {
		return nil, err
	}
	recipient, err := p.loadUser(store, acc.Recipient, acc.Master)
	if err != nil {
		return nil, err
	}
	if recipient.Handle != recipientHandle {
		return nil, fmt.Errorf("%w: recipient is '%s', got '%s'", ErrEscrowHandleMismatch, recipient.Handle, recipientHandle)
	}

	if sender.Balance < amount {
		return nil, fmt.Errorf("%w: '%s' has %d, needs %d", ErrInsufficientBalance, sender.Handle, sender.Balance, amount)
	}
	if sender.Balance, err = safemath.Sub(sender.Balance, amount); err != nil {
		return nil, err
	}
	if recipient.Balance, err = safemath.Add(recipient.Balance, amount); err != nil {
		return nil, fmt.Errorf("balance of '%s': %w", recipient.Handle, err)
	}

	if err = p.expectHolding(acc.SenderHolding, acc.Sender); err != nil {
		return nil, err
	}
	if err = p.expectHolding(acc.RecipientHolding, acc.Recipient); err != nil {
		return nil, err
	}
	if err = p.holding.Transfer(state, acc.SenderHolding, acc.RecipientHolding, amount, masterAuthority(master)); err != nil {
		return nil, err
	}

	if err = store.Save(acc.Sender, sender); err != nil {
		return nil, err
	}
	if err = store.Save(acc.Recipient, recipient); err != nil {
		return nil, err
	}

	logger.Logger().
		WithField("from", sender.Handle).
		WithField("to", recipient.Handle).
		WithField("amount", amount).
		Debug("tip")
	return &TipResult{Sender: sender, Recipient: recipient}, nil
}

// EscrowAccounts are the accounts TipToEscrow operates on.
type EscrowAccounts struct {
	Master        address.Address
	Sender        address.Address
	SenderHolding address.Address
	Escrow        address.Address
	EscrowHolding address.Address
}

// EscrowResult is the state of the sender and the escrow after a tip to escrow.
type EscrowResult struct {
	Sender *ledger.UserAccount   `json:"sender"`
	Escrow *ledger.EscrowAccount `json:"escrow"`
}

// TipToEscrow parks amount for a handle that has not registered yet. The
// handle claims it on registration.
func (p *Program) TipToEscrow(state State, signer address.Address, amount uint64, recipientHandle string, acc EscrowAccounts) (*EscrowResult, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	if err := checkHandle(recipientHandle); err != nil {
		return nil, err
	}

	store := ledger.NewStore(state)
	master, err := p.loadMaster(store, acc.Master)
	if err != nil {
		return nil, err
	}
	sender, err := p.loadUser(store, acc.Sender, acc.Master)
	if err != nil {
		return nil, err
	}
	if err = authorizeSender(signer, sender, master); err != nil {
		return nil, err
	}

	if sender.Balance < amount {
		return nil, fmt.Errorf("%w: '%s' has %d, needs %d", ErrInsufficientBalance, sender.Handle, sender.Balance, amount)
	}
	if sender.Balance, err = safemath.Sub(sender.Balance, amount); err != nil {
		return nil, err
	}

	recipientUser, _, err := p.deriver.Derive(address.TagUser, ledger.UserSeeds(recipientHandle, acc.Master)...)
	if err != nil {
		return nil, err
	}
	registered, err := store.Exists(recipientUser)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, fmt.Errorf("%w: '%s'", ErrRecipientRegistered, recipientHandle)
	}

	escrowNonce, err := p.deriver.Expect(acc.Escrow, address.TagEscrow, ledger.EscrowSeeds(recipientHandle, acc.Master)...)
	if err != nil {
		return nil, err
	}
	escrow, _, err := store.LoadOrInitEscrow(acc.Escrow, escrowNonce)
	if err != nil {
		return nil, err
	}
	if err = bindEscrow(escrow, recipientHandle); err != nil {
		return nil, err
	}
	if err = p.expectHolding(acc.EscrowHolding, acc.Escrow); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEscrowTokenAccount, err)
	}

	if escrow.Amount, err = safemath.Add(escrow.Amount, amount); err != nil {
		return nil, fmt.Errorf("escrow of '%s': %w", recipientHandle, err)
	}
	if master.TotalEscrows, err = safemath.Inc(master.TotalEscrows); err != nil {
		return nil, fmt.Errorf("total escrows: %w", err)
	}

	if err = p.expectHolding(acc.SenderHolding, acc.Sender); err != nil {
		return nil, err
	}
	if _, _, err = p.holding.Ensure(state, sender.Owner, acc.Escrow, acc.Escrow); err != nil {
		return nil, err
	}
	if err = p.holding.Transfer(state, acc.SenderHolding, acc.EscrowHolding, amount, masterAuthority(master)); err != nil {
		return nil, err
	}

	if err = store.Save(acc.Sender, sender); err != nil {
		return nil, err
	}
	if err = store.Save(acc.Escrow, escrow); err != nil {
		return nil, err
	}
	if err = store.Save(acc.Master, master); err != nil {
		return nil, err
	}

	logger.Logger().
		WithField("from", sender.Handle).
		WithField("to", recipientHandle).
		WithField("amount", amount).
		Debug("tip to escrow")
	return &EscrowResult{Sender: sender, Escrow: escrow}, nil
}

// WithdrawAccounts are the accounts Withdraw operates on.
type WithdrawAccounts struct {
	Master      address.Address
	User        address.Address
	UserHolding address.Address
	Destination address.Address
}

// Withdraw moves amount out of the pool of a user into an external holding
// account of the deployment asset. Only the owner of the user account may
// withdraw. Pools of users and escrows are not valid destinations.
func (p *Program) Withdraw(state State, owner address.Address, amount uint64, acc WithdrawAccounts) (*ledger.UserAccount, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}

	store := ledger.NewStore(state)
	master, err := p.loadMaster(store, acc.Master)
	if err != nil {
		return nil, err
	}
	user, err := p.loadUser(store, acc.User, acc.Master)
	if err != nil {
		return nil, err
	}
	if !user.Owner.Equal(owner) {
		return nil, fmt.Errorf("%w: %s does not own '%s'", ErrUnauthorized, owner, user.Handle)
	}

	if user.Balance < amount {
		return nil, fmt.Errorf("%w: '%s' has %d, needs %d", ErrInsufficientBalance, user.Handle, user.Balance, amount)
	}
	if user.Balance, err = safemath.Sub(user.Balance, amount); err != nil {
		return nil, err
	}

	if err = p.expectHolding(acc.UserHolding, acc.User); err != nil {
		return nil, err
	}
	if err = p.checkExternal(state, store, acc.Destination, acc.Master); err != nil {
		return nil, err
	}
	if err = p.holding.Transfer(state, acc.UserHolding, acc.Destination, amount, masterAuthority(master)); err != nil {
		return nil, err
	}
	if err = store.Save(acc.User, user); err != nil {
		return nil, err
	}

	logger.Logger().WithField("handle", user.Handle).WithField("amount", amount).Debug("withdraw")
	return user, nil
}

// CreateHoldingAccount opens the holding account of signer, controlled by
// signer itself.
func (p *Program) CreateHoldingAccount(state State, signer address.Address) (address.Address, error) {
	return p.holding.Create(state, signer, signer, signer)
}

// Mint credits amount to a holding account. Only the configured issuer mints.
func (p *Program) Mint(state State, signer, to address.Address, amount uint64) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if p.issuer.IsZero() || !p.issuer.Equal(signer) {
		return fmt.Errorf("%w: %s is not the issuer", ErrUnauthorized, signer)
	}
	return p.holding.Mint(state, to, amount)
}

func authorizeSender(signer address.Address, sender *ledger.UserAccount, master *ledger.MasterRegistry) error {
	if signer.Equal(sender.Owner) || signer.Equal(master.Authority) {
		return nil
	}
	return fmt.Errorf("%w: %s may not spend from '%s'", ErrUnauthorized, signer, sender.Handle)
}
