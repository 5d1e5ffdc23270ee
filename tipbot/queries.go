package tipbot

import (
	"math/big"
	"strings"

	"github.com/anoideaopen/tipledger/core/address"
	"github.com/anoideaopen/tipledger/core/ledger"
	"github.com/shopspring/decimal"
)

// MasterView is the client view of a master registry.
type MasterView struct {
	Address      address.Address `json:"address"`
	Authority    address.Address `json:"authority"`
	TotalUsers   uint64          `json:"totalUsers"`
	TotalEscrows uint64          `json:"totalEscrows"`
	Nonce        uint8           `json:"nonce"`
}

// UserView is the client view of a user account. Amounts are given both in
// base units and in asset units.
type UserView struct {
	Address        address.Address `json:"address"`
	Handle         string          `json:"handle"`
	Owner          address.Address `json:"owner"`
	Balance        uint64          `json:"balance"`
	BalanceDecimal string          `json:"balanceDecimal"`
	EscrowBalance  uint64          `json:"escrowBalance"`
	Nonce          uint8           `json:"nonce"`
}

// EscrowView is the client view of an escrow account.
type EscrowView struct {
	Address         address.Address `json:"address"`
	RecipientHandle string          `json:"recipientHandle"`
	Amount          uint64          `json:"amount"`
	AmountDecimal   string          `json:"amountDecimal"`
	Nonce           uint8           `json:"nonce"`
}

// HoldingView is the client view of a holding account.
type HoldingView struct {
	Address        address.Address `json:"address"`
	Owner          address.Address `json:"owner"`
	Authority      address.Address `json:"authority"`
	Asset          string          `json:"asset"`
	Balance        string          `json:"balance"`
	BalanceDecimal string          `json:"balanceDecimal"`
}

// DerivedAccount is an address together with the nonce it was found at.
type DerivedAccount struct {
	Address address.Address `json:"address"`
	Nonce   uint8           `json:"nonce"`
}

// Accounts lists every canonical address a client needs to operate on a
// handle under one authority.
type Accounts struct {
	Master        DerivedAccount  `json:"master"`
	User          DerivedAccount  `json:"user"`
	Escrow        DerivedAccount  `json:"escrow"`
	UserHolding   address.Address `json:"userHolding"`
	EscrowHolding address.Address `json:"escrowHolding"`
}

// Amount formats base units as asset units.
func Amount(units uint64, decimals uint32) string {
	return bigAmount(new(big.Int).SetUint64(units), decimals)
}

func bigAmount(units *big.Int, decimals uint32) string {
	exp := int32(decimals)
	return decimal.NewFromBigInt(units, -exp).StringFixed(exp)
}

// NewMasterView returns the view of registry stored at addr.
func NewMasterView(addr address.Address, registry *ledger.MasterRegistry) *MasterView {
	return &MasterView{
		Address:      addr,
		Authority:    registry.Authority,
		TotalUsers:   registry.TotalUsers,
		TotalEscrows: registry.TotalEscrows,
		Nonce:        registry.Nonce,
	}
}

// NewUserView returns the view of user stored at addr.
func NewUserView(addr address.Address, user *ledger.UserAccount, decimals uint32) *UserView {
	return &UserView{
		Address:        addr,
		Handle:         user.Handle,
		Owner:          user.Owner,
		Balance:        user.Balance,
		BalanceDecimal: Amount(user.Balance, decimals),
		EscrowBalance:  user.EscrowBalance,
		Nonce:          user.Nonce,
	}
}

// NewEscrowView returns the view of escrow stored at addr.
func NewEscrowView(addr address.Address, escrow *ledger.EscrowAccount, decimals uint32) *EscrowView {
	return &EscrowView{
		Address:         addr,
		RecipientHandle: escrow.RecipientHandle,
		Amount:          escrow.Amount,
		AmountDecimal:   Amount(escrow.Amount, decimals),
		Nonce:           escrow.Nonce,
	}
}

// MasterRegistry returns the registry stored at addr.
func (p *Program) MasterRegistry(state State, addr address.Address) (*MasterView, error) {
	registry, err := p.loadMaster(ledger.NewStore(state), addr)
	if err != nil {
		return nil, err
	}
	return NewMasterView(addr, registry), nil
}

// UserAccount returns the user account stored at addr. addr must be the
// canonical user address of the stored handle under master.
func (p *Program) UserAccount(state State, master, addr address.Address, decimals uint32) (*UserView, error) {
	user, err := p.loadUser(ledger.NewStore(state), addr, master)
	if err != nil {
		return nil, err
	}
	return NewUserView(addr, user, decimals), nil
}

// EscrowAccount returns the escrow account stored at addr, checked the same
// way as UserAccount.
func (p *Program) EscrowAccount(state State, master, addr address.Address, decimals uint32) (*EscrowView, error) {
	escrow, err := p.loadEscrow(ledger.NewStore(state), addr, master)
	if err != nil {
		return nil, err
	}
	return NewEscrowView(addr, escrow, decimals), nil
}

// HoldingAccount returns the holding account at addr with its balance.
func (p *Program) HoldingAccount(state State, addr address.Address, decimals uint32) (*HoldingView, error) {
	acc, err := p.holding.Get(state, addr)
	if err != nil {
		return nil, err
	}
	balance, err := p.holding.Balance(state, addr)
	if err != nil {
		return nil, err
	}
	return &HoldingView{
		Address:        addr,
		Owner:          acc.Owner,
		Authority:      acc.Authority,
		Asset:          acc.Asset,
		Balance:        balance.String(),
		BalanceDecimal: bigAmount(balance, decimals),
	}, nil
}

// DeriveAccounts returns the canonical accounts of handle under the registry
// of authority.
func (p *Program) DeriveAccounts(authority address.Address, handle string) (*Accounts, error) {
	if err := checkHandle(handle); err != nil {
		return nil, err
	}

	var (
		out Accounts
		err error
	)
	if out.Master.Address, out.Master.Nonce, err = p.deriver.Derive(address.TagMaster, authority.Bytes()); err != nil {
		return nil, err
	}
	master := out.Master.Address
	if out.User.Address, out.User.Nonce, err = p.deriver.Derive(address.TagUser, ledger.UserSeeds(handle, master)...); err != nil {
		return nil, err
	}
	if out.Escrow.Address, out.Escrow.Nonce, err = p.deriver.Derive(address.TagEscrow, ledger.EscrowSeeds(handle, master)...); err != nil {
		return nil, err
	}
	if out.UserHolding, err = p.holding.Address(out.User.Address); err != nil {
		return nil, err
	}
	if out.EscrowHolding, err = p.holding.Address(out.Escrow.Address); err != nil {
		return nil, err
	}
	return &out, nil
}

// NormalizeHandle turns a handle as written by a user into its registered
// form: surrounding space trimmed, the '@' mark removed and lowercased.
func NormalizeHandle(raw string) string {
	return strings.Replace(strings.ToLower(strings.TrimSpace(raw)), "@", "", 1)
}
