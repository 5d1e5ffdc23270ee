package tipbot

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/anoideaopen/tipledger/core/address"
	"github.com/anoideaopen/tipledger/core/config"
	"github.com/anoideaopen/tipledger/core/contract"
)

// Chaincode functions.
const (
	FnInitialize           = "initialize"
	FnRegisterUser         = "registerUser"
	FnDeposit              = "deposit"
	FnTip                  = "tip"
	FnTipToEscrow          = "tipToEscrow"
	FnWithdraw             = "withdraw"
	FnCreateHoldingAccount = "createHoldingAccount"
	FnMint                 = "mint"

	FnMasterRegistry  = "masterRegistry"
	FnUserAccount     = "userAccount"
	FnEscrowAccount   = "escrowAccount"
	FnHoldingAccount  = "holdingAccount"
	FnDeriveAccounts  = "deriveAccounts"
	FnNormalizeHandle = "normalizeHandle"
)

// Contract exposes the program as chaincode methods.
type Contract struct{}

// NewContract returns the tipping ledger contract.
func NewContract() *Contract {
	return &Contract{}
}

// ValidateConfig checks that cfg can run the program.
func (c *Contract) ValidateConfig(cfg *config.Config) error {
	_, err := New(cfg)
	return err
}

// Methods implements contract.Router.
func (c *Contract) Methods() map[contract.Function]contract.Method {
	tx := func(fn string, numArgs int, h contract.Handler) contract.Method {
		return contract.Method{
			Type:          contract.MethodTypeTransaction,
			ChaincodeFunc: fn,
			RequiresAuth:  true,
			NumArgs:       numArgs,
			Handler:       h,
		}
	}
	query := func(fn string, numArgs int, h contract.Handler) contract.Method {
		return contract.Method{
			Type:          contract.MethodTypeQuery,
			ChaincodeFunc: fn,
			NumArgs:       numArgs,
			Handler:       h,
		}
	}

	return map[contract.Function]contract.Method{
		FnInitialize:           tx(FnInitialize, 1, c.txInitialize),
		FnRegisterUser:         tx(FnRegisterUser, 6, c.txRegisterUser),
		FnDeposit:              tx(FnDeposit, 5, c.txDeposit),
		FnTip:                  tx(FnTip, 7, c.txTip),
		FnTipToEscrow:          tx(FnTipToEscrow, 7, c.txTipToEscrow),
		FnWithdraw:             tx(FnWithdraw, 5, c.txWithdraw),
		FnCreateHoldingAccount: tx(FnCreateHoldingAccount, 0, c.txCreateHoldingAccount),
		FnMint:                 tx(FnMint, 2, c.txMint),

		FnMasterRegistry:  query(FnMasterRegistry, 1, c.queryMasterRegistry),
		FnUserAccount:     query(FnUserAccount, 2, c.queryUserAccount),
		FnEscrowAccount:   query(FnEscrowAccount, 2, c.queryEscrowAccount),
		FnHoldingAccount:  query(FnHoldingAccount, 1, c.queryHoldingAccount),
		FnDeriveAccounts:  query(FnDeriveAccounts, 2, c.queryDeriveAccounts),
		FnNormalizeHandle: query(FnNormalizeHandle, 1, c.queryNormalizeHandle),
	}
}

// txInitialize args: master.
func (c *Contract) txInitialize(call *contract.Call, args []string) ([]byte, error) {
	p, addrs, err := prepare(call, args)
	if err != nil {
		return nil, err
	}

	registry, err := p.Initialize(call.Stub, call.Sender.Address, addrs[0])
	if err != nil {
		return nil, err
	}
	return emit(call, FnInitialize, NewMasterView(addrs[0], registry))
}

// txRegisterUser args: handle, master, user, escrow, user holding, escrow holding.
func (c *Contract) txRegisterUser(call *contract.Call, args []string) ([]byte, error) {
	p, addrs, err := prepare(call, args[1:])
	if err != nil {
		return nil, err
	}

	acc := RegisterAccounts{
		Master:        addrs[0],
		User:          addrs[1],
		Escrow:        addrs[2],
		UserHolding:   addrs[3],
		EscrowHolding: addrs[4],
	}
	user, err := p.RegisterUser(call.Stub, call.Sender.Address, args[0], acc)
	if err != nil {
		return nil, err
	}
	return emit(call, FnRegisterUser, NewUserView(acc.User, user, call.Config.Asset.Decimals))
}

// txDeposit args: amount, master, user, depositor holding, user holding.
func (c *Contract) txDeposit(call *contract.Call, args []string) ([]byte, error) {
	amount, err := parseAmount(args[0])
	if err != nil {
		return nil, err
	}
	p, addrs, err := prepare(call, args[1:])
	if err != nil {
		return nil, err
	}

	acc := DepositAccounts{
		Master:           addrs[0],
		User:             addrs[1],
		DepositorHolding: addrs[2],
		UserHolding:      addrs[3],
	}
	user, err := p.Deposit(call.Stub, call.Sender.Address, amount, acc)
	if err != nil {
		return nil, err
	}
	return emit(call, FnDeposit, NewUserView(acc.User, user, call.Config.Asset.Decimals))
}

// txTip args: amount, recipient handle, master, sender, recipient,
// sender holding, recipient holding.
func (c *Contract) txTip(call *contract.Call, args []string) ([]byte, error) {
	amount, err := parseAmount(args[0])
	if err != nil {
		return nil, err
	}
	p, addrs, err := prepare(call, args[2:])
	if err != nil {
		return nil, err
	}

	acc := TipAccounts{
		Master:           addrs[0],
		Sender:           addrs[1],
		Recipient:        addrs[2],
		SenderHolding:    addrs[3],
		RecipientHolding: addrs[4],
	}
	res, err := p.Tip(call.Stub, call.Sender.Address, amount, args[1], acc)
	if err != nil {
		return nil, err
	}

	decimals := call.Config.Asset.Decimals
	return emit(call, FnTip, struct {
		Amount    uint64    `json:"amount"`
		Sender    *UserView `json:"sender"`
		Recipient *UserView `json:"recipient"`
	}{
		Amount:    amount,
		Sender:    NewUserView(acc.Sender, res.Sender, decimals),
		Recipient: NewUserView(acc.Recipient, res.Recipient, decimals),
	})
}

// txTipToEscrow args: amount, recipient handle, master, sender,
// sender holding, escrow, escrow holding.
func (c *Contract) txTipToEscrow(call *contract.Call, args []string) ([]byte, error) {
	amount, err := parseAmount(args[0])
	if err != nil {
		return nil, err
	}
	p, addrs, err := prepare(call, args[2:])
	if err != nil {
		return nil, err
	}

	acc := EscrowAccounts{
		Master:        addrs[0],
		Sender:        addrs[1],
		SenderHolding: addrs[2],
		Escrow:        addrs[3],
		EscrowHolding: addrs[4],
	}
	res, err := p.TipToEscrow(call.Stub, call.Sender.Address, amount, args[1], acc)
	if err != nil {
		return nil, err
	}

	decimals := call.Config.Asset.Decimals
	return emit(call, FnTipToEscrow, struct {
		Amount uint64      `json:"amount"`
		Sender *UserView   `json:"sender"`
		Escrow *EscrowView `json:"escrow"`
	}{
		Amount: amount,
		Sender: NewUserView(acc.Sender, res.Sender, decimals),
		Escrow: NewEscrowView(acc.Escrow, res.Escrow, decimals),
	})
}

// txWithdraw args: amount, master, user, user holding, destination.
func (c *Contract) txWithdraw(call *contract.Call, args []string) ([]byte, error) {
	amount, err := parseAmount(args[0])
	if err != nil {
		return nil, err
	}
	p, addrs, err := prepare(call, args[1:])
	if err != nil {
		return nil, err
	}

	acc := WithdrawAccounts{
		Master:      addrs[0],
		User:        addrs[1],
		UserHolding: addrs[2],
		Destination: addrs[3],
	}
	user, err := p.Withdraw(call.Stub, call.Sender.Address, amount, acc)
	if err != nil {
		return nil, err
	}
	return emit(call, FnWithdraw, NewUserView(acc.User, user, call.Config.Asset.Decimals))
}

func (c *Contract) txCreateHoldingAccount(call *contract.Call, _ []string) ([]byte, error) {
	p, _, err := prepare(call, nil)
	if err != nil {
		return nil, err
	}

	addr, err := p.CreateHoldingAccount(call.Stub, call.Sender.Address)
	if err != nil {
		return nil, err
	}
	return emit(call, FnCreateHoldingAccount, addr)
}

// txMint args: holding, amount.
func (c *Contract) txMint(call *contract.Call, args []string) ([]byte, error) {
	amount, err := parseAmount(args[1])
	if err != nil {
		return nil, err
	}
	p, addrs, err := prepare(call, args[:1])
	if err != nil {
		return nil, err
	}

	if err = p.Mint(call.Stub, call.Sender.Address, addrs[0], amount); err != nil {
		return nil, err
	}
	view, err := p.HoldingAccount(call.Stub, addrs[0], call.Config.Asset.Decimals)
	if err != nil {
		return nil, err
	}
	return emit(call, FnMint, view)
}

func (c *Contract) queryMasterRegistry(call *contract.Call, args []string) ([]byte, error) {
	p, addrs, err := prepare(call, args)
	if err != nil {
		return nil, err
	}
	return marshal(p.MasterRegistry(call.Stub, addrs[0]))
}

// queryUserAccount args: master, user.
func (c *Contract) queryUserAccount(call *contract.Call, args []string) ([]byte, error) {
	p, addrs, err := prepare(call, args)
	if err != nil {
		return nil, err
	}
	return marshal(p.UserAccount(call.Stub, addrs[0], addrs[1], call.Config.Asset.Decimals))
}

// queryEscrowAccount args: master, escrow.
func (c *Contract) queryEscrowAccount(call *contract.Call, args []string) ([]byte, error) {
	p, addrs, err := prepare(call, args)
	if err != nil {
		return nil, err
	}
	return marshal(p.EscrowAccount(call.Stub, addrs[0], addrs[1], call.Config.Asset.Decimals))
}

func (c *Contract) queryHoldingAccount(call *contract.Call, args []string) ([]byte, error) {
	p, addrs, err := prepare(call, args)
	if err != nil {
		return nil, err
	}
	return marshal(p.HoldingAccount(call.Stub, addrs[0], call.Config.Asset.Decimals))
}

// queryDeriveAccounts args: authority, handle.
func (c *Contract) queryDeriveAccounts(call *contract.Call, args []string) ([]byte, error) {
	p, addrs, err := prepare(call, args[:1])
	if err != nil {
		return nil, err
	}
	return marshal(p.DeriveAccounts(addrs[0], args[1]))
}

func (c *Contract) queryNormalizeHandle(_ *contract.Call, args []string) ([]byte, error) {
	handle := NormalizeHandle(args[0])
	if handle == "" {
		return nil, ErrHandleEmpty
	}
	return json.Marshal(handle)
}

// prepare builds the program of the call and parses the address arguments.
func prepare(call *contract.Call, addrArgs []string) (*Program, []address.Address, error) {
	p, err := New(call.Config)
	if err != nil {
		return nil, nil, err
	}

	addrs := make([]address.Address, len(addrArgs))
	for i, arg := range addrArgs {
		if addrs[i], err = address.FromBase58Check(arg); err != nil {
			return nil, nil, fmt.Errorf("parsing address '%s': %w", arg, err)
		}
	}
	return p, addrs, nil
}

func parseAmount(s string) (uint64, error) {
	amount, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: '%s'", ErrInvalidAmount, s)
	}
	return amount, nil
}

// emit publishes v as the event of the transaction and returns it as the
// response payload.
func emit(call *contract.Call, name string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if err = call.Stub.SetEvent(name, data); err != nil {
		return nil, err
	}
	return data, nil
}

func marshal[T any](v T, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}
