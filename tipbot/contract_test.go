package tipbot_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/anoideaopen/tipledger/core"
	"github.com/anoideaopen/tipledger/core/address"
	"github.com/anoideaopen/tipledger/keys"
	"github.com/anoideaopen/tipledger/mock"
	"github.com/anoideaopen/tipledger/tipbot"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/stretchr/testify/require"
)

const channel = "tipbot"

type chain struct {
	t         *testing.T
	ledger    *mock.Ledger
	authority *mock.Wallet
	issuer    *mock.Wallet
}

func newChain(t *testing.T) *chain {
	l := mock.NewLedger(t)
	c := &chain{
		t:         t,
		ledger:    l,
		authority: l.NewWallet(),
		issuer:    l.NewWallet(),
	}

	cfg := fmt.Sprintf(`{"programId":"tipbot","asset":{"symbol":"TIP","decimals":2},"issuer":"%s"}`, c.issuer.Address())
	require.Empty(t, l.NewCC(channel, tipbot.NewContract(), cfg))

	c.authority.SignedInvoke(channel, tipbot.FnInitialize, c.accounts("init").Master.Address.String())
	return c
}

func (c *chain) accounts(handle string) tipbot.Accounts {
	var acc tipbot.Accounts
	resp := c.authority.Invoke(channel, tipbot.FnDeriveAccounts, c.authority.Address().String(), handle)
	require.NoError(c.t, json.Unmarshal([]byte(resp), &acc))
	return acc
}

func (c *chain) master() address.Address {
	return c.accounts("init").Master.Address
}

func (c *chain) register(w *mock.Wallet, handle string) tipbot.Accounts {
	acc := c.accounts(handle)
	w.SignedInvoke(channel, tipbot.FnRegisterUser,
		handle,
		acc.Master.Address.String(),
		acc.User.Address.String(),
		acc.Escrow.Address.String(),
		acc.UserHolding.String(),
		acc.EscrowHolding.String(),
	)
	return acc
}

func (c *chain) holding(w *mock.Wallet) address.Address {
	var addr address.Address
	require.NoError(c.t, json.Unmarshal([]byte(w.SignedInvoke(channel, tipbot.FnCreateHoldingAccount)), &addr))
	return addr
}

func (c *chain) fund(w *mock.Wallet, amount uint64) address.Address {
	addr := c.holding(w)
	c.issuer.SignedInvoke(channel, tipbot.FnMint, addr.String(), strconv.FormatUint(amount, 10))
	return addr
}

func (c *chain) deposit(w *mock.Wallet, from address.Address, amount uint64, acc tipbot.Accounts) {
	w.SignedInvoke(channel, tipbot.FnDeposit,
		strconv.FormatUint(amount, 10),
		acc.Master.Address.String(),
		acc.User.Address.String(),
		from.String(),
		acc.UserHolding.String(),
	)
}

func tipArgs(amount uint64, handle string, sender, recipient tipbot.Accounts) []string {
	return []string{
		strconv.FormatUint(amount, 10),
		handle,
		sender.Master.Address.String(),
		sender.User.Address.String(),
		recipient.User.Address.String(),
		sender.UserHolding.String(),
		recipient.UserHolding.String(),
	}
}

func escrowArgs(amount uint64, handle string, sender, recipient tipbot.Accounts) []string {
	return []string{
		strconv.FormatUint(amount, 10),
		handle,
		sender.Master.Address.String(),
		sender.User.Address.String(),
		sender.UserHolding.String(),
		recipient.Escrow.Address.String(),
		recipient.EscrowHolding.String(),
	}
}

func (c *chain) user(addr address.Address) tipbot.UserView {
	var view tipbot.UserView
	require.NoError(c.t, json.Unmarshal([]byte(c.authority.Invoke(channel, tipbot.FnUserAccount, c.master().String(), addr.String())), &view))
	return view
}

func (c *chain) escrow(addr address.Address) tipbot.EscrowView {
	var view tipbot.EscrowView
	require.NoError(c.t, json.Unmarshal([]byte(c.authority.Invoke(channel, tipbot.FnEscrowAccount, c.master().String(), addr.String())), &view))
	return view
}

func (c *chain) balance(addr address.Address) tipbot.HoldingView {
	var view tipbot.HoldingView
	require.NoError(c.t, json.Unmarshal([]byte(c.authority.Invoke(channel, tipbot.FnHoldingAccount, addr.String())), &view))
	return view
}

func TestChaincodeTipFlow(t *testing.T) {
	c := newChain(t)
	alice, bob, carol := c.ledger.NewWallet(), c.ledger.NewWallet(), c.ledger.NewWallet()

	aliceAcc := c.register(alice, "alice")
	event := c.ledger.Event(channel)
	require.NotNil(t, event)
	require.Equal(t, tipbot.FnRegisterUser, event.GetEventName())

	bobAcc := c.register(bob, "bob")
	c.deposit(alice, c.fund(alice, 500), 500, aliceAcc)
	require.Equal(t, "5.00", c.user(aliceAcc.User.Address).BalanceDecimal)

	var tip struct {
		Amount    uint64          `json:"amount"`
		Sender    tipbot.UserView `json:"sender"`
		Recipient tipbot.UserView `json:"recipient"`
	}
	resp := alice.SignedInvoke(channel, tipbot.FnTip, tipArgs(200, "bob", aliceAcc, bobAcc)...)
	require.NoError(t, json.Unmarshal([]byte(resp), &tip))
	require.Equal(t, uint64(200), tip.Amount)
	require.Equal(t, uint64(300), tip.Sender.Balance)
	require.Equal(t, uint64(200), tip.Recipient.Balance)
	require.Equal(t, tipbot.FnTip, c.ledger.Event(channel).GetEventName())
	require.JSONEq(t, resp, string(c.ledger.Event(channel).GetPayload()))

	carolAcc := c.accounts("carol")
	alice.SignedInvoke(channel, tipbot.FnTipToEscrow, escrowArgs(70, "carol", aliceAcc, carolAcc)...)
	escrow := c.escrow(carolAcc.Escrow.Address)
	require.Equal(t, "carol", escrow.RecipientHandle)
	require.Equal(t, uint64(70), escrow.Amount)
	require.Equal(t, "0.70", escrow.AmountDecimal)

	c.register(carol, "carol")
	carolView := c.user(carolAcc.User.Address)
	require.Equal(t, uint64(70), carolView.Balance)
	require.Equal(t, uint64(70), carolView.EscrowBalance)
	require.Equal(t, carol.Address(), carolView.Owner)
	require.Zero(t, c.escrow(carolAcc.Escrow.Address).Amount)

	bobWallet := c.holding(bob)
	bob.SignedInvoke(channel, tipbot.FnWithdraw,
		"120",
		bobAcc.Master.Address.String(),
		bobAcc.User.Address.String(),
		bobAcc.UserHolding.String(),
		bobWallet.String(),
	)
	require.Equal(t, uint64(80), c.user(bobAcc.User.Address).Balance)
	require.Equal(t, "120", c.balance(bobWallet).Balance)
	require.Equal(t, "1.20", c.balance(bobWallet).BalanceDecimal)

	var registry tipbot.MasterView
	resp = c.authority.Invoke(channel, tipbot.FnMasterRegistry, aliceAcc.Master.Address.String())
	require.NoError(t, json.Unmarshal([]byte(resp), &registry))
	require.Equal(t, c.authority.Address(), registry.Authority)
	require.Equal(t, uint64(3), registry.TotalUsers)
	require.Equal(t, uint64(1), registry.TotalEscrows)
}

func TestChaincodeFailedTxKeepsState(t *testing.T) {
	c := newChain(t)
	alice, bob := c.ledger.NewWallet(), c.ledger.NewWallet()
	aliceAcc := c.register(alice, "alice")
	bobAcc := c.register(bob, "bob")
	c.deposit(alice, c.fund(alice, 100), 100, aliceAcc)

	err := alice.SignedInvokeWithError(channel, tipbot.FnTip, tipArgs(101, "bob", aliceAcc, bobAcc)...)
	require.ErrorContains(t, err, tipbot.ErrInsufficientBalance.Error())
	require.Nil(t, c.ledger.Event(channel))
	require.Equal(t, uint64(100), c.user(aliceAcc.User.Address).Balance)
	require.Zero(t, c.user(bobAcc.User.Address).Balance)

	err = bob.SignedInvokeWithError(channel, tipbot.FnTip, tipArgs(10, "bob", aliceAcc, bobAcc)...)
	require.ErrorContains(t, err, tipbot.ErrUnauthorized.Error())
	require.Equal(t, uint64(100), c.user(aliceAcc.User.Address).Balance)
}

func TestChaincodeAuth(t *testing.T) {
	c := newChain(t)
	alice := c.ledger.NewWallet()
	aliceAcc := c.accounts("alice")
	args := []string{
		"alice",
		aliceAcc.Master.Address.String(),
		aliceAcc.User.Address.String(),
		aliceAcc.Escrow.Address.String(),
		aliceAcc.UserHolding.String(),
		aliceAcc.EscrowHolding.String(),
	}

	t.Run("unsigned", func(t *testing.T) {
		err := alice.InvokeWithError(channel, tipbot.FnRegisterUser, args...)
		require.ErrorContains(t, err, core.ErrIncorrectArgsNum.Error())
	})

	t.Run("tampered", func(t *testing.T) {
		signed := alice.SignArgs(channel, tipbot.FnRegisterUser, args...)
		signed[3] = "mallory"
		err := alice.InvokeWithError(channel, tipbot.FnRegisterUser, signed...)
		require.ErrorContains(t, err, core.ErrIncorrectSign.Error())
	})

	t.Run("wrong channel", func(t *testing.T) {
		signed := alice.SignArgs("other", tipbot.FnRegisterUser, args...)
		err := alice.InvokeWithError(channel, tipbot.FnRegisterUser, signed...)
		require.ErrorContains(t, err, "incorrect chaincode name")
	})

	t.Run("replayed nonce", func(t *testing.T) {
		nonce := strconv.FormatInt(time.Now().UnixMilli(), 10)
		signed := alice.WithNonceSignArgs(channel, tipbot.FnRegisterUser, nonce, args...)
		require.NoError(t, alice.InvokeWithError(channel, tipbot.FnRegisterUser, signed...))
		err := alice.InvokeWithError(channel, tipbot.FnRegisterUser, signed...)
		require.ErrorContains(t, err, "already exists")
	})

	t.Run("issuer only mints", func(t *testing.T) {
		holding := c.holding(alice)
		err := alice.SignedInvokeWithError(channel, tipbot.FnMint, holding.String(), "10")
		require.ErrorContains(t, err, tipbot.ErrUnauthorized.Error())
	})
}

func TestChaincodeKeyTypes(t *testing.T) {
	c := newChain(t)

	for _, keyType := range []keys.KeyType{keys.KeyTypeEd25519, keys.KeyTypeSecp256k1, keys.KeyTypeGOST} {
		t.Run(keyType.String(), func(t *testing.T) {
			w := c.ledger.NewWalletWithKeyType(keyType)
			handle := "user_" + keyType.String()
			acc := c.register(w, handle)
			c.deposit(w, c.fund(w, 42), 42, acc)

			view := c.user(acc.User.Address)
			require.Equal(t, w.Address(), view.Owner)
			require.Equal(t, uint64(42), view.Balance)
		})
	}
}

func TestChaincodeRestoredWallet(t *testing.T) {
	c := newChain(t)
	w := c.ledger.NewWallet()
	acc := c.register(w, "restored")
	funds := c.fund(w, 10)

	for name, restored := range map[string]*mock.Wallet{
		"hex":    c.ledger.NewWalletFromHexKey(hex.EncodeToString(w.PrivateKeyBytes)),
		"base58": c.ledger.NewWalletFromKey(base58.CheckEncode(w.PrivateKeyBytes[1:], w.PrivateKeyBytes[0])),
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, w.Address(), restored.Address())
			c.deposit(restored, funds, 5, acc)
		})
	}
	require.Equal(t, uint64(10), c.user(acc.User.Address).Balance)
}

func TestChaincodeInit(t *testing.T) {
	l := mock.NewLedger(t)

	msg := l.NewCC("broken", tipbot.NewContract(), `{"asset":{"symbol":"TIP"}}`)
	require.Contains(t, msg, "'programId' is empty")

	msg = l.NewCC("bad-issuer", tipbot.NewContract(), `{"programId":"tipbot","asset":{"symbol":"TIP"},"issuer":"nope"}`)
	require.Contains(t, msg, "'issuer' is not a valid address")
}

func TestChaincodeQueries(t *testing.T) {
	c := newChain(t)

	require.Equal(t, `"alice"`, c.authority.Invoke(channel, tipbot.FnNormalizeHandle, "  @Alice "))
	require.ErrorContains(t, c.authority.InvokeWithError(channel, tipbot.FnNormalizeHandle, " @ "), tipbot.ErrHandleEmpty.Error())

	var cfg struct {
		ProgramID string `json:"programId"`
	}
	require.NoError(t, json.Unmarshal([]byte(c.authority.Invoke(channel, "config")), &cfg))
	require.Equal(t, "tipbot", cfg.ProgramID)

	err := c.authority.InvokeWithError(channel, "transfer")
	require.ErrorContains(t, err, core.ErrMethodNotFound.Error())

	err = c.authority.InvokeWithError(channel, tipbot.FnUserAccount, c.master().String(), c.accounts("nobody").User.Address.String())
	require.ErrorContains(t, err, tipbot.ErrAccountNotFound.Error())
}

func TestChaincodeTraced(t *testing.T) {
	c := newChain(t)
	alice := c.ledger.NewWallet()

	resp := alice.SignedInvokeTraced(context.Background(), channel, tipbot.FnCreateHoldingAccount)
	var addr address.Address
	require.NoError(t, json.Unmarshal([]byte(resp), &addr))

	view, err := alice.InvokeTraced(context.Background(), channel, tipbot.FnHoldingAccount, addr.String())
	require.NoError(t, err)
	require.Contains(t, view, `"balance":"0"`)
}
