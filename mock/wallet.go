package mock

import (
	"strconv"
	"strings"
	"time"

	"github.com/anoideaopen/tipledger/core/address"
	"github.com/anoideaopen/tipledger/core/types"
	"github.com/anoideaopen/tipledger/keys"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/stretchr/testify/require"
)

// Wallet is a test signer.
type Wallet struct {
	ledger *Ledger
	*keys.Keys
}

// Address returns the address the wallet signs for.
func (w *Wallet) Address() address.Address {
	return types.AddressFromPublicKey(w.PublicKeyBytes)
}

// Invoke calls fn without a signature and requires it to succeed.
func (w *Wallet) Invoke(ch, fn string, args ...string) string {
	return w.ledger.mustResult(invocation{ch: ch, fn: fn, args: args})
}

// InvokeWithError calls fn without a signature.
func (w *Wallet) InvokeWithError(ch, fn string, args ...string) error {
	_, err := w.ledger.result(invocation{ch: ch, fn: fn, args: args})
	return err
}

// SignedInvoke signs and calls fn, requires it to succeed and returns the
// response payload.
func (w *Wallet) SignedInvoke(ch, fn string, args ...string) string {
	return w.ledger.mustResult(invocation{ch: ch, fn: fn, args: w.SignArgs(ch, fn, args...)})
}

// SignedInvokeWithError signs and calls fn.
func (w *Wallet) SignedInvokeWithError(ch, fn string, args ...string) error {
	_, err := w.ledger.result(invocation{ch: ch, fn: fn, args: w.SignArgs(ch, fn, args...)})
	return err
}

// SignArgs returns the signed invocation arguments of fn with a fresh
// millisecond nonce.
func (w *Wallet) SignArgs(ch, fn string, args ...string) []string {
	// consecutive calls must not share a nonce
	time.Sleep(5 * time.Millisecond)
	return w.WithNonceSignArgs(ch, fn, strconv.FormatInt(time.Now().UnixMilli(), 10), args...)
}

// WithNonceSignArgs returns the invocation arguments of fn signed with nonce:
// request id, chaincode, channel, args, nonce, public key and signature.
func (w *Wallet) WithNonceSignArgs(ch, fn, nonce string, args ...string) []string {
	signed := make([]string, 0, len(args)+6)
	signed = append(signed, "", ch, ch)
	signed = append(signed, args...)
	signed = append(signed, nonce, base58.Encode(w.PublicKeyBytes))

	message := fn + strings.Join(signed, "")
	_, signature, err := keys.SignMessageByKeyType(w.KeyType, w.Keys, []byte(message))
	require.NoError(w.ledger.t, err)

	return append(signed, base58.Encode(signature))
}
