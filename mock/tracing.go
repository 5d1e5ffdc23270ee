package mock

import (
	"context"

	"github.com/anoideaopen/tipledger/core/telemetry"
)

// SignedInvokeTraced signs and calls fn with the trace context of ctx in the
// transient map, and requires it to succeed.
func (w *Wallet) SignedInvokeTraced(ctx context.Context, ch, fn string, args ...string) string {
	return w.ledger.mustResult(invocation{
		ch:        ch,
		fn:        fn,
		args:      w.SignArgs(ch, fn, args...),
		transient: telemetry.NewTracingHandler().Inject(ctx),
	})
}

// InvokeTraced calls fn without a signature with the trace context of ctx in
// the transient map.
func (w *Wallet) InvokeTraced(ctx context.Context, ch, fn string, args ...string) (string, error) {
	return w.ledger.result(invocation{
		ch:        ch,
		fn:        fn,
		args:      args,
		transient: telemetry.NewTracingHandler().Inject(ctx),
	})
}
