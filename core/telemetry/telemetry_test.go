package telemetry

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/anoideaopen/tipledger/core/config"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestTransientMapRoundTrip(t *testing.T) {
	carrier := propagation.MapCarrier{"traceparent": "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01"}
	packed := PackToTransientMap(carrier)
	require.Equal(t, []byte(carrier["traceparent"]), packed["traceparent"])
	require.Equal(t, carrier, UnpackTransientMap(packed))
}

func TestInjectExtract(t *testing.T) {
	InstallTraceProvider(nil, "test")
	th := &TracingHandler{Propagators: propagation.TraceContext{}}

	traceID, err := trace.TraceIDFromHex("0af7651916cd43dd8448eb211c80319c")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("b7ad6b7169203331")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})

	packed := th.Inject(trace.ContextWithSpanContext(context.Background(), sc))
	extracted := trace.SpanContextFromContext(th.Propagators.Extract(context.Background(), UnpackTransientMap(packed)))
	require.Equal(t, traceID, extracted.TraceID())
	require.True(t, extracted.IsRemote())
}

func TestCollectorOptions(t *testing.T) {
	opts, err := collectorOptions(&config.CollectorEndpoint{Endpoint: "localhost:4318"})
	require.NoError(t, err)
	require.Len(t, opts, 2)

	opts, err = collectorOptions(&config.CollectorEndpoint{
		Endpoint:                 "localhost:4318",
		AuthorizationHeaderKey:   "Authorization",
		AuthorizationHeaderValue: "Bearer token",
	})
	require.NoError(t, err)
	require.Len(t, opts, 3)

	_, err = collectorOptions(&config.CollectorEndpoint{Endpoint: "localhost:4318", TLSCA: "not base64!"})
	require.Error(t, err)

	_, err = collectorOptions(&config.CollectorEndpoint{
		Endpoint: "localhost:4318",
		TLSCA:    base64.StdEncoding.EncodeToString([]byte("not a pem")),
	})
	require.ErrorContains(t, err, "no CA certificates")

	InstallTraceProvider(&config.CollectorEndpoint{Endpoint: "localhost:4318", TLSCA: "bad"}, "test")
}

func TestMethodType(t *testing.T) {
	require.Equal(t, "tx", MethodTx.String())
	require.Equal(t, "query", MethodQuery.String())
	require.Equal(t, "unknown", MethodTypeNum(42).String())
	require.Equal(t, "method_type", string(MethodType(MethodTx).Key))
}
