package telemetry

import (
	"context"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "tipledger"

// TracingHandler starts invocation spans from the trace context a client
// put into the transient map.
type TracingHandler struct {
	Tracer      trace.Tracer
	Propagators propagation.TextMapPropagator
}

// NewTracingHandler returns a handler bound to the global provider and
// propagator installed by InstallTraceProvider.
func NewTracingHandler() *TracingHandler {
	return &TracingHandler{
		Tracer:      otel.GetTracerProvider().Tracer(tracerName),
		Propagators: otel.GetTextMapPropagator(),
	}
}

// ContextFromStub extracts the remote trace context of the invocation.
func (th *TracingHandler) ContextFromStub(stub shim.ChaincodeStubInterface) context.Context {
	transientMap, err := stub.GetTransient()
	if err != nil {
		return context.Background()
	}

	return th.Propagators.Extract(context.Background(), UnpackTransientMap(transientMap))
}

// StartNewSpan starts new span
func (th *TracingHandler) StartNewSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return th.Tracer.Start(ctx, spanName, opts...)
}

// Inject writes the trace context of ctx into a transient map.
func (th *TracingHandler) Inject(ctx context.Context) map[string][]byte {
	carrier := propagation.MapCarrier{}
	th.Propagators.Inject(ctx, carrier)
	return PackToTransientMap(carrier)
}
