package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys of an invocation.
const (
	methodTypeKey = attribute.Key("method_type")
	methodKey     = attribute.Key("method")
	channelKey    = attribute.Key("channel")
	txIDKey       = attribute.Key("tx_id")
)

type MethodTypeNum int

const (
	MethodUnknown MethodTypeNum = iota
	MethodQuery
	MethodTx
)

func (t MethodTypeNum) String() string {
	switch t {
	case MethodQuery:
		return "query"
	case MethodTx:
		return "tx"
	default:
		return "unknown"
	}
}

func MethodType(t MethodTypeNum) attribute.KeyValue { return methodTypeKey.String(t.String()) }

func Method(name string) attribute.KeyValue { return methodKey.String(name) }

func Channel(name string) attribute.KeyValue { return channelKey.String(name) }

func TxID(id string) attribute.KeyValue { return txIDKey.String(id) }
