package telemetry

import "go.opentelemetry.io/otel/propagation"

// PackToTransientMap copies the trace carrier into a proposal transient map.
func PackToTransientMap(carrier propagation.MapCarrier) map[string][]byte {
	transient := make(map[string][]byte, len(carrier))
	for k, v := range carrier {
		transient[k] = []byte(v)
	}
	return transient
}

// UnpackTransientMap reads a trace carrier back from a transient map. Keys
// other than the propagation headers are carried along and ignored by the
// propagators.
func UnpackTransientMap(transient map[string][]byte) propagation.MapCarrier {
	carrier := make(propagation.MapCarrier, len(transient))
	for k, v := range transient {
		carrier[k] = string(v)
	}
	return carrier
}
