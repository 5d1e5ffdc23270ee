// Package contract describes the method table a chaincode exposes.
package contract

import (
	"context"
	"fmt"

	"github.com/anoideaopen/tipledger/core/config"
	"github.com/anoideaopen/tipledger/core/types"
	"github.com/hyperledger/fabric-chaincode-go/shim"
)

// MethodType represents the type of a method in the contract.
type MethodType int

const (
	MethodTypeTransaction MethodType = iota // Writes are committed when the handler succeeds.
	MethodTypeQuery                         // Writes are always discarded.
)

func (t MethodType) String() string {
	if t == MethodTypeQuery {
		return "query"
	}
	return "tx"
}

// Function represents the name of a chaincode function.
type Function = string

// Call is the context a method handler runs in.
type Call struct {
	Ctx    context.Context
	Stub   shim.ChaincodeStubInterface
	Sender *types.Sender // nil unless the method requires auth
	Config *config.Config
}

// Handler executes a method with its positional arguments.
type Handler func(call *Call, args []string) ([]byte, error)

// Method represents an endpoint of a contract.
type Method struct {
	Type          MethodType // The type of the method.
	ChaincodeFunc Function   // The name of the chaincode function being called.
	RequiresAuth  bool       // Indicates if the method must be signed by one co-signer.
	NumArgs       int        // Number of positional arguments, excluding the auth envelope.
	Handler       Handler
}

// Router exposes the methods of a contract keyed by their chaincode function names.
type Router interface {
	Methods() map[Function]Method
}

// Validate checks a method table for inconsistent entries.
func Validate(methods map[Function]Method) error {
	for fn, m := range methods {
		switch {
		case fn == "" || fn != m.ChaincodeFunc:
			return fmt.Errorf("method '%s' is registered as '%s'", m.ChaincodeFunc, fn)
		case m.Handler == nil:
			return fmt.Errorf("method '%s' has no handler", fn)
		case m.NumArgs < 0:
			return fmt.Errorf("method '%s' has negative number of arguments", fn)
		}
	}
	return nil
}

// Merge joins method tables, failing on duplicate functions.
func Merge(tables ...map[Function]Method) (map[Function]Method, error) {
	out := make(map[Function]Method)
	for _, table := range tables {
		for fn, m := range table {
			if _, ok := out[fn]; ok {
				return nil, fmt.Errorf("duplicate method '%s'", fn)
			}
			out[fn] = m
		}
	}
	return out, nil
}
