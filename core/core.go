package core

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/anoideaopen/tipledger/core/cachestub"
	"github.com/anoideaopen/tipledger/core/config"
	"github.com/anoideaopen/tipledger/core/contract"
	"github.com/anoideaopen/tipledger/core/logger"
	"github.com/anoideaopen/tipledger/core/telemetry"
	"github.com/anoideaopen/tipledger/hlfcreator"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-protos-go/peer"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/grpc/keepalive"
)

const serviceName = "tipledger"

var ErrMethodNotFound = errors.New("method not found")

// ConfigValidator is implemented by contracts with their own requirements
// on the Init configuration.
type ConfigValidator interface {
	ValidateConfig(cfg *config.Config) error
}

// Chaincode dispatches invocations to the method table of a contract.
type Chaincode struct {
	contract  contract.Router
	methods   map[contract.Function]contract.Method
	tls       shim.TLSProperties
	keepalive *keepalive.ServerParameters
	tracing   *telemetry.TracingHandler
}

// NewCC creates a new chaincode serving the methods of cc together with the
// operational queries.
//
// TLS is configured from CHAINCODE_TLS_KEY[_FILE], CHAINCODE_TLS_CERT[_FILE]
// and CHAINCODE_TLS_CLIENT_CA_CERTS[_FILE] unless WithTLS overrides it, and
// keepalive from CHAINCODE_SERVER_KEEPALIVE unless WithKeepalive overrides it.
func NewCC(
	cc contract.Router,
	chOptions ...ChaincodeOption,
) (*Chaincode, error) {
	opts, err := serverOptionsFromEnv()
	if err != nil {
		return nil, err
	}
	for _, option := range chOptions {
		if option == nil {
			continue
		}
		if err = option(opts); err != nil {
			return nil, fmt.Errorf("reading opts: %w", err)
		}
	}

	methods, err := contract.Merge(cc.Methods(), operationalMethods())
	if err != nil {
		return nil, err
	}
	if err = contract.Validate(methods); err != nil {
		return nil, err
	}

	return &Chaincode{
		contract:  cc,
		methods:   methods,
		tls:       opts.tlsProperties(),
		keepalive: opts.Keepalive,
	}, nil
}

// Method returns the method registered for a chaincode function.
func (cc *Chaincode) Method(functionName string) (contract.Method, error) {
	if method, ok := cc.methods[functionName]; ok {
		return method, nil
	}

	return contract.Method{}, fmt.Errorf("%w: '%s'", ErrMethodNotFound, functionName)
}

// Init validates and stores the JSON configuration. Only an admin may
// instantiate or upgrade the chaincode.
func (cc *Chaincode) Init(stub shim.ChaincodeStubInterface) peer.Response {
	creator, err := stub.GetCreator()
	if err != nil {
		return shim.Error("init: getting creator of transaction: " + err.Error())
	}
	if err = hlfcreator.ValidateAdminCreator(creator); err != nil {
		return shim.Error("init: validating admin creator: " + err.Error())
	}

	args := stub.GetStringArgs()
	if !config.IsJSON(args) {
		return shim.Error("init: expected exactly one JSON config argument")
	}

	cfg, err := config.FromBytes([]byte(args[0]))
	if err != nil {
		return shim.Error("init: validating config: " + err.Error())
	}

	if v, ok := cc.contract.(ConfigValidator); ok {
		if err = v.ValidateConfig(cfg); err != nil {
			return shim.Error("init: validating config: " + err.Error())
		}
	}

	if err = config.Save(stub, []byte(args[0])); err != nil {
		return shim.Error("init: saving config: " + err.Error())
	}

	return shim.Success(nil)
}

// Invoke is called to update or query the ledger in a proposal transaction.
// Given the function name, it delegates the execution to the respective handler.
func (cc *Chaincode) Invoke(stub shim.ChaincodeStubInterface) (r peer.Response) {
	r = shim.Error("panic invoke")
	defer func() {
		if rc := recover(); rc != nil {
			logger.Logger().Errorf("panic invoke\nrc: %v\nstack: %s\n", rc, debug.Stack())
		}
	}()

	start := time.Now()

	cfg, err := config.FromState(stub)
	if err != nil {
		return shim.Error("invoke: loading config: " + err.Error())
	}

	if cc.tracing == nil {
		telemetry.InstallTraceProvider(cfg.TracingCollectorEndpoint, serviceName)
		cc.tracing = telemetry.NewTracingHandler()
	}

	ctx, span := cc.tracing.StartNewSpan(cc.tracing.ContextFromStub(stub), "cc.Invoke")

	transactionID := stub.GetTxID()
	functionName, arguments := stub.GetFunctionAndParameters()

	span.SetAttributes(
		telemetry.Channel(stub.GetChannelID()),
		telemetry.TxID(transactionID),
		telemetry.Method(functionName),
	)
	defer func() {
		span.AddEvent(fmt.Sprintf("end id: %s, name: %s, elapsed time %d ms",
			transactionID,
			functionName,
			time.Since(start).Milliseconds(),
		))
		span.End()
	}()

	if err = cc.ValidateTxID(stub); err != nil {
		errMsg := "invoke: validating transaction ID: " + err.Error()
		span.SetStatus(codes.Error, errMsg)
		return shim.Error(errMsg)
	}

	method, err := cc.Method(functionName)
	if err != nil {
		errMsg := "invoke: finding method: " + err.Error()
		span.SetStatus(codes.Error, errMsg)
		return shim.Error(errMsg)
	}

	if method.Type == contract.MethodTypeQuery {
		span.SetAttributes(telemetry.MethodType(telemetry.MethodQuery))
	} else {
		span.SetAttributes(telemetry.MethodType(telemetry.MethodTx))
		if cfg.RobotSKI != "" {
			creator, err := stub.GetCreator()
			if err != nil {
				errMsg := "invoke: failed to get creator of transaction: " + err.Error()
				span.SetStatus(codes.Error, errMsg)
				return shim.Error(errMsg)
			}
			if err = hlfcreator.ValidateRobotCreator(creator, cfg.RobotSKI); err != nil {
				errMsg := "invoke: unauthorized: " + err.Error()
				span.SetStatus(codes.Error, errMsg)
				return shim.Error(errMsg)
			}
		}
	}

	resp, err := cc.handle(ctx, stub, method, arguments, cfg)
	if err != nil {
		logger.Logger().WithField("method", functionName).WithField("tx_id", transactionID).Warn(err)
		span.SetStatus(codes.Error, err.Error())
		return shim.Error(err.Error())
	}

	span.SetStatus(codes.Ok, "")
	return shim.Success(resp)
}

// handle runs a method on a per-transaction cache. Writes of a transaction
// reach the ledger only when the handler succeeds; writes of a query never do.
func (cc *Chaincode) handle(
	ctx context.Context,
	stub shim.ChaincodeStubInterface,
	method contract.Method,
	args []string,
	cfg *config.Config,
) ([]byte, error) {
	batchStub := cachestub.NewBatchCacheStub(stub)
	txStub := batchStub.NewTxCacheStub(stub.GetTxID())

	sender, args, nonce, err := authenticate(stub, method, args)
	if err != nil {
		return nil, err
	}

	if sender != nil {
		if err = checkNonce(txStub, sender, nonce); err != nil {
			return nil, err
		}
	}

	resp, err := method.Handler(&contract.Call{
		Ctx:    ctx,
		Stub:   txStub,
		Sender: sender,
		Config: cfg,
	}, args)
	if err != nil {
		txStub.Discard()
		return nil, err
	}

	if method.Type == contract.MethodTypeQuery {
		txStub.Discard()
		return resp, nil
	}

	_, events := txStub.Commit()
	for _, event := range events {
		if err = stub.SetEvent(event.Name, event.Value); err != nil {
			return nil, err
		}
	}

	if err = batchStub.Commit(); err != nil {
		return nil, fmt.Errorf("committing state: %w", err)
	}

	return resp, nil
}

// ValidateTxID validates the transaction ID to ensure it is correctly formatted.
func (cc *Chaincode) ValidateTxID(stub shim.ChaincodeStubInterface) error {
	_, err := hex.DecodeString(stub.GetTxID())
	if err != nil {
		return fmt.Errorf("incorrect tx id: %w", err)
	}

	return nil
}
