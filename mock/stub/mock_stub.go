/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: [Default license](LICENSE)
*/

// Package stub provides an in-memory peer stub for running chaincode in unit
// tests: world state, transaction context, creator identity and events.
package stub

import (
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/anoideaopen/tipledger/core/logger"
	"github.com/golang/protobuf/proto" //nolint:staticcheck
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	"github.com/hyperledger/fabric-protos-go/msp"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ErrFuncNotImplemented is returned when a function is not implemented
const ErrFuncNotImplemented = "function %s is not implemented"

// Stub is an implementation of ChaincodeStubInterface for unit testing chaincode.
// Use this instead of ChaincodeStub in your chaincode's unit test calls to Init or Invoke.
type Stub struct {
	cc             shim.Chaincode
	Args           [][]byte          // arguments the stub was called with
	Name           string            // name used for logging
	State          map[string][]byte // committed world state
	TxID           string            // transaction id while being invoked
	TxTimestamp    *timestamppb.Timestamp
	ChannelID      string
	Decorations    map[string][]byte
	signedProposal *pb.SignedProposal
	creator        []byte
	transientMap   map[string][]byte
	event          *pb.ChaincodeEvent
	log            *logrus.Entry
}

// NewMockStub returns a stub serving cc with an empty world state.
func NewMockStub(name string, cc shim.Chaincode) *Stub {
	return &Stub{
		cc:           cc,
		Name:         name,
		State:        make(map[string][]byte),
		Decorations:  make(map[string][]byte),
		transientMap: make(map[string][]byte),
		log:          logger.Logger().WithField("stub", name),
	}
}

// GetTxID returns the transaction ID for the current chaincode invocation request.
func (stub *Stub) GetTxID() string {
	return stub.TxID
}

// GetChannelID returns the channel ID for the proposal for the current chaincode invocation request.
func (stub *Stub) GetChannelID() string {
	return stub.ChannelID
}

// GetArgs returns the arguments for the chaincode invocation request.
func (stub *Stub) GetArgs() [][]byte {
	return stub.Args
}

// GetStringArgs returns the arguments for the chaincode invocation request as strings.
func (stub *Stub) GetStringArgs() []string {
	strargs := make([]string, 0, len(stub.Args))
	for _, barg := range stub.Args {
		strargs = append(strargs, string(barg))
	}
	return strargs
}

// GetFunctionAndParameters returns the first argument as the function name and the rest of the arguments as parameters in a string array.
func (stub *Stub) GetFunctionAndParameters() (function string, params []string) {
	allArgs := stub.GetStringArgs()
	params = []string{}
	if len(allArgs) >= 1 {
		function = allArgs[0]
		params = allArgs[1:]
	}
	return function, params
}

// MockTransactionStart starts a transaction with id txID.
// Stub doesn't support concurrent transactions.
func (stub *Stub) MockTransactionStart(txID string) {
	stub.TxID = txID
	stub.signedProposal = &pb.SignedProposal{}
	stub.TxTimestamp = timestamppb.Now()
	stub.event = nil
}

// MockTransactionEnd ends a mocked transaction, clearing the transaction id.
func (stub *Stub) MockTransactionEnd(_ string) {
	stub.signedProposal = nil
	stub.TxID = ""
}

// MockInit initializes this chaincode, also starts and ends a transaction.
func (stub *Stub) MockInit(uuid string, args [][]byte) pb.Response {
	stub.Args = args
	stub.MockTransactionStart(uuid)
	if stub.cc == nil {
		panic(errors.New("can't init stub (shim.Chaincode) when stub.cc is nil"))
	}
	res := stub.cc.Init(stub)
	stub.MockTransactionEnd(uuid)
	return res
}

// MockInvoke invokes this chaincode, also starts and ends a transaction.
func (stub *Stub) MockInvoke(uuid string, args [][]byte) pb.Response {
	stub.Args = args
	stub.MockTransactionStart(uuid)
	if stub.cc == nil {
		panic(errors.New("can't invoke stub (shim.Chaincode) when stub.cc is nil"))
	}
	res := stub.cc.Invoke(stub)
	stub.MockTransactionEnd(uuid)
	return res
}

// MockInvokeWithSignedProposal invokes this chaincode with a signed proposal
// whose payload carries the transient map.
func (stub *Stub) MockInvokeWithSignedProposal(uuid string, args [][]byte, sp *pb.SignedProposal) pb.Response {
	var (
		proposal pb.Proposal
		payload  pb.ChaincodeProposalPayload
	)
	if err := proto.Unmarshal(sp.GetProposalBytes(), &proposal); err != nil {
		return pb.Response{Message: "bad proposal"}
	}
	if err := proto.Unmarshal(proposal.GetPayload(), &payload); err != nil {
		return pb.Response{Message: "bad payload"}
	}
	stub.transientMap = payload.GetTransientMap()
	stub.Args = args
	stub.MockTransactionStart(uuid)
	stub.signedProposal = sp
	if stub.cc == nil {
		panic(errors.New("can't invoke stub (shim.Chaincode) when stub.cc is nil"))
	}
	res := stub.cc.Invoke(stub)
	stub.MockTransactionEnd(uuid)
	return res
}

// GetDecorations returns the transaction decorations.
func (stub *Stub) GetDecorations() map[string][]byte {
	return stub.Decorations
}

// GetState retrieves the value for a given key from the Ledger
func (stub *Stub) GetState(key string) ([]byte, error) {
	return stub.State[key], nil
}

// PutState writes the specified `value` and `key` into the Ledger.
// An empty value deletes the key.
func (stub *Stub) PutState(key string, value []byte) error {
	if stub.TxID == "" {
		err := errors.New("cannot PutState without a transactions - call stub.MockTransactionStart()?")
		stub.log.Error(err)
		return err
	}

	if len(value) == 0 {
		return stub.DelState(key)
	}

	stub.log.Debugf("putting %q", key)
	stub.State[key] = value
	return nil
}

// DelState removes the specified `key` and its value from the Ledger.
func (stub *Stub) DelState(key string) error {
	stub.log.Debugf("deleting %q", key)
	delete(stub.State, key)
	return nil
}

// GetStateByRange returns a range iterator over a set of keys in the Ledger.
func (stub *Stub) GetStateByRange(startKey, endKey string) (shim.StateQueryIteratorInterface, error) {
	if err := validateSimpleKeys(startKey, endKey); err != nil {
		return nil, err
	}
	return stub.newIterator(startKey, endKey), nil
}

// GetStateByPartialCompositeKey returns an iterator over every composite key
// with the given prefix.
func (stub *Stub) GetStateByPartialCompositeKey(objectType string, attributes []string) (shim.StateQueryIteratorInterface, error) {
	partialCompositeKey, err := stub.CreateCompositeKey(objectType, attributes)
	if err != nil {
		return nil, err
	}
	return stub.newIterator(partialCompositeKey, partialCompositeKey+string(utf8.MaxRune)), nil
}

// GetStateByRangeWithPagination returns one page of a range iterator.
func (stub *Stub) GetStateByRangeWithPagination(
	startKey, endKey string,
	pageSize int32,
	bookmark string,
) (shim.StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {
	if err := validateSimpleKeys(startKey, endKey); err != nil {
		return nil, nil, err
	}
	if bookmark != "" {
		startKey = bookmark
	}
	iter, meta := stub.newPage(startKey, endKey, pageSize)
	return iter, meta, nil
}

// GetStateByPartialCompositeKeyWithPagination returns one page of a partial
// composite key iterator.
func (stub *Stub) GetStateByPartialCompositeKeyWithPagination(
	objectType string,
	keys []string,
	pageSize int32,
	bookmark string,
) (shim.StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {
	partialCompositeKey, err := stub.CreateCompositeKey(objectType, keys)
	if err != nil {
		return nil, nil, err
	}
	if bookmark == "" {
		bookmark = partialCompositeKey
	}
	iter, meta := stub.newPage(bookmark, partialCompositeKey+string(utf8.MaxRune), pageSize)
	return iter, meta, nil
}

// GetQueryResult is not supported: the mock has no rich query engine.
func (stub *Stub) GetQueryResult(_ string) (shim.StateQueryIteratorInterface, error) {
	return nil, fmt.Errorf(ErrFuncNotImplemented, "GetQueryResult")
}

// GetQueryResultWithPagination is not supported: the mock has no rich query engine.
func (stub *Stub) GetQueryResultWithPagination(_ string, _ int32, _ string) (shim.StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {
	return nil, nil, fmt.Errorf(ErrFuncNotImplemented, "GetQueryResultWithPagination")
}

// GetHistoryForKey is not supported.
func (stub *Stub) GetHistoryForKey(_ string) (shim.HistoryQueryIteratorInterface, error) {
	return nil, fmt.Errorf(ErrFuncNotImplemented, "GetHistoryForKey")
}

// CreateCompositeKey combines the list of attributes
// to form a composite key.
func (stub *Stub) CreateCompositeKey(objectType string, attributes []string) (string, error) {
	return shim.CreateCompositeKey(objectType, attributes)
}

// SplitCompositeKey splits the composite key into attributes
// on which the composite key was formed.
func (stub *Stub) SplitCompositeKey(compositeKey string) (string, []string, error) {
	var components []string
	componentIndex := 1
	for i := 1; i < len(compositeKey); i++ {
		if compositeKey[i] == 0 {
			components = append(components, compositeKey[componentIndex:i])
			componentIndex = i + 1
		}
	}
	if len(components) == 0 {
		return "", nil, fmt.Errorf("invalid composite key %q", compositeKey)
	}
	return components[0], components[1:], nil
}

// InvokeChaincode is not supported: the ledger is a single chaincode.
func (stub *Stub) InvokeChaincode(chaincodeName string, _ [][]byte, _ string) pb.Response {
	return shim.Error(fmt.Sprintf(ErrFuncNotImplemented, "InvokeChaincode "+chaincodeName))
}

// GetPrivateData is not supported.
func (stub *Stub) GetPrivateData(_, _ string) ([]byte, error) {
	return nil, fmt.Errorf(ErrFuncNotImplemented, "GetPrivateData")
}

// GetPrivateDataHash is not supported.
func (stub *Stub) GetPrivateDataHash(_, _ string) ([]byte, error) {
	return nil, fmt.Errorf(ErrFuncNotImplemented, "GetPrivateDataHash")
}

// PutPrivateData is not supported.
func (stub *Stub) PutPrivateData(_, _ string, _ []byte) error {
	return fmt.Errorf(ErrFuncNotImplemented, "PutPrivateData")
}

// DelPrivateData is not supported.
func (stub *Stub) DelPrivateData(_, _ string) error {
	return fmt.Errorf(ErrFuncNotImplemented, "DelPrivateData")
}

// PurgePrivateData is not supported.
func (stub *Stub) PurgePrivateData(_, _ string) error {
	return fmt.Errorf(ErrFuncNotImplemented, "PurgePrivateData")
}

// GetPrivateDataByRange is not supported.
func (stub *Stub) GetPrivateDataByRange(_, _, _ string) (shim.StateQueryIteratorInterface, error) {
	return nil, fmt.Errorf(ErrFuncNotImplemented, "GetPrivateDataByRange")
}

// GetPrivateDataByPartialCompositeKey is not supported.
func (stub *Stub) GetPrivateDataByPartialCompositeKey(_, _ string, _ []string) (shim.StateQueryIteratorInterface, error) {
	return nil, fmt.Errorf(ErrFuncNotImplemented, "GetPrivateDataByPartialCompositeKey")
}

// GetPrivateDataQueryResult is not supported.
func (stub *Stub) GetPrivateDataQueryResult(_, _ string) (shim.StateQueryIteratorInterface, error) {
	return nil, fmt.Errorf(ErrFuncNotImplemented, "GetPrivateDataQueryResult")
}

// SetStateValidationParameter is not supported.
func (stub *Stub) SetStateValidationParameter(_ string, _ []byte) error {
	return fmt.Errorf(ErrFuncNotImplemented, "SetStateValidationParameter")
}

// GetStateValidationParameter is not supported.
func (stub *Stub) GetStateValidationParameter(_ string) ([]byte, error) {
	return nil, fmt.Errorf(ErrFuncNotImplemented, "GetStateValidationParameter")
}

// SetPrivateDataValidationParameter is not supported.
func (stub *Stub) SetPrivateDataValidationParameter(_, _ string, _ []byte) error {
	return fmt.Errorf(ErrFuncNotImplemented, "SetPrivateDataValidationParameter")
}

// GetPrivateDataValidationParameter is not supported.
func (stub *Stub) GetPrivateDataValidationParameter(_, _ string) ([]byte, error) {
	return nil, fmt.Errorf(ErrFuncNotImplemented, "GetPrivateDataValidationParameter")
}

// SetCreator sets creator
func (stub *Stub) SetCreator(creator []byte) {
	stub.creator = creator
}

// SetCreatorCert sets creator cert
func (stub *Stub) SetCreatorCert(creatorMSP string, creatorCert []byte) error {
	creator, err := BuildCreator(creatorMSP, creatorCert)
	if err != nil {
		return err
	}
	stub.creator = creator
	return nil
}

// BuildCreator returns the serialized identity of a DER certificate.
func BuildCreator(creatorMSP string, creatorCert []byte) ([]byte, error) {
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: creatorCert})
	if pemBytes == nil {
		return nil, errors.New("encoding of identity failed")
	}

	return proto.Marshal(&msp.SerializedIdentity{Mspid: creatorMSP, IdBytes: pemBytes})
}

// SetAdminCreatorCert sets admin certificate as creator certificate.
func (stub *Stub) SetAdminCreatorCert(msp string) error {
	return stub.setEncodedCreatorCert(msp, adminCert)
}

// SetDefaultCreatorCert sets default (not admin) certificate as creator certificate.
func (stub *Stub) SetDefaultCreatorCert(msp string) error {
	return stub.setEncodedCreatorCert(msp, defaultCert)
}

func (stub *Stub) setEncodedCreatorCert(msp string, encoded string) error {
	cert, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decoding certificate: %w", err)
	}
	if err = stub.SetCreatorCert(msp, cert); err != nil {
		return fmt.Errorf("setting creator: %w", err)
	}
	return nil
}

// GetCreator returns creator.
func (stub *Stub) GetCreator() ([]byte, error) {
	return stub.creator, nil
}

// GetTransient returns the transient map of the proposal.
func (stub *Stub) GetTransient() (map[string][]byte, error) {
	return stub.transientMap, nil
}

// GetBinding is not supported.
func (stub *Stub) GetBinding() ([]byte, error) {
	return nil, fmt.Errorf(ErrFuncNotImplemented, "GetBinding")
}

// GetSignedProposal returns the proposal of the transaction.
func (stub *Stub) GetSignedProposal() (*pb.SignedProposal, error) {
	return stub.signedProposal, nil
}

// GetArgsSlice is not supported.
func (stub *Stub) GetArgsSlice() ([]byte, error) {
	return nil, fmt.Errorf(ErrFuncNotImplemented, "GetArgsSlice")
}

// GetTxTimestamp returns timestamp.
func (stub *Stub) GetTxTimestamp() (*timestamppb.Timestamp, error) {
	if stub.TxTimestamp == nil {
		return nil, errors.New("timestamp was not set")
	}
	return stub.TxTimestamp, nil
}

// SetEvent sets the event of the transaction. Like the peer, a later call
// replaces an earlier one.
func (stub *Stub) SetEvent(name string, payload []byte) error {
	if name == "" {
		return errors.New("event name can not be empty string")
	}
	stub.event = &pb.ChaincodeEvent{EventName: name, Payload: payload, TxId: stub.TxID}
	return nil
}

// Event returns the event set by the last transaction, nil if none.
func (stub *Stub) Event() *pb.ChaincodeEvent {
	return stub.event
}

// sortedKeys returns the keys in [startKey, endKey) in lexical order. Empty
// bounds select every key.
func (stub *Stub) sortedKeys(startKey, endKey string) []string {
	keys := make([]string, 0, len(stub.State))
	for key := range stub.State {
		if startKey == "" && endKey == "" {
			keys = append(keys, key)
			continue
		}
		if strings.Compare(key, startKey) >= 0 && (endKey == "" || strings.Compare(key, endKey) < 0) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (stub *Stub) newIterator(startKey, endKey string) *StateIterator {
	return &StateIterator{stub: stub, keys: stub.sortedKeys(startKey, endKey)}
}

func (stub *Stub) newPage(startKey, endKey string, pageSize int32) (*StateIterator, *pb.QueryResponseMetadata) {
	keys := stub.sortedKeys(startKey, endKey)
	meta := &pb.QueryResponseMetadata{}
	if int(pageSize) < len(keys) {
		meta.Bookmark = keys[pageSize]
		keys = keys[:pageSize]
	}
	meta.FetchedRecordsCount = int32(len(keys))
	return &StateIterator{stub: stub, keys: keys}, meta
}

// StateIterator iterates over a snapshot of state keys.
type StateIterator struct {
	stub   *Stub
	keys   []string
	closed bool
}

// HasNext returns true if the range query iterator contains additional keys
// and values.
func (iter *StateIterator) HasNext() bool {
	return !iter.closed && len(iter.keys) > 0
}

// Next returns the next key and value in the range query iterator.
func (iter *StateIterator) Next() (*queryresult.KV, error) {
	if iter.closed {
		return nil, errors.New("StateIterator.Next() called after Close()")
	}
	if len(iter.keys) == 0 {
		return nil, errors.New("StateIterator.Next() called when it does not HaveNext()")
	}

	key := iter.keys[0]
	iter.keys = iter.keys[1:]
	value, err := iter.stub.GetState(key)
	return &queryresult.KV{Key: key, Value: value}, err
}

// Close closes the range query iterator.
func (iter *StateIterator) Close() error {
	if iter.closed {
		return errors.New("StateIterator.Close() called after Close()")
	}
	iter.closed = true
	iter.keys = nil
	return nil
}

func validateSimpleKeys(simpleKeys ...string) error {
	for _, key := range simpleKeys {
		if len(key) > 0 && key[0] == 0 {
			return errors.New("first character of the key [" + key + "] contains a null character which is not allowed")
		}
	}
	return nil
}
