// Package cachestub buffers chaincode state writes so that a failed
// operation leaves the ledger untouched.
package cachestub

import (
	"sort"

	"github.com/hyperledger/fabric-chaincode-go/shim"
)

// WriteElement is a buffered state write.
type WriteElement struct {
	Key       string
	Value     []byte
	IsDeleted bool
}

// Event is a buffered chaincode event.
type Event struct {
	Name  string
	Value []byte
}

// writeSet holds the last write of every key.
type writeSet map[string]*WriteElement

func (ws writeSet) get(key string) ([]byte, bool) {
	element, ok := ws[key]
	if !ok {
		return nil, false
	}
	if element.IsDeleted {
		return nil, true
	}
	return element.Value, true
}

func (ws writeSet) put(key string, value []byte) {
	ws[key] = &WriteElement{Key: key, Value: value}
}

func (ws writeSet) del(key string) {
	ws[key] = &WriteElement{Key: key, IsDeleted: true}
}

// sorted returns the writes ordered by key.
func (ws writeSet) sorted() []*WriteElement {
	writes := make([]*WriteElement, 0, len(ws))
	for _, element := range ws {
		writes = append(writes, element)
	}
	sort.Slice(writes, func(i, j int) bool { return writes[i].Key < writes[j].Key })
	return writes
}

// BatchCacheStub collects the writes of the committed transactions of a
// batch on top of the chaincode state.
type BatchCacheStub struct {
	shim.ChaincodeStubInterface
	writes writeSet
}

func NewBatchCacheStub(stub shim.ChaincodeStubInterface) *BatchCacheStub {
	return &BatchCacheStub{
		ChaincodeStubInterface: stub,
		writes:                 make(writeSet),
	}
}

// GetState reads through the batch writes to the chaincode state.
func (bs *BatchCacheStub) GetState(key string) ([]byte, error) {
	if value, ok := bs.writes.get(key); ok {
		return value, nil
	}
	return bs.ChaincodeStubInterface.GetState(key)
}

func (bs *BatchCacheStub) PutState(key string, value []byte) error {
	bs.writes.put(key, value)
	return nil
}

func (bs *BatchCacheStub) DelState(key string) error {
	bs.writes.del(key)
	return nil
}

// Commit flushes the batch writes to the chaincode state in key order.
func (bs *BatchCacheStub) Commit() error {
	for _, element := range bs.writes.sorted() {
		var err error
		if element.IsDeleted {
			err = bs.ChaincodeStubInterface.DelState(element.Key)
		} else {
			err = bs.ChaincodeStubInterface.PutState(element.Key, element.Value)
		}
		if err != nil {
			return err
		}
	}
	bs.writes = make(writeSet)
	return nil
}
