package cachestub_test

import (
	"errors"

	"github.com/hyperledger/fabric-chaincode-go/shimtest"
)

var errTest = errors.New("test error")

type mockStub struct {
	shimtest.MockStub
	state   map[string][]byte
	failPut bool
	gets    int
	puts    int
	dels    int
}

func newMockStub() *mockStub {
	return &mockStub{state: make(map[string][]byte)}
}

func (stub *mockStub) GetState(key string) ([]byte, error) {
	stub.gets++
	return stub.state[key], nil
}

func (stub *mockStub) PutState(key string, value []byte) error {
	stub.puts++
	if stub.failPut {
		return errTest
	}
	stub.state[key] = value
	return nil
}

func (stub *mockStub) DelState(key string) error {
	stub.dels++
	delete(stub.state, key)
	return nil
}
