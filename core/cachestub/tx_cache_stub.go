package cachestub

import "sort"

// TxCacheStub buffers the writes and events of one transaction. Nothing
// reaches the batch until Commit.
type TxCacheStub struct {
	*BatchCacheStub
	txID   string
	writes writeSet
	events map[string][]byte
}

func (bs *BatchCacheStub) NewTxCacheStub(txID string) *TxCacheStub {
	return &TxCacheStub{
		BatchCacheStub: bs,
		txID:           txID,
		writes:         make(writeSet),
		events:         make(map[string][]byte),
	}
}

func (ts *TxCacheStub) GetTxID() string {
	return ts.txID
}

// GetState reads through the transaction writes to the batch.
func (ts *TxCacheStub) GetState(key string) ([]byte, error) {
	if value, ok := ts.writes.get(key); ok {
		return value, nil
	}
	return ts.BatchCacheStub.GetState(key)
}

func (ts *TxCacheStub) PutState(key string, value []byte) error {
	ts.writes.put(key, value)
	return nil
}

func (ts *TxCacheStub) DelState(key string) error {
	ts.writes.del(key)
	return nil
}

// SetEvent keeps the last payload set under name.
func (ts *TxCacheStub) SetEvent(name string, payload []byte) error {
	ts.events[name] = payload
	return nil
}

// Discard drops every buffered write and event of the transaction.
func (ts *TxCacheStub) Discard() {
	ts.writes = make(writeSet)
	ts.events = make(map[string][]byte)
}

// Commit moves the transaction writes into the batch and returns them with
// the events, both ordered by key.
func (ts *TxCacheStub) Commit() ([]*WriteElement, []*Event) {
	writes := ts.writes.sorted()
	for _, element := range writes {
		ts.BatchCacheStub.writes[element.Key] = element
	}

	events := make([]*Event, 0, len(ts.events))
	for name, payload := range ts.events {
		events = append(events, &Event{Name: name, Value: payload})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Name < events[j].Name })

	ts.Discard()
	return writes, events
}
