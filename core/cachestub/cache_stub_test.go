package cachestub_test

import (
	"testing"

	"github.com/anoideaopen/tipledger/core/cachestub"
	"github.com/stretchr/testify/require"
)

const (
	valKey1 = "KEY1"
	valKey2 = "KEY2"
	valKey3 = "KEY3"

	valKey1Value1 = "key1_value1"
	valKey1Value2 = "key1_value2"
	valKey2Value1 = "key2_value1"
)

func TestBatchStub(t *testing.T) {
	t.Run("GetState reads through", func(t *testing.T) {
		stateStub := newMockStub()
		stateStub.state[valKey1] = []byte(valKey1Value1)
		batchStub := cachestub.NewBatchCacheStub(stateStub)

		result, err := batchStub.GetState(valKey1)
		require.NoError(t, err)
		require.Equal(t, []byte(valKey1Value1), result)
		require.Equal(t, 1, stateStub.gets)
	})

	t.Run("PutState is buffered until commit", func(t *testing.T) {
		stateStub := newMockStub()
		batchStub := cachestub.NewBatchCacheStub(stateStub)

		require.NoError(t, batchStub.PutState(valKey1, []byte(valKey1Value1)))
		require.NoError(t, batchStub.PutState(valKey1, []byte(valKey1Value2)))
		require.NoError(t, batchStub.PutState(valKey2, []byte(valKey2Value1)))

		result, err := batchStub.GetState(valKey1)
		require.NoError(t, err)
		require.Equal(t, []byte(valKey1Value2), result)
		require.Equal(t, 0, stateStub.puts)

		require.NoError(t, batchStub.Commit())
		require.Equal(t, 0, stateStub.gets)
		require.Equal(t, 2, stateStub.puts)
		require.Equal(t, []byte(valKey1Value2), stateStub.state[valKey1])
	})

	t.Run("DelState is buffered until commit", func(t *testing.T) {
		stateStub := newMockStub()
		stateStub.state[valKey1] = []byte(valKey1Value1)
		batchStub := cachestub.NewBatchCacheStub(stateStub)

		require.NoError(t, batchStub.DelState(valKey1))
		result, err := batchStub.GetState(valKey1)
		require.NoError(t, err)
		require.Nil(t, result)
		require.Contains(t, stateStub.state, valKey1)

		require.NoError(t, batchStub.Commit())
		require.Equal(t, 1, stateStub.dels)
		require.NotContains(t, stateStub.state, valKey1)
	})

	t.Run("[negative] PutState error on commit", func(t *testing.T) {
		stateStub := newMockStub()
		stateStub.failPut = true
		batchStub := cachestub.NewBatchCacheStub(stateStub)

		require.NoError(t, batchStub.PutState(valKey1, []byte(valKey1Value1)))
		require.ErrorIs(t, batchStub.Commit(), errTest)
	})
}

func TestTxStub(t *testing.T) {
	t.Run("commit moves writes to batch", func(t *testing.T) {
		stateStub := newMockStub()
		stateStub.state[valKey3] = []byte("old")
		batchStub := cachestub.NewBatchCacheStub(stateStub)
		txStub := batchStub.NewTxCacheStub("tx1")
		require.Equal(t, "tx1", txStub.GetTxID())

		require.NoError(t, txStub.PutState(valKey2, []byte(valKey2Value1)))
		require.NoError(t, txStub.PutState(valKey1, []byte(valKey1Value1)))
		require.NoError(t, txStub.DelState(valKey3))
		require.NoError(t, txStub.SetEvent("tip", []byte("payload")))

		result, err := txStub.GetState(valKey3)
		require.NoError(t, err)
		require.Nil(t, result)

		result, err = batchStub.GetState(valKey1)
		require.NoError(t, err)
		require.Nil(t, result)

		writes, events := txStub.Commit()
		require.Len(t, writes, 3)
		require.Equal(t, valKey1, writes[0].Key)
		require.Equal(t, valKey2, writes[1].Key)
		require.Equal(t, valKey3, writes[2].Key)
		require.True(t, writes[2].IsDeleted)
		require.Len(t, events, 1)
		require.Equal(t, "tip", events[0].Name)

		result, err = batchStub.GetState(valKey1)
		require.NoError(t, err)
		require.Equal(t, []byte(valKey1Value1), result)

		require.NoError(t, batchStub.Commit())
		require.Equal(t, []byte(valKey2Value1), stateStub.state[valKey2])
		require.NotContains(t, stateStub.state, valKey3)
	})

	t.Run("discard drops writes", func(t *testing.T) {
		stateStub := newMockStub()
		stateStub.state[valKey1] = []byte(valKey1Value1)
		batchStub := cachestub.NewBatchCacheStub(stateStub)
		txStub := batchStub.NewTxCacheStub("tx2")

		require.NoError(t, txStub.PutState(valKey1, []byte(valKey1Value2)))
		txStub.Discard()

		result, err := txStub.GetState(valKey1)
		require.NoError(t, err)
		require.Equal(t, []byte(valKey1Value1), result)

		writes, events := txStub.Commit()
		require.Empty(t, writes)
		require.Empty(t, events)
	})
}
