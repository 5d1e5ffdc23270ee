package leveldb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

func openMem(t *testing.T) *DB {
	db, err := OpenStorage(storage.NewMemStorage())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func get(t *testing.T, db *DB, key string) []byte {
	var value []byte
	require.NoError(t, db.View(func(tx *Tx) (err error) {
		value, err = tx.GetState(key)
		return err
	}))
	return value
}

func TestUpdateCommits(t *testing.T) {
	db := openMem(t)

	require.NoError(t, db.Update(func(tx *Tx) error {
		require.NoError(t, tx.PutState("a", []byte("1")))
		value, err := tx.GetState("a")
		require.NoError(t, err)
		require.Equal(t, []byte("1"), value)
		return tx.PutState("b", []byte("2"))
	}))

	require.Equal(t, []byte("1"), get(t, db, "a"))
	require.Equal(t, []byte("2"), get(t, db, "b"))
	require.Nil(t, get(t, db, "missing"))
}

func TestUpdateRollsBackOnError(t *testing.T) {
	db := openMem(t)
	failure := errors.New("failure")

	err := db.Update(func(tx *Tx) error {
		require.NoError(t, tx.PutState("a", []byte("1")))
		return failure
	})
	require.ErrorIs(t, err, failure)
	require.Nil(t, get(t, db, "a"))
}

func TestUpdateReleasesLockOnPanic(t *testing.T) {
	db := openMem(t)

	require.Panics(t, func() {
		_ = db.Update(func(tx *Tx) error {
			require.NoError(t, tx.PutState("a", []byte("1")))
			panic("boom")
		})
	})

	require.NoError(t, db.Update(func(tx *Tx) error { return tx.PutState("b", []byte("2")) }))
	require.Nil(t, get(t, db, "a"))
	require.Equal(t, []byte("2"), get(t, db, "b"))
}

func TestEmptyValueDeletes(t *testing.T) {
	db := openMem(t)
	require.NoError(t, db.Update(func(tx *Tx) error { return tx.PutState("a", []byte("1")) }))

	require.NoError(t, db.Update(func(tx *Tx) error {
		require.NoError(t, tx.PutState("a", nil))
		value, err := tx.GetState("a")
		require.NoError(t, err)
		require.Empty(t, value)
		return nil
	}))
	require.Nil(t, get(t, db, "a"))
}

func TestClosedTx(t *testing.T) {
	db := openMem(t)

	tx := db.Begin()
	require.NoError(t, tx.Commit())
	require.ErrorIs(t, tx.Commit(), ErrTxClosed)
	require.ErrorIs(t, tx.PutState("a", []byte("1")), ErrTxClosed)
	_, err := tx.GetState("a")
	require.ErrorIs(t, err, ErrTxClosed)
	tx.Rollback()

	// the lock was released exactly once
	require.NoError(t, db.Update(func(*Tx) error { return nil }))
}

func TestReopenKeepsState(t *testing.T) {
	stor := storage.NewMemStorage()
	db, err := OpenStorage(stor)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *Tx) error { return tx.PutState("a", []byte("1")) }))
	require.NoError(t, db.Close())

	db, err = OpenStorage(stor)
	require.NoError(t, err)
	defer db.Close()
	require.Equal(t, []byte("1"), get(t, db, "a"))
}
