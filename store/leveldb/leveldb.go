// Package leveldb stores ledger state in an embedded goleveldb database.
//
// Every operation runs in a Tx: reads see the writes of the same Tx, and the
// writes reach the database in one leveldb.Batch on Commit. Only one Tx is
// open at a time.
package leveldb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

const currentVersion = 1

var versionKey = []byte("\x00tipledger.version")

var ErrTxClosed = errors.New("transaction already closed")

// DB is a ledger state database.
type DB struct {
	sync.Mutex
	db *leveldb.DB
}

// Open opens or creates the database at path.
func Open(path string, readOnly bool) (*DB, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	})
	if err != nil {
		return nil, err
	}
	return setup(db, readOnly)
}

// OpenStorage opens the database over a goleveldb storage, such as
// storage.NewMemStorage.
func OpenStorage(stor storage.Storage) (*DB, error) {
	db, err := leveldb.Open(stor, nil)
	if err != nil {
		return nil, err
	}
	return setup(db, false)
}

func setup(db *leveldb.DB, readOnly bool) (*DB, error) {
	value, err := db.Get(versionKey, nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		if readOnly {
			break
		}
		version := make([]byte, 4)
		binary.BigEndian.PutUint32(version, currentVersion)
		if err = db.Put(versionKey, version, nil); err != nil {
			_ = db.Close()
			return nil, err
		}
	case err != nil:
		_ = db.Close()
		return nil, err
	case len(value) != 4 || binary.BigEndian.Uint32(value) != currentVersion:
		_ = db.Close()
		return nil, fmt.Errorf("incompatible database version: %x", value)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Begin opens a transaction. It blocks while another one is open.
func (d *DB) Begin() *Tx {
	d.Lock()
	return &Tx{
		db:    d,
		batch: new(leveldb.Batch),
		cache: make(map[string][]byte),
	}
}

// Update runs fn in a transaction and commits it when fn succeeds.
func (d *DB) Update(fn func(tx *Tx) error) error {
	tx := d.Begin()
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// View runs fn in a transaction that is never committed.
func (d *DB) View(fn func(tx *Tx) error) error {
	tx := d.Begin()
	defer tx.Rollback()
	return fn(tx)
}

// Tx is one atomic unit of work.
type Tx struct {
	db     *DB
	batch  *leveldb.Batch
	cache  map[string][]byte
	closed bool
}

// GetState returns the value of key, nil if absent.
func (tx *Tx) GetState(key string) ([]byte, error) {
	if tx.closed {
		return nil, ErrTxClosed
	}
	if value, ok := tx.cache[key]; ok {
		return value, nil
	}

	value, err := tx.db.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	return value, err
}

// PutState stages value under key. An empty value deletes the key.
func (tx *Tx) PutState(key string, value []byte) error {
	if tx.closed {
		return ErrTxClosed
	}
	if len(value) == 0 {
		tx.cache[key] = nil
		tx.batch.Delete([]byte(key))
		return nil
	}
	tx.cache[key] = value
	tx.batch.Put([]byte(key), value)
	return nil
}

// Commit writes the staged values and closes the transaction.
func (tx *Tx) Commit() error {
	if tx.closed {
		return ErrTxClosed
	}
	defer tx.close()
	return tx.db.db.Write(tx.batch, &opt.WriteOptions{Sync: true})
}

// Rollback drops the staged values and closes the transaction.
func (tx *Tx) Rollback() {
	if !tx.closed {
		tx.close()
	}
}

func (tx *Tx) close() {
	tx.closed = true
	tx.batch.Reset()
	tx.db.Unlock()
}
