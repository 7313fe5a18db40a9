package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// LevelDBStore is a local world state backed by LevelDB. Each key holds
// the latest committed value.
type LevelDBStore struct {
	db *leveldb.DB
}

// OpenLevelDB opens (or creates) a LevelDB world state at path.
func OpenLevelDB(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}
	return &LevelDBStore{db: db}, nil
}

// NewMemoryStore returns a LevelDB world state held entirely in memory.
func NewMemoryStore() (*LevelDBStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory leveldb: %w", err)
	}
	return &LevelDBStore{db: db}, nil
}

// GetState returns the committed value of key, or nil if absent.
func (s *LevelDBStore) GetState(key string) ([]byte, error) {
	value, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// PutState writes key directly, outside any transaction.
func (s *LevelDBStore) PutState(key string, value []byte) error {
	if key == "" {
		return errors.New("key must not be empty")
	}
	return s.db.Put([]byte(key), value, nil)
}

// Close releases the underlying database.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

// Begin starts a local transaction stamped with ts. Its writes become
// visible only after Commit.
func (s *LevelDBStore) Begin(txID string, ts time.Time) *LocalTx {
	return &LocalTx{
		store:     s,
		txID:      txID,
		timestamp: timestamppb.New(ts),
		writes:    make(map[string][]byte),
	}
}

// Event is a chaincode event set by a transaction.
type Event struct {
	Name    string
	Payload []byte
}

// LocalTx buffers the writes and event of one transaction against a
// LevelDBStore. Reads observe committed state only, as on a Fabric peer.
type LocalTx struct {
	store     *LevelDBStore
	txID      string
	timestamp *timestamppb.Timestamp
	writes    map[string][]byte
	order     []string
	event     *Event
	done      bool
}

func (tx *LocalTx) GetState(key string) ([]byte, error) {
	return tx.store.GetState(key)
}

func (tx *LocalTx) PutState(key string, value []byte) error {
	if tx.done {
		return errors.New("transaction already finished")
	}
	if key == "" {
		return errors.New("key must not be empty")
	}
	if _, seen := tx.writes[key]; !seen {
		tx.order = append(tx.order, key)
	}
	tx.writes[key] = append([]byte(nil), value...)
	return nil
}

func (tx *LocalTx) GetTxTimestamp() (*timestamppb.Timestamp, error) {
	return tx.timestamp, nil
}

func (tx *LocalTx) GetTxID() string {
	return tx.txID
}

// SetEvent records the transaction's event; a later call replaces an
// earlier one.
func (tx *LocalTx) SetEvent(name string, payload []byte) error {
	if name == "" {
		return errors.New("event name can not be empty string")
	}
	tx.event = &Event{Name: name, Payload: payload}
	return nil
}

// Event returns the event set by the transaction, if any.
func (tx *LocalTx) Event() *Event {
	return tx.event
}

// Commit writes all buffered puts as a single batch.
func (tx *LocalTx) Commit() error {
	if tx.done {
		return errors.New("transaction already finished")
	}
	tx.done = true

	batch := new(leveldb.Batch)
	for _, key := range tx.order {
		batch.Put([]byte(key), tx.writes[key])
	}
	if err := tx.store.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to commit transaction %s: %w", tx.txID, err)
	}
	return nil
}

// Discard drops all buffered writes.
func (tx *LocalTx) Discard() {
	tx.done = true
	tx.writes = nil
	tx.order = nil
	tx.event = nil
}
