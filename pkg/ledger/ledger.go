// Package ledger defines the state-access capabilities a transaction needs
// from its host: a key/value world state, the deterministic transaction
// clock, and chaincode events. The Fabric chaincode stub satisfies
// Transaction as-is; LevelDBStore provides a local implementation.
package ledger

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"
)

// TimestampLayout is the ISO-8601 form used for every server-stamped time.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Store is the world state as seen by one transaction. GetState returns a
// nil value and no error for an absent key.
type Store interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
}

// Clock yields the timestamp of the currently executing transaction. It is
// identical on every replica executing that transaction.
type Clock interface {
	GetTxTimestamp() (*timestamppb.Timestamp, error)
}

// Transaction is the handle every ledger operation receives.
type Transaction interface {
	Store
	Clock
	GetTxID() string
	SetEvent(name string, payload []byte) error
}

// TxTime returns the transaction timestamp in UTC.
func TxTime(c Clock) (time.Time, error) {
	ts, err := c.GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get transaction timestamp: %w", err)
	}
	if err := ts.CheckValid(); err != nil {
		return time.Time{}, fmt.Errorf("invalid transaction timestamp: %w", err)
	}
	return ts.AsTime().UTC(), nil
}

// FormatTimestamp renders t in TimestampLayout, always in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
