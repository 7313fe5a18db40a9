package healthcare

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/medrex/healthcare-ledger/pkg/ledger"
	"github.com/medrex/healthcare-ledger/pkg/logger"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// testLedger executes operations the way a peer would: one local
// transaction per call, committed only when the operation succeeds.
type testLedger struct {
	t     *testing.T
	store *ledger.LevelDBStore
	svc   *Service
	seq   int
	last  *ledger.LocalTx
}

func newTestLedger(t *testing.T) *testLedger {
	t.Helper()
	store, err := ledger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return &testLedger{t: t, store: store, svc: NewService(logger.Discard())}
}

func (l *testLedger) run(at time.Time, fn func(tx ledger.Transaction) error) error {
	l.t.Helper()
	l.seq++
	tx := l.store.Begin(fmt.Sprintf("tx%d", l.seq), at)
	l.last = tx
	if err := fn(tx); err != nil {
		tx.Discard()
		return err
	}
	require.NoError(l.t, tx.Commit())
	return nil
}

// raw returns the committed bytes under key.
func (l *testLedger) raw(key string) []byte {
	l.t.Helper()
	data, err := l.store.GetState(key)
	require.NoError(l.t, err)
	return data
}

func (l *testLedger) mustCreatePatient(patientID string) {
	l.t.Helper()
	require.NoError(l.t, l.run(baseTime, func(tx ledger.Transaction) error {
		_, err := l.svc.CreatePatient(tx, patientID, "Ana", "1990-01-01")
		return err
	}))
}

func decodeEvent(t *testing.T, tx *ledger.LocalTx) (string, LedgerEvent) {
	t.Helper()
	ev := tx.Event()
	require.NotNil(t, ev)
	var payload LedgerEvent
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	return ev.Name, payload
}

// mockTx is a scripted transaction handle for failure paths.
type mockTx struct {
	mock.Mock
}

func (m *mockTx) GetState(key string) ([]byte, error) {
	args := m.Called(key)
	value, _ := args.Get(0).([]byte)
	return value, args.Error(1)
}

func (m *mockTx) PutState(key string, value []byte) error {
	args := m.Called(key, value)
	return args.Error(0)
}

func (m *mockTx) GetTxTimestamp() (*timestamppb.Timestamp, error) {
	args := m.Called()
	ts, _ := args.Get(0).(*timestamppb.Timestamp)
	return ts, args.Error(1)
}

func (m *mockTx) GetTxID() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockTx) SetEvent(name string, payload []byte) error {
	args := m.Called(name, payload)
	return args.Error(0)
}
