// Package replay applies a recorded transaction log to a local ledger.
//
// The log is JSON Lines, one transaction per line:
//
//	{"txId": "t1", "timestamp": "2024-01-01T00:00:00Z", "function": "createPatient", "args": ["P1", "Ana", "1990-01-01"]}
//
// Each transaction runs in its own local transaction: its writes are
// committed when the operation succeeds and discarded otherwise. A failed
// transaction does not stop the replay.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/medrex/healthcare-ledger/internal/healthcare"
	"github.com/medrex/healthcare-ledger/pkg/ledger"
	"github.com/medrex/healthcare-ledger/pkg/logger"
	"github.com/medrex/healthcare-ledger/pkg/monitoring"
	"github.com/medrex/healthcare-ledger/pkg/types"
)

const maxLineSize = 4 * 1024 * 1024

// txNamespace seeds the transaction IDs derived for records without one
var txNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:healthcare-ledger:replay"))

// Ledger opens local transactions
type Ledger interface {
	Begin(txID string, ts time.Time) *ledger.LocalTx
}

// Record is one recorded transaction
type Record struct {
	TxID      string   `json:"txId,omitempty"`
	Timestamp string   `json:"timestamp"`
	Function  string   `json:"function"`
	Args      []string `json:"args"`
}

// Result is the outcome of one replayed transaction
type Result struct {
	TxID     string          `json:"txId"`
	Function string          `json:"function"`
	OK       bool            `json:"ok"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
	Code     string          `json:"code,omitempty"`
}

// Summary counts replayed transactions
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Replayer applies transaction logs to a ledger
type Replayer struct {
	ledger  Ledger
	svc     *healthcare.Service
	log     *logger.Logger
	metrics *monitoring.MetricsCollector
}

// NewReplayer creates a replayer. metrics may be nil.
func NewReplayer(l Ledger, log *logger.Logger, metrics *monitoring.MetricsCollector) *Replayer {
	if log == nil {
		log = logger.Discard()
	}
	return &Replayer{
		ledger:  l,
		svc:     healthcare.NewService(log),
		log:     log,
		metrics: metrics,
	}
}

// Run replays every line of in and writes one Result per transaction to
// out. It stops early only on I/O failure or when ctx is done.
func (r *Replayer) Run(ctx context.Context, in io.Reader, out io.Writer) (Summary, error) {
	var summary Summary

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	enc := json.NewEncoder(out)

	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		result := r.Apply(lineNo, []byte(line))
		summary.Total++
		if result.OK {
			summary.Succeeded++
		} else {
			summary.Failed++
		}

		if err := enc.Encode(result); err != nil {
			return summary, fmt.Errorf("failed to write result for line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("failed to read transaction log: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	}).Info("Replay completed")
	return summary, nil
}

// Apply runs the transaction encoded in line, the lineNo-th line of its log
func (r *Replayer) Apply(lineNo int, line []byte) Result {
	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		id := deriveTxID(lineNo, line)
		return r.fail(id, "", types.NewInvalidArgumentError("line %d is not a valid transaction record: %v", lineNo, err))
	}
	if rec.TxID == "" {
		rec.TxID = deriveTxID(lineNo, line)
	}

	ts, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
	if err != nil {
		return r.fail(rec.TxID, rec.Function, types.NewInvalidArgumentError("invalid timestamp %q", rec.Timestamp))
	}

	start := time.Now()
	value, err := r.execute(rec, ts)
	r.observe(rec.Function, start, err)
	if err != nil {
		return r.fail(rec.TxID, rec.Function, err)
	}

	result := Result{TxID: rec.TxID, Function: rec.Function, OK: true}
	if value != nil {
		data, err := json.Marshal(value)
		if err != nil {
			return r.fail(rec.TxID, rec.Function, types.NewInternalError("failed to encode result", err))
		}
		result.Result = data
	}
	return result
}

func (r *Replayer) execute(rec Record, ts time.Time) (interface{}, error) {
	tx := r.ledger.Begin(rec.TxID, ts)

	value, err := Dispatch(r.svc, tx, rec.Function, rec.Args)
	if err != nil {
		tx.Discard()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, types.NewInternalError("failed to commit transaction", err)
	}
	return value, nil
}

func (r *Replayer) observe(function string, start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	code := ""
	if err != nil {
		code = types.CodeOf(err)
	}
	r.metrics.RecordTransaction(function, code, time.Since(start))
}

func (r *Replayer) fail(txID, function string, err error) Result {
	r.log.WithTransaction(txID, function).WithError(err).Warn("Replayed transaction failed")
	return Result{
		TxID:     txID,
		Function: function,
		OK:       false,
		Error:    err.Error(),
		Code:     types.CodeOf(err),
	}
}

func deriveTxID(lineNo int, line []byte) string {
	return uuid.NewSHA1(txNamespace, []byte(fmt.Sprintf("%d\n%s", lineNo, line))).String()
}
