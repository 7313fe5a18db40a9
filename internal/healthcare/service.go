// Package healthcare implements the deterministic state transitions of the
// healthcare ledger: patient records, access consents, drug batch
// provenance, professional credentials, payment claims and research
// consents.
//
// Every operation takes the transaction handle as its first argument, reads
// what it needs from the world state, validates, and writes at most one
// key. A failed operation performs no write. Service keeps no state between
// calls.
package healthcare

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/medrex/healthcare-ledger/pkg/ledger"
	"github.com/medrex/healthcare-ledger/pkg/logger"
	"github.com/medrex/healthcare-ledger/pkg/types"
)

// Event names emitted by successful writes
const (
	EventPatientCreated          = "PatientCreated"
	EventRecordEntryAdded        = "RecordEntryAdded"
	EventPatientAccessGranted    = "PatientAccessGranted"
	EventPatientAccessRevoked    = "PatientAccessRevoked"
	EventDrugBatchCreated        = "DrugBatchCreated"
	EventDrugBatchStatusUpdated  = "DrugBatchStatusUpdated"
	EventProfessionalRegistered  = "ProfessionalRegistered"
	EventPaymentClaimSubmitted   = "PaymentClaimSubmitted"
	EventClaimStatusUpdated      = "ClaimStatusUpdated"
	EventResearchConsentRecorded = "ResearchConsentRecorded"
	EventResearchConsentRevoked  = "ResearchConsentRevoked"
)

// LedgerEvent is the payload of every chaincode event. It carries
// identifiers only, never clinical content.
type LedgerEvent struct {
	Key  string `json:"key"`
	TxID string `json:"txId"`
}

// Service executes ledger operations.
type Service struct {
	log *logger.Logger
}

// NewService creates a Service logging to log.
func NewService(log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{log: log}
}

// readState decodes the value at key into v. It reports false with no
// error when the key is absent.
func readState(tx ledger.Transaction, key string, v interface{}) (bool, error) {
	data, err := tx.GetState(key)
	if err != nil {
		return false, types.NewInternalError(fmt.Sprintf("failed to read %s from world state", key), err)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, types.NewInternalError(fmt.Sprintf("failed to decode %s", key), err)
	}
	return true, nil
}

func writeState(tx ledger.Transaction, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return types.NewInternalError(fmt.Sprintf("failed to encode %s", key), err)
	}
	if err := tx.PutState(key, data); err != nil {
		return types.NewInternalError(fmt.Sprintf("failed to put %s to world state", key), err)
	}
	return nil
}

func keyExists(tx ledger.Transaction, key string) (bool, error) {
	data, err := tx.GetState(key)
	if err != nil {
		return false, types.NewInternalError(fmt.Sprintf("failed to read %s from world state", key), err)
	}
	return len(data) > 0, nil
}

// commit writes v under key and emits the matching event.
func (s *Service) commit(tx ledger.Transaction, event, key string, v interface{}) error {
	if err := writeState(tx, key, v); err != nil {
		return err
	}

	payload, err := json.Marshal(LedgerEvent{Key: key, TxID: tx.GetTxID()})
	if err != nil {
		return types.NewInternalError("failed to encode event payload", err)
	}
	if err := tx.SetEvent(event, payload); err != nil {
		return types.NewInternalError(fmt.Sprintf("failed to set event %s", event), err)
	}

	s.log.Audit(tx.GetTxID(), event, key, true)
	return nil
}

func txTime(tx ledger.Transaction) (time.Time, error) {
	t, err := ledger.TxTime(tx)
	if err != nil {
		return time.Time{}, types.NewInternalError("failed to read transaction clock", err)
	}
	return t, nil
}
