package healthcare

import (
	"github.com/medrex/healthcare-ledger/pkg/ledger"
	"github.com/medrex/healthcare-ledger/pkg/types"
)

// CreateDrugBatch registers a batch and opens its history with a
// manufactured event stamped with the transaction time.
func (s *Service) CreateDrugBatch(tx ledger.Transaction, batchID, productName, manufacturer, manufactureDate, expiryDate string) (*DrugBatch, error) {
	exists, err := keyExists(tx, batchID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, types.NewAlreadyExistsError("the drug batch %s already exists", batchID)
	}

	now, err := txTime(tx)
	if err != nil {
		return nil, err
	}

	batch := &DrugBatch{
		BatchID:         batchID,
		ProductName:     productName,
		Manufacturer:    manufacturer,
		ManufactureDate: manufactureDate,
		ExpiryDate:      expiryDate,
		History: []BatchEvent{{
			EventID:   batchID + "-init",
			Timestamp: ledger.FormatTimestamp(now),
			Location:  manufacturer,
			Status:    StatusManufactured,
			ActorID:   manufacturer,
		}},
	}
	if err := s.commit(tx, EventDrugBatchCreated, batchID, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// UpdateDrugBatchStatus appends a custody event. History keeps call order;
// it is never sorted by timestamp.
func (s *Service) UpdateDrugBatchStatus(tx ledger.Transaction, batchID, eventID, location, status, actorID, timestamp string) (*DrugBatch, error) {
	batch, err := s.getDrugBatch(tx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.hasEvent(eventID) {
		return nil, types.NewAlreadyExistsError("event ID %s already exists for batch %s", eventID, batchID)
	}

	batch.History = append(batch.History, BatchEvent{
		EventID:   eventID,
		Timestamp: timestamp,
		Location:  location,
		Status:    status,
		ActorID:   actorID,
	})
	if err := s.commit(tx, EventDrugBatchStatusUpdated, batchID, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// QueryDrugBatchHistory returns a batch with its full history. Batch
// provenance is public within the network, so no consent is checked.
func (s *Service) QueryDrugBatchHistory(tx ledger.Transaction, batchID string) (*DrugBatch, error) {
	return s.getDrugBatch(tx, batchID)
}

// DrugBatchExists reports whether a batch exists.
func (s *Service) DrugBatchExists(tx ledger.Transaction, batchID string) (bool, error) {
	return keyExists(tx, batchID)
}

func (s *Service) getDrugBatch(tx ledger.Transaction, batchID string) (*DrugBatch, error) {
	var batch DrugBatch
	found, err := readState(tx, batchID, &batch)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.NewNotFoundError("drug batch %s not found", batchID)
	}
	batch.normalize()
	return &batch, nil
}
