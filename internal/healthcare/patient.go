package healthcare

import (
	"github.com/medrex/healthcare-ledger/pkg/ledger"
	"github.com/medrex/healthcare-ledger/pkg/types"
)

// CreatePatient creates an empty patient record under patientID.
func (s *Service) CreatePatient(tx ledger.Transaction, patientID, name, dateOfBirth string) (*PatientRecord, error) {
	exists, err := keyExists(tx, patientID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, types.NewAlreadyExistsError("the patient %s already exists", patientID)
	}

	patient := &PatientRecord{
		PatientID:      patientID,
		Name:           name,
		DateOfBirth:    dateOfBirth,
		Entries:        []RecordEntry{},
		AccessConsents: []AccessConsent{},
	}
	if err := s.commit(tx, EventPatientCreated, patientID, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// AddRecordEntry appends a clinical entry to a patient record. The
// timestamp is the caller's, so historical imports replay identically.
func (s *Service) AddRecordEntry(tx ledger.Transaction, patientID, entryID, eventType, description, doctorID, hospitalID, timestamp string) (*PatientRecord, error) {
	patient, err := s.getPatient(tx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.hasEntry(entryID) {
		return nil, types.NewAlreadyExistsError("entry ID %s already exists for patient %s", entryID, patientID)
	}

	patient.Entries = append(patient.Entries, RecordEntry{
		EntryID:     entryID,
		Timestamp:   timestamp,
		EventType:   eventType,
		Description: description,
		DoctorID:    doctorID,
		HospitalID:  hospitalID,
	})
	if err := s.commit(tx, EventRecordEntryAdded, patientID, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// PatientExists reports whether a patient record exists.
func (s *Service) PatientExists(tx ledger.Transaction, patientID string) (bool, error) {
	return keyExists(tx, patientID)
}

func (s *Service) getPatient(tx ledger.Transaction, patientID string) (*PatientRecord, error) {
	var patient PatientRecord
	found, err := readState(tx, patientID, &patient)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.NewNotFoundError("patient %s not found", patientID)
	}
	patient.normalize()
	return &patient, nil
}
