package healthcare

import (
	"github.com/medrex/healthcare-ledger/pkg/ledger"
	"github.com/medrex/healthcare-ledger/pkg/types"
)

// RecordResearchConsent writes an active research consent for a patient and
// project. An inactive consent at the same key is replaced; an active one
// is an error.
func (s *Service) RecordResearchConsent(tx ledger.Transaction, patientID, researchProjectID, dataTypesConsented string) (*ResearchConsent, error) {
	exists, err := keyExists(tx, patientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, types.NewNotFoundError("patient %s not found", patientID)
	}

	key := ResearchConsentKey(patientID, researchProjectID)
	var existing ResearchConsent
	found, err := readState(tx, key, &existing)
	if err != nil {
		return nil, err
	}
	if found && existing.IsActive {
		return nil, types.NewActiveConsentExistsError("active research consent already exists for patient %s and project %s", patientID, researchProjectID)
	}

	now, err := txTime(tx)
	if err != nil {
		return nil, err
	}

	consent := &ResearchConsent{
		PatientID:          patientID,
		ResearchProjectID:  researchProjectID,
		ConsentDate:        ledger.FormatTimestamp(now),
		DataTypesConsented: dataTypesConsented,
		IsActive:           true,
	}
	if err := s.commit(tx, EventResearchConsentRecorded, key, consent); err != nil {
		return nil, err
	}
	return consent, nil
}

// QueryResearchConsent returns the research consent at the composite key,
// active or not.
func (s *Service) QueryResearchConsent(tx ledger.Transaction, patientID, researchProjectID string) (*ResearchConsent, error) {
	return s.getResearchConsent(tx, patientID, researchProjectID)
}

// RevokeResearchConsent deactivates the research consent in place.
func (s *Service) RevokeResearchConsent(tx ledger.Transaction, patientID, researchProjectID string) (*ResearchConsent, error) {
	consent, err := s.getResearchConsent(tx, patientID, researchProjectID)
	if err != nil {
		return nil, err
	}
	if !consent.IsActive {
		return nil, types.NewNoActiveConsentError("research consent for patient %s and project %s is not active", patientID, researchProjectID)
	}

	consent.IsActive = false
	if err := s.commit(tx, EventResearchConsentRevoked, ResearchConsentKey(patientID, researchProjectID), consent); err != nil {
		return nil, err
	}
	return consent, nil
}

func (s *Service) getResearchConsent(tx ledger.Transaction, patientID, researchProjectID string) (*ResearchConsent, error) {
	var consent ResearchConsent
	found, err := readState(tx, ResearchConsentKey(patientID, researchProjectID), &consent)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.NewNotFoundError("no research consent found for patient %s and project %s", patientID, researchProjectID)
	}
	return &consent, nil
}
