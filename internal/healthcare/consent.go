package healthcare

import (
	"time"

	"github.com/medrex/healthcare-ledger/pkg/ledger"
	"github.com/medrex/healthcare-ledger/pkg/types"
)

// Layouts accepted for AccessConsent.ExpiresAt. Zone-less forms are read
// as UTC so every replica parses them the same way.
var expiryLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// GrantPatientAccess appends an active consent for (consenterID, purpose)
// and deactivates every earlier active consent for that pair. An empty
// expiresAt means the consent never expires.
func (s *Service) GrantPatientAccess(tx ledger.Transaction, patientID, consenterID, purpose, expiresAt, grantedAt string) (*PatientRecord, error) {
	patient, err := s.getPatient(tx, patientID)
	if err != nil {
		return nil, err
	}

	for i := range patient.AccessConsents {
		c := &patient.AccessConsents[i]
		if c.IsActive && c.ConsenterID == consenterID && c.Purpose == purpose {
			c.IsActive = false
		}
	}

	if expiresAt == "" {
		expiresAt = IndefiniteExpiry
	}
	patient.AccessConsents = append(patient.AccessConsents, AccessConsent{
		ConsenterID: consenterID,
		Purpose:     purpose,
		GrantedAt:   grantedAt,
		ExpiresAt:   expiresAt,
		IsActive:    true,
	})

	if err := s.commit(tx, EventPatientAccessGranted, patientID, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// RevokePatientAccess deactivates the earliest active consent for
// (consenterID, purpose). At most one consent is revoked per call.
func (s *Service) RevokePatientAccess(tx ledger.Transaction, patientID, consenterID, purpose string) (*PatientRecord, error) {
	patient, err := s.getPatient(tx, patientID)
	if err != nil {
		return nil, err
	}

	revoked := false
	for i := range patient.AccessConsents {
		c := &patient.AccessConsents[i]
		if c.IsActive && c.ConsenterID == consenterID && c.Purpose == purpose {
			c.IsActive = false
			revoked = true
			break
		}
	}
	if !revoked {
		return nil, types.NewNoActiveConsentError("no active consent found for %s with purpose '%s' for patient %s", consenterID, purpose, patientID)
	}

	if err := s.commit(tx, EventPatientAccessRevoked, patientID, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// QueryPatientRecord returns the whole patient record if requestingConsenterID
// holds an active, unexpired consent for purpose at the transaction time.
func (s *Service) QueryPatientRecord(tx ledger.Transaction, patientID, requestingConsenterID, purpose string) (*PatientRecord, error) {
	patient, err := s.getPatient(tx, patientID)
	if err != nil {
		return nil, err
	}

	now, err := txTime(tx)
	if err != nil {
		return nil, err
	}

	granted := HasAccess(patient.AccessConsents, requestingConsenterID, purpose, now)
	s.log.PHIAccess(tx.GetTxID(), requestingConsenterID, patientID, purpose, granted)
	if !granted {
		return nil, types.NewAccessDeniedError("%s does not have active consent for purpose '%s' for patient %s", requestingConsenterID, purpose, patientID)
	}
	return patient, nil
}

// HasAccess reports whether consents authorize (consenterID, purpose) at
// instant now: some active consent for that exact pair either never
// expires or expires strictly after now. A consent whose expiry cannot be
// parsed never authorizes.
func HasAccess(consents []AccessConsent, consenterID, purpose string, now time.Time) bool {
	for _, c := range consents {
		if !c.IsActive || c.ConsenterID != consenterID || c.Purpose != purpose {
			continue
		}
		if c.ExpiresAt == "" || c.ExpiresAt == IndefiniteExpiry {
			return true
		}
		expiry, ok := parseExpiry(c.ExpiresAt)
		if ok && now.Before(expiry) {
			return true
		}
	}
	return false
}

func parseExpiry(value string) (time.Time, bool) {
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
