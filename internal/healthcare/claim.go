package healthcare

import (
	"math"
	"strconv"
	"strings"

	"github.com/medrex/healthcare-ledger/pkg/ledger"
	"github.com/medrex/healthcare-ledger/pkg/types"
)

// SubmitPaymentClaim records a claim dated with the transaction time.
func (s *Service) SubmitPaymentClaim(tx ledger.Transaction, claimID, patientID, serviceID, amount, currency, submitterID, status string) (*PaymentClaim, error) {
	exists, err := keyExists(tx, claimID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, types.NewAlreadyExistsError("the payment claim %s already exists", claimID)
	}

	value, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}

	now, err := txTime(tx)
	if err != nil {
		return nil, err
	}

	claim := &PaymentClaim{
		ClaimID:     claimID,
		PatientID:   patientID,
		ServiceID:   serviceID,
		Amount:      value,
		Currency:    currency,
		ClaimDate:   ledger.FormatTimestamp(now),
		SubmitterID: submitterID,
		Status:      status,
	}
	if err := s.commit(tx, EventPaymentClaimSubmitted, claimID, claim); err != nil {
		return nil, err
	}
	return claim, nil
}

// UpdateClaimStatus overwrites a claim's status. Any transition is
// accepted; no claim state machine is enforced.
func (s *Service) UpdateClaimStatus(tx ledger.Transaction, claimID, newStatus string) (*PaymentClaim, error) {
	var claim PaymentClaim
	found, err := readState(tx, claimID, &claim)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.NewNotFoundError("payment claim %s not found", claimID)
	}

	claim.Status = newStatus
	if err := s.commit(tx, EventClaimStatusUpdated, claimID, &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

// PaymentClaimExists reports whether a claim exists.
func (s *Service) PaymentClaimExists(tx ledger.Transaction, claimID string) (bool, error) {
	return keyExists(tx, claimID)
}

// parseAmount accepts a finite, non-negative decimal number.
func parseAmount(amount string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, types.NewInvalidAmountError(amount)
	}
	return value, nil
}
