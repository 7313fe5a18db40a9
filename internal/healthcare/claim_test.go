package healthcare

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrex/healthcare-ledger/pkg/ledger"
	"github.com/medrex/healthcare-ledger/pkg/types"
)

func TestService_SubmitPaymentClaim(t *testing.T) {
	l := newTestLedger(t)
	submittedAt := time.Date(2024, 4, 2, 14, 0, 0, 500*int(time.Millisecond), time.UTC)

	var claim *PaymentClaim
	require.NoError(t, l.run(submittedAt, func(tx ledger.Transaction) error {
		var err error
		claim, err = l.svc.SubmitPaymentClaim(tx, "C1", "P1", "S1", "150.75", "EUR", "H1", "Pendiente")
		return err
	}))

	assert.Equal(t, PaymentClaim{
		ClaimID:     "C1",
		PatientID:   "P1",
		ServiceID:   "S1",
		Amount:      150.75,
		Currency:    "EUR",
		ClaimDate:   "2024-04-02T14:00:00.500Z",
		SubmitterID: "H1",
		Status:      "Pendiente",
	}, *claim)

	t.Run("amount is stored as a JSON number", func(t *testing.T) {
		var stored map[string]interface{}
		require.NoError(t, json.Unmarshal(l.raw("C1"), &stored))
		assert.Equal(t, 150.75, stored["amount"])
		assert.Equal(t, "2024-04-02T14:00:00.500Z", stored["claimDate"])
	})

	t.Run("duplicate claim", func(t *testing.T) {
		err := l.run(submittedAt, func(tx ledger.Transaction) error {
			_, err := l.svc.SubmitPaymentClaim(tx, "C1", "P1", "S1", "1", "EUR", "H1", "Pendiente")
			return err
		})
		assert.True(t, errors.Is(err, types.ErrAlreadyExists))
	})

	t.Run("invalid amounts", func(t *testing.T) {
		for _, amount := range []string{"", "abc", "-0.01", "NaN", "Inf", "-Inf", "1e400", "12,50"} {
			err := l.run(submittedAt, func(tx ledger.Transaction) error {
				_, err := l.svc.SubmitPaymentClaim(tx, "C-bad", "P1", "S1", amount, "EUR", "H1", "Pendiente")
				return err
			})
			assert.True(t, errors.Is(err, types.ErrInvalidAmount), "amount %q", amount)
		}
		assert.Nil(t, l.raw("C-bad"))
	})

	t.Run("zero is accepted", func(t *testing.T) {
		require.NoError(t, l.run(submittedAt, func(tx ledger.Transaction) error {
			_, err := l.svc.SubmitPaymentClaim(tx, "C0", "P1", "S1", "0", "EUR", "H1", "Pendiente")
			return err
		}))
	})
}

func TestService_UpdateClaimStatus(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.run(baseTime, func(tx ledger.Transaction) error {
		_, err := l.svc.SubmitPaymentClaim(tx, "C1", "P1", "S1", "99", "EUR", "H1", "Pendiente")
		return err
	}))

	update := func(status string) (*PaymentClaim, error) {
		var out *PaymentClaim
		err := l.run(baseTime.Add(time.Hour), func(tx ledger.Transaction) error {
			var err error
			out, err = l.svc.UpdateClaimStatus(tx, "C1", status)
			return err
		})
		return out, err
	}

	t.Run("any transition is accepted", func(t *testing.T) {
		claim, err := update("Pagado")
		require.NoError(t, err)
		assert.Equal(t, "Pagado", claim.Status)

		claim, err = update("Pendiente")
		require.NoError(t, err)
		assert.Equal(t, "Pendiente", claim.Status)
		assert.Equal(t, "2024-01-01T00:00:00.000Z", claim.ClaimDate)

		name, _ := decodeEvent(t, l.last)
		assert.Equal(t, EventClaimStatusUpdated, name)
	})

	t.Run("unknown claim", func(t *testing.T) {
		err := l.run(baseTime, func(tx ledger.Transaction) error {
			_, err := l.svc.UpdateClaimStatus(tx, "C404", "Pagado")
			return err
		})
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})

	t.Run("exists probe", func(t *testing.T) {
		require.NoError(t, l.run(baseTime, func(tx ledger.Transaction) error {
			exists, err := l.svc.PaymentClaimExists(tx, "C1")
			assert.True(t, exists)
			return err
		}))
	})
}
