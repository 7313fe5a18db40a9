package healthcare

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrex/healthcare-ledger/pkg/ledger"
	"github.com/medrex/healthcare-ledger/pkg/types"
)

func TestResearchConsentKey(t *testing.T) {
	assert.Equal(t, "RESEARCHCONSENT:P1:PRJ-7", ResearchConsentKey("P1", "PRJ-7"))
}

func TestService_ResearchConsent(t *testing.T) {
	l := newTestLedger(t)
	l.mustCreatePatient("P1")
	recordedAt := time.Date(2024, 5, 5, 5, 5, 5, 0, time.UTC)

	record := func(at time.Time, patientID, dataTypes string) (*ResearchConsent, error) {
		var out *ResearchConsent
		err := l.run(at, func(tx ledger.Transaction) error {
			var err error
			out, err = l.svc.RecordResearchConsent(tx, patientID, "PRJ-7", dataTypes)
			return err
		})
		return out, err
	}

	t.Run("requires an existing patient", func(t *testing.T) {
		_, err := record(recordedAt, "P404", "historial completo")
		assert.True(t, errors.Is(err, types.ErrNotFound))
		assert.Nil(t, l.raw(ResearchConsentKey("P404", "PRJ-7")))
	})

	t.Run("records an active consent under the composite key", func(t *testing.T) {
		consent, err := record(recordedAt, "P1", "historial completo")
		require.NoError(t, err)
		assert.Equal(t, ResearchConsent{
			PatientID:          "P1",
			ResearchProjectID:  "PRJ-7",
			ConsentDate:        "2024-05-05T05:05:05.000Z",
			DataTypesConsented: "historial completo",
			IsActive:           true,
		}, *consent)

		name, payload := decodeEvent(t, l.last)
		assert.Equal(t, EventResearchConsentRecorded, name)
		assert.Equal(t, "RESEARCHCONSENT:P1:PRJ-7", payload.Key)
	})

	t.Run("patient record is not modified", func(t *testing.T) {
		var patient *PatientRecord
		require.NoError(t, l.run(recordedAt, func(tx ledger.Transaction) error {
			var err error
			patient, err = l.svc.getPatient(tx, "P1")
			return err
		}))
		assert.Empty(t, patient.AccessConsents)
	})

	t.Run("second active consent is rejected", func(t *testing.T) {
		_, err := record(recordedAt, "P1", "laboratorio")
		assert.True(t, errors.Is(err, types.ErrActiveConsentExists))
	})

	t.Run("revoke then record again overwrites", func(t *testing.T) {
		var revoked *ResearchConsent
		require.NoError(t, l.run(recordedAt, func(tx ledger.Transaction) error {
			var err error
			revoked, err = l.svc.RevokeResearchConsent(tx, "P1", "PRJ-7")
			return err
		}))
		assert.False(t, revoked.IsActive)

		err := l.run(recordedAt, func(tx ledger.Transaction) error {
			_, err := l.svc.RevokeResearchConsent(tx, "P1", "PRJ-7")
			return err
		})
		assert.True(t, errors.Is(err, types.ErrNoActiveConsent))

		later := recordedAt.Add(24 * time.Hour)
		consent, err := record(later, "P1", "laboratorio")
		require.NoError(t, err)
		assert.True(t, consent.IsActive)
		assert.Equal(t, "laboratorio", consent.DataTypesConsented)
		assert.Equal(t, "2024-05-06T05:05:05.000Z", consent.ConsentDate)
	})

	t.Run("query returns inactive and active records alike", func(t *testing.T) {
		var got *ResearchConsent
		require.NoError(t, l.run(recordedAt, func(tx ledger.Transaction) error {
			var err error
			got, err = l.svc.QueryResearchConsent(tx, "P1", "PRJ-7")
			return err
		}))
		assert.Equal(t, "laboratorio", got.DataTypesConsented)

		err := l.run(recordedAt, func(tx ledger.Transaction) error {
			_, err := l.svc.QueryResearchConsent(tx, "P1", "PRJ-404")
			return err
		})
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})
}
