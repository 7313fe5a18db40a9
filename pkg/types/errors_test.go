package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerError_Error(t *testing.T) {
	t.Run("renders code and message", func(t *testing.T) {
		err := NewNotFoundError("patient %s not found", "P1")
		assert.Equal(t, "NOT_FOUND: patient P1 not found", err.Error())
	})

	t.Run("appends cause when wrapped", func(t *testing.T) {
		err := NewInternalError("failed to read from world state", fmt.Errorf("peer unavailable"))
		assert.Equal(t, "INTERNAL_ERROR: failed to read from world state (caused by: peer unavailable)", err.Error())
	})
}

func TestLedgerError_Is(t *testing.T) {
	err := NewAccessDeniedError("DOC2 has no active consent")
	wrapped := fmt.Errorf("query failed: %w", err)

	assert.True(t, errors.Is(err, ErrAccessDenied))
	assert.True(t, errors.Is(wrapped, ErrAccessDenied))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, NewAccessDeniedError("other message")))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInvalidAmount, KindOf(NewInvalidAmountError("-5")))
	assert.Equal(t, KindActiveConsentExists, KindOf(fmt.Errorf("x: %w", NewActiveConsentExistsError("dup"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, ErrCodeNoActiveConsent, CodeOf(NewNoActiveConsentError("none")))
}

func TestNewInvalidAmountError_Details(t *testing.T) {
	err := NewInvalidAmountError("abc")
	assert.Equal(t, "abc", err.Details["amount"])
	assert.Equal(t, ErrCodeInvalidAmount, err.Code)
}
