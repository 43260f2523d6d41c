package services

import (
	"testing"

	"github.com/Codify-design/fingerprint-backend/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagColumn(t *testing.T) {
	column, err := flagColumn(FlagKindHide)
	require.NoError(t, err)
	assert.Equal(t, "hidden", column)

	column, err = flagColumn(FlagKindSilence)
	require.NoError(t, err)
	assert.Equal(t, "silenced", column)

	_, err = flagColumn("bogus")
	assert.ErrorIs(t, err, ErrInvalidFlagKind)

	_, err = flagColumn("")
	assert.ErrorIs(t, err, ErrInvalidFlagKind)
}

func TestFlagRowLive(t *testing.T) {
	assert.False(t, flagRowLive(false, false))
	assert.True(t, flagRowLive(true, false))
	assert.True(t, flagRowLive(false, true))
	assert.True(t, flagRowLive(true, true))
}

// Validation must reject bad input before any storage access.
func TestSetFlagRejectsInvalidInput(t *testing.T) {
	svc := NewFlagService(nil, metrics.NewNoop())

	err := svc.SetFlag("app", "some-value", "bogus", true)
	assert.ErrorIs(t, err, ErrInvalidFlagKind)

	err = svc.SetFlag("app", "", FlagKindHide, true)
	assert.ErrorIs(t, err, ErrValueRequired)

	err = svc.SetFlag("app", "   ", FlagKindSilence, false)
	assert.ErrorIs(t, err, ErrValueRequired)
}
