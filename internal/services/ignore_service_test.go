package services

import (
	"testing"

	"github.com/Codify-design/fingerprint-backend/internal/metrics"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSetIgnoreRejectsSelfIgnore(t *testing.T) {
	svc := NewIgnoreService(nil, metrics.NewNoop())
	user := uuid.New()

	err := svc.SetIgnore("app", user, user, true)
	assert.ErrorIs(t, err, ErrSelfIgnore)

	err = svc.SetIgnore("app", user, user, false)
	assert.ErrorIs(t, err, ErrSelfIgnore)
}
