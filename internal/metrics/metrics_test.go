package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusBucket(t *testing.T) {
	assert.Equal(t, "1xx", httpStatusBucket(101))
	assert.Equal(t, "2xx", httpStatusBucket(200))
	assert.Equal(t, "3xx", httpStatusBucket(302))
	assert.Equal(t, "4xx", httpStatusBucket(404))
	assert.Equal(t, "5xx", httpStatusBucket(500))
}

func TestDisabledProviderIsNoop(t *testing.T) {
	provider := NewProvider(false)

	// None of these may panic or register collectors.
	provider.IncRequestsTotal("/api/admin/dashboard", 200)
	provider.ObserveRequestDuration("/api/admin/dashboard", time.Millisecond)
	provider.IncObservationsRecorded("forum-main")
	provider.IncFlagToggles("hide")
	provider.IncIgnoreToggles("forum-main")
	provider.ObserveDashboardMatches(3)
}
