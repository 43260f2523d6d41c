package services

import (
	"testing"
	"time"

	"github.com/Codify-design/fingerprint-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(id, user uuid.UUID, name, value string, updatedAt time.Time) models.Fingerprint {
	return models.Fingerprint{
		ID:        id,
		UserID:    user,
		Name:      name,
		Value:     value,
		UpdatedAt: updatedAt,
	}
}

func TestAssembleMatchesPreservesOrder(t *testing.T) {
	u1, u2, u3 := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	observations := []models.Fingerprint{
		obs(uuid.New(), u1, "canvas", "X", now.Add(-time.Hour)),
		obs(uuid.New(), u2, "canvas", "X", now),
		obs(uuid.New(), u1, "audio", "Y", now.Add(-2*time.Hour)),
		obs(uuid.New(), u3, "audio", "Y", now.Add(-time.Hour)),
	}

	matches := assembleMatches([]string{"X", "Y"}, observations)

	require.Len(t, matches, 2)
	assert.Equal(t, "X", matches[0].Value)
	assert.Equal(t, "Y", matches[1].Value)
	assert.ElementsMatch(t, []uuid.UUID{u1, u2}, matches[0].UserIDs)
	assert.ElementsMatch(t, []uuid.UUID{u1, u3}, matches[1].UserIDs)
}

func TestAssembleMatchesDropsSingleUserGroups(t *testing.T) {
	u1 := uuid.New()
	now := time.Now()

	// Two observations of the same value by the same user is not a match.
	observations := []models.Fingerprint{
		obs(uuid.New(), u1, "canvas", "X", now),
		obs(uuid.New(), u1, "audio", "X", now.Add(-time.Minute)),
	}

	matches := assembleMatches([]string{"X"}, observations)
	assert.Empty(t, matches)
}

func TestAssembleMatchesUsesRepresentativeRecency(t *testing.T) {
	u1, u2 := uuid.New(), uuid.New()
	newest := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	observations := []models.Fingerprint{
		obs(uuid.New(), u1, "canvas", "X", newest.Add(-time.Hour)),
		obs(uuid.New(), u2, "canvas", "X", newest),
	}

	matches := assembleMatches([]string{"X"}, observations)

	require.Len(t, matches, 1)
	assert.True(t, matches[0].LastSeen.Equal(newest))
}

func TestPickRepresentativeTieBreaksOnLowestID(t *testing.T) {
	u := uuid.New()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	idLow := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	idHigh := uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")

	group := []models.Fingerprint{
		obs(idHigh, u, "canvas", "X", at),
		obs(idLow, u, "canvas", "X", at),
	}

	picked := pickRepresentative(group)
	assert.Equal(t, idLow, picked.ID)

	// Order of the slice must not change the outcome.
	picked = pickRepresentative([]models.Fingerprint{group[1], group[0]})
	assert.Equal(t, idLow, picked.ID)
}

func TestAggregateSummariesCountsAllObservations(t *testing.T) {
	u1, u2 := uuid.New(), uuid.New()
	now := time.Now()

	observations := []models.Fingerprint{
		obs(uuid.New(), u1, "canvas", "X", now.Add(-time.Hour)),
		obs(uuid.New(), u2, "canvas", "X", now),
		obs(uuid.New(), u1, "audio", "Y", now),
	}

	summaries := aggregateSummaries(observations)

	require.Len(t, summaries, 2)
	assert.Equal(t, 2, summaries["X"].ObservationCount)
	assert.Equal(t, 1, summaries["Y"].ObservationCount)
	assert.Equal(t, "canvas", summaries["X"].Name)
}

func TestGroupSharedUsers(t *testing.T) {
	u1, u2 := uuid.New(), uuid.New()

	pairs := []valueUser{
		{Value: "X", UserID: u1},
		{Value: "X", UserID: u2},
		{Value: "Y", UserID: u1},
	}

	shared := groupSharedUsers(pairs)

	require.Len(t, shared, 2)
	assert.ElementsMatch(t, []uuid.UUID{u1, u2}, shared["X"])
	assert.ElementsMatch(t, []uuid.UUID{u1}, shared["Y"])
}

func TestDistinctUserIDs(t *testing.T) {
	u1, u2 := uuid.New(), uuid.New()
	now := time.Now()

	group := []models.Fingerprint{
		obs(uuid.New(), u1, "canvas", "X", now),
		obs(uuid.New(), u1, "audio", "X", now),
		obs(uuid.New(), u2, "canvas", "X", now),
	}

	assert.ElementsMatch(t, []uuid.UUID{u1, u2}, distinctUserIDs(group))
}
