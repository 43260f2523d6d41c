package services

import (
	"fmt"
	"time"

	"github.com/Codify-design/fingerprint-backend/internal/models"
	"github.com/Codify-design/fingerprint-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Match is a derived view: the set of users sharing one fingerprint value.
// It is computed per query and never persisted.
type Match struct {
	Name     string         `json:"name"`
	Value    string         `json:"value"`
	UserIDs  []uuid.UUID    `json:"user_ids"`
	LastSeen time.Time      `json:"last_seen"`
	Data     datatypes.JSON `json:"data"`
}

// FlaggedSummary aggregates every observation of one flagged value so
// moderators can see the footprint of what they flagged.
type FlaggedSummary struct {
	Name             string         `json:"name"`
	Value            string         `json:"value"`
	Data             datatypes.JSON `json:"data"`
	ObservationCount int            `json:"observation_count"`
}

// MatchService is the read-side aggregation over fingerprints and flag state.
// It holds no state of its own; every call reflects the latest committed
// writes.
type MatchService struct {
	db *gorm.DB
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{db: db}
}

// TopRecentMatches groups observations by value, keeps groups with at least
// two distinct users, drops excluded values, and returns the most recently
// seen groups first (ties broken by value for stable output).
func (s *MatchService) TopRecentMatches(appID string, limit int, excludeValues []string) ([]Match, error) {
	query := s.db.Model(&models.Fingerprint{}).Scopes(tenant.ForTenant(appID))
	if len(excludeValues) > 0 {
		query = query.Where("value NOT IN ?", excludeValues)
	}

	var values []string
	err := query.
		Group("value").
		Having("COUNT(DISTINCT user_id) >= 2").
		Order("MAX(updated_at) DESC, value ASC").
		Limit(limit).
		Pluck("value", &values).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select match values: %w", err)
	}
	if len(values) == 0 {
		return []Match{}, nil
	}

	observations, err := s.observationsFor(appID, values)
	if err != nil {
		return nil, err
	}
	return assembleMatches(values, observations), nil
}

// FlaggedSummaries aggregates all observations for each flagged value.
func (s *MatchService) FlaggedSummaries(appID string, values []string) (map[string]FlaggedSummary, error) {
	if len(values) == 0 {
		return map[string]FlaggedSummary{}, nil
	}

	observations, err := s.observationsFor(appID, values)
	if err != nil {
		return nil, err
	}
	return aggregateSummaries(observations), nil
}

// UsersSharing returns the distinct users who produced value, minus the
// given user.
func (s *MatchService) UsersSharing(appID, value string, excluding uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.Model(&models.Fingerprint{}).
		Scopes(tenant.ForTenant(appID)).
		Distinct("user_id").
		Where("value = ? AND user_id <> ?", value, excluding).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sharing users: %w", err)
	}
	return ids, nil
}

// SharedUsersByValue is the batched form of UsersSharing used by user
// reports: one query for all of a user's values instead of one per value.
func (s *MatchService) SharedUsersByValue(appID string, values []string, excluding uuid.UUID) (map[string][]uuid.UUID, error) {
	if len(values) == 0 {
		return map[string][]uuid.UUID{}, nil
	}

	var pairs []valueUser
	err := s.db.Model(&models.Fingerprint{}).
		Scopes(tenant.ForTenant(appID)).
		Distinct("value", "user_id").
		Where("value IN ? AND user_id <> ?", values, excluding).
		Scan(&pairs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shared users: %w", err)
	}
	return groupSharedUsers(pairs), nil
}

func (s *MatchService) observationsFor(appID string, values []string) ([]models.Fingerprint, error) {
	var observations []models.Fingerprint
	err := s.db.Scopes(tenant.ForTenant(appID)).
		Where("value IN ?", values).
		Find(&observations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch observations: %w", err)
	}
	return observations, nil
}

type valueUser struct {
	Value  string
	UserID uuid.UUID
}

// assembleMatches builds Match groups in the given value order. Groups that
// no longer have two distinct users (the ranking query and the member fetch
// are separate reads) are dropped rather than reported.
func assembleMatches(order []string, observations []models.Fingerprint) []Match {
	byValue := make(map[string][]models.Fingerprint, len(order))
	for _, obs := range observations {
		byValue[obs.Value] = append(byValue[obs.Value], obs)
	}

	matches := make([]Match, 0, len(order))
	for _, value := range order {
		group := byValue[value]
		userIDs := distinctUserIDs(group)
		if len(userIDs) < 2 {
			continue
		}

		representative := pickRepresentative(group)
		matches = append(matches, Match{
			Name:     representative.Name,
			Value:    value,
			UserIDs:  userIDs,
			LastSeen: representative.UpdatedAt,
			Data:     representative.Data,
		})
	}
	return matches
}

// aggregateSummaries reduces observations into one summary per value.
func aggregateSummaries(observations []models.Fingerprint) map[string]FlaggedSummary {
	byValue := make(map[string][]models.Fingerprint)
	for _, obs := range observations {
		byValue[obs.Value] = append(byValue[obs.Value], obs)
	}

	summaries := make(map[string]FlaggedSummary, len(byValue))
	for value, group := range byValue {
		representative := pickRepresentative(group)
		summaries[value] = FlaggedSummary{
			Name:             representative.Name,
			Value:            value,
			Data:             representative.Data,
			ObservationCount: len(group),
		}
	}
	return summaries
}

// pickRepresentative selects the observation whose data represents a group:
// highest updated_at, then lowest id, so the choice is deterministic when
// timestamps tie.
func pickRepresentative(group []models.Fingerprint) models.Fingerprint {
	best := group[0]
	for _, obs := range group[1:] {
		if obs.UpdatedAt.After(best.UpdatedAt) {
			best = obs
			continue
		}
		if obs.UpdatedAt.Equal(best.UpdatedAt) && obs.ID.String() < best.ID.String() {
			best = obs
		}
	}
	return best
}

func distinctUserIDs(group []models.Fingerprint) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(group))
	ids := make([]uuid.UUID, 0, len(group))
	for _, obs := range group {
		if _, ok := seen[obs.UserID]; ok {
			continue
		}
		seen[obs.UserID] = struct{}{}
		ids = append(ids, obs.UserID)
	}
	return ids
}

func groupSharedUsers(pairs []valueUser) map[string][]uuid.UUID {
	shared := make(map[string][]uuid.UUID)
	for _, pair := range pairs {
		shared[pair.Value] = append(shared[pair.Value], pair.UserID)
	}
	return shared
}
