package services

import (
	"github.com/Codify-design/fingerprint-backend/internal/metrics"
	"github.com/Codify-design/fingerprint-backend/internal/models"
	"github.com/google/uuid"
)

// Dashboard is the moderator overview: top recent unflagged matches plus
// summaries of every flagged value. InvolvedUserIDs is the complete set of
// user ids referenced anywhere in the view, collected so the handler can
// resolve display users with a single batched lookup.
type Dashboard struct {
	Matches         []Match
	Flagged         map[string]FlaggedSummary
	InvolvedUserIDs []uuid.UUID
}

// UserReport is one user's view: their own observations (hidden values
// excluded), who else shares each value (known-benign pairs removed), and
// their ignore list.
type UserReport struct {
	Fingerprints       []models.Fingerprint
	SharedUsersByValue map[string][]uuid.UUID
	IgnoredUserIDs     []uuid.UUID
	InvolvedUserIDs    []uuid.UUID
}

// ReportService composes the two read views from the stores and the match
// engine. It writes nothing and caches nothing.
type ReportService struct {
	fingerprints *FingerprintService
	flags        *FlagService
	ignores      *IgnoreService
	matches      *MatchService
	users        *UserService
	settings     *SettingsService
	metrics      metrics.Provider
}

func NewReportService(
	fingerprints *FingerprintService,
	flags *FlagService,
	ignores *IgnoreService,
	matches *MatchService,
	users *UserService,
	settings *SettingsService,
	provider metrics.Provider,
) *ReportService {
	return &ReportService{
		fingerprints: fingerprints,
		flags:        flags,
		ignores:      ignores,
		matches:      matches,
		users:        users,
		settings:     settings,
		metrics:      provider,
	}
}

// BuildDashboard excludes every flagged value (hidden or silenced) from the
// match ranking and summarizes the flagged values separately.
func (s *ReportService) BuildDashboard(appID string) (*Dashboard, error) {
	flagged, err := s.flags.FlaggedValues(appID)
	if err != nil {
		return nil, err
	}

	limit := s.settings.GetInt(appID, SettingDashboardMatchLimit, DefaultDashboardMatchLimit)
	matches, err := s.matches.TopRecentMatches(appID, limit, flagged)
	if err != nil {
		return nil, err
	}

	summaries, err := s.matches.FlaggedSummaries(appID, flagged)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDashboardMatches(len(matches))

	return &Dashboard{
		Matches:         matches,
		Flagged:         summaries,
		InvolvedUserIDs: involvedUserIDs(matches),
	}, nil
}

// BuildUserReport fails with ErrUserNotFound for an unknown user even though
// the handler resolves the username first; the contract rejects bad ids on
// its own.
func (s *ReportService) BuildUserReport(appID string, userID uuid.UUID) (*UserReport, error) {
	if _, err := s.users.ByID(appID, userID); err != nil {
		return nil, err
	}

	hidden, err := s.flags.HiddenValues(appID)
	if err != nil {
		return nil, err
	}

	fingerprints, err := s.fingerprints.ForUser(appID, userID, hidden)
	if err != nil {
		return nil, err
	}

	shared, err := s.matches.SharedUsersByValue(appID, distinctValues(fingerprints), userID)
	if err != nil {
		return nil, err
	}

	ignored, err := s.ignores.IgnoredBy(appID, userID)
	if err != nil {
		return nil, err
	}

	// Known-benign pairs are not reported as matches for this user.
	shared = pruneIgnored(shared, ignored)

	involved := unionUserIDs(ignored)
	for _, ids := range shared {
		involved = unionUserIDs(involved, ids)
	}

	return &UserReport{
		Fingerprints:       fingerprints,
		SharedUsersByValue: shared,
		IgnoredUserIDs:     ignored,
		InvolvedUserIDs:    involved,
	}, nil
}

// involvedUserIDs unions every user id appearing in the matches.
func involvedUserIDs(matches []Match) []uuid.UUID {
	sets := make([][]uuid.UUID, 0, len(matches))
	for _, match := range matches {
		sets = append(sets, match.UserIDs)
	}
	return unionUserIDs(sets...)
}

func unionUserIDs(sets ...[]uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	union := make([]uuid.UUID, 0)
	for _, set := range sets {
		for _, id := range set {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			union = append(union, id)
		}
	}
	return union
}

// pruneIgnored removes ignored user ids from each shared set and drops
// values with nobody left.
func pruneIgnored(shared map[string][]uuid.UUID, ignored []uuid.UUID) map[string][]uuid.UUID {
	if len(ignored) == 0 {
		return shared
	}

	skip := make(map[uuid.UUID]struct{}, len(ignored))
	for _, id := range ignored {
		skip[id] = struct{}{}
	}

	pruned := make(map[string][]uuid.UUID, len(shared))
	for value, ids := range shared {
		kept := make([]uuid.UUID, 0, len(ids))
		for _, id := range ids {
			if _, ok := skip[id]; ok {
				continue
			}
			kept = append(kept, id)
		}
		if len(kept) > 0 {
			pruned[value] = kept
		}
	}
	return pruned
}

func distinctValues(fingerprints []models.Fingerprint) []string {
	seen := make(map[string]struct{}, len(fingerprints))
	values := make([]string, 0, len(fingerprints))
	for _, fp := range fingerprints {
		if _, ok := seen[fp.Value]; ok {
			continue
		}
		seen[fp.Value] = struct{}{}
		values = append(values, fp.Value)
	}
	return values
}
