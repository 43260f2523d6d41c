//go:build integration

package services_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Codify-design/fingerprint-backend/internal/dto"
	"github.com/Codify-design/fingerprint-backend/internal/metrics"
	"github.com/Codify-design/fingerprint-backend/internal/models"
	"github.com/Codify-design/fingerprint-backend/internal/services"
	"github.com/Codify-design/fingerprint-backend/internal/testutil"
)

const testAppID = "forum-main"

type EngineSuite struct {
	suite.Suite
	db *gorm.DB

	fingerprints *services.FingerprintService
	flags        *services.FlagService
	ignores      *services.IgnoreService
	matches      *services.MatchService
	users        *services.UserService
	settings     *services.SettingsService
	reports      *services.ReportService
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupSuite() {
	s.db = testutil.StartPostgres(s.T())

	noop := metrics.NewNoop()
	s.fingerprints = services.NewFingerprintService(s.db, noop)
	s.flags = services.NewFlagService(s.db, noop)
	s.ignores = services.NewIgnoreService(s.db, noop)
	s.matches = services.NewMatchService(s.db)
	s.users = services.NewUserService(s.db)
	s.settings = services.NewSettingsService(s.db)
	s.reports = services.NewReportService(
		s.fingerprints, s.flags, s.ignores, s.matches, s.users, s.settings, noop)
}

func (s *EngineSuite) SetupTest() {
	testutil.TruncateAll(s.T(), s.db)
}

func (s *EngineSuite) createUser(username string) *models.User {
	user := &models.User{
		AppID:    testAppID,
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	s.Require().NoError(s.db.Create(user).Error)
	return user
}

func (s *EngineSuite) record(userID uuid.UUID, name, value string) {
	s.Require().NoError(s.fingerprints.Record(testAppID, userID, name, value, nil))
}

// --- FingerprintStore ---

func (s *EngineSuite) TestRecordUpsertsOnRepeatSighting() {
	user := s.createUser("alice")

	s.record(user.ID, "canvas", "deadbeef")

	var first models.Fingerprint
	s.Require().NoError(s.db.First(&first, "app_id = ? AND user_id = ?", testAppID, user.ID).Error)

	time.Sleep(10 * time.Millisecond)
	s.Require().NoError(s.fingerprints.Record(
		testAppID, user.ID, "canvas", "deadbeef", datatypes.JSON([]byte(`{"ua":"firefox"}`))))

	var count int64
	s.db.Model(&models.Fingerprint{}).Where("app_id = ?", testAppID).Count(&count)
	s.Equal(int64(1), count)

	var refreshed models.Fingerprint
	s.Require().NoError(s.db.First(&refreshed, "id = ?", first.ID).Error)
	s.True(refreshed.UpdatedAt.After(first.UpdatedAt))
	s.JSONEq(`{"ua":"firefox"}`, string(refreshed.Data))
}

func (s *EngineSuite) TestRecordConcurrentSameObservation() {
	user := s.createUser("alice")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.fingerprints.Record(testAppID, user.ID, "canvas", "deadbeef", nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		s.NoError(err)
	}
	var count int64
	s.db.Model(&models.Fingerprint{}).Where("app_id = ?", testAppID).Count(&count)
	s.Equal(int64(1), count)
}

func (s *EngineSuite) TestIngestBatchSkipsMalformedEvents() {
	user := s.createUser("alice")

	accepted, err := s.fingerprints.IngestBatch(testAppID, []dto.IngestEvent{
		{UserID: user.ID, Name: "canvas", Value: "aaa"},
		{UserID: uuid.Nil, Name: "canvas", Value: "bbb"},
		{UserID: user.ID, Name: "", Value: "ccc"},
		{UserID: user.ID, Name: "webgl", Value: "ddd"},
	})
	s.Require().NoError(err)
	s.Equal(2, accepted)

	values, err := s.fingerprints.ValuesOwnedBy(testAppID, user.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"aaa", "ddd"}, values)
}

// --- MatchEngine ---

func (s *EngineSuite) TestMatchRequiresTwoDistinctUsers() {
	alice := s.createUser("alice")
	s.record(alice.ID, "canvas", "solo")
	s.record(alice.ID, "webgl", "solo")

	matches, err := s.matches.TopRecentMatches(testAppID, 50, nil)
	s.Require().NoError(err)
	s.Empty(matches)
}

func (s *EngineSuite) TestTopRecentMatchesOrdersByRecency() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	s.record(alice.ID, "canvas", "older")
	s.record(bob.ID, "canvas", "older")
	time.Sleep(10 * time.Millisecond)
	s.record(alice.ID, "webgl", "newer")
	s.record(bob.ID, "webgl", "newer")

	matches, err := s.matches.TopRecentMatches(testAppID, 50, nil)
	s.Require().NoError(err)
	s.Require().Len(matches, 2)
	s.Equal("newer", matches[0].Value)
	s.Equal("older", matches[1].Value)
	s.ElementsMatch([]uuid.UUID{alice.ID, bob.ID}, matches[0].UserIDs)
}

func (s *EngineSuite) TestTopRecentMatchesHonorsLimit() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	for i := 0; i < 5; i++ {
		value := fmt.Sprintf("shared-%d", i)
		s.record(alice.ID, "canvas", value)
		s.record(bob.ID, "canvas", value)
	}

	matches, err := s.matches.TopRecentMatches(testAppID, 3, nil)
	s.Require().NoError(err)
	s.Len(matches, 3)
}

// --- FlagRegistry ---

func (s *EngineSuite) TestHiddenValueLeavesDashboardAndReturnsOnUnflag() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	carol := s.createUser("carol")

	s.record(alice.ID, "canvas", "X")
	s.record(bob.ID, "canvas", "X")
	s.record(carol.ID, "canvas", "Y")

	dashboard, err := s.reports.BuildDashboard(testAppID)
	s.Require().NoError(err)
	s.Require().Len(dashboard.Matches, 1)
	s.Equal("X", dashboard.Matches[0].Value)

	// Hide X: it leaves the match list and shows up as a flagged summary
	// counting every observation.
	s.Require().NoError(s.flags.SetFlag(testAppID, "X", services.FlagKindHide, true))

	dashboard, err = s.reports.BuildDashboard(testAppID)
	s.Require().NoError(err)
	s.Empty(dashboard.Matches)
	s.Require().Contains(dashboard.Flagged, "X")
	s.Equal(2, dashboard.Flagged["X"].ObservationCount)

	// Unhide: the record disappears and X is ranked again.
	s.Require().NoError(s.flags.SetFlag(testAppID, "X", services.FlagKindHide, false))

	var count int64
	s.db.Model(&models.FlaggedFingerprint{}).Where("app_id = ?", testAppID).Count(&count)
	s.Equal(int64(0), count)

	dashboard, err = s.reports.BuildDashboard(testAppID)
	s.Require().NoError(err)
	s.Require().Len(dashboard.Matches, 1)
	s.Equal("X", dashboard.Matches[0].Value)
}

func (s *EngineSuite) TestFlagRecordExistsOnlyWhileFlagged() {
	s.Require().NoError(s.flags.SetFlag(testAppID, "X", services.FlagKindHide, true))
	s.Require().NoError(s.flags.SetFlag(testAppID, "X", services.FlagKindSilence, true))

	var count int64
	s.db.Model(&models.FlaggedFingerprint{}).Where("app_id = ?", testAppID).Count(&count)
	s.Equal(int64(1), count)

	// Clearing one bit keeps the row, clearing both removes it.
	s.Require().NoError(s.flags.SetFlag(testAppID, "X", services.FlagKindHide, false))
	silenced, err := s.flags.IsSilenced(testAppID, "X")
	s.Require().NoError(err)
	s.True(silenced)

	s.Require().NoError(s.flags.SetFlag(testAppID, "X", services.FlagKindSilence, false))
	s.db.Model(&models.FlaggedFingerprint{}).Where("app_id = ?", testAppID).Count(&count)
	s.Equal(int64(0), count)
}

func (s *EngineSuite) TestSetFlagIsIdempotent() {
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.flags.SetFlag(testAppID, "X", services.FlagKindHide, true))
	}

	var count int64
	s.db.Model(&models.FlaggedFingerprint{}).Where("app_id = ?", testAppID).Count(&count)
	s.Equal(int64(1), count)

	for i := 0; i < 3; i++ {
		s.Require().NoError(s.flags.SetFlag(testAppID, "X", services.FlagKindHide, false))
	}
	s.db.Model(&models.FlaggedFingerprint{}).Where("app_id = ?", testAppID).Count(&count)
	s.Equal(int64(0), count)
}

func (s *EngineSuite) TestConcurrentHideAndSilenceBothLand() {
	var wg sync.WaitGroup
	wg.Add(2)
	var hideErr, silenceErr error
	go func() {
		defer wg.Done()
		hideErr = s.flags.SetFlag(testAppID, "X", services.FlagKindHide, true)
	}()
	go func() {
		defer wg.Done()
		silenceErr = s.flags.SetFlag(testAppID, "X", services.FlagKindSilence, true)
	}()
	wg.Wait()

	s.Require().NoError(hideErr)
	s.Require().NoError(silenceErr)

	hidden, err := s.flags.IsHidden(testAppID, "X")
	s.Require().NoError(err)
	silenced, err := s.flags.IsSilenced(testAppID, "X")
	s.Require().NoError(err)
	s.True(hidden)
	s.True(silenced)

	var count int64
	s.db.Model(&models.FlaggedFingerprint{}).Where("app_id = ?", testAppID).Count(&count)
	s.Equal(int64(1), count)
}

// --- IgnoreRegistry ---

func (s *EngineSuite) TestIgnoreIsSymmetricAndIdempotent() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	s.Require().NoError(s.ignores.SetIgnore(testAppID, alice.ID, bob.ID, true))
	s.Require().NoError(s.ignores.SetIgnore(testAppID, bob.ID, alice.ID, true))

	var count int64
	s.db.Model(&models.IgnoredUser{}).Where("app_id = ?", testAppID).Count(&count)
	s.Equal(int64(2), count)

	byAlice, err := s.ignores.IgnoredBy(testAppID, alice.ID)
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{bob.ID}, byAlice)

	byBob, err := s.ignores.IgnoredBy(testAppID, bob.ID)
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{alice.ID}, byBob)

	// Removal from either side clears both directions.
	s.Require().NoError(s.ignores.SetIgnore(testAppID, bob.ID, alice.ID, false))
	s.db.Model(&models.IgnoredUser{}).Where("app_id = ?", testAppID).Count(&count)
	s.Equal(int64(0), count)
}

func (s *EngineSuite) TestSetIgnoreRejectsUnknownUser() {
	alice := s.createUser("alice")

	err := s.ignores.SetIgnore(testAppID, alice.ID, uuid.New(), true)
	s.ErrorIs(err, services.ErrUserNotFound)
}

// --- ReportBuilder ---

func (s *EngineSuite) TestUserReportExcludesHiddenValues() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	s.record(alice.ID, "canvas", "visible")
	s.record(bob.ID, "canvas", "visible")
	s.record(alice.ID, "webgl", "hidden-val")
	s.record(bob.ID, "webgl", "hidden-val")

	s.Require().NoError(s.flags.SetFlag(testAppID, "hidden-val", services.FlagKindHide, true))

	report, err := s.reports.BuildUserReport(testAppID, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(report.Fingerprints, 1)
	s.Equal("visible", report.Fingerprints[0].Value)
	s.NotContains(report.SharedUsersByValue, "hidden-val")
}

func (s *EngineSuite) TestUserReportPrunesIgnoredPairs() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	carol := s.createUser("carol")

	s.record(alice.ID, "canvas", "X")
	s.record(bob.ID, "canvas", "X")
	s.record(carol.ID, "canvas", "X")

	s.Require().NoError(s.ignores.SetIgnore(testAppID, alice.ID, bob.ID, true))

	report, err := s.reports.BuildUserReport(testAppID, alice.ID)
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{bob.ID}, report.IgnoredUserIDs)
	s.Require().Contains(report.SharedUsersByValue, "X")
	s.Equal([]uuid.UUID{carol.ID}, report.SharedUsersByValue["X"])
}

func (s *EngineSuite) TestUserReportUnknownUser() {
	_, err := s.reports.BuildUserReport(testAppID, uuid.New())
	s.ErrorIs(err, services.ErrUserNotFound)
}

// --- Settings ---

func (s *EngineSuite) TestDashboardMatchLimitSetting() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	for i := 0; i < 4; i++ {
		value := fmt.Sprintf("shared-%d", i)
		s.record(alice.ID, "canvas", value)
		s.record(bob.ID, "canvas", value)
	}

	_, err := s.settings.Set(testAppID, services.SettingDashboardMatchLimit, "2", "int")
	s.Require().NoError(err)

	dashboard, err := s.reports.BuildDashboard(testAppID)
	s.Require().NoError(err)
	s.Len(dashboard.Matches, 2)
}

func (s *EngineSuite) TestSeedDefaultsKeepsExistingValues() {
	_, err := s.settings.Set(testAppID, services.SettingDashboardMatchLimit, "10", "int")
	s.Require().NoError(err)

	s.Require().NoError(s.settings.SeedDefaults([]string{testAppID}))

	s.Equal(10, s.settings.GetInt(testAppID, services.SettingDashboardMatchLimit, 50))
	s.True(s.settings.GetBool(testAppID, services.SettingIngestEnabled, false))
}

// --- Tenant isolation ---

func (s *EngineSuite) TestTenantIsolation() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	s.record(alice.ID, "canvas", "X")
	s.record(bob.ID, "canvas", "X")

	matches, err := s.matches.TopRecentMatches("forum-beta", 50, nil)
	s.Require().NoError(err)
	s.Empty(matches)

	s.Require().NoError(s.flags.SetFlag("forum-beta", "X", services.FlagKindHide, true))
	hidden, err := s.flags.IsHidden(testAppID, "X")
	s.Require().NoError(err)
	s.False(hidden)
}
