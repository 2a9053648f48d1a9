// internal/workers/campaign/recommend-campaign/handler_test.go
package recommendcampaign

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "talentads-workers/internal/common/errors"
	"talentads-workers/internal/common/logger"
	"talentads-workers/internal/models"
)

func createTestConfig() *Config {
	return &Config{
		Platforms:         []string{models.PlatformMeta, models.PlatformGoogle, models.PlatformLinkedIn, models.PlatformIndeed},
		MinSimilarJobs:    2,
		HistoryWindowDays: 180,
		MinDailyBudget: map[string]int64{
			models.PlatformMeta:     500,
			models.PlatformGoogle:   1000,
			models.PlatformLinkedIn: 2000,
			models.PlatformIndeed:   500,
		},
		CacheTTL: 15 * time.Minute,
		Timeout:  30 * time.Second,
	}
}

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func jobColumns() []string {
	return []string{"id", "title", "description", "required_skills", "location", "salary_min", "salary_max", "target_segments"}
}

func expectJobQuery(mock sqlmock.Sqlmock, jobID string) {
	mock.ExpectQuery("SELECT id, title").
		WithArgs(jobID).
		WillReturnRows(sqlmock.NewRows(jobColumns()).
			AddRow(jobID, "Backend Engineer", "", "{go,postgresql}",
				"Berlin", int64(6000000), int64(8000000), "{}"))
}

func historyColumns() []string {
	return []string{"c_id", "c_job_id", "platform", "status", "daily_budget", "started_at",
		"j_id", "title", "required_skills", "location", "salary_min", "salary_max"}
}

func expectHistoryQueries(mock sqlmock.Sqlmock, withCampaigns bool) {
	rows := sqlmock.NewRows(historyColumns())
	if withCampaigns {
		started := time.Now().Add(-20 * 24 * time.Hour)
		rows.AddRow("camp-1", "job-old-1", models.PlatformLinkedIn, models.CampaignStatusCompleted,
			int64(3000), started, "job-old-1", "Backend Developer",
			"{go,postgresql}", "Berlin", int64(6000000), int64(8000000))
		rows.AddRow("camp-2", "job-old-2", models.PlatformLinkedIn, models.CampaignStatusCompleted,
			int64(3000), started, "job-old-2", "Go Engineer",
			"{go,postgresql}", "Berlin", int64(6500000), int64(8500000))
	}
	mock.ExpectQuery("FROM campaigns c").WillReturnRows(rows)

	if withCampaigns {
		insights := sqlmock.NewRows([]string{"campaign_id", "date", "impressions", "clicks", "spend", "conversions"}).
			AddRow("camp-1", time.Now().Add(-19*24*time.Hour), int64(50000), int64(1200), int64(180000), int64(120)).
			AddRow("camp-2", time.Now().Add(-18*24*time.Hour), int64(60000), int64(1500), int64(225000), int64(140))
		mock.ExpectQuery("FROM campaign_insights").WillReturnRows(insights)
	}
}

func expectProfilesQuery(mock sqlmock.Sqlmock) {
	topSkills, _ := json.Marshal([]models.ValueCount{{Value: "go", Count: 12}})
	topLocations, _ := json.Marshal([]models.ValueCount{{Value: "Berlin", Count: 9}})
	education, _ := json.Marshal(map[string]int{"bachelor": 10})

	mock.ExpectQuery("FROM segments").
		WillReturnRows(sqlmock.NewRows([]string{"id", "candidate_count", "avg_experience", "top_skills", "top_locations", "education_counts"}).
			AddRow(int64(7), 15, 3.5, topSkills, topLocations, education))
}

func TestExecute_HistoricalRecommendation(t *testing.T) {
	db, mock := setupMockDB(t)
	redisClient, _ := setupRedis(t)
	handler := NewHandler(createTestConfig(), db, redisClient, logger.NewTestLogger(t))

	expectJobQuery(mock, "job-1")
	expectHistoryQueries(mock, true)
	expectProfilesQuery(mock)

	output, err := handler.Execute(context.Background(), &Input{JobID: "job-1"})
	require.NoError(t, err)

	assert.Equal(t, "job-1", output.JobID)
	assert.True(t, output.BasedOnHistorical)
	assert.Equal(t, 2, output.SimilarJobCount)
	assert.Equal(t, models.PlatformLinkedIn, output.BestPlatform)
	assert.GreaterOrEqual(t, output.ConfidenceScore, 45)
	assert.Contains(t, output.Targeting.SegmentIDs, int64(7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_ExploratoryWhenNoHistory(t *testing.T) {
	db, mock := setupMockDB(t)
	redisClient, _ := setupRedis(t)
	handler := NewHandler(createTestConfig(), db, redisClient, logger.NewTestLogger(t))

	expectJobQuery(mock, "job-2")
	expectHistoryQueries(mock, false)
	expectProfilesQuery(mock)

	output, err := handler.Execute(context.Background(), &Input{JobID: "job-2"})
	require.NoError(t, err)

	assert.False(t, output.BasedOnHistorical)
	assert.LessOrEqual(t, output.ConfidenceScore, 40)
	assert.Len(t, output.PlatformRanking, 4)
}

func TestExecute_JobNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	redisClient, _ := setupRedis(t)
	handler := NewHandler(createTestConfig(), db, redisClient, logger.NewTestLogger(t))

	mock.ExpectQuery("SELECT id, title").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := handler.Execute(context.Background(), &Input{JobID: "missing"})
	require.Error(t, err)

	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeJobNotFound, stdErr.Code)
}

func TestExecute_ServesFromCache(t *testing.T) {
	db, mock := setupMockDB(t)
	redisClient, mr := setupRedis(t)
	handler := NewHandler(createTestConfig(), db, redisClient, logger.NewTestLogger(t))

	cached := &Output{
		JobID: "job-3",
		Recommendation: models.Recommendation{
			BestPlatform:    models.PlatformGoogle,
			ConfidenceScore: 70,
		},
	}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, mr.Set(cacheKey("job-3"), string(raw)))

	// no db expectations: everything must come from the cache
	output, err := handler.Execute(context.Background(), &Input{JobID: "job-3"})
	require.NoError(t, err)
	assert.Equal(t, models.PlatformGoogle, output.BestPlatform)
	assert.Equal(t, 70, output.ConfidenceScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_CachesResult(t *testing.T) {
	db, mock := setupMockDB(t)
	redisClient, mr := setupRedis(t)
	handler := NewHandler(createTestConfig(), db, redisClient, logger.NewTestLogger(t))

	expectJobQuery(mock, "job-4")
	expectHistoryQueries(mock, false)
	expectProfilesQuery(mock)

	_, err := handler.Execute(context.Background(), &Input{JobID: "job-4"})
	require.NoError(t, err)
	assert.True(t, mr.Exists(cacheKey("job-4")))
}
