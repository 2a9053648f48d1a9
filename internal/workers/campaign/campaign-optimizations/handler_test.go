// internal/workers/campaign/campaign-optimizations/handler_test.go
package campaignoptimizations

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "talentads-workers/internal/common/errors"
	"talentads-workers/internal/common/logger"
	"talentads-workers/internal/models"
)

func createTestConfig() *Config {
	return &Config{
		InsightWindowDays: 30,
		MinInsightDays:    3,
		CTRFloors: map[string]float64{
			models.PlatformMeta:     0.009,
			models.PlatformGoogle:   0.020,
			models.PlatformLinkedIn: 0.004,
			models.PlatformIndeed:   0.010,
		},
		ConversionFloor: 0.01,
		Timeout:         30 * time.Second,
	}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func campaignColumns() []string {
	return []string{"id", "job_id", "platform", "status", "daily_budget", "total_budget", "target_segments", "started_at"}
}

func expectCampaignQuery(mock sqlmock.Sqlmock, campaignID, platform string, dailyBudget int64) {
	mock.ExpectQuery("FROM campaigns").
		WithArgs(campaignID).
		WillReturnRows(sqlmock.NewRows(campaignColumns()).
			AddRow(campaignID, "job-1", platform, models.CampaignStatusActive,
				dailyBudget, int64(0), "{7,9}", time.Now().Add(-10*24*time.Hour)))
}

func insightColumns() []string {
	return []string{"campaign_id", "date", "impressions", "clicks", "spend", "conversions"}
}

// flatInsightRows builds n identical daily buckets ending yesterday.
func flatInsightRows(campaignID string, n int, impressions, clicks, spend, conversions int64) *sqlmock.Rows {
	rows := sqlmock.NewRows(insightColumns())
	for i := 0; i < n; i++ {
		date := time.Now().AddDate(0, 0, -(n - i))
		rows.AddRow(campaignID, date, impressions, clicks, spend, conversions)
	}
	return rows
}

func TestExecute_LowCTRProducesTargetingSuggestion(t *testing.T) {
	db, mock := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	expectCampaignQuery(mock, "camp-1", models.PlatformMeta, 100000)
	// CTR 0.5% against the 0.9% meta floor, spend pacing on budget
	mock.ExpectQuery("FROM campaign_insights").
		WithArgs("camp-1", sqlmock.AnyArg()).
		WillReturnRows(flatInsightRows("camp-1", 5, 10000, 50, 100000, 1))

	output, err := handler.Execute(context.Background(), &Input{CampaignID: "camp-1"})
	require.NoError(t, err)

	assert.Equal(t, "camp-1", output.CampaignID)
	assert.Equal(t, 5, output.InsightDays)
	require.NotEmpty(t, output.Suggestions)
	assert.Equal(t, models.SuggestionTargeting, output.Suggestions[0].Type)
	assert.Equal(t, models.ImpactHigh, output.Suggestions[0].Impact)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_HealthyCampaignHasNoSuggestions(t *testing.T) {
	db, mock := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	expectCampaignQuery(mock, "camp-2", models.PlatformMeta, 100000)
	// CTR 1.2%, conversion rate 1.7%, spend on budget, no fatigue
	mock.ExpectQuery("FROM campaign_insights").
		WithArgs("camp-2", sqlmock.AnyArg()).
		WillReturnRows(flatInsightRows("camp-2", 5, 10000, 120, 100000, 2))

	output, err := handler.Execute(context.Background(), &Input{CampaignID: "camp-2"})
	require.NoError(t, err)

	assert.Empty(t, output.Suggestions)
	assert.NotNil(t, output.Suggestions)
	assert.Equal(t, 5, output.InsightDays)
}

func TestExecute_YoungCampaignIsNotJudged(t *testing.T) {
	db, mock := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	expectCampaignQuery(mock, "camp-3", models.PlatformGoogle, 100000)
	mock.ExpectQuery("FROM campaign_insights").
		WithArgs("camp-3", sqlmock.AnyArg()).
		WillReturnRows(flatInsightRows("camp-3", 2, 5000, 20, 40000, 0))

	output, err := handler.Execute(context.Background(), &Input{CampaignID: "camp-3"})
	require.NoError(t, err)

	assert.NotNil(t, output.Suggestions)
	assert.Empty(t, output.Suggestions)
	assert.Equal(t, 2, output.InsightDays)
}

func TestExecute_OverspendProducesBudgetSuggestion(t *testing.T) {
	db, mock := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	expectCampaignQuery(mock, "camp-4", models.PlatformLinkedIn, 50000)
	// CTR 1.0% clears the 0.4% linkedin floor, spend pacing at 200%
	mock.ExpectQuery("FROM campaign_insights").
		WithArgs("camp-4", sqlmock.AnyArg()).
		WillReturnRows(flatInsightRows("camp-4", 4, 10000, 100, 100000, 3))

	output, err := handler.Execute(context.Background(), &Input{CampaignID: "camp-4"})
	require.NoError(t, err)

	require.Len(t, output.Suggestions, 1)
	assert.Equal(t, models.SuggestionBudget, output.Suggestions[0].Type)
	assert.Equal(t, models.ImpactMedium, output.Suggestions[0].Impact)
	assert.Contains(t, output.Suggestions[0].Recommendation, "pacing")
}

func TestExecute_CampaignNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	mock.ExpectQuery("FROM campaigns").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := handler.Execute(context.Background(), &Input{CampaignID: "missing"})
	require.Error(t, err)

	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeCampaignNotFound, stdErr.Code)
}

func TestExecute_InsightQueryFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	expectCampaignQuery(mock, "camp-5", models.PlatformMeta, 100000)
	mock.ExpectQuery("FROM campaign_insights").
		WithArgs("camp-5", sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	_, err := handler.Execute(context.Background(), &Input{CampaignID: "camp-5"})
	require.Error(t, err)

	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeQueryExecutionFailed, stdErr.Code)
}
