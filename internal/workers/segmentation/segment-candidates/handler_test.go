// internal/workers/segmentation/segment-candidates/handler_test.go
package segmentcandidates

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "talentads-workers/internal/common/errors"
	"talentads-workers/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		DefaultStrategy: "centroid",
		MinCandidates:   4,
		MaxIterations:   100,
		Seed:            42,
		DefaultEps:      0.75,
		DefaultMinPts:   4,
		TopSkills:       5,
		OneHotMax:       8,
		LockKey:         "segmentation:lock",
		LockTTL:         10 * time.Minute,
		Timeout:         30 * time.Second,
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

func newTestHandler(t *testing.T, mock func(sqlmock.Sqlmock)) (*Handler, *miniredis.Miniredis) {
	db, sqlMock := setupMockDB(t)
	redisClient, mr := setupRedis(t)
	if mock != nil {
		mock(sqlMock)
	}
	return NewHandler(createTestConfig(), db, redisClient, logger.NewTestLogger(t)), mr
}

func candidateColumns() []string {
	return []string{"id", "years_experience", "education_level", "primary_skill", "skills", "location", "desired_salary"}
}

// candidateRows builds two clearly separated populations: juniors around
// 1-2 years and seniors around 10-12.
func candidateRows() *sqlmock.Rows {
	rows := sqlmock.NewRows(candidateColumns())
	for i := 0; i < 4; i++ {
		rows.AddRow(fmt.Sprintf("jr-%d", i), 1.0+float64(i)*0.3, "bachelor", "go",
			"{go,sql}", "berlin", int64(4000000))
	}
	for i := 0; i < 4; i++ {
		rows.AddRow(fmt.Sprintf("sr-%d", i), 10.0+float64(i)*0.5, "master", "java",
			"{java,kubernetes}", "munich", int64(9000000))
	}
	return rows
}

func expectCommit(mock sqlmock.Sqlmock, segmentCount, candidateCount int) {
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO segmentation_runs").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM segments").
		WillReturnResult(sqlmock.NewResult(0, 0))
	for i := 0; i < segmentCount; i++ {
		mock.ExpectQuery("INSERT INTO segments").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100 + i)))
	}
	for i := 0; i < candidateCount; i++ {
		mock.ExpectExec("UPDATE candidates").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()
}

// ==========================
// Core Functionality Tests
// ==========================

func TestExecute_CentroidRunCommits(t *testing.T) {
	var sqlMock sqlmock.Sqlmock
	handler, _ := newTestHandler(t, func(m sqlmock.Sqlmock) {
		sqlMock = m
		m.ExpectQuery("SELECT id, years_experience").
			WillReturnRows(candidateRows())
		expectCommit(m, 2, 8)
	})

	output, err := handler.Execute(context.Background(), &Input{Strategy: "centroid", K: 2, RequestedBy: "test"})
	require.NoError(t, err)

	assert.NotEmpty(t, output.RunID)
	assert.Equal(t, "centroid", output.Strategy)
	assert.Equal(t, 2, output.SegmentCount)
	assert.Equal(t, 8, output.CandidatesProcessed)
	assert.Zero(t, output.CandidatesUnsegmented)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestExecute_DefaultsStrategyFromConfig(t *testing.T) {
	handler, _ := newTestHandler(t, func(m sqlmock.Sqlmock) {
		m.ExpectQuery("SELECT id, years_experience").
			WillReturnRows(candidateRows())
		expectCommit(m, 2, 8)
	})

	output, err := handler.Execute(context.Background(), &Input{K: 2})
	require.NoError(t, err)
	assert.Equal(t, "centroid", output.Strategy)
}

func TestExecute_InvalidStrategy(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	_, err := handler.Execute(context.Background(), &Input{Strategy: "spectral"})
	require.Error(t, err)

	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeInvalidStrategy, stdErr.Code)
}

func TestExecute_BusyWhenLockHeld(t *testing.T) {
	handler, mr := newTestHandler(t, nil)
	mr.Set("segmentation:lock", "other-run-id")

	_, err := handler.Execute(context.Background(), &Input{Strategy: "centroid", K: 2})
	require.Error(t, err)

	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeSegmentationBusy, stdErr.Code)
	assert.Contains(t, stdErr.Details, "other-run-id")
}

func TestExecute_ReleasesLockAfterRun(t *testing.T) {
	handler, mr := newTestHandler(t, func(m sqlmock.Sqlmock) {
		m.ExpectQuery("SELECT id, years_experience").
			WillReturnRows(candidateRows())
		expectCommit(m, 2, 8)
	})

	_, err := handler.Execute(context.Background(), &Input{Strategy: "centroid", K: 2})
	require.NoError(t, err)
	assert.False(t, mr.Exists("segmentation:lock"))
}

func TestExecute_ReleasesLockOnFailure(t *testing.T) {
	handler, mr := newTestHandler(t, func(m sqlmock.Sqlmock) {
		m.ExpectQuery("SELECT id, years_experience").
			WillReturnRows(sqlmock.NewRows(candidateColumns()).
				AddRow("c-1", 2.0, "bachelor", "go", "{go}", "berlin", int64(4000000)))
	})

	_, err := handler.Execute(context.Background(), &Input{Strategy: "centroid", K: 2})
	require.Error(t, err)
	assert.False(t, mr.Exists("segmentation:lock"))
}

func TestExecute_InsufficientData(t *testing.T) {
	handler, _ := newTestHandler(t, func(m sqlmock.Sqlmock) {
		m.ExpectQuery("SELECT id, years_experience").
			WillReturnRows(sqlmock.NewRows(candidateColumns()).
				AddRow("c-1", 2.0, "bachelor", "go", "{go}", "berlin", int64(4000000)).
				AddRow("c-2", 8.0, "master", "java", "{java}", "munich", int64(8000000)))
	})

	_, err := handler.Execute(context.Background(), &Input{Strategy: "centroid", K: 2})
	require.Error(t, err)

	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeInsufficientData, stdErr.Code)
}

func TestExecute_DensityCountsNoise(t *testing.T) {
	rows := sqlmock.NewRows(candidateColumns())
	for i := 0; i < 6; i++ {
		rows.AddRow(fmt.Sprintf("core-%d", i), 2.0, "bachelor", "go",
			"{go}", "berlin", int64(4000000))
	}
	// one far outlier
	rows.AddRow("outlier", 40.0, "doctorate", "cobol",
		"{cobol}", "reykjavik", int64(30000000))

	var sqlMock sqlmock.Sqlmock
	handler, _ := newTestHandler(t, func(m sqlmock.Sqlmock) {
		sqlMock = m
		m.ExpectQuery("SELECT id, years_experience").
			WillReturnRows(rows)
		expectCommit(m, 1, 7)
	})

	output, err := handler.Execute(context.Background(), &Input{Strategy: "density", Eps: 1.0, MinPoints: 3})
	require.NoError(t, err)

	assert.Equal(t, 1, output.SegmentCount)
	assert.Equal(t, 1, output.CandidatesUnsegmented)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestExecute_CommitFailureRollsBack(t *testing.T) {
	handler, _ := newTestHandler(t, func(m sqlmock.Sqlmock) {
		m.ExpectQuery("SELECT id, years_experience").
			WillReturnRows(candidateRows())
		m.ExpectBegin()
		m.ExpectExec("INSERT INTO segmentation_runs").
			WillReturnError(fmt.Errorf("disk full"))
		m.ExpectRollback()
	})

	_, err := handler.Execute(context.Background(), &Input{Strategy: "centroid", K: 2})
	require.Error(t, err)

	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeCommitFailed, stdErr.Code)
}

// ==========================
// Input Validation Tests
// ==========================

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name      string
		variables map[string]interface{}
		wantErr   bool
	}{
		{
			name:      "empty input is valid",
			variables: map[string]interface{}{},
			wantErr:   false,
		},
		{
			name: "valid centroid request",
			variables: map[string]interface{}{
				"strategy": "centroid",
				"k":        3,
			},
			wantErr: false,
		},
		{
			name: "k below minimum",
			variables: map[string]interface{}{
				"strategy": "centroid",
				"k":        1,
			},
			wantErr: true,
		},
		{
			name: "eps must be positive",
			variables: map[string]interface{}{
				"strategy": "density",
				"eps":      0,
			},
			wantErr: true,
		},
		{
			name: "wrong type for k",
			variables: map[string]interface{}{
				"k": "three",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(tt.variables)
			if tt.wantErr {
				require.Error(t, err)
				stdErr, ok := err.(*commonerrors.StandardError)
				require.True(t, ok)
				assert.Equal(t, commonerrors.ErrCodeInvalidInput, stdErr.Code)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
