// internal/workers/segmentation/refresh-segment-profiles/handler_test.go
package refreshsegmentprofiles

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentads-workers/internal/common/logger"
)

func createTestConfig() *Config {
	return &Config{
		TopSkills: 5,
		Timeout:   30 * time.Second,
	}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func segmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "is_name_manual"}).
		AddRow(int64(10), "go / berlin (3)", false).
		AddRow(int64(11), "Data people", true)
}

func candidateRowsFor(t *testing.T) *sqlmock.Rows {
	t.Helper()
	cols := []string{"id", "years_experience", "education_level", "primary_skill", "skills", "location", "desired_salary", "segment_id"}
	return sqlmock.NewRows(cols).
		AddRow("c-1", 2.0, "bachelor", "go", "{go}", "berlin", int64(4000000), int64(10)).
		AddRow("c-2", 3.0, "bachelor", "go", "{go,sql}", "berlin", int64(4500000), int64(10)).
		AddRow("c-3", 8.0, "master", "python", "{python,ml}", "munich", int64(9000000), int64(11)).
		AddRow("c-4", 1.0, "secondary", "", "{}", "", nil, nil)
}

func TestExecute_RefreshesStatsAndActivity(t *testing.T) {
	db, mock := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	mock.ExpectQuery("SELECT id, name, is_name_manual").
		WillReturnRows(segmentRows())
	mock.ExpectQuery("SELECT id, years_experience").
		WillReturnRows(candidateRowsFor(t))
	mock.ExpectQuery("SELECT DISTINCT unnest").
		WillReturnRows(sqlmock.NewRows([]string{"unnest"}).AddRow(int64(11)))

	mock.ExpectBegin()
	// segment 10: auto-name regenerated, inactive
	mock.ExpectExec("UPDATE segments").
		WithArgs("go / berlin (2)", false, 2, 2.5,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// segment 11: manual name preserved, active
	mock.ExpectExec("UPDATE segments").
		WithArgs("Data people", true, 1, 8.0,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	output, err := handler.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, output.SegmentsRefreshed)
	assert.Equal(t, 1, output.ActiveSegments)
	assert.Equal(t, 3, output.CandidatesAssigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_NoSegmentsIsNoOp(t *testing.T) {
	db, mock := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	mock.ExpectQuery("SELECT id, name, is_name_manual").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_name_manual"}))

	output, err := handler.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, output.SegmentsRefreshed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_EmptiedSegmentGetsZeroProfile(t *testing.T) {
	db, mock := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	mock.ExpectQuery("SELECT id, name, is_name_manual").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_name_manual"}).
			AddRow(int64(10), "go / berlin (3)", false))
	cols := []string{"id", "years_experience", "education_level", "primary_skill", "skills", "location", "desired_salary", "segment_id"}
	mock.ExpectQuery("SELECT id, years_experience").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("c-1", 2.0, "bachelor", "go", "{go}", "berlin", int64(4000000), nil))
	mock.ExpectQuery("SELECT DISTINCT unnest").
		WillReturnRows(sqlmock.NewRows([]string{"unnest"}))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE segments").
		WithArgs("segment (0)", false, 0, 0.0,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	output, err := handler.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, output.SegmentsRefreshed)
	assert.Zero(t, output.CandidatesAssigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_QueryFailureSurfaces(t *testing.T) {
	db, mock := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	mock.ExpectQuery("SELECT id, name, is_name_manual").
		WillReturnError(sql.ErrConnDone)

	_, err := handler.Execute(context.Background())
	require.Error(t, err)
}
