package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dashspec-cli/internal/model"
)

func TestPostgresCreateRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO runs`)).
		WithArgs(pgxmock.AnyArg(), "dash.yaml", "running", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s := NewPostgresWithPool(mock)
	run, err := s.CreateRun(context.Background(), "dash.yaml")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCompleteRunNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE runs SET status`)).
		WithArgs("complete", nil, nil, pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	s := NewPostgresWithPool(mock)
	err = s.CompleteRun(context.Background(), "missing", nil, nil)
	assert.ErrorContains(t, err, "run not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	report := `{"total_rows_initial":10,"total_rows_final":9}`
	rows := pgxmock.NewRows([]string{
		"id", "spec_name", "status", "report", "results", "error", "created_at", "updated_at",
	}).AddRow("r1", "dash.yaml", model.RunStatus("complete"), &report, nil, nil, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, spec_name, status`)).
		WithArgs("r1").
		WillReturnRows(rows)

	s := NewPostgresWithPool(mock)
	run, err := s.GetRun(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Report)
	assert.Equal(t, 9, run.Report.RowsFinal)
	assert.NoError(t, mock.ExpectationsWereMet())
}
