package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwhload/internal/catalog"
	"dwhload/internal/observability"
	"dwhload/internal/testutil"
	"dwhload/internal/ui"
	"dwhload/internal/warehouse"
	"dwhload/pkg/errors"
	"dwhload/pkg/models"
)

func init() {
	ui.SetColor(false)
}

func mockOptions(wh *testutil.MockWarehouse) (Options, *bytes.Buffer) {
	logger, _ := testutil.Logger()
	var out bytes.Buffer
	return Options{
		UI:     ui.NewUI(&out, false, false),
		Logger: logger,
		NewSession: func(models.Cluster, *observability.Logger) Session {
			return wh
		},
	}, &out
}

func sqlOf(stmts ...[]catalog.Statement) []string {
	var queries []string
	for _, seq := range stmts {
		for _, s := range seq {
			queries = append(queries, s.SQL)
		}
	}
	return queries
}

func TestProvision(t *testing.T) {
	wh := testutil.NewMockWarehouse()
	opts, out := mockOptions(wh)
	cfg := testutil.Config()

	reports, err := Provision(context.Background(), cfg, opts)
	require.NoError(t, err)

	cat, err := catalog.New(cfg)
	require.NoError(t, err)
	assert.Equal(t, sqlOf(cat.Drop, cat.Create), wh.Queries())

	assert.Equal(t, 1, wh.ConnectCount)
	assert.Equal(t, 1, wh.CloseCount)

	require.Len(t, reports, 2)
	assert.Equal(t, catalog.SequenceDrop, reports[0].Sequence)
	assert.Equal(t, catalog.SequenceCreate, reports[1].Sequence)

	assert.Contains(t, out.String(), "Running 1/8 drop table queries")
	assert.Contains(t, out.String(), "Running 8/8 create table queries")
}

func TestLoad(t *testing.T) {
	wh := testutil.NewMockWarehouse()
	opts, out := mockOptions(wh)
	cfg := testutil.Config()

	var checked []string
	opts.Preflight = func(_ context.Context, locations ...string) error {
		assert.Zero(t, wh.ConnectCount, "preflight runs before connecting")
		checked = locations
		return nil
	}

	reports, err := Load(context.Background(), cfg, opts)
	require.NoError(t, err)

	cat, err := catalog.New(cfg)
	require.NoError(t, err)
	queries := wh.Queries()
	assert.Equal(t, sqlOf(cat.Copy, cat.Insert), queries)
	assert.True(t, strings.HasPrefix(queries[0], "COPY staging_events"))
	assert.True(t, strings.HasPrefix(queries[1], "COPY staging_songs"))

	assert.Equal(t, []string{cfg.S3.LogData, cfg.S3.LogJSONPath, cfg.S3.SongData}, checked)
	require.Len(t, reports, 2)
	assert.Equal(t, 1, wh.CloseCount)
	assert.Contains(t, out.String(), "Running 2/2 copy table queries")
	assert.Contains(t, out.String(), "Running 6/6 insert table queries")
}

func TestProvisionThenLoadOpenSeparateSessions(t *testing.T) {
	wh := testutil.NewMockWarehouse()
	opts, _ := mockOptions(wh)
	cfg := testutil.Config()
	cat, err := catalog.New(cfg)
	require.NoError(t, err)

	_, err = Provision(context.Background(), cfg, opts)
	require.NoError(t, err)
	assert.Len(t, wh.Queries(), 16)
	assert.False(t, wh.Connected)

	wh.Reset()

	_, err = Load(context.Background(), cfg, opts)
	require.NoError(t, err)
	assert.Equal(t, sqlOf(cat.Copy, cat.Insert), wh.Queries())
	assert.Equal(t, 1, wh.ConnectCount)
	assert.Equal(t, 1, wh.CloseCount)
}

func TestLoadPreflightFailure(t *testing.T) {
	wh := testutil.NewMockWarehouse()
	opts, _ := mockOptions(wh)
	opts.Preflight = func(context.Context, ...string) error {
		return errors.PreflightError("s3://udacity-dend/song_data", nil)
	}

	reports, err := Load(context.Background(), testutil.Config(), opts)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodePreflightFailed))
	assert.Empty(t, reports)
	assert.Zero(t, wh.ConnectCount)
}

func TestFailureStopsRunAndCloses(t *testing.T) {
	wh := testutil.NewMockWarehouse()
	wh.FailOn = "staging_songs"
	wh.FailError = fmt.Errorf("permission denied for relation staging_songs")
	opts, out := mockOptions(wh)

	reports, err := Provision(context.Background(), testutil.Config(), opts)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSQLPermission))

	// users_max_ts and staging_events drops committed before the failure
	assert.Equal(t, []string{
		"DROP TABLE IF EXISTS users_max_ts;",
		"DROP TABLE IF EXISTS staging_events;",
	}, wh.Queries())
	assert.Equal(t, 1, wh.CloseCount)

	require.Len(t, reports, 1)
	assert.Equal(t, "staging_songs_drop", reports[0].Failed().Name)
	assert.NotContains(t, out.String(), "create table queries")
}

func TestConnectFailure(t *testing.T) {
	wh := testutil.NewMockWarehouse()
	wh.ConnectError = errors.ConnectionError("Failed to connect to warehouse", fmt.Errorf("dial tcp: i/o timeout"))
	opts, _ := mockOptions(wh)

	reports, err := Provision(context.Background(), testutil.Config(), opts)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConnectionFailed))
	assert.Empty(t, reports)
	assert.Empty(t, wh.Queries())
	assert.Zero(t, wh.CloseCount)
}

func TestDryRunNeverConnects(t *testing.T) {
	logger, _ := testutil.Logger()
	var out bytes.Buffer
	opts := Options{
		DryRun: true,
		UI:     ui.NewUI(&out, false, false),
		Logger: logger,
		NewSession: func(models.Cluster, *observability.Logger) Session {
			t.Fatal("dry run must not open a session")
			return nil
		},
		Preflight: func(context.Context, ...string) error {
			t.Fatal("dry run must not run preflight")
			return nil
		},
	}

	reports, err := Load(context.Background(), testutil.Config(), opts)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	for _, r := range reports {
		assert.Zero(t, r.Executed())
	}
	assert.Contains(t, out.String(), "Running 6/6 insert table queries")
}

func TestProvisionOverSQL(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	cfg := testutil.Config()
	cat, err := catalog.New(cfg)
	require.NoError(t, err)

	// Every statement is committed on its own
	for _, q := range sqlOf(cat.Drop, cat.Create) {
		mock.ExpectBegin()
		mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
	}

	logger, _ := testutil.Logger()
	_, err = Provision(context.Background(), cfg, Options{
		Logger: logger,
		NewSession: func(_ models.Cluster, l *observability.Logger) Session {
			return warehouse.NewServiceWithDB(db, l)
		},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
