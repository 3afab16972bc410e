package meta

import (
	"context"
	"testing"
	"time"

	"github.com/metarpc/metarpc/engine"
	"github.com/metarpc/metarpc/session"
	"github.com/metarpc/metarpc/typedvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct{}

func (f *fakeEngine) Open(ctx context.Context) (engine.Conn, error) { return &fakeConn{}, nil }
func (f *fakeEngine) Name(ctx context.Context) (string, error)      { return "fakedb 1.0", nil }

type fakeConn struct {
	closed     bool
	catalog    string
	readOnly   bool
	autoCommit bool
}

func (f *fakeConn) Prepare(ctx context.Context, sql string) (engine.Statement, error) {
	return &fakeStatement{sql: sql}, nil
}
func (f *fakeConn) SetAutoCommit(ctx context.Context, autoCommit bool) error {
	f.autoCommit = autoCommit
	return nil
}
func (f *fakeConn) Commit(ctx context.Context) error   { return nil }
func (f *fakeConn) Rollback(ctx context.Context) error { return nil }
func (f *fakeConn) SetCatalog(ctx context.Context, catalog string) error {
	f.catalog = catalog
	return nil
}
func (f *fakeConn) SetSchema(ctx context.Context, schema string) error { return nil }
func (f *fakeConn) SetReadOnly(ctx context.Context, readOnly bool) error {
	f.readOnly = readOnly
	return nil
}
func (f *fakeConn) SetTransactionIsolation(ctx context.Context, level int32) error {
	return nil
}
func (f *fakeConn) Schemas(ctx context.Context, catalogFilter string) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
	sig := []typedvalue.ColumnMetaData{{Name: "TABLE_SCHEM", Type: typedvalue.SQLTypeVarchar}}
	return newFakeCursor([][]typedvalue.Value{
		{typedvalue.String("public")},
		{typedvalue.String("information_schema")},
	}), sig, nil
}
func (f *fakeConn) Tables(ctx context.Context, catalog, schemaPattern, tableNamePattern string, types []string) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
	return newFakeCursor(nil), nil, nil
}
func (f *fakeConn) Columns(ctx context.Context, catalog, schemaPattern, tableNamePattern, columnNamePattern string) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
	return newFakeCursor(nil), nil, nil
}
func (f *fakeConn) TypeInfo(ctx context.Context) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
	return newFakeCursor(nil), nil, nil
}
func (f *fakeConn) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

type fakeStatement struct {
	sql      string
	closed   bool
	rows     [][]typedvalue.Value
	sig      []typedvalue.ColumnMetaData
	paramSig []typedvalue.ParamMetaData
}

func (f *fakeStatement) ParamSignature() []typedvalue.ParamMetaData { return f.paramSig }
func (f *fakeStatement) Execute(ctx context.Context, params []typedvalue.Value, maxRowsTotal int64) (engine.Cursor, []typedvalue.ColumnMetaData, int64, error) {
	if f.rows == nil {
		return nil, nil, 1, nil
	}
	return newFakeCursor(f.rows), f.sig, 0, nil
}
func (f *fakeStatement) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

type fakeCursor struct {
	rows   [][]typedvalue.Value
	pos    int
	closed bool
}

func newFakeCursor(rows [][]typedvalue.Value) *fakeCursor {
	return &fakeCursor{rows: rows}
}

func (f *fakeCursor) Fetch(ctx context.Context, n int) ([][]typedvalue.Value, bool, error) {
	end := f.pos + n
	if end > len(f.rows) {
		end = len(f.rows)
	}
	out := f.rows[f.pos:end]
	f.pos = end
	return out, f.pos >= len(f.rows), nil
}
func (f *fakeCursor) Skip(ctx context.Context, n int64) error {
	f.pos += int(n)
	return nil
}
func (f *fakeCursor) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

func newTestService() *Service {
	store := session.NewStore(10, time.Minute, 10, time.Minute, nil)
	return NewService(store, &fakeEngine{}, nil, "localhost:8765", nil)
}

func bindRows(stmt *session.Statement, sig []typedvalue.ColumnMetaData, rows [][]typedvalue.Value) {
	stmt.Engine = &fakeStatement{rows: rows, sig: sig}
	stmt.ParamSignature = nil
}

func TestOpenAndCloseConnection(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	conn, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)
	assert.Equal(t, "c1", conn.ID)

	require.NoError(t, svc.CloseConnection(context.Background(), "c1"))
}

func TestOpenConnectionIsIdempotent(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	props := session.Properties{AutoCommit: true}
	c1, err := svc.OpenConnection(context.Background(), "c1", props)
	require.NoError(t, err)
	c2, err := svc.OpenConnection(context.Background(), "c1", props)
	require.NoError(t, err)
	assert.Same(t, c1, c2)
}

func TestPrepareAndExecuteReturnsFirstFrame(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)

	stmt, err := svc.CreateStatement(context.Background(), "c1")
	require.NoError(t, err)

	rs, err := svc.PrepareAndExecute(context.Background(), "c1", stmt.ID, "insert into t values (1)", 0, 10)
	require.NoError(t, err)
	assert.True(t, rs.Frame.Done)
	assert.Equal(t, int64(1), rs.UpdateCount)
}

func TestExecuteRejectsParameterArityMismatch(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)

	stmt, err := svc.CreateStatement(context.Background(), "c1")
	require.NoError(t, err)

	bound, err := svc.store.Statement("c1", stmt.ID)
	require.NoError(t, err)
	bound.Engine = &fakeStatement{}
	bound.ParamSignature = []typedvalue.ParamMetaData{{Ordinal: 0, Type: typedvalue.SQLTypeInteger}}

	_, err = svc.Execute(context.Background(), "c1", stmt.ID, nil, 10)
	assert.Error(t, err)
}

func TestFetchRejectsBackwardOffset(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)

	stmt, err := svc.CreateStatement(context.Background(), "c1")
	require.NoError(t, err)

	bound, err := svc.store.Statement("c1", stmt.ID)
	require.NoError(t, err)
	bindRows(bound, []typedvalue.ColumnMetaData{{Name: "n", Type: typedvalue.SQLTypeInteger}},
		[][]typedvalue.Value{{typedvalue.Integer(1)}, {typedvalue.Integer(2)}, {typedvalue.Integer(3)}})

	rs, err := svc.Execute(context.Background(), "c1", stmt.ID, nil, 2)
	require.NoError(t, err)
	assert.False(t, rs.Frame.Done)
	assert.Len(t, rs.Frame.Rows, 2)

	_, err = svc.Fetch(context.Background(), "c1", stmt.ID, 0, 10)
	assert.Error(t, err)
}

func TestFetchAdvancesAndReleasesOnDone(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)

	stmt, err := svc.CreateStatement(context.Background(), "c1")
	require.NoError(t, err)

	bound, err := svc.store.Statement("c1", stmt.ID)
	require.NoError(t, err)
	bindRows(bound, []typedvalue.ColumnMetaData{{Name: "n", Type: typedvalue.SQLTypeInteger}},
		[][]typedvalue.Value{{typedvalue.Integer(1)}, {typedvalue.Integer(2)}, {typedvalue.Integer(3)}})

	rs, err := svc.Execute(context.Background(), "c1", stmt.ID, nil, 2)
	require.NoError(t, err)
	assert.Len(t, rs.Frame.Rows, 2)

	frame, err := svc.Fetch(context.Background(), "c1", stmt.ID, 2, 10)
	require.NoError(t, err)
	assert.True(t, frame.Done)
	assert.Len(t, frame.Rows, 1)

	_, hasCursor := svc.store.CursorPosition("c1", stmt.ID)
	assert.False(t, hasCursor)
}

func TestCancelThenFetchReturnsCanceledError(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)

	stmt, err := svc.CreateStatement(context.Background(), "c1")
	require.NoError(t, err)

	bound, err := svc.store.Statement("c1", stmt.ID)
	require.NoError(t, err)
	bindRows(bound, []typedvalue.ColumnMetaData{{Name: "n", Type: typedvalue.SQLTypeInteger}},
		[][]typedvalue.Value{{typedvalue.Integer(1)}, {typedvalue.Integer(2)}, {typedvalue.Integer(3)}})

	_, err = svc.Execute(context.Background(), "c1", stmt.ID, nil, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), "c1", stmt.ID))

	_, err = svc.Fetch(context.Background(), "c1", stmt.ID, 1, 10)
	assert.ErrorContains(t, err, "Statement canceled")
}

func TestSchemasPaginatesViaFetch(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)

	rs, err := svc.Schemas(context.Background(), "c1", "", 1)
	require.NoError(t, err)
	assert.Len(t, rs.Frame.Rows, 1)
	assert.False(t, rs.Frame.Done)

	frame, err := svc.Fetch(context.Background(), "c1", rs.StatementID, 1, 10)
	require.NoError(t, err)
	assert.True(t, frame.Done)
	assert.Len(t, frame.Rows, 1)
}

func TestPrepareAndExecuteBatchReportsUpdateCountsInOrder(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)

	result := svc.PrepareAndExecuteBatch(context.Background(), "c1", []string{
		"insert into t values (1)",
		"insert into t values (2)",
	})
	require.NoError(t, result.Err)
	assert.Equal(t, []int64{1, 1}, result.UpdateCounts)
}

func TestCommitFlushesDirtyThenCommits(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)

	_, err = svc.ConnectionSync(context.Background(), "c1", session.Properties{AutoCommit: false, Catalog: "mydb"})
	require.NoError(t, err)

	require.NoError(t, svc.Commit(context.Background(), "c1"))

	conn, err := svc.store.Connection("c1")
	require.NoError(t, err)
	assert.False(t, conn.Props.Dirty)
	assert.Equal(t, "mydb", conn.Conn.(*fakeConn).catalog)
}

func TestDatabasePropertyReportsEngineName(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)

	props, err := svc.DatabaseProperty(context.Background(), "c1", PropertyEngineVersion)
	require.NoError(t, err)
	assert.Equal(t, "fakedb 1.0", props[PropertyEngineVersion])
}

func TestDatabasePropertyReportsProtocolVersionDistinctFromEngineVersion(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)

	props, err := svc.DatabaseProperty(context.Background(), "c1", PropertyAvaticaVersion)
	require.NoError(t, err)
	assert.Equal(t, ProtocolVersion, props[PropertyAvaticaVersion])
	assert.NotEqual(t, "fakedb 1.0", props[PropertyAvaticaVersion])
}

func TestDatabasePropertyEmptyNameReportsAllProperties(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)

	props, err := svc.DatabaseProperty(context.Background(), "c1", "")
	require.NoError(t, err)
	assert.Equal(t, ProtocolVersion, props[PropertyAvaticaVersion])
	assert.Equal(t, "fakedb 1.0", props[PropertyEngineVersion])
	assert.Equal(t, SupportedFeatures, props[PropertySupportedFeatures])
}

func TestDatabasePropertyUnrecognizedNameIsError(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)

	_, err = svc.DatabaseProperty(context.Background(), "c1", "BOGUS")
	assert.Error(t, err)
}

func TestServerAddress(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	assert.Equal(t, "localhost:8765", svc.ServerAddress())
}

func TestSyncResultsReportsMissingForUnknownConnection(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	result, err := svc.SyncResults(context.Background(), "missing", 1, 0)
	require.NoError(t, err)
	assert.True(t, result.Missing)
	assert.False(t, result.Moved)
}

func TestSyncResultsReportsMissingWithoutRetainedCursor(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)

	stmt, err := svc.CreateStatement(context.Background(), "c1")
	require.NoError(t, err)

	result, err := svc.SyncResults(context.Background(), "c1", stmt.ID, 0)
	require.NoError(t, err)
	assert.True(t, result.Missing)
}

func TestSyncResultsAtCurrentOffsetIsNoOp(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)

	stmt, err := svc.CreateStatement(context.Background(), "c1")
	require.NoError(t, err)

	bound, err := svc.store.Statement("c1", stmt.ID)
	require.NoError(t, err)
	bindRows(bound, []typedvalue.ColumnMetaData{{Name: "n", Type: typedvalue.SQLTypeInteger}},
		[][]typedvalue.Value{{typedvalue.Integer(1)}, {typedvalue.Integer(2)}, {typedvalue.Integer(3)}})

	rs, err := svc.Execute(context.Background(), "c1", stmt.ID, nil, 2)
	require.NoError(t, err)
	assert.False(t, rs.Frame.Done)

	result, err := svc.SyncResults(context.Background(), "c1", stmt.ID, 2)
	require.NoError(t, err)
	assert.False(t, result.Missing)
	assert.False(t, result.Moved)
}

func TestSyncResultsAheadOfCursorSkipsForward(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)

	stmt, err := svc.CreateStatement(context.Background(), "c1")
	require.NoError(t, err)

	bound, err := svc.store.Statement("c1", stmt.ID)
	require.NoError(t, err)
	bindRows(bound, []typedvalue.ColumnMetaData{{Name: "n", Type: typedvalue.SQLTypeInteger}},
		[][]typedvalue.Value{{typedvalue.Integer(1)}, {typedvalue.Integer(2)}, {typedvalue.Integer(3)}})

	rs, err := svc.Execute(context.Background(), "c1", stmt.ID, nil, 2)
	require.NoError(t, err)
	assert.False(t, rs.Frame.Done)

	result, err := svc.SyncResults(context.Background(), "c1", stmt.ID, 3)
	require.NoError(t, err)
	assert.False(t, result.Missing)
	assert.True(t, result.Moved)

	pos, hasCursor := svc.store.CursorPosition("c1", stmt.ID)
	require.True(t, hasCursor)
	assert.Equal(t, int64(3), pos)
}

func TestSyncResultsBehindCursorIsError(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.OpenConnection(context.Background(), "c1", session.Properties{AutoCommit: true})
	require.NoError(t, err)

	stmt, err := svc.CreateStatement(context.Background(), "c1")
	require.NoError(t, err)

	bound, err := svc.store.Statement("c1", stmt.ID)
	require.NoError(t, err)
	bindRows(bound, []typedvalue.ColumnMetaData{{Name: "n", Type: typedvalue.SQLTypeInteger}},
		[][]typedvalue.Value{{typedvalue.Integer(1)}, {typedvalue.Integer(2)}, {typedvalue.Integer(3)}})

	_, err = svc.Execute(context.Background(), "c1", stmt.ID, nil, 2)
	require.NoError(t, err)

	_, err = svc.SyncResults(context.Background(), "c1", stmt.ID, 0)
	assert.Error(t, err)
}
