package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/metarpc/metarpc/engine"
	"github.com/metarpc/metarpc/typedvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	closed bool
}

func (f *fakeConn) Prepare(ctx context.Context, sql string) (engine.Statement, error) {
	return &fakeStatement{}, nil
}
func (f *fakeConn) SetAutoCommit(ctx context.Context, autoCommit bool) error { return nil }
func (f *fakeConn) Commit(ctx context.Context) error                        { return nil }
func (f *fakeConn) Rollback(ctx context.Context) error                      { return nil }
func (f *fakeConn) SetCatalog(ctx context.Context, catalog string) error    { return nil }
func (f *fakeConn) SetSchema(ctx context.Context, schema string) error      { return nil }
func (f *fakeConn) SetReadOnly(ctx context.Context, readOnly bool) error    { return nil }
func (f *fakeConn) SetTransactionIsolation(ctx context.Context, level int32) error {
	return nil
}
func (f *fakeConn) Schemas(ctx context.Context, catalogFilter string) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
	return nil, nil, nil
}
func (f *fakeConn) Tables(ctx context.Context, catalog, schemaPattern, tableNamePattern string, types []string) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
	return nil, nil, nil
}
func (f *fakeConn) Columns(ctx context.Context, catalog, schemaPattern, tableNamePattern, columnNamePattern string) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
	return nil, nil, nil
}
func (f *fakeConn) TypeInfo(ctx context.Context) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
	return nil, nil, nil
}
func (f *fakeConn) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

type fakeStatement struct {
	closed bool
}

func (f *fakeStatement) ParamSignature() []typedvalue.ParamMetaData { return nil }
func (f *fakeStatement) Execute(ctx context.Context, params []typedvalue.Value, maxRowsTotal int64) (engine.Cursor, []typedvalue.ColumnMetaData, int64, error) {
	return nil, nil, 0, nil
}
func (f *fakeStatement) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

func newTestStore() *Store {
	return NewStore(10, time.Minute, 10, time.Minute, nil)
}

func TestOpenConnectionIsIdempotentWithIdenticalProperties(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	props := Properties{AutoCommit: true}

	c1, err := store.OpenConnection("c1", &fakeConn{}, props)
	require.NoError(t, err)

	c2, err := store.OpenConnection("c1", &fakeConn{}, props)
	require.NoError(t, err)
	assert.Same(t, c1, c2)
}

func TestOpenConnectionFailsOnPropertyMismatch(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	_, err := store.OpenConnection("c1", &fakeConn{}, Properties{AutoCommit: true})
	require.NoError(t, err)

	_, err = store.OpenConnection("c1", &fakeConn{}, Properties{AutoCommit: false})
	assert.Error(t, err)
}

func TestConnectionNotFoundError(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	_, err := store.Connection("missing")
	assert.Error(t, err)
}

func TestStatementCountAfterClose(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	fc := &fakeConn{}
	_, err := store.OpenConnection("c1", fc, Properties{})
	require.NoError(t, err)

	stmt, err := store.CreateStatement("c1", "select 1", &fakeStatement{})
	require.NoError(t, err)
	assert.Equal(t, 1, store.StatementCount("c1"))

	require.NoError(t, store.CloseStatement(context.Background(), "c1", stmt.ID))
	assert.Equal(t, 0, store.StatementCount("c1"))

	_, err = store.Statement("c1", stmt.ID)
	assert.Error(t, err)
}

func TestCloseStatementIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	_, err := store.OpenConnection("c1", &fakeConn{}, Properties{})
	require.NoError(t, err)

	stmt, err := store.CreateStatement("c1", "select 1", &fakeStatement{})
	require.NoError(t, err)

	require.NoError(t, store.CloseStatement(context.Background(), "c1", stmt.ID))
	require.NoError(t, store.CloseStatement(context.Background(), "c1", stmt.ID))
}

func TestCloseConnectionReleasesOwnedStatements(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	fc := &fakeConn{}
	_, err := store.OpenConnection("c1", fc, Properties{})
	require.NoError(t, err)

	_, err = store.CreateStatement("c1", "select 1", &fakeStatement{})
	require.NoError(t, err)
	_, err = store.CreateStatement("c1", "select 2", &fakeStatement{})
	require.NoError(t, err)
	assert.Equal(t, 2, store.StatementCount("c1"))

	require.NoError(t, store.CloseConnection(context.Background(), "c1"))
	assert.True(t, fc.closed)

	_, err = store.Connection("c1")
	assert.Error(t, err)
}

func TestCloseConnectionIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	_, err := store.OpenConnection("c1", &fakeConn{}, Properties{})
	require.NoError(t, err)

	require.NoError(t, store.CloseConnection(context.Background(), "c1"))
	require.NoError(t, store.CloseConnection(context.Background(), "c1"))
}

func TestEvictionClosesEngineConnection(t *testing.T) {
	t.Parallel()

	store := NewStore(1, time.Minute, 10, time.Minute, nil)

	first := &fakeConn{}
	_, err := store.OpenConnection("c1", first, Properties{})
	require.NoError(t, err)

	second := &fakeConn{}
	_, err = store.OpenConnection("c2", second, Properties{})
	require.NoError(t, err)

	assert.True(t, first.closed)
	_, err = store.Connection("c1")
	assert.Error(t, err)

	_, err = store.Connection("c2")
	require.NoError(t, err)
}

func TestCursorDiagnosticsTrackPositionAndCancel(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	_, err := store.OpenConnection("c1", &fakeConn{}, Properties{})
	require.NoError(t, err)

	stmt, err := store.CreateStatement("c1", "select 1", &fakeStatement{})
	require.NoError(t, err)

	stmt.Cursor = newCursor(nil)
	stmt.Cursor.advance(5)

	pos, hasCursor := store.CursorPosition("c1", stmt.ID)
	assert.True(t, hasCursor)
	assert.Equal(t, int64(5), pos)

	canceled, hasCursor := store.CursorCanceled("c1", stmt.ID)
	assert.True(t, hasCursor)
	assert.False(t, canceled)

	stmt.Cursor.Cancel()
	canceled, _ = store.CursorCanceled("c1", stmt.ID)
	assert.True(t, canceled)
}

func TestImpersonateCallsDelegateWithIdentity(t *testing.T) {
	t.Parallel()

	var gotUser, gotAddr string
	delegate := Delegate(func(ctx context.Context, remoteUser, remoteAddr string, action func(ctx context.Context) error) error {
		gotUser, gotAddr = remoteUser, remoteAddr
		return action(ctx)
	})

	ctx := WithIdentity(context.Background(), Identity{RemoteUser: "alice", RemoteAddr: "10.0.0.1"})
	ran := false
	err := Impersonate(ctx, delegate, func(ctx context.Context) error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "10.0.0.1", gotAddr)
}

func TestImpersonateWithoutDelegateRunsDirectly(t *testing.T) {
	t.Parallel()

	ran := false
	err := Impersonate(context.Background(), nil, func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestImpersonatePropagatesActionError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	err := Impersonate(context.Background(), nil, func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}
