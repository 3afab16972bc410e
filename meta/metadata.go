package meta

import (
	"context"
	"fmt"

	"github.com/metarpc/metarpc/engine"
	"github.com/metarpc/metarpc/session"
	"github.com/metarpc/metarpc/typedvalue"
)

// Schemas answers a SchemasRequest via the Engine's catalog, paginated
// exactly like a query result (§4.4 "Metadata queries").
func (s *Service) Schemas(ctx context.Context, connID, catalogFilter string, maxRowsPerFrame int64) (*ResultSet, error) {
	return s.metadataQuery(ctx, connID, maxRowsPerFrame, func(conn *session.Connection) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
		return conn.Conn.Schemas(ctx, catalogFilter)
	})
}

// Tables answers a TablesRequest.
func (s *Service) Tables(ctx context.Context, connID, catalog, schemaPattern, tableNamePattern string, types []string, maxRowsPerFrame int64) (*ResultSet, error) {
	return s.metadataQuery(ctx, connID, maxRowsPerFrame, func(conn *session.Connection) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
		return conn.Conn.Tables(ctx, catalog, schemaPattern, tableNamePattern, types)
	})
}

// Columns answers a ColumnsRequest.
func (s *Service) Columns(ctx context.Context, connID, catalog, schemaPattern, tableNamePattern, columnNamePattern string, maxRowsPerFrame int64) (*ResultSet, error) {
	return s.metadataQuery(ctx, connID, maxRowsPerFrame, func(conn *session.Connection) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
		return conn.Conn.Columns(ctx, catalog, schemaPattern, tableNamePattern, columnNamePattern)
	})
}

// TypeInfo answers a TypeInfoRequest.
func (s *Service) TypeInfo(ctx context.Context, connID string, maxRowsPerFrame int64) (*ResultSet, error) {
	return s.metadataQuery(ctx, connID, maxRowsPerFrame, func(conn *session.Connection) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
		return conn.Conn.TypeInfo(ctx)
	})
}

// metadataQuery flushes dirty properties, opens a catalog cursor via fn,
// binds it to a fresh StatementHandle, and materializes the first frame
// exactly like Execute — metadata results are paginated via Fetch like any
// other query, never buffered eagerly.
func (s *Service) metadataQuery(ctx context.Context, connID string, maxRowsPerFrame int64, fn func(conn *session.Connection) (engine.Cursor, []typedvalue.ColumnMetaData, error)) (*ResultSet, error) {
	var result *ResultSet
	err := s.withDelegate(ctx, func(ctx context.Context) error {
		conn, lookupErr := s.store.Connection(connID)
		if lookupErr != nil {
			return lookupErr
		}

		conn.Lock()
		defer conn.Unlock()

		if flushErr := flushDirty(ctx, conn); flushErr != nil {
			return fmt.Errorf("meta: flush properties for connection %q: %w", connID, flushErr)
		}

		engineCursor, sig, catalogErr := fn(conn)
		if catalogErr != nil {
			return fmt.Errorf("meta: metadata query: %w", catalogErr)
		}

		stmt, createErr := s.store.CreateStatement(connID, "", nil)
		if createErr != nil {
			if engineCursor != nil {
				engineCursor.Close(ctx)
			}
			return createErr
		}
		stmt.ResultSignature = sig

		rs, execErr := materializeMetadataFrame(ctx, stmt, engineCursor, sig, maxRowsPerFrame)
		if execErr != nil {
			return execErr
		}
		result = rs
		return nil
	})
	return result, err
}

// materializeMetadataFrame reads the first frame from a freshly-opened
// catalog cursor, releasing it immediately if already exhausted or
// retaining it under stmt otherwise — the same retention rule Execute
// applies to query result cursors.
func materializeMetadataFrame(ctx context.Context, stmt *session.Statement, engineCursor engine.Cursor, sig []typedvalue.ColumnMetaData, maxRowsPerFrame int64) (*ResultSet, error) {
	if engineCursor == nil {
		stmt.State = session.StmtIdle
		return &ResultSet{StatementID: stmt.ID, ResultSignature: sig, Frame: Frame{Done: true}}, nil
	}

	frameSize := maxRowsPerFrame
	if frameSize <= 0 {
		frameSize = DefaultFrameMaxSize
	}

	rows, done, err := engineCursor.Fetch(ctx, int(frameSize))
	if err != nil {
		engineCursor.Close(ctx)
		stmt.State = session.StmtIdle
		return nil, fmt.Errorf("meta: materialize metadata frame: %w", err)
	}

	if done {
		engineCursor.Close(ctx)
		stmt.State = session.StmtIdle
	} else {
		stmt.Cursor = session.NewCursor(engineCursor)
		stmt.Cursor.Advance(int64(len(rows)))
		stmt.State = session.StmtHasCursor
	}

	return &ResultSet{
		StatementID:     stmt.ID,
		ResultSignature: sig,
		Frame:           Frame{Offset: 0, Done: done, Rows: rows},
	}, nil
}
