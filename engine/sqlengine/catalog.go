package sqlengine

import (
	"context"
	"fmt"

	"github.com/metarpc/metarpc/engine"
	"github.com/metarpc/metarpc/typedvalue"
)

// Schemas, Tables, Columns and TypeInfo are served from information_schema
// against the same pinned connection, returned as an ordinary Cursor so
// large catalogs page through Fetch exactly like a query result — nothing
// here buffers the result set eagerly.

func (c *sqlConn) Schemas(ctx context.Context, catalogFilter string) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
	query := "SELECT SCHEMA_NAME AS TABLE_SCHEM, CATALOG_NAME AS TABLE_CATALOG FROM information_schema.SCHEMATA"
	args := []any{}
	if catalogFilter != "" {
		query += " WHERE CATALOG_NAME = ?"
		args = append(args, catalogFilter)
	}
	return c.queryCatalog(ctx, query, args...)
}

func (c *sqlConn) Tables(ctx context.Context, catalog, schemaPattern, tableNamePattern string, types []string) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
	query := `SELECT TABLE_CATALOG, TABLE_SCHEMA AS TABLE_SCHEM, TABLE_NAME, TABLE_TYPE
		FROM information_schema.TABLES WHERE 1=1`
	var args []any
	if catalog != "" {
		query += " AND TABLE_CATALOG = ?"
		args = append(args, catalog)
	}
	if schemaPattern != "" {
		query += " AND TABLE_SCHEMA LIKE ?"
		args = append(args, schemaPattern)
	}
	if tableNamePattern != "" {
		query += " AND TABLE_NAME LIKE ?"
		args = append(args, tableNamePattern)
	}
	if len(types) > 0 {
		placeholders := ""
		for i, t := range types {
			if i > 0 {
				placeholders += ","
			}
			placeholders += "?"
			args = append(args, t)
		}
		query += " AND TABLE_TYPE IN (" + placeholders + ")"
	}
	query += " ORDER BY TABLE_SCHEMA, TABLE_NAME"
	return c.queryCatalog(ctx, query, args...)
}

func (c *sqlConn) Columns(ctx context.Context, catalog, schemaPattern, tableNamePattern, columnNamePattern string) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
	query := `SELECT TABLE_CATALOG, TABLE_SCHEMA AS TABLE_SCHEM, TABLE_NAME, COLUMN_NAME,
		DATA_TYPE, ORDINAL_POSITION, IS_NULLABLE, NUMERIC_PRECISION, NUMERIC_SCALE
		FROM information_schema.COLUMNS WHERE 1=1`
	var args []any
	if catalog != "" {
		query += " AND TABLE_CATALOG = ?"
		args = append(args, catalog)
	}
	if schemaPattern != "" {
		query += " AND TABLE_SCHEMA LIKE ?"
		args = append(args, schemaPattern)
	}
	if tableNamePattern != "" {
		query += " AND TABLE_NAME LIKE ?"
		args = append(args, tableNamePattern)
	}
	if columnNamePattern != "" {
		query += " AND COLUMN_NAME LIKE ?"
		args = append(args, columnNamePattern)
	}
	query += " ORDER BY TABLE_SCHEMA, TABLE_NAME, ORDINAL_POSITION"
	return c.queryCatalog(ctx, query, args...)
}

func (c *sqlConn) TypeInfo(ctx context.Context) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
	query := "SELECT DATA_TYPE AS TYPE_NAME FROM information_schema.COLUMNS GROUP BY DATA_TYPE ORDER BY DATA_TYPE"
	return c.queryCatalog(ctx, query)
}

func (c *sqlConn) queryCatalog(ctx context.Context, query string, args ...any) (engine.Cursor, []typedvalue.ColumnMetaData, error) {
	rows, err := c.active().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlengine: catalog query: %w", err)
	}
	sig, err := columnSignatureFor(rows)
	if err != nil {
		rows.Close()
		return nil, nil, err
	}
	return newSQLCursor(rows, sig), sig, nil
}
