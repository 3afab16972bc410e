package sqlengine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/metarpc/metarpc/engine"
	"github.com/metarpc/metarpc/typedvalue"
)

// sqlStatement is a prepared *sql.Stmt plus the parameter count inferred
// from its placeholders and whether the statement is row-returning.
type sqlStatement struct {
	conn      *sqlConn
	stmt      *sql.Stmt
	returnsRows bool
	paramCount  int
}

func newSQLStatement(ctx context.Context, conn *sqlConn, stmt *sql.Stmt, query string) (*sqlStatement, error) {
	return &sqlStatement{
		conn:        conn,
		stmt:        stmt,
		returnsRows: looksRowReturning(query),
		paramCount:  strings.Count(query, "?"),
	}, nil
}

// ParamSignature is necessarily approximate: database/sql exposes no
// portable parameter type introspection across drivers, so every
// placeholder is described as a nullable, untyped string parameter. A
// client that round-trips its own TypedValues through Execute still works;
// only a generic metadata browser would notice the imprecision.
func (s *sqlStatement) ParamSignature() []typedvalue.ParamMetaData {
	sig := make([]typedvalue.ParamMetaData, s.paramCount)
	for i := range sig {
		sig[i] = typedvalue.ParamMetaData{
			Ordinal:   int32(i),
			Type:      typedvalue.SQLTypeVarchar,
			Nullable:  true,
		}
	}
	return sig
}

func (s *sqlStatement) Execute(ctx context.Context, params []typedvalue.Value, maxRowsTotal int64) (engine.Cursor, []typedvalue.ColumnMetaData, int64, error) {
	args, err := bindArgs(params)
	if err != nil {
		return nil, nil, 0, err
	}

	if !s.returnsRows {
		result, err := s.stmt.ExecContext(ctx, args...)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("sqlengine: exec: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			// Some drivers don't support RowsAffected for every statement
			// kind; treat that as zero rather than failing the execute.
			affected = 0
		}
		return nil, nil, affected, nil
	}

	rows, err := s.stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("sqlengine: query: %w", err)
	}
	sig, err := columnSignatureFor(rows)
	if err != nil {
		rows.Close()
		return nil, nil, 0, err
	}

	cursor := newSQLCursor(rows, sig)
	if maxRowsTotal > 0 {
		cursor.remaining = &maxRowsTotal
	}
	return cursor, sig, 0, nil
}

func (s *sqlStatement) Close(ctx context.Context) error {
	return s.stmt.Close()
}

func looksRowReturning(query string) bool {
	trimmed := strings.TrimSpace(query)
	upper := strings.ToUpper(trimmed)
	for _, prefix := range []string{"SELECT", "SHOW", "DESCRIBE", "DESC ", "EXPLAIN", "WITH", "CALL"} {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

func bindArgs(params []typedvalue.Value) ([]any, error) {
	args := make([]any, len(params))
	for i, p := range params {
		v, err := valueToDriverArg(p)
		if err != nil {
			return nil, fmt.Errorf("sqlengine: bind parameter %d: %w", i, err)
		}
		args[i] = v
	}
	return args, nil
}

func valueToDriverArg(v typedvalue.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	switch v.Rep {
	case typedvalue.RepBoolean:
		return v.Bool, nil
	case typedvalue.RepByte, typedvalue.RepShort, typedvalue.RepInteger, typedvalue.RepLong,
		typedvalue.RepDate, typedvalue.RepTime, typedvalue.RepTimestamp:
		return v.Int, nil
	case typedvalue.RepFloat, typedvalue.RepDouble:
		return v.Float, nil
	case typedvalue.RepDecimal:
		return v.Dec.String(), nil
	case typedvalue.RepString:
		return v.Str, nil
	case typedvalue.RepBytes:
		return v.Bytes, nil
	default:
		return nil, fmt.Errorf("cannot bind representation %s as a driver argument", v.Rep)
	}
}
