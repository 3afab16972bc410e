package sqlengine

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/metarpc/metarpc/typedvalue"
)

// sqlCursor adapts a *sql.Rows into the forward-only engine.Cursor the
// Meta Service pages through via Execute/Fetch.
type sqlCursor struct {
	rows      *sql.Rows
	sig       []typedvalue.ColumnMetaData
	exhausted bool
	// remaining, when non-nil, caps the total rows this cursor will ever
	// yield across every Fetch call, enforcing Execute's maxRowsTotal.
	remaining *int64
}

func newSQLCursor(rows *sql.Rows, sig []typedvalue.ColumnMetaData) *sqlCursor {
	return &sqlCursor{rows: rows, sig: sig}
}

func (c *sqlCursor) Fetch(ctx context.Context, n int) ([][]typedvalue.Value, bool, error) {
	if c.exhausted {
		return nil, true, nil
	}
	if c.remaining != nil && *c.remaining <= 0 {
		c.exhausted = true
		return nil, true, nil
	}
	if c.remaining != nil && int64(n) > *c.remaining {
		n = int(*c.remaining)
	}

	dest := make([]any, len(c.sig))
	ptrs := make([]any, len(c.sig))
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	var out [][]typedvalue.Value
	for len(out) < n {
		if !c.rows.Next() {
			c.exhausted = true
			if err := c.rows.Err(); err != nil {
				return out, true, fmt.Errorf("sqlengine: row iteration: %w", err)
			}
			return out, true, nil
		}
		if err := c.rows.Scan(ptrs...); err != nil {
			return out, true, fmt.Errorf("sqlengine: row scan: %w", err)
		}
		row, err := rowToValues(c.sig, dest)
		if err != nil {
			return out, true, err
		}
		out = append(out, row)
	}
	if c.remaining != nil {
		*c.remaining -= int64(len(out))
	}
	return out, false, nil
}

// Skip discards rows without returning them, used when a Fetch offset jumps
// ahead of the cursor's current position.
func (c *sqlCursor) Skip(ctx context.Context, n int64) error {
	for i := int64(0); i < n; i++ {
		if c.exhausted || !c.rows.Next() {
			c.exhausted = true
			return c.rows.Err()
		}
	}
	return nil
}

func (c *sqlCursor) Close(ctx context.Context) error {
	return c.rows.Close()
}

// rowToValues converts the native Go values database/sql scanned into
// a row aligned to the column signature, using each column's declared
// SQLType to pick the right TypedValue representation.
func rowToValues(sig []typedvalue.ColumnMetaData, dest []any) ([]typedvalue.Value, error) {
	row := make([]typedvalue.Value, len(sig))
	for i, col := range sig {
		v, err := nativeToValue(col, dest[i])
		if err != nil {
			return nil, fmt.Errorf("sqlengine: column %q: %w", col.Name, err)
		}
		row[i] = v
	}
	return row, nil
}

func nativeToValue(col typedvalue.ColumnMetaData, native any) (typedvalue.Value, error) {
	if native == nil {
		return typedvalue.Null(), nil
	}

	switch col.Type {
	case typedvalue.SQLTypeBoolean:
		return typedvalue.Bool(asBool(native)), nil
	case typedvalue.SQLTypeTinyInt, typedvalue.SQLTypeSmallInt, typedvalue.SQLTypeInteger:
		n, err := asInt64(native)
		if err != nil {
			return typedvalue.Value{}, err
		}
		return typedvalue.Integer(int32(n)), nil
	case typedvalue.SQLTypeBigInt:
		n, err := asInt64(native)
		if err != nil {
			return typedvalue.Value{}, err
		}
		return typedvalue.Long(n), nil
	case typedvalue.SQLTypeReal:
		f, err := asFloat64(native)
		if err != nil {
			return typedvalue.Value{}, err
		}
		return typedvalue.Float32(float32(f)), nil
	case typedvalue.SQLTypeDouble:
		f, err := asFloat64(native)
		if err != nil {
			return typedvalue.Value{}, err
		}
		return typedvalue.Float64(f), nil
	case typedvalue.SQLTypeDecimal:
		d, err := decimalFromNative(native, col.Scale)
		if err != nil {
			return typedvalue.Value{}, err
		}
		return typedvalue.DecimalValue(d), nil
	case typedvalue.SQLTypeDate:
		t, err := asTime(native)
		if err != nil {
			return typedvalue.Value{}, err
		}
		days := int32(t.UTC().Unix() / 86400)
		return typedvalue.Date(days), nil
	case typedvalue.SQLTypeTime:
		t, err := asTime(native)
		if err != nil {
			return typedvalue.Value{}, err
		}
		millis := int32((t.Hour()*3600+t.Minute()*60+t.Second())*1000 + t.Nanosecond()/1e6)
		return typedvalue.Time(millis), nil
	case typedvalue.SQLTypeTimestamp:
		t, err := asTime(native)
		if err != nil {
			return typedvalue.Value{}, err
		}
		return typedvalue.Timestamp(t.UTC().UnixMilli()), nil
	case typedvalue.SQLTypeBinary:
		b, err := asBytes(native)
		if err != nil {
			return typedvalue.Value{}, err
		}
		return typedvalue.Bin(b), nil
	default:
		s, err := asString(native)
		if err != nil {
			return typedvalue.Value{}, err
		}
		return typedvalue.String(s), nil
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case []byte:
		return len(t) == 1 && t[0] != 0
	default:
		return false
	}
}

func asInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int32:
		return int64(t), nil
	case []byte:
		n, ok := new(big.Int).SetString(string(t), 10)
		if !ok {
			return 0, fmt.Errorf("cannot parse %q as integer", t)
		}
		return n.Int64(), nil
	default:
		return 0, fmt.Errorf("unexpected native type %T for integer column", v)
	}
}

func asFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case []byte:
		var f float64
		_, err := fmt.Sscanf(string(t), "%g", &f)
		return f, err
	default:
		return 0, fmt.Errorf("unexpected native type %T for float column", v)
	}
}

func asString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case int64, float64, bool:
		return fmt.Sprintf("%v", t), nil
	default:
		return "", fmt.Errorf("unexpected native type %T for string column", v)
	}
}

func asBytes(v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	default:
		return nil, fmt.Errorf("unexpected native type %T for binary column", v)
	}
}

func asTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case []byte:
		for _, layout := range []string{"2006-01-02 15:04:05.999999999", "2006-01-02", "15:04:05"} {
			if parsed, err := time.Parse(layout, string(t)); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("cannot parse %q as a timestamp", t)
	default:
		return time.Time{}, fmt.Errorf("unexpected native type %T for temporal column", v)
	}
}

func decimalFromNative(v any, scale int32) (typedvalue.Decimal, error) {
	s, err := asString(v)
	if err != nil {
		return typedvalue.Decimal{}, err
	}
	return parseDecimalString(s, scale)
}

// parseDecimalString converts a driver-rendered decimal literal (e.g.
// "1234.50") into the wire's unscaled+scale pair, padding or trimming to
// the column's declared scale.
func parseDecimalString(s string, scale int32) (typedvalue.Decimal, error) {
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	intPart, fracPart := s, ""
	for i, r := range s {
		if r == '.' {
			intPart, fracPart = s[:i], s[i+1:]
			break
		}
	}

	for int32(len(fracPart)) < scale {
		fracPart += "0"
	}
	if int32(len(fracPart)) > scale {
		fracPart = fracPart[:scale]
	}

	digits := intPart + fracPart
	unscaled, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return typedvalue.Decimal{}, fmt.Errorf("cannot parse %q as a decimal", s)
	}
	if neg {
		unscaled.Neg(unscaled)
	}
	return typedvalue.NewDecimal(unscaled, scale)
}
