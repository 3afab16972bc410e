package sqlengine

import (
	"database/sql"
	"strings"

	"github.com/metarpc/metarpc/typedvalue"
)

// sqlTypeFor maps a database/sql-reported column type name onto the wire's
// nominal SQLType. database/sql drivers report type names as free-form
// strings (DatabaseTypeName), so this is necessarily a best-effort mapping
// rather than an exhaustive one; unrecognized names fall back to VARCHAR,
// which keeps them representable as TypedValue STRING without failing the
// whole result signature.
func sqlTypeFor(col *sql.ColumnType) typedvalue.SQLType {
	switch strings.ToUpper(col.DatabaseTypeName()) {
	case "TINYINT":
		return typedvalue.SQLTypeTinyInt
	case "BOOL", "BOOLEAN":
		return typedvalue.SQLTypeBoolean
	case "SMALLINT", "YEAR":
		return typedvalue.SQLTypeSmallInt
	case "MEDIUMINT", "INT", "INTEGER":
		return typedvalue.SQLTypeInteger
	case "BIGINT":
		return typedvalue.SQLTypeBigInt
	case "FLOAT":
		return typedvalue.SQLTypeReal
	case "DOUBLE":
		return typedvalue.SQLTypeDouble
	case "DECIMAL", "NUMERIC":
		return typedvalue.SQLTypeDecimal
	case "DATE":
		return typedvalue.SQLTypeDate
	case "TIME":
		return typedvalue.SQLTypeTime
	case "DATETIME", "TIMESTAMP":
		return typedvalue.SQLTypeTimestamp
	case "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BINARY", "VARBINARY":
		return typedvalue.SQLTypeBinary
	default:
		return typedvalue.SQLTypeVarchar
	}
}

func isSignedType(t typedvalue.SQLType) bool {
	switch t {
	case typedvalue.SQLTypeTinyInt, typedvalue.SQLTypeSmallInt, typedvalue.SQLTypeInteger,
		typedvalue.SQLTypeBigInt, typedvalue.SQLTypeReal, typedvalue.SQLTypeDouble, typedvalue.SQLTypeDecimal:
		return true
	default:
		return false
	}
}
