// Package sqlstate carries the standard five-character SQLSTATE codes that
// every ErrorResponse reports alongside its human-readable message, so a
// client can branch on error class without parsing text.
package sqlstate

// Code is a five-character SQLSTATE class+subclass, e.g. "42S02".
type Code string

const (
	// Success is the sentinel "unknown" SQLSTATE an ErrorResponse reports
	// when the error carries no more specific code — rpcerr.Flatten
	// substitutes it for Uncategorized rather than leaving the field empty,
	// so "00000" is itself meaningful on the wire.
	Success Code = "00000"

	// Uncategorized is used when an error has no more specific SQLSTATE
	// attached. It is not a standard SQL code; it exists so
	// rpcerr.GetSQLState never has to return the empty string.
	Uncategorized Code = "XXUUU"

	// Class 01 - Warning
	Warning Code = "01000"

	// Class 02 - No Data
	NoData Code = "02000"

	// Class 08 - Connection Exception
	ConnectionException     Code = "08000"
	ConnectionDoesNotExist  Code = "08003"
	ConnectionFailure       Code = "08006"
	ConnectionRejected      Code = "08004"

	// Class 0A - Feature Not Supported
	FeatureNotSupported Code = "0A000"

	// Class 22 - Data Exception
	DataException              Code = "22000"
	NumericValueOutOfRange     Code = "22003"
	InvalidParameterValue      Code = "22023"
	InvalidDatetimeFormat      Code = "22007"
	DivisionByZero             Code = "22012"
	InvalidCharacterValue      Code = "22018"
	StringDataRightTruncation  Code = "22001"
	NullValueNotAllowed        Code = "22004"

	// Class 23 - Integrity Constraint Violation
	IntegrityConstraintViolation Code = "23000"
	NotNullViolation             Code = "23502"
	ForeignKeyViolation          Code = "23503"
	UniqueViolation              Code = "23505"
	CheckViolation               Code = "23514"

	// Class 24/25 - Cursor and Transaction State
	InvalidCursorState     Code = "24000"
	InvalidTransactionState Code = "25000"

	// Class 34 - Invalid Cursor Name
	InvalidCursorName Code = "34000"

	// Class 3D/3F - Invalid Catalog/Schema Name
	InvalidCatalogName Code = "3D000"
	InvalidSchemaName  Code = "3F000"

	// Class 40 - Transaction Rollback
	TransactionRollback Code = "40000"

	// Class 42 - Syntax Error or Access Rule Violation
	SyntaxErrorOrAccessRuleViolation Code = "42000"
	SyntaxError                      Code = "42601"
	InsufficientPrivilege            Code = "42501"
	UndefinedColumn                  Code = "42703"
	UndefinedTable                   Code = "42P01"
	DuplicateColumn                  Code = "42701"
	DuplicateTable                   Code = "42P07"
	AmbiguousColumn                  Code = "42702"
	WrongObjectType                  Code = "42809"

	// Class 26 - Invalid SQL Statement Name (unknown StatementHandle)
	InvalidSQLStatementName Code = "26000"

	// Class 08 extension used for an unknown ConnectionHandle.
	InvalidConnectionReference Code = "08003"

	// Class XX - Internal Error
	InternalError Code = "XX000"
)
