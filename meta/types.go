package meta

import "github.com/metarpc/metarpc/typedvalue"

// Frame is a page of rows returned from execute or fetch — the in-memory
// shape of a wire ResultFrame (§3).
type Frame struct {
	Offset int64
	Done   bool
	Rows   [][]typedvalue.Value
}

// ResultSet pairs a column signature with the first materialized Frame, the
// in-memory shape of a wire ResultSetResponse.
type ResultSet struct {
	StatementID     int64
	ResultSignature []typedvalue.ColumnMetaData
	UpdateCount     int64
	Frame           Frame
}
