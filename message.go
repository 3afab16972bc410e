// Package metarpc implements the Remote Meta Protocol Core: the closed set
// of Request/Response variants, their two interchangeable serializations,
// the Transport Dispatcher that carries them over HTTP, and the Server
// Runtime that wires the whole core together against a concrete Engine.
package metarpc

import (
	"github.com/metarpc/metarpc/session"
	"github.com/metarpc/metarpc/typedvalue"
)

// Kind discriminates every Request/Response variant on the wire — the
// textual serializer's discriminator field and the binary serializer's
// class-identifier string both carry one of these (§4.1/§6).
type Kind string

const (
	KindOpenConnection     Kind = "openConnection"
	KindOpenConnectionResp Kind = "openConnectionResponse"

	KindCloseConnection     Kind = "closeConnection"
	KindCloseConnectionResp Kind = "closeConnectionResponse"

	KindConnectionSync     Kind = "connectionSync"
	KindConnectionSyncResp Kind = "connectionSyncResponse"

	KindDatabaseProperty     Kind = "databaseProperty"
	KindDatabasePropertyResp Kind = "databasePropertyResponse"

	KindCreateStatement     Kind = "createStatement"
	KindCreateStatementResp Kind = "createStatementResponse"

	KindCloseStatement     Kind = "closeStatement"
	KindCloseStatementResp Kind = "closeStatementResponse"

	KindPrepare     Kind = "prepare"
	KindPrepareResp Kind = "prepareResponse"

	KindExecute           Kind = "execute"
	KindPrepareAndExecute Kind = "prepareAndExecute"
	KindExecuteResp       Kind = "executeResponse"

	KindPrepareAndExecuteBatch Kind = "prepareAndExecuteBatch"
	KindExecuteBatch           Kind = "executeBatch"
	KindExecuteBatchResp       Kind = "executeBatchResponse"

	KindFetch     Kind = "fetch"
	KindFetchResp Kind = "fetchResponse"

	KindSchemasRequest Kind = "schemasRequest"
	KindTablesRequest  Kind = "tablesRequest"
	KindColumnsRequest Kind = "columnsRequest"
	KindTypeInfoRequest Kind = "typeInfoRequest"
	KindResultSetResp  Kind = "resultSetResponse"

	KindSyncResults     Kind = "syncResults"
	KindSyncResultsResp Kind = "syncResultsResponse"

	KindCommit     Kind = "commit"
	KindCommitResp Kind = "commitResponse"

	KindRollback     Kind = "rollback"
	KindRollbackResp Kind = "rollbackResponse"

	KindCancel     Kind = "cancel"
	KindCancelResp Kind = "cancelResponse"

	KindErrorResp Kind = "errorResponse"
)

// Request is implemented by every request variant.
type Request interface {
	RequestKind() Kind
}

// Response is implemented by every response variant, including
// ErrorResponse itself.
type Response interface {
	ResponseKind() Kind
}

// RPCMetadata is the envelope every non-error response carries, naming the
// server instance that produced it (§4.4 "Server RPC metadata").
type RPCMetadata struct {
	ServerAddress string
}

// ConnProperties is the wire shape of connection property values
// recognized on ConnectionSync (§6): a mirror of session.Properties, kept
// as a distinct type so the wire schema doesn't silently change shape if
// the Session Store's internal representation grows fields that should
// never cross the wire.
type ConnProperties struct {
	AutoCommit           bool
	ReadOnly             bool
	Catalog              string
	Schema               string
	TransactionIsolation int32
	Dirty                bool
}

func (p ConnProperties) toSession() session.Properties { return session.Properties(p) }

func fromSessionProps(p session.Properties) ConnProperties { return ConnProperties(p) }

// OpenConnectionRequest allocates a ConnectionHandle.
type OpenConnectionRequest struct {
	ConnectionID string
	Properties   ConnProperties
}

func (OpenConnectionRequest) RequestKind() Kind { return KindOpenConnection }

// OpenConnectionResponse acknowledges OpenConnection.
type OpenConnectionResponse struct {
	RPCMetadata RPCMetadata
}

func (OpenConnectionResponse) ResponseKind() Kind { return KindOpenConnectionResp }

// CloseConnectionRequest releases a connection and every statement it owns.
type CloseConnectionRequest struct {
	ConnectionID string
}

func (CloseConnectionRequest) RequestKind() Kind { return KindCloseConnection }

// CloseConnectionResponse acknowledges CloseConnection.
type CloseConnectionResponse struct {
	RPCMetadata RPCMetadata
}

func (CloseConnectionResponse) ResponseKind() Kind { return KindCloseConnectionResp }

// ConnectionSyncRequest pushes client-local property changes.
type ConnectionSyncRequest struct {
	ConnectionID string
	ConnProps    ConnProperties
}

func (ConnectionSyncRequest) RequestKind() Kind { return KindConnectionSync }

// ConnectionSyncResponse returns the server's post-apply property view.
type ConnectionSyncResponse struct {
	ConnProps   ConnProperties
	RPCMetadata RPCMetadata
}

func (ConnectionSyncResponse) ResponseKind() Kind { return KindConnectionSyncResp }

// DatabasePropertyRequest asks for engine metadata.
type DatabasePropertyRequest struct {
	ConnectionID string
	Name         string
}

func (DatabasePropertyRequest) RequestKind() Kind { return KindDatabaseProperty }

// DatabasePropertyResponse reports engine metadata as a string map.
type DatabasePropertyResponse struct {
	Props       map[string]string
	RPCMetadata RPCMetadata
}

func (DatabasePropertyResponse) ResponseKind() Kind { return KindDatabasePropertyResp }

// CreateStatementRequest allocates a bare StatementHandle.
type CreateStatementRequest struct {
	ConnectionID string
}

func (CreateStatementRequest) RequestKind() Kind { return KindCreateStatement }

// CreateStatementResponse reports the allocated statement id.
type CreateStatementResponse struct {
	ConnectionID string
	StatementID  int64
	RPCMetadata  RPCMetadata
}

func (CreateStatementResponse) ResponseKind() Kind { return KindCreateStatementResp }

// CloseStatementRequest releases a statement.
type CloseStatementRequest struct {
	ConnectionID string
	StatementID  int64
}

func (CloseStatementRequest) RequestKind() Kind { return KindCloseStatement }

// CloseStatementResponse acknowledges CloseStatement.
type CloseStatementResponse struct {
	RPCMetadata RPCMetadata
}

func (CloseStatementResponse) ResponseKind() Kind { return KindCloseStatementResp }

// PrepareRequest parses SQL and allocates a fresh StatementHandle.
type PrepareRequest struct {
	ConnectionID string
	SQL          string
	MaxRowsTotal int64
}

func (PrepareRequest) RequestKind() Kind { return KindPrepare }

// PrepareResponse carries the prepared statement's signatures.
type PrepareResponse struct {
	ConnectionID    string
	StatementID     int64
	ParamSignature  []typedvalue.ParamMetaData
	ResultSignature []typedvalue.ColumnMetaData
	RPCMetadata     RPCMetadata
}

func (PrepareResponse) ResponseKind() Kind { return KindPrepareResp }

// ExecuteRequest runs an already-prepared statement.
type ExecuteRequest struct {
	ConnectionID    string
	StatementID     int64
	ParameterValues []typedvalue.Value
	MaxRowsPerFrame int64
}

func (ExecuteRequest) RequestKind() Kind { return KindExecute }

// PrepareAndExecuteRequest fuses Prepare and Execute against a StatementHandle
// the caller already allocated via CreateStatement.
type PrepareAndExecuteRequest struct {
	ConnectionID    string
	StatementID     int64
	SQL             string
	MaxRowsTotal    int64
	MaxRowsPerFrame int64
}

func (PrepareAndExecuteRequest) RequestKind() Kind { return KindPrepareAndExecute }

// ResultSetResponse is the Execute/metadata-query response shape: a column
// signature plus the first materialized frame.
type ResultSetResponse struct {
	ConnectionID    string
	StatementID     int64
	ResultSignature []typedvalue.ColumnMetaData
	UpdateCount     int64
	Frame           ResultFrame
	RPCMetadata     RPCMetadata
}

func (ResultSetResponse) ResponseKind() Kind { return KindResultSetResp }

// ExecuteResponse wraps one or more ResultSetResponse values — a single
// logical execute can return multiple result sets for stored procedures,
// though the shipped Engine Adapter only ever produces one.
type ExecuteResponse struct {
	Results     []ResultSetResponse
	RPCMetadata RPCMetadata
}

func (ExecuteResponse) ResponseKind() Kind { return KindExecuteResp }

// ResultFrame is the wire shape of a page of rows (§3).
type ResultFrame struct {
	Offset int64
	Done   bool
	Rows   [][]typedvalue.Value
}

// PrepareAndExecuteBatchRequest runs a batch of SQL commands in order.
type PrepareAndExecuteBatchRequest struct {
	ConnectionID string
	StatementID  int64
	SQLCommands  []string
}

func (PrepareAndExecuteBatchRequest) RequestKind() Kind { return KindPrepareAndExecuteBatch }

// ExecuteBatchRequest runs an already-prepared statement once per
// parameter row, in order.
type ExecuteBatchRequest struct {
	ConnectionID  string
	StatementID   int64
	ParameterRows [][]typedvalue.Value
}

func (ExecuteBatchRequest) RequestKind() Kind { return KindExecuteBatch }

// ExecuteBatchResponse reports the update counts a batch produced.
type ExecuteBatchResponse struct {
	UpdateCounts []int64
	RPCMetadata  RPCMetadata
}

func (ExecuteBatchResponse) ResponseKind() Kind { return KindExecuteBatchResp }

// FetchRequest advances a statement's retained cursor.
type FetchRequest struct {
	ConnectionID string
	StatementID  int64
	Offset       int64
	FrameMaxSize int64
}

func (FetchRequest) RequestKind() Kind { return KindFetch }

// FetchResponse carries the next frame.
type FetchResponse struct {
	Frame       ResultFrame
	RPCMetadata RPCMetadata
}

func (FetchResponse) ResponseKind() Kind { return KindFetchResp }

// QueryState is the wire shape of a client's reconstruction hint — see
// meta.QueryState for why the server never interprets it itself.
type QueryState struct {
	SQL             string
	ParameterValues []typedvalue.Value
}

// SyncResultsRequest asks the server to reconcile a client-observed
// cursor offset against its retained cursor, typically after a
// reconnect or suspected server restart.
type SyncResultsRequest struct {
	ConnectionID string
	StatementID  int64
	State        QueryState
	Offset       int64
}

func (SyncResultsRequest) RequestKind() Kind { return KindSyncResults }

// SyncResultsResponse reports whether the statement's cursor still
// exists and whether reconciling it required skipping rows forward.
type SyncResultsResponse struct {
	Missing     bool
	Moved       bool
	RPCMetadata RPCMetadata
}

func (SyncResultsResponse) ResponseKind() Kind { return KindSyncResultsResp }

// SchemasRequest, TablesRequest, ColumnsRequest, and TypeInfoRequest are
// metadata queries; each answers with a ResultSetResponse, paginated via
// Fetch exactly like a query result (§4.1, §4.4).
type SchemasRequest struct {
	ConnectionID    string
	CatalogFilter   string
	MaxRowsPerFrame int64
}

func (SchemasRequest) RequestKind() Kind { return KindSchemasRequest }

type TablesRequest struct {
	ConnectionID      string
	Catalog           string
	SchemaPattern     string
	TableNamePattern  string
	Types             []string
	MaxRowsPerFrame   int64
}

func (TablesRequest) RequestKind() Kind { return KindTablesRequest }

type ColumnsRequest struct {
	ConnectionID      string
	Catalog           string
	SchemaPattern     string
	TableNamePattern  string
	ColumnNamePattern string
	MaxRowsPerFrame   int64
}

func (ColumnsRequest) RequestKind() Kind { return KindColumnsRequest }

type TypeInfoRequest struct {
	ConnectionID    string
	MaxRowsPerFrame int64
}

func (TypeInfoRequest) RequestKind() Kind { return KindTypeInfoRequest }

// CommitRequest/RollbackRequest drive transaction control.
type CommitRequest struct{ ConnectionID string }

func (CommitRequest) RequestKind() Kind { return KindCommit }

type CommitResponse struct{ RPCMetadata RPCMetadata }

func (CommitResponse) ResponseKind() Kind { return KindCommitResp }

type RollbackRequest struct{ ConnectionID string }

func (RollbackRequest) RequestKind() Kind { return KindRollback }

type RollbackResponse struct{ RPCMetadata RPCMetadata }

func (RollbackResponse) ResponseKind() Kind { return KindRollbackResp }

// CancelRequest marks a statement's cursor canceled out-of-band.
type CancelRequest struct {
	ConnectionID string
	StatementID  int64
}

func (CancelRequest) RequestKind() Kind { return KindCancel }

type CancelResponse struct{ RPCMetadata RPCMetadata }

func (CancelResponse) ResponseKind() Kind { return KindCancelResp }

// ErrorResponse is the uniform error envelope (§6, §7, §8): every failure
// the Meta Service or Transport Dispatcher surfaces, client or server
// side, takes this shape. HTTP status for an ErrorResponse is always 500;
// clients must inspect the body.
type ErrorResponse struct {
	ErrorMessage string
	ErrorCode    int32
	SQLState     string
	Severity     string
	StackTraces  []string
}

func (ErrorResponse) ResponseKind() Kind { return KindErrorResp }
