package metarpc

import (
	"context"

	"github.com/metarpc/metarpc/meta"
	"github.com/metarpc/metarpc/rpcerr"
)

// Dispatcher routes a decoded Request onto a Meta Service and produces the
// matching Response (or an ErrorResponse), independent of which serializer
// decoded the request in the first place.
type Dispatcher struct {
	svc *meta.Service
}

// NewDispatcher wires a Dispatcher around a Meta Service.
func NewDispatcher(svc *meta.Service) *Dispatcher {
	return &Dispatcher{svc: svc}
}

// Dispatch routes req to its handler. The returned Response is always
// non-nil: a failed operation yields an ErrorResponse rather than an error
// return, since both serializers need a Response value to write regardless
// of outcome (§6 "every failure... takes this shape").
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	rpcMeta := d.rpcMetadata()

	switch r := req.(type) {
	case OpenConnectionRequest:
		_, err := d.svc.OpenConnection(ctx, r.ConnectionID, r.Properties.toSession())
		if err != nil {
			return errorResponse(err)
		}
		return OpenConnectionResponse{RPCMetadata: rpcMeta}

	case CloseConnectionRequest:
		if err := d.svc.CloseConnection(ctx, r.ConnectionID); err != nil {
			return errorResponse(err)
		}
		return CloseConnectionResponse{RPCMetadata: rpcMeta}

	case ConnectionSyncRequest:
		props, err := d.svc.ConnectionSync(ctx, r.ConnectionID, r.ConnProps.toSession())
		if err != nil {
			return errorResponse(err)
		}
		return ConnectionSyncResponse{ConnProps: fromSessionProps(props), RPCMetadata: rpcMeta}

	case DatabasePropertyRequest:
		props, err := d.svc.DatabaseProperty(ctx, r.ConnectionID, r.Name)
		if err != nil {
			return errorResponse(err)
		}
		return DatabasePropertyResponse{Props: props, RPCMetadata: rpcMeta}

	case CreateStatementRequest:
		stmt, err := d.svc.CreateStatement(ctx, r.ConnectionID)
		if err != nil {
			return errorResponse(err)
		}
		return CreateStatementResponse{ConnectionID: r.ConnectionID, StatementID: stmt.ID, RPCMetadata: rpcMeta}

	case CloseStatementRequest:
		if err := d.svc.CloseStatement(ctx, r.ConnectionID, r.StatementID); err != nil {
			return errorResponse(err)
		}
		return CloseStatementResponse{RPCMetadata: rpcMeta}

	case PrepareRequest:
		stmt, err := d.svc.Prepare(ctx, r.ConnectionID, r.SQL)
		if err != nil {
			return errorResponse(err)
		}
		return PrepareResponse{
			ConnectionID:    r.ConnectionID,
			StatementID:     stmt.ID,
			ParamSignature:  stmt.ParamSignature,
			ResultSignature: stmt.ResultSignature,
			RPCMetadata:     rpcMeta,
		}

	case ExecuteRequest:
		rs, err := d.svc.Execute(ctx, r.ConnectionID, r.StatementID, r.ParameterValues, r.MaxRowsPerFrame)
		if err != nil {
			return errorResponse(err)
		}
		return ExecuteResponse{Results: []ResultSetResponse{resultSetResponse(r.ConnectionID, rs, rpcMeta)}, RPCMetadata: rpcMeta}

	case PrepareAndExecuteRequest:
		rs, err := d.svc.PrepareAndExecute(ctx, r.ConnectionID, r.StatementID, r.SQL, r.MaxRowsTotal, r.MaxRowsPerFrame)
		if err != nil {
			return errorResponse(err)
		}
		return ExecuteResponse{Results: []ResultSetResponse{resultSetResponse(r.ConnectionID, rs, rpcMeta)}, RPCMetadata: rpcMeta}

	case PrepareAndExecuteBatchRequest:
		res := d.svc.PrepareAndExecuteBatch(ctx, r.ConnectionID, r.SQLCommands)
		if res.Err != nil {
			return errorResponse(res.Err)
		}
		return ExecuteBatchResponse{UpdateCounts: res.UpdateCounts, RPCMetadata: rpcMeta}

	case ExecuteBatchRequest:
		res := d.svc.ExecuteBatch(ctx, r.ConnectionID, r.StatementID, r.ParameterRows)
		if res.Err != nil {
			return errorResponse(res.Err)
		}
		return ExecuteBatchResponse{UpdateCounts: res.UpdateCounts, RPCMetadata: rpcMeta}

	case FetchRequest:
		frame, err := d.svc.Fetch(ctx, r.ConnectionID, r.StatementID, r.Offset, r.FrameMaxSize)
		if err != nil {
			return errorResponse(err)
		}
		return FetchResponse{Frame: resultFrame(frame), RPCMetadata: rpcMeta}

	case SyncResultsRequest:
		res, err := d.svc.SyncResults(ctx, r.ConnectionID, r.StatementID, r.Offset)
		if err != nil {
			return errorResponse(err)
		}
		return SyncResultsResponse{Missing: res.Missing, Moved: res.Moved, RPCMetadata: rpcMeta}

	case SchemasRequest:
		rs, err := d.svc.Schemas(ctx, r.ConnectionID, r.CatalogFilter, r.MaxRowsPerFrame)
		if err != nil {
			return errorResponse(err)
		}
		return resultSetResponse(r.ConnectionID, rs, rpcMeta)

	case TablesRequest:
		rs, err := d.svc.Tables(ctx, r.ConnectionID, r.Catalog, r.SchemaPattern, r.TableNamePattern, r.Types, r.MaxRowsPerFrame)
		if err != nil {
			return errorResponse(err)
		}
		return resultSetResponse(r.ConnectionID, rs, rpcMeta)

	case ColumnsRequest:
		rs, err := d.svc.Columns(ctx, r.ConnectionID, r.Catalog, r.SchemaPattern, r.TableNamePattern, r.ColumnNamePattern, r.MaxRowsPerFrame)
		if err != nil {
			return errorResponse(err)
		}
		return resultSetResponse(r.ConnectionID, rs, rpcMeta)

	case TypeInfoRequest:
		rs, err := d.svc.TypeInfo(ctx, r.ConnectionID, r.MaxRowsPerFrame)
		if err != nil {
			return errorResponse(err)
		}
		return resultSetResponse(r.ConnectionID, rs, rpcMeta)

	case CommitRequest:
		if err := d.svc.Commit(ctx, r.ConnectionID); err != nil {
			return errorResponse(err)
		}
		return CommitResponse{RPCMetadata: rpcMeta}

	case RollbackRequest:
		if err := d.svc.Rollback(ctx, r.ConnectionID); err != nil {
			return errorResponse(err)
		}
		return RollbackResponse{RPCMetadata: rpcMeta}

	case CancelRequest:
		if err := d.svc.Cancel(ctx, r.ConnectionID, r.StatementID); err != nil {
			return errorResponse(err)
		}
		return CancelResponse{RPCMetadata: rpcMeta}

	default:
		return errorResponse(rpcerr.Protocol("unrecognized request kind %T", req))
	}
}

func (d *Dispatcher) rpcMetadata() RPCMetadata {
	return RPCMetadata{ServerAddress: d.svc.ServerAddress()}
}

func resultFrame(f meta.Frame) ResultFrame {
	return ResultFrame{Offset: f.Offset, Done: f.Done, Rows: f.Rows}
}

func resultSetResponse(connID string, rs *meta.ResultSet, rpcMeta RPCMetadata) ResultSetResponse {
	return ResultSetResponse{
		ConnectionID:    connID,
		StatementID:     rs.StatementID,
		ResultSignature: rs.ResultSignature,
		UpdateCount:     rs.UpdateCount,
		Frame:           resultFrame(rs.Frame),
		RPCMetadata:     rpcMeta,
	}
}

func errorResponse(err error) ErrorResponse {
	env := rpcerr.Flatten(err)
	return ErrorResponse{
		ErrorMessage: env.ErrorMessage,
		ErrorCode:    env.ErrorCode,
		SQLState:     string(env.SQLState),
		Severity:     string(env.Severity),
		StackTraces:  env.StackTraces,
	}
}
