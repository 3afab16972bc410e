package metarpc

import (
	"fmt"

	"github.com/metarpc/metarpc/rpcerr"
	"github.com/metarpc/metarpc/typedvalue"
	"github.com/metarpc/metarpc/wirebin"
)

// EncodeRequestBinary renders req using the compact tagged binary schema:
// a length-prefixed class-identifier string naming the variant, followed
// by the variant's own encoded body (§6 "compact tagged binary").
func EncodeRequestBinary(req Request) ([]byte, error) {
	w := wirebin.NewWriter()
	w.AddString(string(req.RequestKind()))
	if err := encodeRequestBody(w, req); err != nil {
		return nil, fmt.Errorf("metarpc: encode request: %w", err)
	}
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("metarpc: encode request: %w", err)
	}
	return w.Bytes(), nil
}

// DecodeRequestBinary parses a binary envelope into its concrete Request
// variant.
func DecodeRequestBinary(data []byte) (Request, error) {
	r := wirebin.NewReader(data)
	kindStr, err := r.GetString()
	if err != nil {
		// The outer class-identifier string is itself the envelope's type
		// tag; any failure reading it — truncated length prefix, a length
		// that overshoots the remaining body, garbage bytes — means the
		// envelope never named a real variant, which is an invalid tag
		// regardless of which low-level read failed.
		return nil, rpcerr.Protocol("request envelope contained an invalid tag: %v", err)
	}
	req, err := decodeRequestBody(Kind(kindStr), r)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// EncodeResponseBinary renders resp using the compact tagged binary schema.
func EncodeResponseBinary(resp Response) ([]byte, error) {
	w := wirebin.NewWriter()
	w.AddString(string(resp.ResponseKind()))
	if err := encodeResponseBody(w, resp); err != nil {
		return nil, fmt.Errorf("metarpc: encode response: %w", err)
	}
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("metarpc: encode response: %w", err)
	}
	return w.Bytes(), nil
}

// DecodeResponseBinary parses a binary envelope into its concrete Response
// variant.
func DecodeResponseBinary(data []byte) (Response, error) {
	r := wirebin.NewReader(data)
	kindStr, err := r.GetString()
	if err != nil {
		return nil, rpcerr.Protocol("response envelope contained an invalid tag: %v", err)
	}
	return decodeResponseBody(Kind(kindStr), r)
}

func encodeConnProperties(w *wirebin.Writer, p ConnProperties) {
	w.AddBool(p.AutoCommit)
	w.AddBool(p.ReadOnly)
	w.AddString(p.Catalog)
	w.AddString(p.Schema)
	w.AddInt32(p.TransactionIsolation)
	w.AddBool(p.Dirty)
}

func decodeConnProperties(r *wirebin.Reader) (ConnProperties, error) {
	var p ConnProperties
	var err error
	if p.AutoCommit, err = r.GetBool(); err != nil {
		return p, err
	}
	if p.ReadOnly, err = r.GetBool(); err != nil {
		return p, err
	}
	if p.Catalog, err = r.GetString(); err != nil {
		return p, err
	}
	if p.Schema, err = r.GetString(); err != nil {
		return p, err
	}
	if p.TransactionIsolation, err = r.GetInt32(); err != nil {
		return p, err
	}
	if p.Dirty, err = r.GetBool(); err != nil {
		return p, err
	}
	return p, nil
}

func encodeRPCMetadata(w *wirebin.Writer, m RPCMetadata) {
	w.AddString(m.ServerAddress)
}

func decodeRPCMetadata(r *wirebin.Reader) (RPCMetadata, error) {
	addr, err := r.GetString()
	return RPCMetadata{ServerAddress: addr}, err
}

func encodeValues(w *wirebin.Writer, vals []typedvalue.Value) error {
	w.AddInt32(int32(len(vals)))
	for _, v := range vals {
		if err := v.EncodeBinary(w); err != nil {
			return err
		}
	}
	return nil
}

func decodeValues(r *wirebin.Reader) ([]typedvalue.Value, error) {
	n, err := r.GetInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative value count %d", wirebin.ErrInvalidTag, n)
	}
	vals := make([]typedvalue.Value, n)
	for i := range vals {
		if vals[i], err = typedvalue.DecodeValueBinary(r); err != nil {
			return nil, err
		}
	}
	return vals, nil
}

func encodeColumnSig(w *wirebin.Writer, cols []typedvalue.ColumnMetaData) {
	w.AddInt32(int32(len(cols)))
	for _, c := range cols {
		c.EncodeBinary(w)
	}
}

func decodeColumnSig(r *wirebin.Reader) ([]typedvalue.ColumnMetaData, error) {
	n, err := r.GetInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative column count %d", wirebin.ErrInvalidTag, n)
	}
	cols := make([]typedvalue.ColumnMetaData, n)
	for i := range cols {
		if cols[i], err = typedvalue.DecodeColumnMetaDataBinary(r); err != nil {
			return nil, err
		}
	}
	return cols, nil
}

func encodeParamSig(w *wirebin.Writer, params []typedvalue.ParamMetaData) {
	w.AddInt32(int32(len(params)))
	for _, p := range params {
		p.EncodeBinary(w)
	}
}

func decodeParamSig(r *wirebin.Reader) ([]typedvalue.ParamMetaData, error) {
	n, err := r.GetInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative parameter count %d", wirebin.ErrInvalidTag, n)
	}
	params := make([]typedvalue.ParamMetaData, n)
	for i := range params {
		if params[i], err = typedvalue.DecodeParamMetaDataBinary(r); err != nil {
			return nil, err
		}
	}
	return params, nil
}

func encodeFrame(w *wirebin.Writer, f ResultFrame) error {
	w.AddInt64(f.Offset)
	w.AddBool(f.Done)
	w.AddInt32(int32(len(f.Rows)))
	for _, row := range f.Rows {
		if err := encodeValues(w, row); err != nil {
			return err
		}
	}
	return nil
}

func decodeFrame(r *wirebin.Reader) (ResultFrame, error) {
	var f ResultFrame
	var err error
	if f.Offset, err = r.GetInt64(); err != nil {
		return f, err
	}
	if f.Done, err = r.GetBool(); err != nil {
		return f, err
	}
	n, err := r.GetInt32()
	if err != nil {
		return f, err
	}
	if n < 0 {
		return f, fmt.Errorf("%w: negative row count %d", wirebin.ErrInvalidTag, n)
	}
	f.Rows = make([][]typedvalue.Value, n)
	for i := range f.Rows {
		if f.Rows[i], err = decodeValues(r); err != nil {
			return f, err
		}
	}
	return f, nil
}

func encodeResultSetResponse(w *wirebin.Writer, rs ResultSetResponse) error {
	w.AddString(rs.ConnectionID)
	w.AddInt64(rs.StatementID)
	encodeColumnSig(w, rs.ResultSignature)
	w.AddInt64(rs.UpdateCount)
	if err := encodeFrame(w, rs.Frame); err != nil {
		return err
	}
	encodeRPCMetadata(w, rs.RPCMetadata)
	return nil
}

func decodeResultSetResponse(r *wirebin.Reader) (ResultSetResponse, error) {
	var rs ResultSetResponse
	var err error
	if rs.ConnectionID, err = r.GetString(); err != nil {
		return rs, err
	}
	if rs.StatementID, err = r.GetInt64(); err != nil {
		return rs, err
	}
	if rs.ResultSignature, err = decodeColumnSig(r); err != nil {
		return rs, err
	}
	if rs.UpdateCount, err = r.GetInt64(); err != nil {
		return rs, err
	}
	if rs.Frame, err = decodeFrame(r); err != nil {
		return rs, err
	}
	if rs.RPCMetadata, err = decodeRPCMetadata(r); err != nil {
		return rs, err
	}
	return rs, nil
}

func encodeRequestBody(w *wirebin.Writer, req Request) error {
	switch r := req.(type) {
	case OpenConnectionRequest:
		w.AddString(r.ConnectionID)
		encodeConnProperties(w, r.Properties)
	case CloseConnectionRequest:
		w.AddString(r.ConnectionID)
	case ConnectionSyncRequest:
		w.AddString(r.ConnectionID)
		encodeConnProperties(w, r.ConnProps)
	case DatabasePropertyRequest:
		w.AddString(r.ConnectionID)
		w.AddString(r.Name)
	case CreateStatementRequest:
		w.AddString(r.ConnectionID)
	case CloseStatementRequest:
		w.AddString(r.ConnectionID)
		w.AddInt64(r.StatementID)
	case PrepareRequest:
		w.AddString(r.ConnectionID)
		w.AddString(r.SQL)
		w.AddInt64(r.MaxRowsTotal)
	case ExecuteRequest:
		w.AddString(r.ConnectionID)
		w.AddInt64(r.StatementID)
		if err := encodeValues(w, r.ParameterValues); err != nil {
			return err
		}
		w.AddInt64(r.MaxRowsPerFrame)
	case PrepareAndExecuteRequest:
		w.AddString(r.ConnectionID)
		w.AddInt64(r.StatementID)
		w.AddString(r.SQL)
		w.AddInt64(r.MaxRowsTotal)
		w.AddInt64(r.MaxRowsPerFrame)
	case PrepareAndExecuteBatchRequest:
		w.AddString(r.ConnectionID)
		w.AddInt64(r.StatementID)
		w.AddInt32(int32(len(r.SQLCommands)))
		for _, sql := range r.SQLCommands {
			w.AddString(sql)
		}
	case ExecuteBatchRequest:
		w.AddString(r.ConnectionID)
		w.AddInt64(r.StatementID)
		w.AddInt32(int32(len(r.ParameterRows)))
		for _, row := range r.ParameterRows {
			if err := encodeValues(w, row); err != nil {
				return err
			}
		}
	case FetchRequest:
		w.AddString(r.ConnectionID)
		w.AddInt64(r.StatementID)
		w.AddInt64(r.Offset)
		w.AddInt64(r.FrameMaxSize)
	case SyncResultsRequest:
		w.AddString(r.ConnectionID)
		w.AddInt64(r.StatementID)
		w.AddString(r.State.SQL)
		if err := encodeValues(w, r.State.ParameterValues); err != nil {
			return err
		}
		w.AddInt64(r.Offset)
	case SchemasRequest:
		w.AddString(r.ConnectionID)
		w.AddString(r.CatalogFilter)
		w.AddInt64(r.MaxRowsPerFrame)
	case TablesRequest:
		w.AddString(r.ConnectionID)
		w.AddString(r.Catalog)
		w.AddString(r.SchemaPattern)
		w.AddString(r.TableNamePattern)
		w.AddInt32(int32(len(r.Types)))
		for _, t := range r.Types {
			w.AddString(t)
		}
		w.AddInt64(r.MaxRowsPerFrame)
	case ColumnsRequest:
		w.AddString(r.ConnectionID)
		w.AddString(r.Catalog)
		w.AddString(r.SchemaPattern)
		w.AddString(r.TableNamePattern)
		w.AddString(r.ColumnNamePattern)
		w.AddInt64(r.MaxRowsPerFrame)
	case TypeInfoRequest:
		w.AddString(r.ConnectionID)
		w.AddInt64(r.MaxRowsPerFrame)
	case CommitRequest:
		w.AddString(r.ConnectionID)
	case RollbackRequest:
		w.AddString(r.ConnectionID)
	case CancelRequest:
		w.AddString(r.ConnectionID)
		w.AddInt64(r.StatementID)
	}
	return nil
}

func decodeRequestBody(kind Kind, r *wirebin.Reader) (Request, error) {
	switch kind {
	case KindOpenConnection:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		props, err := decodeConnProperties(r)
		if err != nil {
			return nil, err
		}
		return OpenConnectionRequest{ConnectionID: connID, Properties: props}, nil

	case KindCloseConnection:
		connID, err := r.GetString()
		return CloseConnectionRequest{ConnectionID: connID}, err

	case KindConnectionSync:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		props, err := decodeConnProperties(r)
		if err != nil {
			return nil, err
		}
		return ConnectionSyncRequest{ConnectionID: connID, ConnProps: props}, nil

	case KindDatabaseProperty:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		name, err := r.GetString()
		return DatabasePropertyRequest{ConnectionID: connID, Name: name}, err

	case KindCreateStatement:
		connID, err := r.GetString()
		return CreateStatementRequest{ConnectionID: connID}, err

	case KindCloseStatement:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		stmtID, err := r.GetInt64()
		return CloseStatementRequest{ConnectionID: connID, StatementID: stmtID}, err

	case KindPrepare:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		sql, err := r.GetString()
		if err != nil {
			return nil, err
		}
		maxRows, err := r.GetInt64()
		return PrepareRequest{ConnectionID: connID, SQL: sql, MaxRowsTotal: maxRows}, err

	case KindExecute:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		stmtID, err := r.GetInt64()
		if err != nil {
			return nil, err
		}
		params, err := decodeValues(r)
		if err != nil {
			return nil, err
		}
		frameMax, err := r.GetInt64()
		return ExecuteRequest{ConnectionID: connID, StatementID: stmtID, ParameterValues: params, MaxRowsPerFrame: frameMax}, err

	case KindPrepareAndExecute:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		stmtID, err := r.GetInt64()
		if err != nil {
			return nil, err
		}
		sql, err := r.GetString()
		if err != nil {
			return nil, err
		}
		maxRowsTotal, err := r.GetInt64()
		if err != nil {
			return nil, err
		}
		maxRowsPerFrame, err := r.GetInt64()
		return PrepareAndExecuteRequest{
			ConnectionID: connID, StatementID: stmtID, SQL: sql,
			MaxRowsTotal: maxRowsTotal, MaxRowsPerFrame: maxRowsPerFrame,
		}, err

	case KindPrepareAndExecuteBatch:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		stmtID, err := r.GetInt64()
		if err != nil {
			return nil, err
		}
		n, err := r.GetInt32()
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative command count %d", wirebin.ErrInvalidTag, n)
		}
		cmds := make([]string, n)
		for i := range cmds {
			if cmds[i], err = r.GetString(); err != nil {
				return nil, err
			}
		}
		return PrepareAndExecuteBatchRequest{ConnectionID: connID, StatementID: stmtID, SQLCommands: cmds}, nil

	case KindExecuteBatch:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		stmtID, err := r.GetInt64()
		if err != nil {
			return nil, err
		}
		n, err := r.GetInt32()
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative batch row count %d", wirebin.ErrInvalidTag, n)
		}
		rows := make([][]typedvalue.Value, n)
		for i := range rows {
			if rows[i], err = decodeValues(r); err != nil {
				return nil, err
			}
		}
		return ExecuteBatchRequest{ConnectionID: connID, StatementID: stmtID, ParameterRows: rows}, nil

	case KindFetch:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		stmtID, err := r.GetInt64()
		if err != nil {
			return nil, err
		}
		offset, err := r.GetInt64()
		if err != nil {
			return nil, err
		}
		frameMax, err := r.GetInt64()
		return FetchRequest{ConnectionID: connID, StatementID: stmtID, Offset: offset, FrameMaxSize: frameMax}, err

	case KindSyncResults:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		stmtID, err := r.GetInt64()
		if err != nil {
			return nil, err
		}
		sql, err := r.GetString()
		if err != nil {
			return nil, err
		}
		params, err := decodeValues(r)
		if err != nil {
			return nil, err
		}
		offset, err := r.GetInt64()
		return SyncResultsRequest{
			ConnectionID: connID, StatementID: stmtID,
			State: QueryState{SQL: sql, ParameterValues: params}, Offset: offset,
		}, err

	case KindSchemasRequest:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		catalog, err := r.GetString()
		if err != nil {
			return nil, err
		}
		frameMax, err := r.GetInt64()
		return SchemasRequest{ConnectionID: connID, CatalogFilter: catalog, MaxRowsPerFrame: frameMax}, err

	case KindTablesRequest:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		catalog, err := r.GetString()
		if err != nil {
			return nil, err
		}
		schemaPattern, err := r.GetString()
		if err != nil {
			return nil, err
		}
		tableNamePattern, err := r.GetString()
		if err != nil {
			return nil, err
		}
		n, err := r.GetInt32()
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative type count %d", wirebin.ErrInvalidTag, n)
		}
		types := make([]string, n)
		for i := range types {
			if types[i], err = r.GetString(); err != nil {
				return nil, err
			}
		}
		frameMax, err := r.GetInt64()
		return TablesRequest{
			ConnectionID: connID, Catalog: catalog, SchemaPattern: schemaPattern,
			TableNamePattern: tableNamePattern, Types: types, MaxRowsPerFrame: frameMax,
		}, err

	case KindColumnsRequest:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		catalog, err := r.GetString()
		if err != nil {
			return nil, err
		}
		schemaPattern, err := r.GetString()
		if err != nil {
			return nil, err
		}
		tableNamePattern, err := r.GetString()
		if err != nil {
			return nil, err
		}
		columnNamePattern, err := r.GetString()
		if err != nil {
			return nil, err
		}
		frameMax, err := r.GetInt64()
		return ColumnsRequest{
			ConnectionID: connID, Catalog: catalog, SchemaPattern: schemaPattern,
			TableNamePattern: tableNamePattern, ColumnNamePattern: columnNamePattern, MaxRowsPerFrame: frameMax,
		}, err

	case KindTypeInfoRequest:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		frameMax, err := r.GetInt64()
		return TypeInfoRequest{ConnectionID: connID, MaxRowsPerFrame: frameMax}, err

	case KindCommit:
		connID, err := r.GetString()
		return CommitRequest{ConnectionID: connID}, err

	case KindRollback:
		connID, err := r.GetString()
		return RollbackRequest{ConnectionID: connID}, err

	case KindCancel:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		stmtID, err := r.GetInt64()
		return CancelRequest{ConnectionID: connID, StatementID: stmtID}, err

	default:
		return nil, rpcerr.Protocol("unrecognized request kind %q", kind)
	}
}

func encodeResponseBody(w *wirebin.Writer, resp Response) error {
	switch r := resp.(type) {
	case OpenConnectionResponse:
		encodeRPCMetadata(w, r.RPCMetadata)
	case CloseConnectionResponse:
		encodeRPCMetadata(w, r.RPCMetadata)
	case ConnectionSyncResponse:
		encodeConnProperties(w, r.ConnProps)
		encodeRPCMetadata(w, r.RPCMetadata)
	case DatabasePropertyResponse:
		w.AddInt32(int32(len(r.Props)))
		for k, v := range r.Props {
			w.AddString(k)
			w.AddString(v)
		}
		encodeRPCMetadata(w, r.RPCMetadata)
	case CreateStatementResponse:
		w.AddString(r.ConnectionID)
		w.AddInt64(r.StatementID)
		encodeRPCMetadata(w, r.RPCMetadata)
	case CloseStatementResponse:
		encodeRPCMetadata(w, r.RPCMetadata)
	case PrepareResponse:
		w.AddString(r.ConnectionID)
		w.AddInt64(r.StatementID)
		encodeParamSig(w, r.ParamSignature)
		encodeColumnSig(w, r.ResultSignature)
		encodeRPCMetadata(w, r.RPCMetadata)
	case ExecuteResponse:
		w.AddInt32(int32(len(r.Results)))
		for _, rs := range r.Results {
			if err := encodeResultSetResponse(w, rs); err != nil {
				return err
			}
		}
		encodeRPCMetadata(w, r.RPCMetadata)
	case ExecuteBatchResponse:
		w.AddInt32(int32(len(r.UpdateCounts)))
		for _, c := range r.UpdateCounts {
			w.AddInt64(c)
		}
		encodeRPCMetadata(w, r.RPCMetadata)
	case FetchResponse:
		if err := encodeFrame(w, r.Frame); err != nil {
			return err
		}
		encodeRPCMetadata(w, r.RPCMetadata)
	case SyncResultsResponse:
		w.AddBool(r.Missing)
		w.AddBool(r.Moved)
		encodeRPCMetadata(w, r.RPCMetadata)
	case ResultSetResponse:
		return encodeResultSetResponse(w, r)
	case CommitResponse:
		encodeRPCMetadata(w, r.RPCMetadata)
	case RollbackResponse:
		encodeRPCMetadata(w, r.RPCMetadata)
	case CancelResponse:
		encodeRPCMetadata(w, r.RPCMetadata)
	case ErrorResponse:
		w.AddString(r.ErrorMessage)
		w.AddInt32(r.ErrorCode)
		w.AddString(r.SQLState)
		w.AddString(r.Severity)
		w.AddInt32(int32(len(r.StackTraces)))
		for _, s := range r.StackTraces {
			w.AddString(s)
		}
	}
	return nil
}

func decodeResponseBody(kind Kind, r *wirebin.Reader) (Response, error) {
	switch kind {
	case KindOpenConnectionResp:
		m, err := decodeRPCMetadata(r)
		return OpenConnectionResponse{RPCMetadata: m}, err

	case KindCloseConnectionResp:
		m, err := decodeRPCMetadata(r)
		return CloseConnectionResponse{RPCMetadata: m}, err

	case KindConnectionSyncResp:
		props, err := decodeConnProperties(r)
		if err != nil {
			return nil, err
		}
		m, err := decodeRPCMetadata(r)
		return ConnectionSyncResponse{ConnProps: props, RPCMetadata: m}, err

	case KindDatabasePropertyResp:
		n, err := r.GetInt32()
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative property count %d", wirebin.ErrInvalidTag, n)
		}
		props := make(map[string]string, n)
		for i := int32(0); i < n; i++ {
			k, err := r.GetString()
			if err != nil {
				return nil, err
			}
			v, err := r.GetString()
			if err != nil {
				return nil, err
			}
			props[k] = v
		}
		m, err := decodeRPCMetadata(r)
		return DatabasePropertyResponse{Props: props, RPCMetadata: m}, err

	case KindCreateStatementResp:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		stmtID, err := r.GetInt64()
		if err != nil {
			return nil, err
		}
		m, err := decodeRPCMetadata(r)
		return CreateStatementResponse{ConnectionID: connID, StatementID: stmtID, RPCMetadata: m}, err

	case KindCloseStatementResp:
		m, err := decodeRPCMetadata(r)
		return CloseStatementResponse{RPCMetadata: m}, err

	case KindPrepareResp:
		connID, err := r.GetString()
		if err != nil {
			return nil, err
		}
		stmtID, err := r.GetInt64()
		if err != nil {
			return nil, err
		}
		paramSig, err := decodeParamSig(r)
		if err != nil {
			return nil, err
		}
		resultSig, err := decodeColumnSig(r)
		if err != nil {
			return nil, err
		}
		m, err := decodeRPCMetadata(r)
		return PrepareResponse{
			ConnectionID: connID, StatementID: stmtID,
			ParamSignature: paramSig, ResultSignature: resultSig, RPCMetadata: m,
		}, err

	case KindExecuteResp:
		n, err := r.GetInt32()
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative result count %d", wirebin.ErrInvalidTag, n)
		}
		results := make([]ResultSetResponse, n)
		for i := range results {
			if results[i], err = decodeResultSetResponse(r); err != nil {
				return nil, err
			}
		}
		m, err := decodeRPCMetadata(r)
		return ExecuteResponse{Results: results, RPCMetadata: m}, err

	case KindExecuteBatchResp:
		n, err := r.GetInt32()
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative update-count count %d", wirebin.ErrInvalidTag, n)
		}
		counts := make([]int64, n)
		for i := range counts {
			if counts[i], err = r.GetInt64(); err != nil {
				return nil, err
			}
		}
		m, err := decodeRPCMetadata(r)
		return ExecuteBatchResponse{UpdateCounts: counts, RPCMetadata: m}, err

	case KindFetchResp:
		frame, err := decodeFrame(r)
		if err != nil {
			return nil, err
		}
		m, err := decodeRPCMetadata(r)
		return FetchResponse{Frame: frame, RPCMetadata: m}, err

	case KindSyncResultsResp:
		missing, err := r.GetBool()
		if err != nil {
			return nil, err
		}
		moved, err := r.GetBool()
		if err != nil {
			return nil, err
		}
		m, err := decodeRPCMetadata(r)
		return SyncResultsResponse{Missing: missing, Moved: moved, RPCMetadata: m}, err

	case KindResultSetResp:
		return decodeResultSetResponse(r)

	case KindCommitResp:
		m, err := decodeRPCMetadata(r)
		return CommitResponse{RPCMetadata: m}, err

	case KindRollbackResp:
		m, err := decodeRPCMetadata(r)
		return RollbackResponse{RPCMetadata: m}, err

	case KindCancelResp:
		m, err := decodeRPCMetadata(r)
		return CancelResponse{RPCMetadata: m}, err

	case KindErrorResp:
		msg, err := r.GetString()
		if err != nil {
			return nil, err
		}
		code, err := r.GetInt32()
		if err != nil {
			return nil, err
		}
		sqlState, err := r.GetString()
		if err != nil {
			return nil, err
		}
		severity, err := r.GetString()
		if err != nil {
			return nil, err
		}
		n, err := r.GetInt32()
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative stack trace count %d", wirebin.ErrInvalidTag, n)
		}
		traces := make([]string, n)
		for i := range traces {
			if traces[i], err = r.GetString(); err != nil {
				return nil, err
			}
		}
		return ErrorResponse{ErrorMessage: msg, ErrorCode: code, SQLState: sqlState, Severity: severity, StackTraces: traces}, nil

	default:
		return nil, rpcerr.Protocol("unrecognized response kind %q", kind)
	}
}
