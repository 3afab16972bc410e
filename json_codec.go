package metarpc

import (
	"encoding/json"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/metarpc/metarpc/rpcerr"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonEnvelope is the textual serializer's outer shape: a discriminator
// naming the variant, carrying the variant's own fields as the payload
// (§6 "textual JSON"). TypedValue.Value already implements its own
// MarshalJSON/UnmarshalJSON, so request/response payloads nest those for
// free wherever a Value or ColumnMetaData/ParamMetaData appears.
type jsonEnvelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeRequestJSON renders req as a textual envelope.
func EncodeRequestJSON(req Request) ([]byte, error) {
	payload, err := jsonAPI.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("metarpc: encode request: %w", err)
	}
	return jsonAPI.Marshal(jsonEnvelope{Kind: req.RequestKind(), Payload: payload})
}

// DecodeRequestJSON parses a textual envelope into its concrete Request
// variant.
func DecodeRequestJSON(data []byte) (Request, error) {
	var env jsonEnvelope
	if err := jsonAPI.Unmarshal(data, &env); err != nil {
		return nil, rpcerr.Protocol("malformed JSON request envelope: %v", err)
	}

	switch env.Kind {
	case KindOpenConnection:
		return decodeJSONInto(env.Payload, &OpenConnectionRequest{})
	case KindCloseConnection:
		return decodeJSONInto(env.Payload, &CloseConnectionRequest{})
	case KindConnectionSync:
		return decodeJSONInto(env.Payload, &ConnectionSyncRequest{})
	case KindDatabaseProperty:
		return decodeJSONInto(env.Payload, &DatabasePropertyRequest{})
	case KindCreateStatement:
		return decodeJSONInto(env.Payload, &CreateStatementRequest{})
	case KindCloseStatement:
		return decodeJSONInto(env.Payload, &CloseStatementRequest{})
	case KindPrepare:
		return decodeJSONInto(env.Payload, &PrepareRequest{})
	case KindExecute:
		return decodeJSONInto(env.Payload, &ExecuteRequest{})
	case KindPrepareAndExecute:
		return decodeJSONInto(env.Payload, &PrepareAndExecuteRequest{})
	case KindPrepareAndExecuteBatch:
		return decodeJSONInto(env.Payload, &PrepareAndExecuteBatchRequest{})
	case KindExecuteBatch:
		return decodeJSONInto(env.Payload, &ExecuteBatchRequest{})
	case KindFetch:
		return decodeJSONInto(env.Payload, &FetchRequest{})
	case KindSyncResults:
		return decodeJSONInto(env.Payload, &SyncResultsRequest{})
	case KindSchemasRequest:
		return decodeJSONInto(env.Payload, &SchemasRequest{})
	case KindTablesRequest:
		return decodeJSONInto(env.Payload, &TablesRequest{})
	case KindColumnsRequest:
		return decodeJSONInto(env.Payload, &ColumnsRequest{})
	case KindTypeInfoRequest:
		return decodeJSONInto(env.Payload, &TypeInfoRequest{})
	case KindCommit:
		return decodeJSONInto(env.Payload, &CommitRequest{})
	case KindRollback:
		return decodeJSONInto(env.Payload, &RollbackRequest{})
	case KindCancel:
		return decodeJSONInto(env.Payload, &CancelRequest{})
	default:
		return nil, rpcerr.Protocol("unrecognized request kind %q", env.Kind)
	}
}

// EncodeResponseJSON renders resp as a textual envelope.
func EncodeResponseJSON(resp Response) ([]byte, error) {
	payload, err := jsonAPI.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("metarpc: encode response: %w", err)
	}
	return jsonAPI.Marshal(jsonEnvelope{Kind: resp.ResponseKind(), Payload: payload})
}

// DecodeResponseJSON parses a textual envelope into its concrete Response
// variant — used by test harnesses and client-side tooling driving the
// Transport Dispatcher end to end.
func DecodeResponseJSON(data []byte) (Response, error) {
	var env jsonEnvelope
	if err := jsonAPI.Unmarshal(data, &env); err != nil {
		return nil, rpcerr.Protocol("malformed JSON response envelope: %v", err)
	}

	switch env.Kind {
	case KindOpenConnectionResp:
		return decodeJSONInto(env.Payload, &OpenConnectionResponse{})
	case KindCloseConnectionResp:
		return decodeJSONInto(env.Payload, &CloseConnectionResponse{})
	case KindConnectionSyncResp:
		return decodeJSONInto(env.Payload, &ConnectionSyncResponse{})
	case KindDatabasePropertyResp:
		return decodeJSONInto(env.Payload, &DatabasePropertyResponse{})
	case KindCreateStatementResp:
		return decodeJSONInto(env.Payload, &CreateStatementResponse{})
	case KindCloseStatementResp:
		return decodeJSONInto(env.Payload, &CloseStatementResponse{})
	case KindPrepareResp:
		return decodeJSONInto(env.Payload, &PrepareResponse{})
	case KindExecuteResp:
		return decodeJSONInto(env.Payload, &ExecuteResponse{})
	case KindExecuteBatchResp:
		return decodeJSONInto(env.Payload, &ExecuteBatchResponse{})
	case KindFetchResp:
		return decodeJSONInto(env.Payload, &FetchResponse{})
	case KindSyncResultsResp:
		return decodeJSONInto(env.Payload, &SyncResultsResponse{})
	case KindResultSetResp:
		return decodeJSONInto(env.Payload, &ResultSetResponse{})
	case KindCommitResp:
		return decodeJSONInto(env.Payload, &CommitResponse{})
	case KindRollbackResp:
		return decodeJSONInto(env.Payload, &RollbackResponse{})
	case KindCancelResp:
		return decodeJSONInto(env.Payload, &CancelResponse{})
	case KindErrorResp:
		return decodeJSONInto(env.Payload, &ErrorResponse{})
	default:
		return nil, rpcerr.Protocol("unrecognized response kind %q", env.Kind)
	}
}

// decodeJSONInto is a small generic helper: dst must be a pointer to
// one of the Request/Response variant structs, and the dereferenced value
// is returned so callers can hand it back as the interface type.
func decodeJSONInto[T any](payload json.RawMessage, dst *T) (T, error) {
	if err := jsonAPI.Unmarshal(payload, dst); err != nil {
		var zero T
		return zero, rpcerr.Protocol("malformed payload for %T: %v", dst, err)
	}
	return *dst, nil
}
