package metarpc

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/metarpc/metarpc/rpcerr"
	"github.com/metarpc/metarpc/session"
	"github.com/metarpc/metarpc/wirebin"
)

const (
	// ContentTypeJSON is the textual serializer's media type.
	ContentTypeJSON = "application/json"
	// ContentTypeBinary is the compact tagged binary serializer's media type.
	ContentTypeBinary = "application/x-metaprotobuf"

	// DefaultMaxHeaderBytes is the header-size cap applied when a Config
	// doesn't override it (§4.5 "default 64 KiB").
	DefaultMaxHeaderBytes = 64 * 1024

	// RemoteUserHeader carries the authenticated caller's identity, read by
	// the Transport Dispatcher and threaded through to the impersonation
	// boundary (§4.3). Authentication itself — verifying that the caller
	// really is who this header claims — happens upstream of the Transport
	// Dispatcher, e.g. in a reverse proxy terminating mTLS or SPNEGO.
	RemoteUserHeader = "X-Metarpc-Remote-User"
)

// Transport is the Transport Dispatcher: an http.Handler that accepts a
// single POST carrying an opaque serialized Request body, negotiates the
// serializer off Content-Type, dispatches through a Dispatcher, and writes
// back the serialized Response in the same encoding it was asked in
// (§4.5).
type Transport struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewTransport wires a Transport Dispatcher around a Dispatcher.
func NewTransport(dispatcher *Dispatcher, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{dispatcher: dispatcher, logger: logger}
}

// ServeHTTP implements http.Handler.
func (t *Transport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	contentType := r.Header.Get("Content-Type")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.writeError(w, contentType, rpcerr.Protocol("failed reading request body: %v", err))
		return
	}

	var req Request
	switch contentType {
	case ContentTypeJSON:
		req, err = DecodeRequestJSON(body)
	case ContentTypeBinary:
		req, err = DecodeRequestBinary(body)
	default:
		t.writeError(w, ContentTypeJSON, rpcerr.Protocol("unsupported content type %q", contentType))
		return
	}

	if err != nil {
		t.logger.Debug("rejecting malformed request", "content_type", contentType, "err", err)
		t.writeError(w, contentType, err)
		return
	}

	ctx := session.WithIdentity(r.Context(), session.Identity{
		RemoteUser: r.Header.Get(RemoteUserHeader),
		RemoteAddr: r.RemoteAddr,
	})

	resp := t.dispatcher.Dispatch(ctx, req)
	t.writeResponse(w, contentType, http.StatusOK, resp)
}

// writeError renders err as an ErrorResponse per §6/§4.5: always HTTP 500,
// body encoded in whatever serialization the request asked for (or JSON, if
// the content type itself couldn't be determined).
func (t *Transport) writeError(w http.ResponseWriter, contentType string, err error) {
	t.writeResponse(w, contentType, http.StatusInternalServerError, errorResponse(decodeFailureMessage(err)))
}

// decodeFailureMessage rewrites an error carrying a wirebin sentinel into a
// protocol error phrased "contained an invalid tag" or "contained
// insufficient data", and returns any other error untouched. JSON decode
// failures therefore keep the JSON parser's own message; they are not
// rewritten to an "Illegal character" phrasing.
func decodeFailureMessage(err error) error {
	if errors.Is(err, wirebin.ErrInvalidTag) {
		return rpcerr.Protocol("request body contained an invalid tag: %v", err)
	}
	if errors.Is(err, wirebin.ErrInsufficientData) {
		return rpcerr.Protocol("request body contained insufficient data: %v", err)
	}
	return err
}

func (t *Transport) writeResponse(w http.ResponseWriter, contentType string, status int, resp Response) {
	var body []byte
	var err error

	switch contentType {
	case ContentTypeBinary:
		body, err = EncodeResponseBinary(resp)
	default:
		contentType = ContentTypeJSON
		body, err = EncodeResponseJSON(resp)
	}

	if err != nil {
		// Encoding the response itself failed — fall back to a minimal JSON
		// ErrorResponse built by hand, since neither serializer can be
		// trusted at this point.
		t.logger.Error("failed encoding response", "err", err)
		w.Header().Set("Content-Type", ContentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"kind":"errorResponse","payload":{"ErrorMessage":"failed encoding response"}}`))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	w.Write(body)
}
