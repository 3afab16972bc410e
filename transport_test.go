package metarpc

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metarpc/metarpc/meta"
	"github.com/metarpc/metarpc/session"
)

func newTestTransport(t *testing.T) *Transport {
	t.Helper()
	store := session.NewStore(10, time.Minute, 10, time.Minute, nil)
	svc := meta.NewService(store, &stubEngine{name: "fakedb 1.0"}, nil, "localhost:4560", nil)
	return NewTransport(NewDispatcher(svc), nil)
}

func TestTransportRoundTripsJSON(t *testing.T) {
	t.Parallel()

	transport := newTestTransport(t)
	body, err := EncodeRequestJSON(OpenConnectionRequest{ConnectionID: "c1", Properties: ConnProperties{AutoCommit: true}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/metarpc", bytes.NewReader(body))
	req.Header.Set("Content-Type", ContentTypeJSON)
	rec := httptest.NewRecorder()

	transport.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentTypeJSON, rec.Header().Get("Content-Type"))

	resp, err := DecodeResponseJSON(rec.Body.Bytes())
	require.NoError(t, err)
	_, ok := resp.(OpenConnectionResponse)
	assert.True(t, ok, "expected OpenConnectionResponse, got %#v", resp)
}

func TestTransportRoundTripsBinary(t *testing.T) {
	t.Parallel()

	transport := newTestTransport(t)
	body, err := EncodeRequestBinary(OpenConnectionRequest{ConnectionID: "c1", Properties: ConnProperties{AutoCommit: true}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/metarpc", bytes.NewReader(body))
	req.Header.Set("Content-Type", ContentTypeBinary)
	rec := httptest.NewRecorder()

	transport.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentTypeBinary, rec.Header().Get("Content-Type"))

	resp, err := DecodeResponseBinary(rec.Body.Bytes())
	require.NoError(t, err)
	_, ok := resp.(OpenConnectionResponse)
	assert.True(t, ok, "expected OpenConnectionResponse, got %#v", resp)
}

func TestTransportRejectsNonPOST(t *testing.T) {
	t.Parallel()

	transport := newTestTransport(t)
	req := httptest.NewRequest(http.MethodGet, "/metarpc", nil)
	rec := httptest.NewRecorder()

	transport.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTransportRejectsUnsupportedContentType(t *testing.T) {
	t.Parallel()

	transport := newTestTransport(t)
	req := httptest.NewRequest(http.MethodPost, "/metarpc", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()

	transport.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp, err := DecodeResponseJSON(rec.Body.Bytes())
	require.NoError(t, err)
	errResp, ok := resp.(ErrorResponse)
	require.True(t, ok, "expected ErrorResponse, got %#v", resp)
	assert.Contains(t, errResp.ErrorMessage, "unsupported content type")
}

func TestTransportRejectsMalformedJSONBody(t *testing.T) {
	t.Parallel()

	transport := newTestTransport(t)
	req := httptest.NewRequest(http.MethodPost, "/metarpc", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", ContentTypeJSON)
	rec := httptest.NewRecorder()

	transport.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp, err := DecodeResponseJSON(rec.Body.Bytes())
	require.NoError(t, err)
	_, ok := resp.(ErrorResponse)
	assert.True(t, ok, "expected ErrorResponse, got %#v", resp)
}

func TestTransportRejectsTruncatedBinaryBody(t *testing.T) {
	t.Parallel()

	transport := newTestTransport(t)
	req := httptest.NewRequest(http.MethodPost, "/metarpc", bytes.NewReader([]byte{0x01, 0x02}))
	req.Header.Set("Content-Type", ContentTypeBinary)
	rec := httptest.NewRecorder()

	transport.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp, err := DecodeResponseBinary(rec.Body.Bytes())
	require.NoError(t, err)
	errResp, ok := resp.(ErrorResponse)
	require.True(t, ok, "expected ErrorResponse, got %#v", resp)
	assert.Contains(t, errResp.ErrorMessage, "invalid tag")
}

func TestTransportRejectsMalformedBinaryEnvelopeAsInvalidTag(t *testing.T) {
	t.Parallel()

	transport := newTestTransport(t)
	req := httptest.NewRequest(http.MethodPost, "/metarpc", bytes.NewReader([]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}))
	req.Header.Set("Content-Type", ContentTypeBinary)
	rec := httptest.NewRecorder()

	transport.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp, err := DecodeResponseBinary(rec.Body.Bytes())
	require.NoError(t, err)
	errResp, ok := resp.(ErrorResponse)
	require.True(t, ok, "expected ErrorResponse, got %#v", resp)
	assert.Contains(t, errResp.ErrorMessage, "invalid tag")
}

func TestTransportThreadsRemoteUserIntoImpersonationContext(t *testing.T) {
	t.Parallel()

	var gotUser, gotAddr string
	delegate := session.Delegate(func(ctx context.Context, remoteUser, remoteAddr string, action func(ctx context.Context) error) error {
		gotUser = remoteUser
		gotAddr = remoteAddr
		return action(ctx)
	})

	store := session.NewStore(10, time.Minute, 10, time.Minute, nil)
	svc := meta.NewService(store, &stubEngine{name: "fakedb 1.0"}, nil, "localhost:4560", delegate)
	transport := NewTransport(NewDispatcher(svc), nil)

	body, err := EncodeRequestJSON(OpenConnectionRequest{ConnectionID: "c1", Properties: ConnProperties{AutoCommit: true}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/metarpc", bytes.NewReader(body))
	req.Header.Set("Content-Type", ContentTypeJSON)
	req.Header.Set(RemoteUserHeader, "reporting-service")
	req.RemoteAddr = "10.0.0.5:54321"
	rec := httptest.NewRecorder()

	transport.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reporting-service", gotUser)
	assert.Equal(t, "10.0.0.5:54321", gotAddr)
}
