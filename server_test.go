package metarpc

import (
	"bytes"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) (addr string, srv *Server) {
	t.Helper()

	srv, err := NewServer(&stubEngine{name: "fakedb 1.0"}, WithServerAddress("override:9999"))
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(listener) }()

	t.Cleanup(func() {
		require.NoError(t, srv.Close())
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not shut down in time")
		}
	})

	return listener.Addr().String(), srv
}

func TestServerServesOpenConnectionOverHTTP(t *testing.T) {
	t.Parallel()

	addr, _ := startTestServer(t)

	body, err := EncodeRequestJSON(OpenConnectionRequest{ConnectionID: "c1", Properties: ConnProperties{AutoCommit: true}})
	require.NoError(t, err)

	resp, err := http.Post("http://"+addr+RoutePath, ContentTypeJSON, bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerRejectsGETOnRoute(t *testing.T) {
	t.Parallel()

	addr, _ := startTestServer(t)

	resp, err := http.Get("http://" + addr + RoutePath)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServerCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	srv, err := NewServer(&stubEngine{name: "fakedb 1.0"})
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(listener) }()

	require.NoError(t, srv.Close())
	require.NoError(t, srv.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestNewServerRejectsInvalidMaxHeaderBytes(t *testing.T) {
	t.Parallel()

	_, err := NewServer(&stubEngine{name: "fakedb 1.0"}, WithMaxHeaderBytes(0))
	assert.Error(t, err)
}

func TestNewServerAppliesServerAddressOption(t *testing.T) {
	t.Parallel()

	srv, err := NewServer(&stubEngine{name: "fakedb 1.0"}, WithServerAddress("fixed:1234"))
	require.NoError(t, err)
	assert.Equal(t, "fixed:1234", srv.serverAddress)
}
