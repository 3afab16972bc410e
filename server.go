package metarpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/metarpc/metarpc/engine"
	"github.com/metarpc/metarpc/meta"
	"github.com/metarpc/metarpc/session"
)

// RoutePath is the single route the Transport Dispatcher is registered on
// (§4.5 "a single HTTP POST").
const RoutePath = "/metarpc"

// NewServer constructs a Server wired around an Engine, using the given
// server options: build defaults, then let OptionFn values override them.
func NewServer(eng engine.Engine, options ...OptionFn) (*Server, error) {
	srv := &Server{
		logger:          slog.Default(),
		closer:          make(chan struct{}),
		maxHeaderBytes:  DefaultMaxHeaderBytes,
		readHeaderTimeout: 5 * time.Second,
		delegate:        nil,
	}
	srv.store = session.NewStore(
		DefaultConnectionCapacity, DefaultConnectionTTL,
		DefaultStatementCapacity, DefaultStatementTTL,
		nil,
	)

	for _, option := range options {
		if err := option(srv); err != nil {
			return nil, fmt.Errorf("unexpected error while attempting to configure a new server: %w", err)
		}
	}

	svc := meta.NewService(srv.store, eng, srv.logger, srv.serverAddress, srv.delegate)
	srv.dispatcher = NewDispatcher(svc)
	srv.transport = NewTransport(srv.dispatcher, srv.logger)

	return srv, nil
}

// Server hosts the Transport Dispatcher behind an HTTP server. Shutdown
// is an atomic-bool-plus-WaitGroup-plus-channel-close sequence: flip
// closing, close the listener, wait for in-flight handlers to drain.
type Server struct {
	closing           atomic.Bool
	wg                sync.WaitGroup
	logger            *slog.Logger
	closer            chan struct{}
	store             *session.Store
	dispatcher        *Dispatcher
	transport         *Transport
	delegate          session.Delegate
	serverAddress     string
	maxHeaderBytes    int
	readHeaderTimeout time.Duration
	httpServer        *http.Server
}

// ListenAndServe opens a listener on address and starts accepting and
// serving incoming RPC requests.
func (srv *Server) ListenAndServe(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	return srv.Serve(listener)
}

// Serve accepts and serves incoming HTTP connections on listener using the
// preconfigured Transport Dispatcher. The listener is closed once the
// server is gracefully closed.
func (srv *Server) Serve(listener net.Listener) error {
	defer srv.logger.Info("closing server")

	if srv.serverAddress == "" {
		srv.serverAddress = listener.Addr().String()
	}

	router := mux.NewRouter()
	router.Handle(RoutePath, srv.transport).Methods(http.MethodPost)

	srv.httpServer = &http.Server{
		Handler:           handlers.LoggingHandler(slogWriter{srv.logger}, router),
		ReadHeaderTimeout: srv.readHeaderTimeout,
		MaxHeaderBytes:    srv.maxHeaderBytes,
	}

	srv.logger.Info("serving incoming connections", slog.String("addr", listener.Addr().String()))
	srv.wg.Add(1)

	go func() {
		defer srv.wg.Done()
		<-srv.closer

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.httpServer.Shutdown(ctx); err != nil {
			srv.logger.Error("unexpected error while attempting to shut down the HTTP server", "err", err)
		}
	}()

	err := srv.httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close gracefully closes the Server, waiting for an in-flight shutdown to
// complete. Idempotent.
func (srv *Server) Close() error {
	if srv.closing.Load() {
		return nil
	}

	srv.closing.Store(true)
	close(srv.closer)
	srv.wg.Wait()
	return srv.store.Close()
}

// slogWriter adapts *slog.Logger to the io.Writer gorilla/handlers'
// LoggingHandler writes its Apache Common Log Format lines to.
type slogWriter struct{ logger *slog.Logger }

func (s slogWriter) Write(p []byte) (int, error) {
	s.logger.Info(string(p))
	return len(p), nil
}
