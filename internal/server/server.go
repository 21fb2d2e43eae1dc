package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/muurk/wemo/internal/logging"
	"github.com/muurk/wemo/internal/wemo"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Config holds the server configuration
type Config struct {
	Listen   string // host:port, e.g. ":8090"
	CertFile string // Serve HTTPS when both CertFile and KeyFile are set
	KeyFile  string
}

// Registry is the device source behind the API. *wemo.Registry implements it.
type Registry interface {
	Discover(ctx context.Context) ([]*wemo.Device, error)
	FindByName(ctx context.Context, name string) (*wemo.Device, error)
}

// Server exposes WeMo devices over HTTP
type Server struct {
	config   Config
	registry Registry
	hub      *Hub
	router   *mux.Router

	// mu serializes discovery and control
	mu sync.Mutex

	httpServer *http.Server
	listener   net.Listener
	listenMu   sync.Mutex
}

// New creates a new Server instance
func New(config Config, registry Registry) *Server {
	s := &Server{
		config:   config,
		registry: registry,
		hub:      NewHub(),
	}
	s.router = s.routes()
	return s
}

// Hub returns the event hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests)

	r.HandleFunc("/devices", s.handleListDevices).Methods(http.MethodGet)
	r.HandleFunc("/devices/{name}", s.handleGetDevice).Methods(http.MethodGet)
	r.HandleFunc("/devices/{name}/{state:on|off}", s.handleSetState).Methods(http.MethodPost)
	r.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)

	return r
}

// Start listens on the configured address and serves until ctx is
// cancelled or SIGINT/SIGTERM is received, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tlsConfig *tls.Config
	if s.config.CertFile != "" && s.config.KeyFile != "" {
		var err error
		tlsConfig, err = NewTLSConfig(s.config.CertFile, s.config.KeyFile)
		if err != nil {
			return err
		}
	}
	logging.Info("TLS Configuration", zap.Any("tls_info", GetTLSInfo(tlsConfig)))

	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	if tlsConfig != nil {
		listener = tls.NewListener(listener, tlsConfig)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.listenMu.Lock()
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	srv := s.httpServer
	s.listenMu.Unlock()

	logging.Info("Server listening for connections", zap.String("addr", listener.Addr().String()))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown signal received, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Addr returns the listening address, or nil before Serve
func (s *Server) Addr() net.Addr {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	// Hijacked websocket connections are not tracked by http.Server
	s.hub.CloseAll()

	s.listenMu.Lock()
	srv := s.httpServer
	s.listenMu.Unlock()
	if srv == nil {
		return nil
	}

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		return srv.Close()
	}

	logging.Info("All connections closed gracefully")
	logging.Sync()
	return nil
}
