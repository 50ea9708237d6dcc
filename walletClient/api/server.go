// Package api is the HTTP query and command surface of a session service.
package api

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/pushchain/push-wallet-connect/walletClient/journal"
)

// Server provides HTTP endpoints
type Server struct {
	logger  zerolog.Logger
	service SessionService
	journal *journal.Store
	metrics http.Handler
	router  *mux.Router
	server  *http.Server
}

// NewServer creates a new Server instance. journalStore and metrics may be
// nil; their routes then answer 404.
func NewServer(logger zerolog.Logger, port int, svc SessionService, journalStore *journal.Store, metrics http.Handler) *Server {
	s := &Server{
		logger:  logger.With().Str("component", "query_server").Logger(),
		service: svc,
		journal: journalStore,
		metrics: metrics,
	}

	s.router = s.setupRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the router, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("query server is nil")
	}

	// Channel to signal server startup result
	startupChan := make(chan error, 1)

	go func() {
		// Create a test listener to verify the port is available
		ln, err := net.Listen("tcp", s.server.Addr)
		if err != nil {
			startupChan <- fmt.Errorf("failed to bind to address %s: %w", s.server.Addr, err)
			return
		}
		ln.Close()

		startupChan <- nil

		err = s.server.ListenAndServe()
		switch err {
		case nil:
			s.logger.Info().Msg("Query server stopped normally")
		case http.ErrServerClosed:
			s.logger.Info().Msg("Query server closed gracefully")
		default:
			s.logger.Error().Err(err).Msg("Query server error")
		}
	}()

	select {
	case err := <-startupChan:
		if err != nil {
			return err
		}
		s.logger.Info().Str("addr", s.server.Addr).Msg("Query server started")
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("server startup timeout")
	}
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}
