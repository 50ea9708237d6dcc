package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// setupRoutes configures all HTTP routes for the API server
func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}

	v1 := r.PathPrefix("/api/v1").Subrouter()

	// Queries
	v1.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	v1.HandleFunc("/wallets", s.handleWallets).Methods(http.MethodGet)
	v1.HandleFunc("/journal", s.handleJournal).Methods(http.MethodGet)
	v1.HandleFunc("/journal/{customId}", s.handleJournalByCustomID).Methods(http.MethodGet)

	// Commands
	v1.HandleFunc("/connect", s.handleConnect).Methods(http.MethodPost)
	v1.HandleFunc("/disconnect", s.handleDisconnect).Methods(http.MethodPost)
	v1.HandleFunc("/send-message", s.handleSendMessage).Methods(http.MethodPost)
	v1.HandleFunc("/send-coin", s.handleSendCoin).Methods(http.MethodPost)
	v1.HandleFunc("/delegate", s.handleDelegate).Methods(http.MethodPost)
	v1.HandleFunc("/switch-to-group", s.handleSwitchToGroup).Methods(http.MethodPost)
	v1.HandleFunc("/sign-jwt", s.handleSignJWT).Methods(http.MethodPost)
	v1.HandleFunc("/sign-hex-message", s.handleSignHexMessage).Methods(http.MethodPost)
	v1.HandleFunc("/remove-pending-method", s.handleRemovePendingMethod).Methods(http.MethodPost)
	v1.HandleFunc("/modal", s.handleUpdateModal).Methods(http.MethodPost)
	v1.HandleFunc("/reset-timeout", s.handleResetTimeout).Methods(http.MethodPost)

	return r
}
