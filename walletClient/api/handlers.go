package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cast"

	"github.com/pushchain/push-wallet-connect/walletClient/methods"
	"github.com/pushchain/push-wallet-connect/walletClient/service"
	"github.com/pushchain/push-wallet-connect/walletClient/types"
	"github.com/pushchain/push-wallet-connect/walletClient/wallets"
)

const defaultJournalLimit = 100

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleState handles GET /api/v1/state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeQuery(w, s.service.State())
}

// handleWallets handles GET /api/v1/wallets
func (s *Server) handleWallets(w http.ResponseWriter, r *http.Request) {
	s.writeQuery(w, wallets.Known)
}

// handleJournal handles GET /api/v1/journal?status=<status>&limit=<n>
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		s.writeError(w, http.StatusNotFound, "request journal is disabled")
		return
	}
	limit := defaultJournalLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := cast.ToIntE(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	status := strings.ToUpper(r.URL.Query().Get("status"))

	records, err := s.journal.List(r.Context(), status, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list journal")
		s.writeError(w, http.StatusInternalServerError, "failed to list journal")
		return
	}
	s.writeQuery(w, records)
}

// handleJournalByCustomID handles GET /api/v1/journal/{customId}
func (s *Server) handleJournalByCustomID(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		s.writeError(w, http.StatusNotFound, "request journal is disabled")
		return
	}
	customID := mux.Vars(r)["customId"]
	records, err := s.journal.ByCustomID(r.Context(), customID)
	if err != nil {
		s.logger.Error().Err(err).Str("custom_id", customID).Msg("failed to query journal")
		s.writeError(w, http.StatusInternalServerError, "failed to query journal")
		return
	}
	if len(records) == 0 {
		s.writeError(w, http.StatusNotFound, "no requests with custom id "+customID)
		return
	}
	s.writeQuery(w, records)
}

// handleConnect handles POST /api/v1/connect
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var p methods.ConnectParams
	if !s.decode(w, r, &p) {
		return
	}
	s.writeResult(w, s.service.Connect(r.Context(), p))
}

// handleDisconnect handles POST /api/v1/disconnect
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	var req DisconnectRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.service.Disconnect(r.Context(), req.Message)
	s.writeQuery(w, s.service.State())
}

// handleSendMessage handles POST /api/v1/send-message
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var p methods.SendMessageParams
	if !s.decode(w, r, &p) {
		return
	}
	if len(p.Messages) == 0 {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	s.writeResult(w, s.service.SendMessage(r.Context(), p))
}

// handleSendCoin handles POST /api/v1/send-coin
func (s *Server) handleSendCoin(w http.ResponseWriter, r *http.Request) {
	var p service.SendCoinParams
	if !s.decode(w, r, &p) {
		return
	}
	s.writeResult(w, s.service.SendCoin(r.Context(), p))
}

// handleDelegate handles POST /api/v1/delegate
func (s *Server) handleDelegate(w http.ResponseWriter, r *http.Request) {
	var p service.DelegateParams
	if !s.decode(w, r, &p) {
		return
	}
	s.writeResult(w, s.service.Delegate(r.Context(), p))
}

// handleSwitchToGroup handles POST /api/v1/switch-to-group
func (s *Server) handleSwitchToGroup(w http.ResponseWriter, r *http.Request) {
	var req SwitchToGroupRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.writeResult(w, s.service.SwitchToGroup(r.Context(), req.GroupPolicyAddress, req.Description))
}

// handleSignJWT handles POST /api/v1/sign-jwt
func (s *Server) handleSignJWT(w http.ResponseWriter, r *http.Request) {
	var p methods.SignJWTParams
	if !s.decode(w, r, &p) {
		return
	}
	s.writeResult(w, s.service.SignJWT(r.Context(), p))
}

// handleSignHexMessage handles POST /api/v1/sign-hex-message
func (s *Server) handleSignHexMessage(w http.ResponseWriter, r *http.Request) {
	var p methods.SignHexMessageParams
	if !s.decode(w, r, &p) {
		return
	}
	if p.HexMessage == "" {
		s.writeError(w, http.StatusBadRequest, "hexMessage is required")
		return
	}
	s.writeResult(w, s.service.SignHexMessage(r.Context(), p))
}

// handleRemovePendingMethod handles POST /api/v1/remove-pending-method
func (s *Server) handleRemovePendingMethod(w http.ResponseWriter, r *http.Request) {
	var req RemovePendingMethodRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.CustomID == "" {
		s.writeError(w, http.StatusBadRequest, "customId is required")
		return
	}
	s.writeResult(w, s.service.RemovePendingMethod(r.Context(), req.CustomID))
}

// handleUpdateModal handles POST /api/v1/modal
func (s *Server) handleUpdateModal(w http.ResponseWriter, r *http.Request) {
	var u types.ModalUpdate
	if !s.decode(w, r, &u) {
		return
	}
	s.writeQuery(w, s.service.UpdateModal(u))
}

// handleResetTimeout handles POST /api/v1/reset-timeout
func (s *Server) handleResetTimeout(w http.ResponseWriter, r *http.Request) {
	var req ResetTimeoutRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Seconds < 0 {
		s.writeError(w, http.StatusBadRequest, "seconds must not be negative")
		return
	}
	s.writeQuery(w, s.service.ResetConnectionTimeout(req.Seconds))
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// writeResult writes a dispatcher result. Wallet failures are part of the
// result, so the status is always 200.
func (s *Server) writeResult(w http.ResponseWriter, res types.Result) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (s *Server) writeQuery(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(QueryResponse{Data: data, Timestamp: time.Now().UTC()})
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}
