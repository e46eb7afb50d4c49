// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/taxdrill/backend/internal/bank"
	"github.com/taxdrill/backend/internal/domain/run"
	"github.com/taxdrill/backend/internal/domain/selection"
	"github.com/taxdrill/backend/internal/service"
)

// Handler holds all dependencies needed by HTTP handlers.
// Instead of relying on package-level globals, every handler method
// receives its dependencies through this struct.
//
// The engine serves a single user session; mu serializes all run mutations
// so UI replays and double-clicks cannot interleave.
type Handler struct {
	bank    *bank.Bank
	lookups *bank.Lookups
	quiz    *service.QuizService
	session *run.Session
	logger  *slog.Logger

	mu     sync.Mutex
	filter service.Filter // selection context of the active run
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(b *bank.Bank, lookups *bank.Lookups, quiz *service.QuizService, session *run.Session, logger *slog.Logger) *Handler {
	return &Handler{
		bank:    b,
		lookups: lookups,
		quiz:    quiz,
		session: session,
		logger:  logger,
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into v. On failure it writes a 400 and
// returns false (caller should return).
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// handleSelectionError maps selection failures onto HTTP responses. Returns
// true if an error was handled (caller should return).
func (h *Handler) handleSelectionError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, selection.ErrNoCandidates) {
		http.Error(w, "no questions available for the selected topic/component", http.StatusConflict)
		return true
	}
	if errors.Is(err, run.ErrNoRun) {
		http.Error(w, "no active run", http.StatusConflict)
		return true
	}
	h.logger.Error("selection error", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
	return true
}
