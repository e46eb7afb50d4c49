// internal/api/router.go
package api

import "net/http"

// RegisterRoutes wires every handler onto the mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Runs (single active session)
	mux.HandleFunc("POST /runs", h.startRun)
	mux.HandleFunc("GET /runs/current", h.getRun)
	mux.HandleFunc("POST /runs/current/next", h.nextQuestion)
	mux.HandleFunc("POST /runs/current/answer", h.submitAnswer)

	// Bank browsing
	mux.HandleFunc("GET /questions", h.listQuestions)
	mux.HandleFunc("GET /questions/{questionID}", h.getQuestion)

	// Lookups for sidebar filters
	mux.HandleFunc("GET /lookups/topics", h.listTopics)
	mux.HandleFunc("GET /lookups/components", h.listComponents)
	mux.HandleFunc("GET /lookups/priorities", h.listPriorities)

	// Results panel
	mux.HandleFunc("GET /stats/topics", h.topicStats)
}
