package api

import (
	"net/http"

	"github.com/taxdrill/backend/internal/domain/question"
	"github.com/taxdrill/backend/internal/domain/run"
	"github.com/taxdrill/backend/internal/domain/scoring"
	"github.com/taxdrill/backend/internal/service"
)

// ── Request / Response types ────────────────────────────────────────────────

type StartRunRequest struct {
	Mode      string `json:"mode"` // "quiz" | "free_play"
	QuizSize  int    `json:"quiz_size,omitempty"`
	Topic     string `json:"topic,omitempty"`
	Component string `json:"component,omitempty"`
	BiasWeak  bool   `json:"bias_weak"`
}

type SubmitAnswerRequest struct {
	Answer any `json:"answer"`
}

type SubmitAnswerResponse struct {
	Answered  bool            `json:"answered"`
	IsCorrect bool            `json:"is_correct"`
	Details   scoring.Details `json:"details"`
	Run       RunSnapshot     `json:"run"`
}

// RunSnapshot is what the presentation layer renders after every mutation.
type RunSnapshot struct {
	RunID         string            `json:"run_id"`
	Mode          run.Mode          `json:"mode"`
	QuizID        string            `json:"quiz_id,omitempty"`
	Target        int               `json:"target,omitempty"`
	ExposuresSeen int               `json:"exposures_seen"`
	AttemptsSeen  int               `json:"attempts_seen"`
	Score         int               `json:"score"`
	Completed     bool              `json:"completed"`
	Question      question.Question `json:"question,omitempty"`
	ExposureID    string            `json:"exposure_id,omitempty"`
	Answered      bool              `json:"answered"`
	IsCorrect     bool              `json:"is_correct"`
}

// snapshot assembles the render state for the active run. Caller holds h.mu.
func (h *Handler) snapshot() (RunSnapshot, bool) {
	r := h.session.Run()
	if r == nil {
		return RunSnapshot{}, false
	}
	snap := RunSnapshot{
		RunID:         r.RunID,
		Mode:          r.Mode,
		QuizID:        r.QuizID,
		Target:        r.Target,
		ExposuresSeen: r.ExposuresSeen,
		AttemptsSeen:  r.AttemptsSeen,
		Score:         r.Score,
		Completed:     r.Completed,
	}
	if q, exposureID, ok := h.session.Current(); ok {
		snap.Question = q
		snap.ExposureID = exposureID
		snap.Answered, snap.IsCorrect = h.session.Answered()
	}
	return snap, true
}

// ── Handlers ────────────────────────────────────────────────────────────────

// POST /runs
func (h *Handler) startRun(w http.ResponseWriter, r *http.Request) {
	var req StartRunRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var mode run.Mode
	switch req.Mode {
	case string(run.ModeQuiz):
		mode = run.ModeQuiz
	case string(run.ModeFreePlay):
		mode = run.ModeFreePlay
	default:
		http.Error(w, `mode must be "quiz" or "free_play"`, http.StatusBadRequest)
		return
	}

	filter := service.Filter{
		Topic:     req.Topic,
		Component: req.Component,
		BiasWeak:  req.BiasWeak,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Surface an empty candidate set before a run is created, so the caller
	// can widen the filter instead of discarding a run for nothing.
	if len(h.quiz.Candidates(filter)) == 0 {
		http.Error(w, "no questions available for the selected topic/component", http.StatusConflict)
		return
	}

	h.filter = filter
	h.session.StartRun(mode, req.QuizSize)

	snap, _ := h.snapshot()
	respondJSON(w, http.StatusCreated, snap)
}

// GET /runs/current
func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	snap, ok := h.snapshot()
	if !ok {
		http.Error(w, "no active run", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// POST /runs/current/next
func (h *Handler) nextQuestion(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.session.Advance(h.quiz.Provider(h.filter, h.session))
	if h.handleSelectionError(w, err) {
		return
	}

	snap, _ := h.snapshot()
	respondJSON(w, http.StatusOK, snap)
}

// POST /runs/current/answer
func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req SubmitAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session.Run() == nil {
		http.Error(w, "no active run", http.StatusConflict)
		return
	}

	// Capture the details payload from the single scoring pass; a replayed
	// or empty submission never reaches the scorer and leaves it zero.
	var details scoring.Details
	h.session.Submit(req.Answer, func(q question.Question, raw any) bool {
		ok, d := scoring.Score(q, raw)
		details = d
		return ok
	})

	snap, _ := h.snapshot()
	answered, correct := h.session.Answered()
	respondJSON(w, http.StatusOK, SubmitAnswerResponse{
		Answered:  answered,
		IsCorrect: correct,
		Details:   details,
		Run:       snap,
	})
}
