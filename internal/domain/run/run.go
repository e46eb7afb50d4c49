package run

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taxdrill/backend/internal/domain/question"
	"github.com/taxdrill/backend/internal/id"
)

// DefaultQuizTarget is used when a quiz is started without a positive size.
const DefaultQuizTarget = 10

// ErrNoRun is returned by Advance before any run has been started.
var ErrNoRun = errors.New("no active run")

// Provider supplies the next question for the current run. It wraps the
// selection context (candidate filter, stats, rng) owned by the caller.
type Provider func() (question.Question, error)

// ScoreFunc evaluates a raw user answer for a question.
type ScoreFunc func(q question.Question, raw any) bool

// AttemptSink mirrors scored attempts to durable storage.
type AttemptSink interface {
	AppendAttempt(Attempt) error
}

// exposure is one display of a question. Its id is the idempotency token
// that guards against double-scoring: once answered, further submissions
// for the same exposure are ignored until Advance issues a new one.
type exposure struct {
	id        string
	q         question.Question
	response  any
	answered  bool
	isCorrect bool
}

// Run is one quiz (bounded) or free-play (unbounded) pass over the bank.
type Run struct {
	RunID         string
	Mode          Mode
	QuizID        string // set only for quiz mode
	Target        int    // 0 for free play
	ExposuresSeen int    // incremented once per Advance; stamped on attempts
	AttemptsSeen  int    // incremented once per scored submission
	Score         int
	Completed     bool

	current *exposure
}

// Session owns at most one active run plus the in-memory attempt buffer for
// the whole user session. It is not safe for concurrent use; the transport
// layer serializes access.
type Session struct {
	sessionID string
	run       *Run
	attempts  []Attempt
	sink      AttemptSink
	logger    *slog.Logger
}

// NewSession creates a session with a fresh session id. sink may be nil when
// no durable mirror is wanted (tests, dry runs).
func NewSession(sink AttemptSink, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		sessionID: id.NewID(),
		sink:      sink,
		logger:    logger,
	}
}

// SessionID returns the stable identifier stamped on every attempt.
func (s *Session) SessionID() string { return s.sessionID }

// Run returns the active run, or nil before the first StartRun.
func (s *Session) Run() *Run { return s.run }

// Attempts returns a copy of the in-memory attempt buffer.
func (s *Session) Attempts() []Attempt {
	out := make([]Attempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}

// StartRun begins a new run, discarding any current run and its pending
// exposure. The previous run's unsaved score is lost; the attempt buffer and
// durable log are unaffected. Always legal.
func (s *Session) StartRun(mode Mode, target int) *Run {
	r := &Run{
		RunID: id.NewID(),
		Mode:  mode,
	}
	if mode == ModeQuiz {
		r.QuizID = id.NewID()
		if target <= 0 {
			target = DefaultQuizTarget
		}
		r.Target = target
	}
	s.run = r
	s.logger.Info("run started", "run_id", r.RunID, "mode", string(mode), "target", r.Target)
	return r
}

// Advance obtains the next question from the provider and makes it current.
// Any unanswered exposure is discarded silently. A payload without a
// question id, or with a type outside the known set, is a caller bug and
// fails hard rather than being swallowed.
func (s *Session) Advance(p Provider) (*Run, error) {
	r := s.run
	if r == nil {
		return nil, ErrNoRun
	}

	q, err := p()
	if err != nil {
		return nil, err
	}
	if q == nil || q.ID() == "" {
		return nil, fmt.Errorf("provider returned a question without an id")
	}
	if !question.KnownType(q.Type()) {
		return nil, fmt.Errorf("provider returned unknown question type %q", q.Type())
	}

	r.current = &exposure{id: id.NewID(), q: q}
	r.ExposuresSeen++
	return r, nil
}

// Current returns the question on display and its exposure id.
func (s *Session) Current() (question.Question, string, bool) {
	if s.run == nil || s.run.current == nil {
		return nil, "", false
	}
	return s.run.current.q, s.run.current.id, true
}

// Answered reports whether the current exposure has been scored, and how.
func (s *Session) Answered() (answered, correct bool) {
	if s.run == nil || s.run.current == nil {
		return false, false
	}
	return s.run.current.answered, s.run.current.isCorrect
}

// Submit scores the current exposure exactly once.
//
// It is a silent no-op when no exposure is pending, when raw is nil, or when
// the exposure has already been scored — repeated submissions from UI
// replays must not double-count. On the first valid submission it records
// the verdict, updates the run counters, emits an Attempt to the buffer and
// the sink, and completes a quiz once the target is reached.
func (s *Session) Submit(raw any, score ScoreFunc) *Run {
	r := s.run
	if r == nil || r.current == nil {
		return r
	}
	if raw == nil {
		return r
	}
	cur := r.current
	if cur.answered {
		return r
	}

	cur.response = raw
	cur.answered = true
	cur.isCorrect = score(cur.q, raw)

	r.AttemptsSeen++
	if cur.isCorrect {
		r.Score++
	}

	meta := cur.q.Core()
	a := Attempt{
		AttemptID:     id.NewID(),
		Timestamp:     time.Now().UTC(),
		SessionID:     s.sessionID,
		RunID:         r.RunID,
		Mode:          r.Mode,
		QuizID:        r.QuizID,
		Topic:         meta.Topic,
		Component:     meta.Component,
		Subtopic:      meta.Subtopic,
		QuestionID:    meta.QuestionID,
		QuestionType:  meta.QuestionType,
		UserAnswerRaw: raw,
		IsCorrect:     cur.isCorrect,
		ExposureIndex: r.ExposuresSeen,
	}
	s.attempts = append(s.attempts, a)

	if s.sink != nil {
		if err := s.sink.AppendAttempt(a); err != nil {
			// The in-memory buffer remains the source of truth for the run;
			// a failed mirror must not break the interactive loop.
			s.logger.Error("failed to mirror attempt", "error", err, "attempt_id", a.AttemptID)
		}
	}

	if r.Mode == ModeQuiz && r.Target > 0 && r.AttemptsSeen >= r.Target {
		r.Completed = true
	}
	return r
}
