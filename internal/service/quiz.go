// internal/service/quiz.go
package service

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/taxdrill/backend/internal/bank"
	"github.com/taxdrill/backend/internal/domain/question"
	"github.com/taxdrill/backend/internal/domain/run"
	"github.com/taxdrill/backend/internal/domain/selection"
	"github.com/taxdrill/backend/internal/store"
)

// Filter narrows the bank to the candidate set for a run.
type Filter struct {
	Topic     string
	Component string
	BiasWeak  bool
}

// QuizService glues the bank, the attempt history and the selection rules
// into the next-question provider the run state machine consumes.
type QuizService struct {
	bank   *bank.Bank
	log    store.AttemptLog
	logger *slog.Logger
	rng    *rand.Rand
}

// NewQuizService creates a QuizService. log may be nil when no durable
// history exists yet.
func NewQuizService(b *bank.Bank, log store.AttemptLog, logger *slog.Logger) *QuizService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &QuizService{
		bank:   b,
		log:    log,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Candidates returns the filtered candidate ids for f.
func (s *QuizService) Candidates(f Filter) []string {
	return selection.FilterCandidates(s.bank.Questions(), f.Topic, f.Component)
}

// Provider binds a filter and session into a run.Provider. Stats are
// recomputed from scratch on every call: the full durable history is folded
// together with the session's in-memory buffer, so selection always sees the
// latest attempt.
func (s *QuizService) Provider(f Filter, session *run.Session) run.Provider {
	return func() (question.Question, error) {
		candidates := s.Candidates(f)
		if len(candidates) == 0 {
			return nil, fmt.Errorf("topic %q, component %q: %w", f.Topic, f.Component, selection.ErrNoCandidates)
		}

		rows, err := s.historyRows(session)
		if err != nil {
			return nil, err
		}
		stats := selection.Aggregate(rows)

		qid, err := selection.PickNext(candidates, stats, f.BiasWeak, s.rng)
		if err != nil {
			return nil, err
		}
		q, ok := s.bank.Get(qid)
		if !ok {
			return nil, fmt.Errorf("selected question %s is not in the bank", qid)
		}
		return q, nil
	}
}

func (s *QuizService) historyRows(session *run.Session) ([]selection.Row, error) {
	var rows []selection.Row
	if s.log != nil {
		attempts, err := s.log.LoadAttempts()
		if err != nil {
			return nil, fmt.Errorf("load attempt history: %w", err)
		}
		for _, a := range attempts {
			rows = append(rows, selection.Row{QuestionID: a.QuestionID, IsCorrect: a.IsCorrect})
		}
	}
	if session != nil {
		for _, a := range session.Attempts() {
			rows = append(rows, selection.Row{QuestionID: a.QuestionID, IsCorrect: a.IsCorrect})
		}
	}
	return rows, nil
}

// TopicStat is the per-topic rollup shown on the results panel.
type TopicStat struct {
	Seen     int     `json:"seen"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// TopicStats folds durable history plus the session buffer into per-topic
// seen/correct/accuracy rollups.
func (s *QuizService) TopicStats(session *run.Session) (map[string]TopicStat, error) {
	var attempts []run.Attempt
	if s.log != nil {
		loaded, err := s.log.LoadAttempts()
		if err != nil {
			return nil, fmt.Errorf("load attempt history: %w", err)
		}
		attempts = loaded
	}
	if session != nil {
		attempts = append(attempts, session.Attempts()...)
	}

	out := make(map[string]TopicStat)
	for _, a := range attempts {
		if a.Topic == "" {
			continue
		}
		st := out[a.Topic]
		st.Seen++
		if a.IsCorrect {
			st.Correct++
		}
		out[a.Topic] = st
	}
	for topic, st := range out {
		if st.Seen > 0 {
			st.Accuracy = float64(st.Correct) / float64(st.Seen)
		}
		out[topic] = st
	}
	return out, nil
}
