package run_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/taxdrill/backend/internal/domain/question"
	"github.com/taxdrill/backend/internal/domain/run"
)

// fixedProvider serves questions from a list, in order.
func fixedProvider(qs ...question.Question) run.Provider {
	i := 0
	return func() (question.Question, error) {
		q := qs[i%len(qs)]
		i++
		return q, nil
	}
}

func mcqQuestion(id string) question.MCQRadio {
	return question.MCQRadio{
		Meta: question.Meta{
			QuestionID:   id,
			Topic:        "CGT",
			Component:    "TX",
			QuestionType: question.TypeMCQRadio,
		},
		Options:            []string{"yes", "no"},
		CorrectOptionIndex: 0,
	}
}

func alwaysCorrect(q question.Question, raw any) bool { return true }
func alwaysWrong(q question.Question, raw any) bool   { return false }

type sinkRecorder struct {
	attempts []run.Attempt
	fail     bool
}

func (s *sinkRecorder) AppendAttempt(a run.Attempt) error {
	if s.fail {
		return errors.New("disk full")
	}
	s.attempts = append(s.attempts, a)
	return nil
}

func TestAdvance_BeforeStartRun(t *testing.T) {
	s := run.NewSession(nil, nil)
	_, err := s.Advance(fixedProvider(mcqQuestion("q1")))
	if err != run.ErrNoRun {
		t.Errorf("expected ErrNoRun, got %v", err)
	}
}

func TestStartRun_QuizDefaults(t *testing.T) {
	s := run.NewSession(nil, nil)
	r := s.StartRun(run.ModeQuiz, 0)

	if r.Target != run.DefaultQuizTarget {
		t.Errorf("expected default target %d, got %d", run.DefaultQuizTarget, r.Target)
	}
	if r.QuizID == "" {
		t.Error("expected quiz to get a quiz id")
	}
	if r.RunID == "" {
		t.Error("expected a run id")
	}
}

func TestStartRun_FreePlayHasNoTarget(t *testing.T) {
	s := run.NewSession(nil, nil)
	r := s.StartRun(run.ModeFreePlay, 5)

	if r.Target != 0 {
		t.Errorf("expected free play to ignore the target, got %d", r.Target)
	}
	if r.QuizID != "" {
		t.Errorf("expected no quiz id in free play, got %q", r.QuizID)
	}
}

func TestQuizLifecycle(t *testing.T) {
	sink := &sinkRecorder{}
	s := run.NewSession(sink, nil)
	s.StartRun(run.ModeQuiz, 3)

	provider := fixedProvider(mcqQuestion("q1"), mcqQuestion("q2"), mcqQuestion("q3"))

	for i := 1; i <= 3; i++ {
		r, err := s.Advance(provider)
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if r.ExposuresSeen != i {
			t.Errorf("expected %d exposures after advance %d, got %d", i, i, r.ExposuresSeen)
		}

		score := alwaysCorrect
		if i == 2 {
			score = alwaysWrong
		}
		r = s.Submit(0, score)
		if r.AttemptsSeen != i {
			t.Errorf("expected %d attempts after submit %d, got %d", i, i, r.AttemptsSeen)
		}
		if i < 3 && r.Completed {
			t.Errorf("quiz completed early at attempt %d", i)
		}
	}

	r := s.Run()
	if !r.Completed {
		t.Error("expected quiz to complete at the target")
	}
	if r.Score != 2 {
		t.Errorf("expected score 2, got %d", r.Score)
	}
	if len(sink.attempts) != 3 {
		t.Errorf("expected 3 attempts mirrored to the sink, got %d", len(sink.attempts))
	}
	if len(s.Attempts()) != 3 {
		t.Errorf("expected 3 attempts in the session buffer, got %d", len(s.Attempts()))
	}
}

func TestSubmit_Idempotent(t *testing.T) {
	sink := &sinkRecorder{}
	s := run.NewSession(sink, nil)
	s.StartRun(run.ModeQuiz, 3)
	if _, err := s.Advance(fixedProvider(mcqQuestion("q1"))); err != nil {
		t.Fatal(err)
	}

	calls := 0
	score := func(q question.Question, raw any) bool {
		calls++
		return true
	}

	s.Submit(0, score)
	r := s.Submit(1, score) // replay with a different answer

	if calls != 1 {
		t.Errorf("expected the scorer to run once, ran %d times", calls)
	}
	if r.AttemptsSeen != 1 {
		t.Errorf("expected 1 attempt after replay, got %d", r.AttemptsSeen)
	}
	if r.Score != 1 {
		t.Errorf("expected score 1 after replay, got %d", r.Score)
	}
	if len(sink.attempts) != 1 {
		t.Errorf("expected 1 sink record, got %d", len(sink.attempts))
	}
}

func TestSubmit_NilAnswerIsNoOp(t *testing.T) {
	s := run.NewSession(nil, nil)
	s.StartRun(run.ModeQuiz, 3)
	if _, err := s.Advance(fixedProvider(mcqQuestion("q1"))); err != nil {
		t.Fatal(err)
	}

	r := s.Submit(nil, alwaysCorrect)
	if r.AttemptsSeen != 0 {
		t.Errorf("expected nil answer to be ignored, got %d attempts", r.AttemptsSeen)
	}
	answered, _ := s.Answered()
	if answered {
		t.Error("expected the exposure to remain unanswered")
	}
}

func TestSubmit_NoExposureIsNoOp(t *testing.T) {
	s := run.NewSession(nil, nil)
	s.StartRun(run.ModeQuiz, 3)

	r := s.Submit(0, alwaysCorrect)
	if r.AttemptsSeen != 0 {
		t.Errorf("expected no-op without a current exposure, got %d attempts", r.AttemptsSeen)
	}
}

func TestStartRun_DiscardsActiveRun(t *testing.T) {
	s := run.NewSession(nil, nil)
	first := s.StartRun(run.ModeQuiz, 3)
	if _, err := s.Advance(fixedProvider(mcqQuestion("q1"))); err != nil {
		t.Fatal(err)
	}
	s.Submit(0, alwaysCorrect)

	second := s.StartRun(run.ModeFreePlay, 0)
	if second.RunID == first.RunID {
		t.Error("expected a fresh run id")
	}
	if second.AttemptsSeen != 0 || second.Score != 0 {
		t.Errorf("expected fresh counters, got attempts=%d score=%d", second.AttemptsSeen, second.Score)
	}
	if _, _, ok := s.Current(); ok {
		t.Error("expected no pending exposure after a restart")
	}
	// The buffer survives the restart.
	if len(s.Attempts()) != 1 {
		t.Errorf("expected the attempt buffer to persist, got %d", len(s.Attempts()))
	}
}

func TestFreePlay_NeverCompletes(t *testing.T) {
	s := run.NewSession(nil, nil)
	s.StartRun(run.ModeFreePlay, 0)

	provider := fixedProvider(mcqQuestion("q1"))
	for i := 0; i < 25; i++ {
		if _, err := s.Advance(provider); err != nil {
			t.Fatal(err)
		}
		r := s.Submit(0, alwaysCorrect)
		if r.Completed {
			t.Fatalf("free play completed after %d submissions", i+1)
		}
	}
	if s.Run().AttemptsSeen != 25 {
		t.Errorf("expected 25 attempts, got %d", s.Run().AttemptsSeen)
	}
}

func TestAdvance_ProviderError(t *testing.T) {
	s := run.NewSession(nil, nil)
	s.StartRun(run.ModeQuiz, 3)

	wantErr := errors.New("bank unavailable")
	_, err := s.Advance(func() (question.Question, error) { return nil, wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("expected provider error to surface, got %v", err)
	}
	if s.Run().ExposuresSeen != 0 {
		t.Error("expected a failed advance to not count an exposure")
	}
}

func TestAdvance_MalformedQuestion(t *testing.T) {
	s := run.NewSession(nil, nil)
	s.StartRun(run.ModeQuiz, 3)

	// Missing id.
	_, err := s.Advance(fixedProvider(question.MCQRadio{}))
	if err == nil {
		t.Error("expected an error for a question without an id")
	}

	// Unknown type.
	_, err = s.Advance(fixedProvider(badType{}))
	if err == nil {
		t.Error("expected an error for an unknown question type")
	}
}

type badType struct{ question.Meta }

func (badType) ID() string          { return "bad-1" }
func (badType) Type() question.Type { return question.Type("essay") }

func TestSubmit_SinkFailureDoesNotBreakRun(t *testing.T) {
	sink := &sinkRecorder{fail: true}
	s := run.NewSession(sink, nil)
	s.StartRun(run.ModeQuiz, 3)
	if _, err := s.Advance(fixedProvider(mcqQuestion("q1"))); err != nil {
		t.Fatal(err)
	}

	r := s.Submit(0, alwaysCorrect)
	if r.AttemptsSeen != 1 || r.Score != 1 {
		t.Errorf("expected the run to record the attempt despite the sink failure, got %+v", r)
	}
	if len(s.Attempts()) != 1 {
		t.Error("expected the buffer to keep the attempt")
	}
}

func TestAttemptRecordFields(t *testing.T) {
	sink := &sinkRecorder{}
	s := run.NewSession(sink, nil)
	r := s.StartRun(run.ModeQuiz, 3)

	provider := fixedProvider(mcqQuestion("q1"), mcqQuestion("q2"))
	for i := 0; i < 2; i++ {
		if _, err := s.Advance(provider); err != nil {
			t.Fatal(err)
		}
		s.Submit(fmt.Sprintf("answer-%d", i), alwaysCorrect)
	}

	if len(sink.attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(sink.attempts))
	}
	a := sink.attempts[1]
	if a.AttemptID == "" {
		t.Error("expected an attempt id")
	}
	if a.SessionID != s.SessionID() {
		t.Errorf("expected session id %q, got %q", s.SessionID(), a.SessionID)
	}
	if a.RunID != r.RunID || a.QuizID != r.QuizID {
		t.Error("expected the run and quiz ids to be stamped")
	}
	if a.QuestionID != "q2" {
		t.Errorf("expected question q2, got %q", a.QuestionID)
	}
	if a.Topic != "CGT" || a.Component != "TX" {
		t.Errorf("expected topic/component from question metadata, got %q/%q", a.Topic, a.Component)
	}
	if a.ExposureIndex != 2 {
		t.Errorf("expected exposure index 2, got %d", a.ExposureIndex)
	}
	if a.Timestamp.IsZero() {
		t.Error("expected a timestamp")
	}
	if sink.attempts[0].AttemptID == a.AttemptID {
		t.Error("expected distinct attempt ids")
	}
}
