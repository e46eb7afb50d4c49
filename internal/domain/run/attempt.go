package run

import (
	"time"

	"github.com/taxdrill/backend/internal/domain/question"
)

// Mode distinguishes a bounded quiz from unbounded free play.
type Mode string

const (
	ModeQuiz     Mode = "quiz"
	ModeFreePlay Mode = "free_play"
)

// Attempt is the immutable record of one scored submission. It is created
// exactly once per submission, appended to the session buffer and mirrored
// to the durable log; it is never mutated or deleted.
type Attempt struct {
	AttemptID     string        `json:"attempt_id"`
	Timestamp     time.Time     `json:"timestamp_utc"`
	SessionID     string        `json:"session_id"`
	RunID         string        `json:"run_id"`
	Mode          Mode          `json:"mode"`
	QuizID        string        `json:"quiz_id"` // empty for free play
	Topic         string        `json:"topic"`
	Component     string        `json:"component"`
	Subtopic      string        `json:"subtopic"`
	QuestionID    string        `json:"question_id"`
	QuestionType  question.Type `json:"question_type"`
	UserAnswerRaw any           `json:"user_answer_raw"`
	IsCorrect     bool          `json:"is_correct"`
	ExposureIndex int           `json:"exposure_index_in_run"`
}
