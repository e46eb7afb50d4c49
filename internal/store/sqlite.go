// internal/store/sqlite.go
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/taxdrill/backend/internal/domain/question"
	"github.com/taxdrill/backend/internal/domain/run"
)

const schema = `
CREATE TABLE IF NOT EXISTS attempts (
    attempt_id TEXT PRIMARY KEY,
    timestamp_utc TEXT NOT NULL,
    session_id TEXT NOT NULL,
    run_id TEXT NOT NULL,
    mode TEXT NOT NULL,
    quiz_id TEXT NOT NULL,
    topic TEXT NOT NULL,
    component TEXT NOT NULL,
    subtopic TEXT NOT NULL,
    question_id TEXT NOT NULL,
    question_type TEXT NOT NULL,
    user_answer TEXT NOT NULL,
    is_correct INTEGER NOT NULL,
    exposure_index INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attempts_question ON attempts(question_id);
CREATE INDEX IF NOT EXISTS idx_attempts_timestamp ON attempts(timestamp_utc);
`

// SQLiteLog is the database-backed attempt log, for installs that prefer a
// single file over a directory of JSONL partitions.
type SQLiteLog struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &SQLiteLog{db: db}, nil
}

func (s *SQLiteLog) Close() error {
	return s.db.Close()
}

func (s *SQLiteLog) AppendAttempt(a run.Attempt) error {
	answer, err := json.Marshal(a.UserAnswerRaw)
	if err != nil {
		return fmt.Errorf("marshal user answer: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO attempts
		(attempt_id, timestamp_utc, session_id, run_id, mode, quiz_id,
		 topic, component, subtopic, question_id, question_type,
		 user_answer, is_correct, exposure_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.AttemptID, a.Timestamp.UTC().Format(time.RFC3339Nano), a.SessionID,
		a.RunID, string(a.Mode), a.QuizID, a.Topic, a.Component, a.Subtopic,
		a.QuestionID, string(a.QuestionType), string(answer),
		boolToInt(a.IsCorrect), a.ExposureIndex)
	return err
}

func (s *SQLiteLog) LoadAttempts() ([]run.Attempt, error) {
	rows, err := s.db.Query(`SELECT attempt_id, timestamp_utc, session_id,
		run_id, mode, quiz_id, topic, component, subtopic, question_id,
		question_type, user_answer, is_correct, exposure_index
		FROM attempts ORDER BY timestamp_utc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []run.Attempt
	for rows.Next() {
		var (
			a         run.Attempt
			ts        string
			mode      string
			qtype     string
			answer    string
			isCorrect int
		)
		if err := rows.Scan(&a.AttemptID, &ts, &a.SessionID, &a.RunID, &mode,
			&a.QuizID, &a.Topic, &a.Component, &a.Subtopic, &a.QuestionID,
			&qtype, &answer, &isCorrect, &a.ExposureIndex); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			a.Timestamp = t
		}
		a.Mode = run.Mode(mode)
		a.QuestionType = question.Type(qtype)
		a.IsCorrect = isCorrect != 0
		if answer != "" {
			_ = json.Unmarshal([]byte(answer), &a.UserAnswerRaw)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
