package selection

import "strings"

// Stats tracks how often a question has been shown and answered.
//
// Historical aggregation conflates exposures and attempts: every attempt row
// in the log implies the question was displayed. Attempts may exceed the
// exposures recorded elsewhere because the two counts can originate from
// different sources; Correct never exceeds Attempts.
type Stats struct {
	Exposures int
	Attempts  int
	Correct   int
}

// Accuracy returns correct/attempts, or 0 when there are no attempts.
func (s Stats) Accuracy() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Attempts)
}

// Row is the minimal attempt-shaped record the aggregator consumes.
type Row struct {
	QuestionID string
	IsCorrect  bool
}

// Aggregate folds attempt rows into per-question stats. Each row counts as
// one exposure and one attempt. Rows with a blank question id are skipped.
// The fold is a pure count, so input order never affects the result.
func Aggregate(rows []Row) map[string]Stats {
	out := make(map[string]Stats, len(rows))
	for _, r := range rows {
		qid := strings.TrimSpace(r.QuestionID)
		if qid == "" {
			continue
		}
		s := out[qid]
		s.Exposures++
		s.Attempts++
		if r.IsCorrect {
			s.Correct++
		}
		out[qid] = s
	}
	return out
}
