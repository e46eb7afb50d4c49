package bank

import (
	"fmt"
	"strings"

	"github.com/taxdrill/backend/internal/domain/question"
)

// ValidationError carries every structural problem found in the bank files,
// so an author fixes a broken bank in one pass instead of error by error.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question bank validation failed:\n- %s", strings.Join(e.Problems, "\n- "))
}

// validation accumulates problems during a load.
type validation struct {
	problems []string
}

func (v *validation) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validation) err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}

var indexRequiredColumns = []string{
	"question_id", "topic", "component", "subtopic",
	"question_type", "difficulty", "priority", "active",
}

var requiredTypeColumns = map[question.Type][]string{
	question.TypeMCQRadio:     {"question_id", "prompt", "correct_option"},
	question.TypeClozeAB:      {"question_id", "prompt_template", "gap_count", "choice_a", "choice_b"},
	question.TypeClozeList:    {"question_id", "prompt_template", "gap_count", "enforce_unique_across_gaps"},
	question.TypeProformaDrag: {"question_id", "title", "instructions", "slot_labels_json", "correct_line_ids_json", "lines_json"},
}

func requireColumns(v *validation, t *table, required []string) {
	var missing []string
	for _, col := range required {
		if !t.hasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		v.addf("%s: missing required columns: %s", t.file, strings.Join(missing, ", "))
	}
}

func validateIndex(idx *table) error {
	var v validation
	requireColumns(&v, idx, indexRequiredColumns)
	if err := v.err(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(idx.rows))
	for i, row := range idx.rows {
		qid := idx.get(row, "question_id")
		if qid == "" {
			v.addf("%s: row %d: blank question_id", idx.file, i+2)
			continue
		}
		if seen[qid] {
			v.addf("%s: duplicate question_id %q", idx.file, qid)
		}
		seen[qid] = true
		for _, col := range []string{"topic", "component", "question_type"} {
			if idx.get(row, col) == "" {
				v.addf("%s: %s: blank value in required column %s", idx.file, qid, col)
			}
		}
	}
	return v.err()
}

func validateTypeFile(t *table, required []string) error {
	var v validation
	requireColumns(&v, t, required)
	if err := v.err(); err != nil {
		return err
	}
	for i, row := range t.rows {
		if t.get(row, "question_id") == "" {
			v.addf("%s: row %d: blank question_id", t.file, i+2)
		}
	}
	return v.err()
}
