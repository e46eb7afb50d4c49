package scoring

import (
	"slices"

	"github.com/taxdrill/backend/internal/domain/question"
)

// GapResult is the per-gap breakdown for cloze-style questions.
type GapResult struct {
	Gap     int    `json:"gap"`
	Got     string `json:"got"`
	Correct string `json:"correct"`
	OK      bool   `json:"ok"`
}

// Details is the structured explanation payload returned next to the
// correctness verdict. Only the fields relevant to the question variant are
// populated; the rest marshal away.
type Details struct {
	Reason             string      `json:"reason,omitempty"`
	CorrectOptionIndex *int        `json:"correct_option_index,omitempty"`
	CorrectText        string      `json:"correct_text,omitempty"`
	PerGap             []GapResult `json:"per_gap,omitempty"`
	ChoiceA            string      `json:"choice_a,omitempty"`
	ChoiceB            string      `json:"choice_b,omitempty"`
	OptionsByGap       [][]string  `json:"options_by_gap,omitempty"`
	Answers            []string    `json:"answers,omitempty"`
	Placed             []string    `json:"placed,omitempty"`
	Correct            []string    `json:"correct,omitempty"`
	SlotLabels         []string    `json:"slot_labels,omitempty"`
}

// Score evaluates a raw user answer against a question and returns the
// verdict plus a details payload for the UI and the attempt log.
//
// The raw answer is whatever the caller decoded from the client (typically
// JSON), so its shape is normalized defensively per variant. Malformed input
// never panics; it degrades to an incorrect verdict with a reason.
func Score(q question.Question, raw any) (bool, Details) {
	switch v := q.(type) {
	case question.MCQRadio:
		return scoreMCQ(v, raw)
	case question.ClozeAB:
		return scoreClozeAB(v, raw)
	case question.ClozeList:
		return scoreClozeList(v, raw)
	case question.ProformaDrag:
		return scoreProforma(v, raw)
	default:
		return false, Details{Reason: "question type not recognized"}
	}
}

// scoreMCQ accepts either the option's ordinal index or its exact text.
func scoreMCQ(q question.MCQRadio, raw any) (bool, Details) {
	correctText := ""
	if q.CorrectOptionIndex >= 0 && q.CorrectOptionIndex < len(q.Options) {
		correctText = q.Options[q.CorrectOptionIndex]
	}
	idx := q.CorrectOptionIndex
	details := Details{CorrectOptionIndex: &idx, CorrectText: correctText}

	if selected, ok := asIndex(raw); ok {
		return selected == q.CorrectOptionIndex, details
	}
	if text, ok := raw.(string); ok {
		return trimmed(text) == correctText, details
	}
	details.Reason = "unrecognized answer shape"
	return false, details
}

func scoreClozeAB(q question.ClozeAB, raw any) (bool, Details) {
	answers := gapAnswers(raw, q.GapCount, "gap")
	for i, a := range answers {
		a = upper(a)
		if a == "" {
			a = "A" // missing gaps default to choice A
		}
		answers[i] = a
	}

	perGap := make([]GapResult, 0, q.GapCount)
	ok := true
	for i := 0; i < q.GapCount; i++ {
		correct := "A"
		if i < len(q.CorrectByGap) {
			correct = q.CorrectByGap[i]
		}
		gapOK := answers[i] == correct
		perGap = append(perGap, GapResult{Gap: i + 1, Got: answers[i], Correct: correct, OK: gapOK})
		if !gapOK {
			ok = false
		}
	}

	return ok, Details{PerGap: perGap, ChoiceA: q.ChoiceA, ChoiceB: q.ChoiceB}
}

func scoreClozeList(q question.ClozeList, raw any) (bool, Details) {
	answers := gapAnswers(raw, q.GapCount, "gap")

	// A repeated non-empty value fails the whole attempt unless that gap is
	// explicitly marked allow-repeat. Checked before per-gap matching, so a
	// duplicate loses even when it happens to match its gap's correct value.
	if q.EnforceUniqueAcrossGaps {
		seen := make(map[string]bool, len(answers))
		for i, a := range answers {
			if a == "" {
				continue
			}
			allowRepeat := i < len(q.AllowRepeatByGap) && q.AllowRepeatByGap[i]
			if seen[a] && !allowRepeat {
				return false, Details{
					Reason:  "duplicate choice across gaps not allowed",
					Answers: answers,
				}
			}
			seen[a] = true
		}
	}

	perGap := make([]GapResult, 0, q.GapCount)
	ok := true
	for i := 0; i < q.GapCount; i++ {
		correct := ""
		if i < len(q.CorrectByGap) {
			correct = q.CorrectByGap[i]
		}
		gapOK := answers[i] == correct
		perGap = append(perGap, GapResult{Gap: i + 1, Got: answers[i], Correct: correct, OK: gapOK})
		if !gapOK {
			ok = false
		}
	}

	return ok, Details{PerGap: perGap, OptionsByGap: q.OptionsByGap}
}

// scoreProforma requires the full ordered sequence of line ids to match.
// A correct multiset in the wrong order earns nothing.
func scoreProforma(q question.ProformaDrag, raw any) (bool, Details) {
	placed := gapAnswers(raw, q.SlotCount, "slot")

	correct := q.CorrectLineIDs
	if len(correct) > q.SlotCount {
		correct = correct[:q.SlotCount]
	}
	ok := len(placed) == len(correct) && slices.Equal(placed, correct)

	return ok, Details{Placed: placed, Correct: correct, SlotLabels: q.SlotLabels}
}
