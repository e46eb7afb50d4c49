package question

// Type identifies one of the four question archetypes in the bank.
type Type string

const (
	TypeMCQRadio     Type = "mcq_radio"
	TypeClozeAB      Type = "cloze_ab"
	TypeClozeList    Type = "cloze_list"
	TypeProformaDrag Type = "proforma_drag"
)

// KnownType reports whether t is one of the four supported archetypes.
func KnownType(t Type) bool {
	switch t {
	case TypeMCQRadio, TypeClozeAB, TypeClozeList, TypeProformaDrag:
		return true
	}
	return false
}

// Priority marks how central a question is to the syllabus.
type Priority string

const (
	PriorityCore  Priority = "core"
	PriorityNiche Priority = "niche"
	PriorityEdge  Priority = "edge"
)

// Meta holds the fields shared by every question variant. Questions are
// immutable after the bank is loaded.
type Meta struct {
	QuestionID   string   `json:"question_id"`
	Topic        string   `json:"topic"`
	Component    string   `json:"component"`
	Subtopic     string   `json:"subtopic"`
	QuestionType Type     `json:"question_type"`
	Difficulty   int      `json:"difficulty"` // 1..5
	Priority     Priority `json:"priority"`
	Tags         string   `json:"tags,omitempty"`
	SourceRef    string   `json:"source_ref,omitempty"`
	Version      int      `json:"version"`
	Explanation  string   `json:"explanation,omitempty"`
}

// ID returns the question identifier.
func (m Meta) ID() string { return m.QuestionID }

// Core returns the shared metadata.
func (m Meta) Core() Meta { return m }

// Question is the closed union over the four variants. Only the types in
// this package implement it; the scorer dispatches on the concrete type.
type Question interface {
	ID() string
	Core() Meta
	Type() Type
}

// MCQRadio is a single-choice question with one correct option.
type MCQRadio struct {
	Meta
	Prompt             string   `json:"prompt"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
}

func (q MCQRadio) Type() Type { return TypeMCQRadio }

// ClozeAB is a two-way cloze: every gap takes either choice A or choice B.
type ClozeAB struct {
	Meta
	PromptTemplate   string   `json:"prompt_template"`
	GapCount         int      `json:"gap_count"`
	ChoiceA          string   `json:"choice_a"`
	ChoiceB          string   `json:"choice_b"`
	CorrectByGap     []string `json:"correct_by_gap"`      // "A" or "B" per gap
	AllowRepeatByGap []bool   `json:"allow_repeat_by_gap"` // per gap
}

func (q ClozeAB) Type() Type { return TypeClozeAB }

// ClozeList is a cloze where each gap has its own ordered option list.
type ClozeList struct {
	Meta
	PromptTemplate          string     `json:"prompt_template"`
	GapCount                int        `json:"gap_count"`
	OptionsByGap            [][]string `json:"options_by_gap"`
	CorrectByGap            []string   `json:"correct_by_gap"`
	AllowRepeatByGap        []bool     `json:"allow_repeat_by_gap"`
	EnforceUniqueAcrossGaps bool       `json:"enforce_unique_across_gaps"`
}

func (q ClozeList) Type() Type { return TypeClozeList }

// Line is one draggable item in a proforma question's pool.
type Line struct {
	LineID       string `json:"line_id"`
	Text         string `json:"text"`
	IsDistractor bool   `json:"is_distractor"`
}

// ProformaDrag asks the user to place pool lines into ordered slots.
type ProformaDrag struct {
	Meta
	Title          string   `json:"title"`
	Instructions   string   `json:"instructions"`
	SlotCount      int      `json:"slot_count"`
	SlotLabels     []string `json:"slot_labels"`
	CorrectLineIDs []string `json:"correct_line_ids"` // one per slot, in order
	Lines          []Line   `json:"lines"`
}

func (q ProformaDrag) Type() Type { return TypeProformaDrag }
