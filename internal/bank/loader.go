package bank

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taxdrill/backend/internal/domain/question"
)

// Bank data lives as one index CSV plus one CSV per question type.
const (
	indexFile        = "questions_index.csv"
	mcqRadioFile     = "questions_mcq_radio.csv"
	clozeABFile      = "questions_cloze_ab.csv"
	clozeListFile    = "questions_cloze_list.csv"
	proformaDragFile = "questions_proforma_drag.csv"
)

// table is a CSV file with a header row, addressed by column name.
type table struct {
	file   string
	header map[string]int
	rows   [][]string
}

func (t *table) hasColumn(name string) bool {
	_, ok := t.header[name]
	return ok
}

// get returns the trimmed cell value, or "" for a missing column/cell.
func (t *table) get(row []string, col string) string {
	i, ok := t.header[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func readCSV(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file", filepath.Base(path))
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		// Authoring tools tend to prepend a UTF-8 BOM to the first column.
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		header[name] = i
	}
	return &table{file: filepath.Base(path), header: header, rows: records[1:]}, nil
}

// readOptionalCSV returns nil (no error) when the file does not exist.
func readOptionalCSV(path string) (*table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return readCSV(path)
}

// Load builds the immutable question bank from the CSV files in dataDir.
// Only rows marked active in the index are loaded. Structural problems are
// collected into a single *ValidationError rather than failing one by one.
func Load(dataDir string) (*Bank, error) {
	idx, err := readCSV(filepath.Join(dataDir, indexFile))
	if err != nil {
		return nil, err
	}
	if err := validateIndex(idx); err != nil {
		return nil, err
	}

	// Active index rows, keyed by question id.
	type indexRow struct {
		row []string
	}
	active := make(map[string]indexRow)
	order := make([]string, 0, len(idx.rows))
	for _, row := range idx.rows {
		if strings.ToUpper(idx.get(row, "active")) != "Y" {
			continue
		}
		qid := idx.get(row, "question_id")
		active[qid] = indexRow{row: row}
		order = append(order, qid)
	}

	typed := map[question.Type]*table{}
	for t, fname := range map[question.Type]string{
		question.TypeMCQRadio:     mcqRadioFile,
		question.TypeClozeAB:      clozeABFile,
		question.TypeClozeList:    clozeListFile,
		question.TypeProformaDrag: proformaDragFile,
	} {
		tbl, err := readOptionalCSV(filepath.Join(dataDir, fname))
		if err != nil {
			return nil, err
		}
		if tbl == nil {
			continue
		}
		if err := validateTypeFile(tbl, requiredTypeColumns[t]); err != nil {
			return nil, err
		}
		typed[t] = tbl
	}

	// Typed rows by question id, for coherence checking and building.
	typedRows := map[question.Type]map[string][]string{}
	for t, tbl := range typed {
		byID := make(map[string][]string, len(tbl.rows))
		for _, row := range tbl.rows {
			if qid := tbl.get(row, "question_id"); qid != "" {
				byID[qid] = row
			}
		}
		typedRows[t] = byID
	}

	var v validation
	questions := make(map[string]question.Question, len(active))
	for _, qid := range order {
		row := active[qid].row
		meta, err := buildMeta(idx, row)
		if err != nil {
			v.addf("%s: %s: %v", indexFile, qid, err)
			continue
		}
		tbl, ok := typed[meta.QuestionType]
		if !ok {
			v.addf("%s: %s: no %s file loaded for question_type %q", indexFile, qid, typeFileName(meta.QuestionType), meta.QuestionType)
			continue
		}
		trow, ok := typedRows[meta.QuestionType][qid]
		if !ok {
			v.addf("%s: active question %s missing from %s", indexFile, qid, tbl.file)
			continue
		}

		var q question.Question
		switch meta.QuestionType {
		case question.TypeMCQRadio:
			q = buildMCQ(meta, tbl, trow)
		case question.TypeClozeAB:
			q = buildClozeAB(meta, tbl, trow)
		case question.TypeClozeList:
			q = buildClozeList(meta, tbl, trow)
		case question.TypeProformaDrag:
			q = buildProforma(meta, tbl, trow)
		}
		questions[qid] = q
	}

	if err := v.err(); err != nil {
		return nil, err
	}
	return New(questions), nil
}

func typeFileName(t question.Type) string {
	switch t {
	case question.TypeMCQRadio:
		return mcqRadioFile
	case question.TypeClozeAB:
		return clozeABFile
	case question.TypeClozeList:
		return clozeListFile
	case question.TypeProformaDrag:
		return proformaDragFile
	}
	return string(t)
}

func buildMeta(idx *table, row []string) (question.Meta, error) {
	qtype := question.Type(idx.get(row, "question_type"))
	if !question.KnownType(qtype) {
		return question.Meta{}, fmt.Errorf("unknown question_type %q", qtype)
	}
	difficulty, err := strconv.Atoi(idx.get(row, "difficulty"))
	if err != nil {
		return question.Meta{}, fmt.Errorf("difficulty %q is not a number", idx.get(row, "difficulty"))
	}
	version := 1
	if s := idx.get(row, "version"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			version = n
		}
	}
	return question.Meta{
		QuestionID:   idx.get(row, "question_id"),
		Topic:        idx.get(row, "topic"),
		Component:    idx.get(row, "component"),
		Subtopic:     idx.get(row, "subtopic"),
		QuestionType: qtype,
		Difficulty:   difficulty,
		Priority:     question.Priority(idx.get(row, "priority")),
		Tags:         idx.get(row, "tags"),
		SourceRef:    idx.get(row, "source_ref"),
		Version:      version,
	}, nil
}

// Options are authored as columns option_a..option_f; blanks end the list.
var optionColumns = []string{"option_a", "option_b", "option_c", "option_d", "option_e", "option_f"}

func buildMCQ(meta question.Meta, tbl *table, row []string) question.MCQRadio {
	var options []string
	for _, col := range optionColumns {
		if v := tbl.get(row, col); v != "" {
			options = append(options, v)
		}
	}
	// correct_option is a letter; an unknown letter falls back to the first
	// option, matching how banks were authored before validation existed.
	correctIdx := 0
	letter := strings.ToUpper(tbl.get(row, "correct_option"))
	if len(letter) == 1 {
		if i := int(letter[0] - 'A'); i >= 0 && i < len(options) {
			correctIdx = i
		}
	}
	meta.Explanation = tbl.get(row, "explanation")
	return question.MCQRadio{
		Meta:               meta,
		Prompt:             tbl.get(row, "prompt"),
		Options:            options,
		CorrectOptionIndex: correctIdx,
	}
}

func gapCount(tbl *table, row []string) int {
	n, err := strconv.Atoi(tbl.get(row, "gap_count"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func buildClozeAB(meta question.Meta, tbl *table, row []string) question.ClozeAB {
	n := gapCount(tbl, row)
	correct := make([]string, 0, n)
	allowRepeat := make([]bool, 0, n)
	for i := 1; i <= n; i++ {
		c := strings.ToUpper(tbl.get(row, fmt.Sprintf("gap%d_correct", i)))
		if c != "A" && c != "B" {
			c = "A"
		}
		correct = append(correct, c)
		ar := strings.ToUpper(tbl.get(row, fmt.Sprintf("gap%d_allow_repeat", i)))
		allowRepeat = append(allowRepeat, ar == "Y")
	}
	meta.Explanation = tbl.get(row, "explanation")
	return question.ClozeAB{
		Meta:             meta,
		PromptTemplate:   tbl.get(row, "prompt_template"),
		GapCount:         n,
		ChoiceA:          tbl.get(row, "choice_a"),
		ChoiceB:          tbl.get(row, "choice_b"),
		CorrectByGap:     correct,
		AllowRepeatByGap: allowRepeat,
	}
}

// parseOptionsCell reads a gap's option list: preferred form is a JSON array
// string, with a legacy "a|b|c" pipe format still accepted.
func parseOptionsCell(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		var out []string
		if err := json.Unmarshal([]byte(s), &out); err == nil {
			cleaned := out[:0]
			for _, o := range out {
				if o = strings.TrimSpace(o); o != "" {
					cleaned = append(cleaned, o)
				}
			}
			return cleaned
		}
	}
	var out []string
	for _, o := range strings.Split(s, "|") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func buildClozeList(meta question.Meta, tbl *table, row []string) question.ClozeList {
	n := gapCount(tbl, row)
	options := make([][]string, 0, n)
	correct := make([]string, 0, n)
	allowRepeat := make([]bool, 0, n)
	for i := 1; i <= n; i++ {
		options = append(options, parseOptionsCell(tbl.get(row, fmt.Sprintf("gap%d_options", i))))
		correct = append(correct, tbl.get(row, fmt.Sprintf("gap%d_correct", i)))
		ar := strings.ToUpper(tbl.get(row, fmt.Sprintf("gap%d_allow_repeat", i)))
		allowRepeat = append(allowRepeat, ar == "Y")
	}
	enforceUnique := true
	if v := strings.ToUpper(tbl.get(row, "enforce_unique_across_gaps")); v != "" {
		enforceUnique = v == "Y"
	}
	meta.Explanation = tbl.get(row, "explanation")
	return question.ClozeList{
		Meta:                    meta,
		PromptTemplate:          tbl.get(row, "prompt_template"),
		GapCount:                n,
		OptionsByGap:            options,
		CorrectByGap:            correct,
		AllowRepeatByGap:        allowRepeat,
		EnforceUniqueAcrossGaps: enforceUnique,
	}
}

func parseJSONStrings(raw string) []string {
	var out []string
	if raw == "" || json.Unmarshal([]byte(raw), &out) != nil {
		return nil
	}
	for i, s := range out {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func buildProforma(meta question.Meta, tbl *table, row []string) question.ProformaDrag {
	labels := parseJSONStrings(tbl.get(row, "slot_labels_json"))
	correctIDs := parseJSONStrings(tbl.get(row, "correct_line_ids_json"))

	// slot_count is derived; authors maintain only the JSON cells.
	slotCount := len(labels)
	if slotCount == 0 {
		slotCount = len(correctIDs)
	}
	if slotCount == 0 {
		slotCount = 1
	}
	if len(labels) > slotCount {
		labels = labels[:slotCount]
	}
	if len(correctIDs) > slotCount {
		correctIDs = correctIDs[:slotCount]
	}

	var lines []question.Line
	if raw := tbl.get(row, "lines_json"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &lines)
	}

	meta.Explanation = tbl.get(row, "explanation")
	return question.ProformaDrag{
		Meta:           meta,
		Title:          tbl.get(row, "title"),
		Instructions:   tbl.get(row, "instructions"),
		SlotCount:      slotCount,
		SlotLabels:     labels,
		CorrectLineIDs: correctIDs,
		Lines:          lines,
	}
}
