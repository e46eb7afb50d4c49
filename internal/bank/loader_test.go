package bank_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/taxdrill/backend/internal/bank"
	"github.com/taxdrill/backend/internal/domain/question"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const indexCSV = `question_id,topic,component,subtopic,question_type,difficulty,priority,tags,source_ref,active,version
mcq-1,CGT,TX,Disposals,mcq_radio,2,core,,,Y,1
ab-1,VAT,TX,Registration,cloze_ab,1,core,,,Y,1
list-1,IHT,ATX,Reliefs,cloze_list,3,niche,,,Y,2
pf-1,CT,TX,Computation,proforma_drag,4,core,,,Y,1
old-1,CGT,TX,Disposals,mcq_radio,2,edge,,,N,1
`

const mcqCSV = `question_id,prompt,option_a,option_b,option_c,option_d,option_e,option_f,correct_option,explanation
mcq-1,Which asset is exempt?,Car,Shares,Land,Goodwill,,,A,Cars are exempt assets.
old-1,Retired question,Yes,No,,,,,B,
`

const clozeABCSV = `question_id,prompt_template,gap_count,choice_a,choice_b,gap1_correct,gap2_correct,gap1_allow_repeat,gap2_allow_repeat,explanation
ab-1,Registration is {gap1} and deregistration is {gap2}.,2,compulsory,voluntary,A,B,,,
`

const clozeListCSV = `question_id,prompt_template,gap_count,enforce_unique_across_gaps,gap1_options,gap1_correct,gap2_options,gap2_correct,explanation
list-1,Apply {gap1} before {gap2}.,2,Y,"[""BPR"", ""APR""]",BPR,QSR|Taper,QSR,
`

const proformaCSV = `question_id,title,instructions,slot_labels_json,correct_line_ids_json,lines_json,explanation
pf-1,CT computation,Order the lines.,"[""1"",""2""]","[""L1"",""L2""]","[{""line_id"":""L1"",""text"":""Trading profit""},{""line_id"":""L2"",""text"":""Gains""},{""line_id"":""L9"",""text"":""Dividends"",""is_distractor"":true}]",
`

func writeFullBank(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "questions_index.csv", indexCSV)
	writeFile(t, dir, "questions_mcq_radio.csv", mcqCSV)
	writeFile(t, dir, "questions_cloze_ab.csv", clozeABCSV)
	writeFile(t, dir, "questions_cloze_list.csv", clozeListCSV)
	writeFile(t, dir, "questions_proforma_drag.csv", proformaCSV)
	return dir
}

func TestLoad_FullBank(t *testing.T) {
	b, err := bank.Load(writeFullBank(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Len() != 4 {
		t.Errorf("expected 4 active questions, got %d", b.Len())
	}
	if _, ok := b.Get("old-1"); ok {
		t.Error("expected inactive question to be excluded")
	}
}

func TestLoad_MCQFields(t *testing.T) {
	b, err := bank.Load(writeFullBank(t))
	if err != nil {
		t.Fatal(err)
	}
	q, ok := b.Get("mcq-1")
	if !ok {
		t.Fatal("mcq-1 missing")
	}
	mcq, ok := q.(question.MCQRadio)
	if !ok {
		t.Fatalf("expected MCQRadio, got %T", q)
	}
	if len(mcq.Options) != 4 {
		t.Errorf("expected 4 options (blanks dropped), got %d", len(mcq.Options))
	}
	if mcq.CorrectOptionIndex != 0 {
		t.Errorf("expected correct index 0 for letter A, got %d", mcq.CorrectOptionIndex)
	}
	if mcq.Topic != "CGT" || mcq.Difficulty != 2 {
		t.Errorf("metadata not carried: %+v", mcq.Meta)
	}
	if mcq.Explanation == "" {
		t.Error("expected explanation from the type file")
	}
}

func TestLoad_ClozeABFields(t *testing.T) {
	b, err := bank.Load(writeFullBank(t))
	if err != nil {
		t.Fatal(err)
	}
	q, _ := b.Get("ab-1")
	ab, ok := q.(question.ClozeAB)
	if !ok {
		t.Fatalf("expected ClozeAB, got %T", q)
	}
	if ab.GapCount != 2 {
		t.Errorf("expected 2 gaps, got %d", ab.GapCount)
	}
	if ab.CorrectByGap[0] != "A" || ab.CorrectByGap[1] != "B" {
		t.Errorf("expected correct [A B], got %v", ab.CorrectByGap)
	}
	if ab.ChoiceA != "compulsory" || ab.ChoiceB != "voluntary" {
		t.Errorf("choices not carried: %q / %q", ab.ChoiceA, ab.ChoiceB)
	}
}

func TestLoad_ClozeListOptionFormats(t *testing.T) {
	b, err := bank.Load(writeFullBank(t))
	if err != nil {
		t.Fatal(err)
	}
	q, _ := b.Get("list-1")
	cl, ok := q.(question.ClozeList)
	if !ok {
		t.Fatalf("expected ClozeList, got %T", q)
	}
	// gap1 authored as a JSON array, gap2 in the legacy pipe format.
	if len(cl.OptionsByGap[0]) != 2 || cl.OptionsByGap[0][0] != "BPR" {
		t.Errorf("JSON options not parsed: %v", cl.OptionsByGap[0])
	}
	if len(cl.OptionsByGap[1]) != 2 || cl.OptionsByGap[1][0] != "QSR" {
		t.Errorf("pipe options not parsed: %v", cl.OptionsByGap[1])
	}
	if !cl.EnforceUniqueAcrossGaps {
		t.Error("expected unique enforcement from the Y flag")
	}
	if cl.Version != 2 {
		t.Errorf("expected version 2 from the index, got %d", cl.Version)
	}
}

func TestLoad_ProformaFields(t *testing.T) {
	b, err := bank.Load(writeFullBank(t))
	if err != nil {
		t.Fatal(err)
	}
	q, _ := b.Get("pf-1")
	pf, ok := q.(question.ProformaDrag)
	if !ok {
		t.Fatalf("expected ProformaDrag, got %T", q)
	}
	if pf.SlotCount != 2 {
		t.Errorf("expected slot count derived from labels, got %d", pf.SlotCount)
	}
	if len(pf.CorrectLineIDs) != 2 || pf.CorrectLineIDs[0] != "L1" {
		t.Errorf("correct line ids not parsed: %v", pf.CorrectLineIDs)
	}
	if len(pf.Lines) != 3 {
		t.Fatalf("expected 3 pool lines, got %d", len(pf.Lines))
	}
	if !pf.Lines[2].IsDistractor {
		t.Error("expected the third line to be a distractor")
	}
}

func TestLoad_MissingIndex(t *testing.T) {
	_, err := bank.Load(t.TempDir())
	if err == nil {
		t.Error("expected an error for a missing index file")
	}
}

func TestLoad_MissingIndexColumns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "questions_index.csv", "question_id,topic\nq1,CGT\n")

	_, err := bank.Load(dir)
	var verr *bank.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestLoad_DuplicateQuestionID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "questions_index.csv",
		`question_id,topic,component,subtopic,question_type,difficulty,priority,active
q1,CGT,TX,S,mcq_radio,1,core,Y
q1,CGT,TX,S,mcq_radio,1,core,Y
`)
	writeFile(t, dir, "questions_mcq_radio.csv",
		"question_id,prompt,option_a,option_b,correct_option\nq1,P,a,b,A\n")

	_, err := bank.Load(dir)
	var verr *bank.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for duplicate id, got %v", err)
	}
}

func TestLoad_ActiveQuestionMissingTypedRow(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "questions_index.csv",
		`question_id,topic,component,subtopic,question_type,difficulty,priority,active
q1,CGT,TX,S,mcq_radio,1,core,Y
`)
	writeFile(t, dir, "questions_mcq_radio.csv",
		"question_id,prompt,option_a,option_b,correct_option\nother,P,a,b,A\n")

	_, err := bank.Load(dir)
	var verr *bank.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for orphan index row, got %v", err)
	}
}

func TestLoad_UnknownQuestionType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "questions_index.csv",
		`question_id,topic,component,subtopic,question_type,difficulty,priority,active
q1,CGT,TX,S,essay,1,core,Y
`)

	_, err := bank.Load(dir)
	var verr *bank.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for unknown type, got %v", err)
	}
}

func TestLoad_BOMInHeader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "questions_index.csv",
		"\ufeffquestion_id,topic,component,subtopic,question_type,difficulty,priority,active\nq1,CGT,TX,S,mcq_radio,1,core,Y\n")
	writeFile(t, dir, "questions_mcq_radio.csv",
		"question_id,prompt,option_a,option_b,correct_option\nq1,P,a,b,B\n")

	b, err := bank.Load(dir)
	if err != nil {
		t.Fatalf("expected the BOM to be stripped, got %v", err)
	}
	q, ok := b.Get("q1")
	if !ok {
		t.Fatal("q1 missing")
	}
	if q.(question.MCQRadio).CorrectOptionIndex != 1 {
		t.Error("expected correct option B to map to index 1")
	}
}
