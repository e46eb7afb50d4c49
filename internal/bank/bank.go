package bank

import "github.com/taxdrill/backend/internal/domain/question"

// Bank is the full set of loaded questions keyed by id. It is built once at
// startup and never mutated afterwards, so it is shared by reference across
// the process without locking.
type Bank struct {
	questions map[string]question.Question
}

// New wraps an already-built question map. The caller must not mutate the
// map after handing it over.
func New(questions map[string]question.Question) *Bank {
	return &Bank{questions: questions}
}

// Get looks up a question by id.
func (b *Bank) Get(id string) (question.Question, bool) {
	q, ok := b.questions[id]
	return q, ok
}

// Questions exposes the underlying map for read-only iteration (candidate
// filtering, listings).
func (b *Bank) Questions() map[string]question.Question {
	return b.questions
}

// Len returns the number of loaded questions.
func (b *Bank) Len() int { return len(b.questions) }
