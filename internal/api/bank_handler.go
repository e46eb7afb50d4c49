package api

import (
	"net/http"
	"sort"

	"github.com/taxdrill/backend/internal/domain/question"
	"github.com/taxdrill/backend/internal/domain/selection"
)

type ListQuestionsResponse struct {
	Count     int             `json:"count"`
	Questions []question.Meta `json:"questions"`
}

// GET /questions?topic=&component=
func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	component := r.URL.Query().Get("component")

	ids := selection.FilterCandidates(h.bank.Questions(), topic, component)

	metas := make([]question.Meta, 0, len(ids))
	for _, qid := range ids {
		if q, ok := h.bank.Get(qid); ok {
			metas = append(metas, q.Core())
		}
	}
	respondJSON(w, http.StatusOK, ListQuestionsResponse{Count: len(metas), Questions: metas})
}

// GET /questions/{questionID}
func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	qid := r.PathValue("questionID")

	q, ok := h.bank.Get(qid)
	if !ok {
		http.Error(w, "question not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

// GET /lookups/topics
func (h *Handler) listTopics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.lookups.Topics)
}

// GET /lookups/components
func (h *Handler) listComponents(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.lookups.Components)
}

// GET /lookups/priorities
func (h *Handler) listPriorities(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.lookups.Priorities)
}

type TopicStatEntry struct {
	Topic    string  `json:"topic"`
	Seen     int     `json:"seen"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// GET /stats/topics
//
// Weak areas bubble up: the list is sorted by accuracy ascending.
func (h *Handler) topicStats(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	stats, err := h.quiz.TopicStats(h.session)
	h.mu.Unlock()
	if err != nil {
		h.logger.Error("failed to compute topic stats", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	entries := make([]TopicStatEntry, 0, len(stats))
	for topic, st := range stats {
		entries = append(entries, TopicStatEntry{
			Topic:    topic,
			Seen:     st.Seen,
			Correct:  st.Correct,
			Accuracy: st.Accuracy,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Accuracy != entries[j].Accuracy {
			return entries[i].Accuracy < entries[j].Accuracy
		}
		return entries[i].Topic < entries[j].Topic
	})
	respondJSON(w, http.StatusOK, entries)
}
