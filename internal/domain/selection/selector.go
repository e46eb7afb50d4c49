package selection

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/taxdrill/backend/internal/domain/question"
)

// ErrNoCandidates is returned when a filter yields no eligible questions.
// Callers widen or narrow the topic/component constraints and retry.
var ErrNoCandidates = errors.New("no questions available for selection")

// accuracy ties closer than this are treated as equal.
const accuracyEpsilon = 1e-9

// PickNext chooses the next question id from a non-empty candidate set.
//
// Priority order:
//  1. unseen questions (zero exposures) before everything else
//  2. within the pool, the lowest exposure count
//  3. with biasWeak, the lowest-accuracy subset of that group
//  4. uniform random among what remains
//
// Candidates missing from stats count as unseen. A nil rng falls back to a
// time-seeded source.
func PickNext(candidateIDs []string, stats map[string]Stats, biasWeak bool, rng *rand.Rand) (string, error) {
	if len(candidateIDs) == 0 {
		return "", ErrNoCandidates
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	exposures := func(qid string) int { return stats[qid].Exposures }
	accuracy := func(qid string) float64 { return stats[qid].Accuracy() }

	var unseen []string
	for _, qid := range candidateIDs {
		if exposures(qid) == 0 {
			unseen = append(unseen, qid)
		}
	}
	pool := unseen
	if len(pool) == 0 {
		pool = candidateIDs
	}

	minExp := exposures(pool[0])
	for _, qid := range pool[1:] {
		if e := exposures(qid); e < minExp {
			minExp = e
		}
	}
	var minGroup []string
	for _, qid := range pool {
		if exposures(qid) == minExp {
			minGroup = append(minGroup, qid)
		}
	}

	if biasWeak && len(minGroup) > 1 {
		minAcc := accuracy(minGroup[0])
		for _, qid := range minGroup[1:] {
			if a := accuracy(qid); a < minAcc {
				minAcc = a
			}
		}
		var weakest []string
		for _, qid := range minGroup {
			if accuracy(qid)-minAcc < accuracyEpsilon {
				weakest = append(weakest, qid)
			}
		}
		return weakest[rng.Intn(len(weakest))], nil
	}

	return minGroup[rng.Intn(len(minGroup))], nil
}

// FilterCandidates returns the ids of questions matching the given topic
// and/or component. Empty constraints match everything. The result is sorted
// so repeated calls over the same bank are stable.
func FilterCandidates(questions map[string]question.Question, topic, component string) []string {
	ids := make([]string, 0, len(questions))
	for qid, q := range questions {
		meta := q.Core()
		if topic != "" && meta.Topic != topic {
			continue
		}
		if component != "" && meta.Component != component {
			continue
		}
		ids = append(ids, qid)
	}
	sort.Strings(ids)
	return ids
}
