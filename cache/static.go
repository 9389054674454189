package cache

import (
	"sync"

	"github.com/poiesic/folio/core"
)

type staticCategory struct {
	name      string
	examples  [][]float32
	responses []string
	next      int
}

// staticTier holds the FAQ categories. The mutex guards both the category
// list and each rotation cursor.
type staticTier struct {
	mu         sync.Mutex
	categories []*staticCategory
}

func (s *staticTier) replace(categories []*staticCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = categories
}

func (s *staticTier) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.categories)
}

// dimension is the length of the example vectors, or 0 before Warm.
func (s *staticTier) dimension() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if len(c.examples) > 0 {
			return len(c.examples[0])
		}
	}
	return 0
}

// match picks the category whose closest example is most similar to vector.
// Ties go to the category declared first.
func (s *staticTier) match(vector []float32, threshold float32) (Hit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		best    *staticCategory
		bestSim float32
	)
	for _, c := range s.categories {
		for _, example := range c.examples {
			if sim := core.Cosine(vector, example); sim >= threshold && (best == nil || sim > bestSim) {
				best, bestSim = c, sim
			}
		}
	}
	if best == nil || len(best.responses) == 0 {
		return Hit{}, false
	}

	response := best.responses[best.next]
	best.next = (best.next + 1) % len(best.responses)
	return Hit{Response: response, Similarity: bestSim, Tier: TierStatic, Category: best.name}, true
}
