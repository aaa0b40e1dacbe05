// Package similarity holds the brute-force nearest-neighbour search shared
// by the vector store backends.
package similarity

import (
	"container/heap"
	"errors"
	"math"
	"sort"
)

// ErrDimensionMismatch indicates vectors of different lengths were compared.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Cosine returns the cosine similarity of a and b in [-1, 1].
// A zero vector has similarity 0 with everything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// Scored is a candidate index paired with its similarity.
type Scored struct {
	Index int
	Score float64
	order int
}

// Ranker accumulates candidates and keeps the k best in a min-heap of size k.
// Ties keep insertion order.
type Ranker struct {
	query   []float32
	k       int
	offered int
	best    worstFirst
	skipped int
}

// NewRanker creates a ranker for query keeping at most k results.
func NewRanker(query []float32, k int) *Ranker {
	return &Ranker{query: query, k: k}
}

// Offer scores a candidate. Candidates with a different dimensionality are
// counted as skipped and otherwise ignored.
func (r *Ranker) Offer(index int, vector []float32) {
	if r.k <= 0 {
		return
	}
	score, err := Cosine(r.query, vector)
	if err != nil {
		r.skipped++
		return
	}
	c := Scored{Index: index, Score: score, order: r.offered}
	r.offered++

	if len(r.best) < r.k {
		heap.Push(&r.best, c)
		return
	}
	if r.best[0].worseThan(c) {
		r.best[0] = c
		heap.Fix(&r.best, 0)
	}
}

// Skipped returns how many candidates had a mismatched dimensionality.
func (r *Ranker) Skipped() int {
	return r.skipped
}

// Len returns how many candidates are currently held.
func (r *Ranker) Len() int {
	return len(r.best)
}

// Top returns up to k candidates, highest score first.
func (r *Ranker) Top() []Scored {
	out := make([]Scored, len(r.best))
	copy(out, r.best)
	sort.Slice(out, func(i, j int) bool {
		return out[j].worseThan(out[i])
	})
	return out
}

// worseThan orders by score, then later insertion loses.
func (s Scored) worseThan(o Scored) bool {
	if s.Score != o.Score {
		return s.Score < o.Score
	}
	return s.order > o.order
}

// worstFirst is a heap whose root is the weakest kept candidate.
type worstFirst []Scored

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return h[i].worseThan(h[j]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *worstFirst) Push(x any)        { *h = append(*h, x.(Scored)) }

func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
