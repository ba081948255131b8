package gear

import (
	"fmt"
	"math/rand/v2"
)

// ResultHeap is the bounded, rank-sorted result container (spec §4.7,
// "Result Heap"). Linear insertion is fine here — maxResults is small
// (typically <= 500) — so this intentionally does not reach for
// container/heap; insertion position is found by a short backward scan,
// exactly as spec §4.7 describes.
type ResultHeap struct {
	settings   *Settings
	list       []*Character
	worstScore float64
	counter    int
	randomID   string
	isChanged  bool
}

// NewResultHeap creates an empty heap bound to settings.MaxResults.
func NewResultHeap(s *Settings) *ResultHeap {
	return &ResultHeap{
		settings: s,
		randomID: fmt.Sprintf("%08x", rand.Uint32()),
	}
}

// List returns the current top-K, best first.
func (h *ResultHeap) List() []*Character { return h.list }

// WorstScore returns the current lower bound, or 0 while the heap has not
// yet reached capacity (spec §4.6's pruning guard reads this directly).
func (h *ResultHeap) WorstScore() float64 { return h.worstScore }

// IsChanged reports whether any insertion has happened since the last
// ConsumeChanged call.
func (h *ResultHeap) IsChanged() bool { return h.isChanged }

// ConsumeChanged resets the dirty flag and returns its prior value.
func (h *ResultHeap) ConsumeChanged() bool {
	v := h.isChanged
	h.isChanged = false
	return v
}

// newBeats reports whether candidate strictly outranks existing under the
// comparator spec §4.7 defines: primary key is the rankby attribute
// descending; ties break by Survivability (when rankby == Damage) or by
// Damage (when rankby is Survivability or Healing).
func newBeats(existing, candidate *Character) bool {
	if candidate.RankScore != existing.RankScore {
		return candidate.RankScore > existing.RankScore
	}
	return candidate.TieBreakValue() > existing.TieBreakValue()
}

// Insert attempts to add c to the heap (spec §4.7). Returns false if c was
// rejected: invalid, below worstScore, or it would fall past maxResults.
func (h *ResultHeap) Insert(c *Character) bool {
	if !c.Valid {
		return false
	}
	if h.worstScore > 0 && c.RankScore < h.worstScore {
		return false
	}

	UpdateAttributes(c, false)
	if !c.Valid {
		return false
	}
	c.Results = Finalize(c)

	h.counter++
	c.assignID(h.counter, h.randomID)

	pos := len(h.list)
	for pos > 0 && newBeats(h.list[pos-1], c) {
		pos--
	}
	if pos >= h.settings.MaxResults {
		return false
	}

	h.list = append(h.list, nil)
	copy(h.list[pos+1:], h.list[pos:])
	h.list[pos] = c

	if len(h.list) > h.settings.MaxResults {
		h.list = h.list[:h.settings.MaxResults]
	}
	if len(h.list) == h.settings.MaxResults {
		h.worstScore = h.list[len(h.list)-1].RankScore
	}
	h.isChanged = true
	return true
}

// Snapshot returns a shallow copy of the current list, suitable for
// handing to a driver as a Progress.NewList value (spec §6) without
// exposing the heap's backing array to later mutation.
func (h *ResultHeap) Snapshot() []*Character {
	out := make([]*Character, len(h.list))
	copy(out, h.list)
	return out
}
