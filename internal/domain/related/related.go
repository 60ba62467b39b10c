// Package related ranks archive records by similarity to a current record.
package related

import (
	"sort"

	"github.com/lightsoft-dev/light-archive/internal/domain/archive"
)

// Weights are the point values of each similarity signal.
type Weights struct {
	Category         int
	Tag              int
	Technology       int
	Popular          int
	PopularThreshold int64
}

// DefaultWeights: same category 10, shared tag 5, shared technology 3, popular 2 (over 100 views).
func DefaultWeights() Weights {
	return Weights{Category: 10, Tag: 5, Technology: 3, Popular: 2, PopularThreshold: 100}
}

// Mode reports which ranking path Related takes for current.
type Mode string

const (
	ModeScored   Mode = "scored"
	ModeFallback Mode = "fallback"
)

// ModeFor returns ModeFallback when current has neither tags nor technologies.
func ModeFor(current *archive.Archive) Mode {
	if current.HasSimilarityKeys() {
		return ModeScored
	}
	return ModeFallback
}

// Related returns up to limit records from pool ordered by relevance to current.
// current itself (by id) is never returned. Records with no positive score are dropped.
// Equal scores keep their pool order. When current has no tags and no technologies the
// result is the same-category records, newest first.
//
// Related panics if current is nil. Neither current nor pool is modified.
func Related(current *archive.Archive, pool []archive.Archive, limit int, w Weights) []archive.Archive {
	if current == nil {
		panic("related: nil current record")
	}
	if limit <= 0 {
		return []archive.Archive{}
	}
	if ModeFor(current) == ModeFallback {
		return fallback(current, pool, limit)
	}

	tags := toSet(current.Tags)
	techs := toSet(current.Technologies)

	type scored struct {
		idx   int
		score int
	}
	ranked := make([]scored, 0, len(pool))
	for i := range pool {
		c := &pool[i]
		if c.ID == current.ID {
			continue
		}
		if s := score(current, c, tags, techs, w); s > 0 {
			ranked = append(ranked, scored{idx: i, score: s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]archive.Archive, len(ranked))
	for i, r := range ranked {
		out[i] = pool[r.idx].Clone()
	}
	return out
}

// Score is the relevance of candidate to current under w.
// Shared tags and technologies are counted once each regardless of duplicates.
func Score(current, candidate *archive.Archive, w Weights) int {
	return score(current, candidate, toSet(current.Tags), toSet(current.Technologies), w)
}

func score(current, c *archive.Archive, tags, techs map[string]struct{}, w Weights) int {
	s := 0
	if c.Category == current.Category {
		s += w.Category
	}
	s += w.Tag * overlap(tags, c.Tags)
	s += w.Technology * overlap(techs, c.Technologies)
	if c.ViewCount > w.PopularThreshold {
		s += w.Popular
	}
	return s
}

func fallback(current *archive.Archive, pool []archive.Archive, limit int) []archive.Archive {
	idx := make([]int, 0, len(pool))
	for i := range pool {
		if pool[i].ID != current.ID && pool[i].Category == current.Category {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return pool[idx[i]].CreatedAt.After(pool[idx[j]].CreatedAt)
	})
	if len(idx) > limit {
		idx = idx[:limit]
	}
	out := make([]archive.Archive, len(idx))
	for i, k := range idx {
		out[i] = pool[k].Clone()
	}
	return out
}

// overlap counts distinct values of vals that are present in set.
func overlap(set map[string]struct{}, vals []string) int {
	if len(set) == 0 || len(vals) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(vals))
	n := 0
	for _, v := range vals {
		if _, ok := set[v]; !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		n++
	}
	return n
}

func toSet(vals []string) map[string]struct{} {
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return set
}
