package lifecycle

import (
	"slices"
	"time"
)

// Item is the part of a campaign the ranking engine looks at.
type Item struct {
	ID    string
	Dates Dates
}

// Ranked pairs an item with its freshly derived phase.
type Ranked struct {
	Item
	Phase Phase
}

// Rank classifies every item against today, keeps those matching filter
// (an empty filter keeps everything) and returns them ordered by phase
// precedence, then start date with undated campaigns last. Ties keep their
// input order. items is never modified.
func Rank(today time.Time, items []Item, filter Phase) []Ranked {
	filter, _ = ParsePhase(string(filter))
	out := make([]Ranked, 0, len(items))
	for _, it := range items {
		p := Classify(today, it.Dates)
		if filter != "" && p != filter {
			continue
		}
		out = append(out, Ranked{Item: it, Phase: p})
	}
	slices.SortStableFunc(out, compareRanked)
	return out
}

func compareRanked(a, b Ranked) int {
	if pa, pb := a.Phase.Precedence(), b.Phase.Precedence(); pa != pb {
		return pa - pb
	}
	return compareStart(a.Dates.Start, b.Dates.Start)
}

func compareStart(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}
