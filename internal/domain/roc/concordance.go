package roc

import (
	"fmt"
	"sort"
)

// CIndex computes Harrell's concordance index: among comparable pairs (the
// earlier subject has an observed event at a strictly earlier time), the
// fraction where the earlier subject also carries the higher score, counting
// score ties as half. Runs in O(n log n) via a Fenwick tree over score ranks
// instead of the quadratic pairwise scan.
func CIndex(scores []int, times []float64, events []bool) (float64, error) {
	n := len(scores)
	if len(times) != n || len(events) != n {
		return 0, fmt.Errorf("scores (%d), times (%d) and events (%d) differ in length",
			n, len(times), len(events))
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	// Descending time so the tree only ever holds strictly later subjects.
	sort.Slice(order, func(a, b int) bool { return times[order[a]] > times[order[b]] })

	ranks, maxRank := scoreRanks(scores)
	tree := newFenwick(maxRank)

	var concordant, tied, comparable float64
	i := 0
	for i < n {
		// Subjects sharing a time are not comparable with each other; query
		// the whole tie group before inserting any of it.
		j := i
		for j < n && times[order[j]] == times[order[i]] {
			j++
		}
		for k := i; k < j; k++ {
			idx := order[k]
			if !events[idx] {
				continue
			}
			later := float64(tree.total())
			if later == 0 {
				continue
			}
			r := ranks[idx]
			lower := float64(tree.prefix(r - 1)) // later subjects with lower score
			equal := float64(tree.prefix(r)) - lower
			concordant += lower
			tied += equal
			comparable += later
		}
		for k := i; k < j; k++ {
			tree.add(ranks[order[k]], 1)
		}
		i = j
	}

	if comparable == 0 {
		return 0, fmt.Errorf("no comparable pairs: %w", ErrNonEvaluable)
	}
	return (concordant + 0.5*tied) / comparable, nil
}

// scoreRanks maps scores to dense 1-based ranks.
func scoreRanks(scores []int) (ranks []int, maxRank int) {
	distinct := append([]int(nil), scores...)
	sort.Ints(distinct)
	dense := distinct[:0]
	for i, s := range distinct {
		if i == 0 || s != distinct[i-1] {
			dense = append(dense, s)
		}
	}
	ranks = make([]int, len(scores))
	for i, s := range scores {
		ranks[i] = sort.SearchInts(dense, s) + 1
	}
	return ranks, len(dense)
}

// fenwick is a 1-based binary indexed tree of counts.
type fenwick struct {
	tree []int
	sum  int
}

func newFenwick(size int) *fenwick {
	return &fenwick{tree: make([]int, size+1)}
}

func (f *fenwick) add(i, delta int) {
	f.sum += delta
	for ; i < len(f.tree); i += i & (-i) {
		f.tree[i] += delta
	}
}

// prefix returns the count of entries with rank <= i.
func (f *fenwick) prefix(i int) int {
	s := 0
	for ; i > 0; i -= i & (-i) {
		s += f.tree[i]
	}
	return s
}

func (f *fenwick) total() int { return f.sum }
