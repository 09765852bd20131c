package store

import "github.com/robby/lostfound/internal/domain"

// ChangeKind is the kind of row update a Change describes.
type ChangeKind int

const (
	ChangeRemove ChangeKind = iota
	ChangeInsert
	ChangeUpdate
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeRemove:
		return "remove"
	case ChangeInsert:
		return "insert"
	case ChangeUpdate:
		return "update"
	}
	return "unknown"
}

// Change is one row-level difference between two projections.
// Index refers to the previous list for removals and the new list otherwise.
type Change struct {
	Kind  ChangeKind
	Index int
	Item  domain.Item
}

// Diff returns the changes that turn prev into next. Items are the same row when
// their IDs match; matched rows whose fields differ yield ChangeUpdate, and
// unchanged rows yield nothing. Matching uses a longest common subsequence
// over IDs, so rows that keep their relative order are never removed and
// re-inserted.
func Diff(prev, next []domain.Item) []Change {
	n, m := len(prev), len(next)
	// lcs[i][j] = LCS length of prev[i:] and next[j:]
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if prev[i].ID == next[j].ID {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var changes []Change
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case prev[i].ID == next[j].ID:
			if prev[i] != next[j] {
				changes = append(changes, Change{Kind: ChangeUpdate, Index: j, Item: next[j]})
			}
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			changes = append(changes, Change{Kind: ChangeRemove, Index: i, Item: prev[i]})
			i++
		default:
			changes = append(changes, Change{Kind: ChangeInsert, Index: j, Item: next[j]})
			j++
		}
	}
	for ; i < n; i++ {
		changes = append(changes, Change{Kind: ChangeRemove, Index: i, Item: prev[i]})
	}
	for ; j < m; j++ {
		changes = append(changes, Change{Kind: ChangeInsert, Index: j, Item: next[j]})
	}
	return changes
}
