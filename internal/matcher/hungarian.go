package matcher

import "math"

// Assignment pairs left[Left] with right[Right].
type Assignment struct {
	Left  int
	Right int
	Score float64
}

// Assign computes the maximum-total-similarity one-to-one pairing between two
// ordered sequences of base names, ordered by Left. Pairs whose episode
// signatures differ are never returned, so the result may hold fewer than
// min(len(left), len(right)) assignments. The outcome is deterministic for a
// given input order.
func Assign(left, right []string) []Assignment {
	l := prepareAll(left)
	r := prepareAll(right)
	scores := make([][]float64, len(l))
	blocked := make([][]bool, len(l))
	for i := range l {
		scores[i] = make([]float64, len(r))
		blocked[i] = make([]bool, len(r))
		for j := range r {
			score, ok := compare(l[i], r[j])
			scores[i][j] = score
			blocked[i][j] = !ok
		}
	}
	return assignScores(scores, blocked, len(l), len(r))
}

const (
	// padCost fills the rows or columns added to square the matrix.
	padCost = 2.0
	// blockedCost is above padCost so a forbidden pair loses to leaving
	// both sides unassigned.
	blockedCost = 3.0
)

// assignScores solves the maximum-weight bipartite matching for an n×m score
// matrix using the Hungarian algorithm on a padded square cost matrix. Cells
// set in blocked (which may be nil) are never paired.
//
// Without blocked cells every row or column is paired, min(n, m) in total.
// With them the matrix grows to n+m so any row and column can fall back to a
// pad partner; every real pair is then worth one plus its score, which keeps
// as many rows paired as the blocked cells allow.
func assignScores(scores [][]float64, blocked [][]bool, n, m int) []Assignment {
	if n == 0 || m == 0 {
		return nil
	}
	isBlocked := func(i, j int) bool {
		return blocked != nil && blocked[i][j]
	}
	size := max(n, m)
	if anyBlocked(blocked) {
		size = n + m
	}

	cost := make([][]float64, size)
	for i := range size {
		cost[i] = make([]float64, size)
		for j := range size {
			switch {
			case i >= n || j >= m:
				cost[i][j] = padCost
			case isBlocked(i, j):
				cost[i][j] = blockedCost
			default:
				cost[i][j] = 1 - scores[i][j]
			}
		}
	}

	cols := solveAssignment(cost)

	out := make([]Assignment, 0, min(n, m))
	for i := range n {
		j := cols[i]
		if j < 0 || j >= m || isBlocked(i, j) {
			continue
		}
		out = append(out, Assignment{Left: i, Right: j, Score: scores[i][j]})
	}
	return out
}

func anyBlocked(blocked [][]bool) bool {
	for _, row := range blocked {
		for _, b := range row {
			if b {
				return true
			}
		}
	}
	return false
}

// solveAssignment returns, for a square cost matrix, the column chosen for
// each row so that the total cost is minimal. Rows are inserted one at a time
// and each insertion grows a shortest augmenting path using row and column
// potentials. Indices inside are 1-based; column 0 is the virtual start of
// every path.
func solveAssignment(cost [][]float64) []int {
	n := len(cost)
	if n == 0 || len(cost[0]) != n {
		return nil
	}

	rowPot := make([]float64, n+1)
	colPot := make([]float64, n+1)
	owner := make([]int, n+1) // owner[col] is the row holding col, 0 if free
	prev := make([]int, n+1)
	slack := make([]float64, n+1)
	visited := make([]bool, n+1)

	for row := 1; row <= n; row++ {
		owner[0] = row
		for j := range slack {
			slack[j] = math.Inf(1)
			visited[j] = false
		}

		col := 0
		for owner[col] != 0 {
			visited[col] = true
			r := owner[col]
			delta := math.Inf(1)
			next := 0
			for j := 1; j <= n; j++ {
				if visited[j] {
					continue
				}
				if c := cost[r-1][j-1] - rowPot[r] - colPot[j]; c < slack[j] {
					slack[j] = c
					prev[j] = col
				}
				if slack[j] < delta {
					delta = slack[j]
					next = j
				}
			}
			for j := 0; j <= n; j++ {
				if visited[j] {
					rowPot[owner[j]] += delta
					colPot[j] -= delta
				} else {
					slack[j] -= delta
				}
			}
			col = next
		}
		augment(owner, prev, col)
	}

	cols := make([]int, n)
	for i := range cols {
		cols[i] = -1
	}
	for j := 1; j <= n; j++ {
		if owner[j] > 0 {
			cols[owner[j]-1] = j - 1
		}
	}
	return cols
}

// augment flips ownership along the path that ends at the free column col.
func augment(owner, prev []int, col int) {
	for col != 0 {
		p := prev[col]
		owner[col] = owner[p]
		col = p
	}
}
