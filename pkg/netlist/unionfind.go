package netlist

// unionFind tracks connected wire segments by index.
type unionFind struct {
	parent []int
	rank   []int // Rank for union-by-rank optimization
}

// newUnionFind creates n singleton sets.
func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

// find returns the representative of x's set.
// Uses path compression for O(α(n)) amortized time complexity.
func (uf *unionFind) find(x int) int {
	root := x
	for uf.parent[root] != root {
		root = uf.parent[root]
	}

	// Path compression: make all nodes on the path point directly to root
	for x != root {
		next := uf.parent[x]
		uf.parent[x] = root
		x = next
	}

	return root
}

// union merges the sets containing a and b.
func (uf *unionFind) union(a, b int) {
	rootA := uf.find(a)
	rootB := uf.find(b)
	if rootA == rootB {
		return
	}

	switch {
	case uf.rank[rootA] < uf.rank[rootB]:
		uf.parent[rootA] = rootB
	case uf.rank[rootA] > uf.rank[rootB]:
		uf.parent[rootB] = rootA
	default:
		uf.parent[rootB] = rootA
		uf.rank[rootA]++
	}
}

// groups returns the sets, each listing member indices in ascending order,
// ordered by their lowest member.
func (uf *unionFind) groups() [][]int {
	byRoot := make(map[int]int)
	var out [][]int
	for i := range uf.parent {
		root := uf.find(i)
		g, ok := byRoot[root]
		if !ok {
			g = len(out)
			byRoot[root] = g
			out = append(out, nil)
		}
		out[g] = append(out[g], i)
	}
	return out
}
