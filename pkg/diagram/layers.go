package diagram

// adjacency is the index form of a Graph: nodes by position, edges as index
// pairs, in input order.
type adjacency struct {
	n        int
	children [][]int
	parents  [][]int
}

func newAdjacency(g *Graph) adjacency {
	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n.ID] = i
	}
	a := adjacency{
		n:        len(g.Nodes),
		children: make([][]int, len(g.Nodes)),
		parents:  make([][]int, len(g.Nodes)),
	}
	for _, e := range g.Edges {
		from, to := index[e.From], index[e.To]
		a.children[from] = append(a.children[from], to)
		a.parents[to] = append(a.parents[to], from)
	}
	return a
}

// acyclic returns a copy of a without its back edges. The depth-first search
// starts from nodes in input order, so the edge that closes a cycle is the one
// pointing back to the earliest listed node.
func (a adjacency) acyclic() adjacency {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, a.n)
	back := make(map[[2]int]bool)

	var dfs func(v int)
	dfs = func(v int) {
		color[v] = gray
		for _, c := range a.children[v] {
			switch color[c] {
			case white:
				dfs(c)
			case gray:
				back[[2]int{v, c}] = true
			}
		}
		color[v] = black
	}

	for v := range a.n {
		if len(a.parents[v]) == 0 && color[v] == white {
			dfs(v)
		}
	}
	for v := range a.n {
		if color[v] == white {
			dfs(v)
		}
	}

	out := adjacency{n: a.n, children: make([][]int, a.n), parents: make([][]int, a.n)}
	for v, cs := range a.children {
		for _, c := range cs {
			if back[[2]int{v, c}] {
				continue
			}
			out.children[v] = append(out.children[v], c)
			out.parents[c] = append(out.parents[c], v)
		}
	}
	return out
}

// longestPath assigns each node one plus the maximum layer of its parents.
// Sources are on layer 0. a must be acyclic.
func (a adjacency) longestPath() []int {
	inDegree := make([]int, a.n)
	layers := make([]int, a.n)
	queue := make([]int, 0, a.n)

	for v := range a.n {
		inDegree[v] = len(a.parents[v])
		if inDegree[v] == 0 {
			queue = append(queue, v)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, c := range a.children[curr] {
			if l := layers[curr] + 1; l > layers[c] {
				layers[c] = l
			}
			inDegree[c]--
			if inDegree[c] == 0 {
				queue = append(queue, c)
			}
		}
	}
	return layers
}

// depth assigns each node its breadth-first distance from the nearest root.
// Roots are nodes without parents; if every node has a parent the first node
// is used. Nodes unreachable from any root start a new search at layer 0.
func (a adjacency) depth() []int {
	layers := make([]int, a.n)
	seen := make([]bool, a.n)

	visit := func(roots []int) {
		queue := roots
		for _, r := range roots {
			seen[r] = true
		}
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			for _, c := range a.children[curr] {
				if !seen[c] {
					seen[c] = true
					layers[c] = layers[curr] + 1
					queue = append(queue, c)
				}
			}
		}
	}

	var roots []int
	for v := range a.n {
		if len(a.parents[v]) == 0 {
			roots = append(roots, v)
		}
	}
	if len(roots) == 0 && a.n > 0 {
		roots = []int{0}
	}
	visit(roots)
	for v := range a.n {
		if !seen[v] {
			visit([]int{v})
		}
	}
	return layers
}

// rows groups node indices by layer, keeping input order within a layer.
func rows(layers []int) [][]int {
	var out [][]int
	for v, l := range layers {
		for len(out) <= l {
			out = append(out, nil)
		}
		out[l] = append(out[l], v)
	}
	return out
}
