package plan

import "fmt"

// ItemGraph is the directed item-level view of an instance: an edge u→v exists
// when some recipe consumes u and produces v.
type ItemGraph struct {
	vertices []string
	adj      map[string][]string
}

// ItemGraph builds the item graph of the instance. Vertices are all components;
// neighbor lists are sorted and deduplicated.
func (in *Instance) ItemGraph() *ItemGraph {
	edges := make(map[string]map[string]bool)
	for _, r := range in.Recipes {
		for _, u := range r.Inputs {
			for _, v := range r.Outputs {
				if edges[u.Name] == nil {
					edges[u.Name] = make(map[string]bool)
				}
				edges[u.Name][v.Name] = true
			}
		}
	}
	g := &ItemGraph{
		vertices: in.Components(),
		adj:      make(map[string][]string, len(edges)),
	}
	for u, vs := range edges {
		g.adj[u] = sortedKeys(vs)
	}
	return g
}

// Vertices returns the sorted vertex names.
func (g *ItemGraph) Vertices() []string {
	return append([]string(nil), g.vertices...)
}

// Successors returns the sorted direct successors of name.
func (g *ItemGraph) Successors(name string) []string {
	return append([]string(nil), g.adj[name]...)
}

// EdgeCount returns the number of distinct edges.
func (g *ItemGraph) EdgeCount() int {
	n := 0
	for _, vs := range g.adj {
		n += len(vs)
	}
	return n
}

const (
	white = iota // unvisited
	gray         // on the current DFS path
	black        // finished
)

// TopologicalOrder returns an ordering of the instance's items such that every
// recipe input precedes every output of the same recipe. If the item graph has a
// cycle (including an item that is both input and output of one recipe), the
// error wraps ErrCycleDetected and names an item on the cycle.
// The result is deterministic: vertices and neighbors are visited in sorted order.
func TopologicalOrder(in *Instance) ([]string, error) {
	g := in.ItemGraph()
	state := make(map[string]int, len(g.vertices))
	order := make([]string, 0, len(g.vertices))

	var visit func(u string) error
	visit = func(u string) error {
		state[u] = gray
		for _, v := range g.adj[u] {
			switch state[v] {
			case gray:
				return fmt.Errorf("%w: back edge %s -> %s", ErrCycleDetected, u, v)
			case white:
				if err := visit(v); err != nil {
					return err
				}
			}
		}
		state[u] = black
		order = append(order, u)
		return nil
	}

	for _, u := range g.vertices {
		if state[u] != white {
			continue
		}
		if err := visit(u); err != nil {
			return nil, err
		}
	}

	// post-order reversed
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}
