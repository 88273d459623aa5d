package plan

import (
	"errors"
	"testing"
)

func chain() *Instance {
	return NewInstance([]*Recipe{
		NewRecipe("R1", []Item{NewItem("A", 1)}, []Item{NewItem("B", 1)}),
		NewRecipe("R2", []Item{NewItem("B", 1), NewItem("A", 1)}, []Item{NewItem("C", 1), NewItem("D", 1)}),
		NewRecipe("R3", []Item{NewItem("C", 1)}, []Item{NewItem("D", 1)}),
	}, []Item{NewItem("A", 10)}, []Item{NewItem("D", 1)})
}

func TestItemGraph_Edges(t *testing.T) {
	g := chain().ItemGraph()

	if got := g.EdgeCount(); got != 6 {
		t.Errorf("EdgeCount() = %d, want 6", got)
	}
	succ := g.Successors("A")
	want := []string{"B", "C", "D"}
	if len(succ) != len(want) {
		t.Fatalf("Successors(A) = %v, want %v", succ, want)
	}
	for i := range want {
		if succ[i] != want[i] {
			t.Errorf("Successors(A)[%d] = %q, want %q", i, succ[i], want[i])
		}
	}
	if len(g.Successors("D")) != 0 {
		t.Errorf("D should have no successors, got %v", g.Successors("D"))
	}
	if len(g.Vertices()) != 4 {
		t.Errorf("Vertices() = %v, want 4 entries", g.Vertices())
	}
}

func TestTopologicalOrder_RespectsEveryRecipe(t *testing.T) {
	inst := chain()
	order, err := TopologicalOrder(inst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	for _, r := range inst.Recipes {
		for _, in := range r.Inputs {
			for _, out := range r.Outputs {
				if pos[in.Name] >= pos[out.Name] {
					t.Errorf("%s: input %s (pos %d) not before output %s (pos %d)",
						r.Name, in.Name, pos[in.Name], out.Name, pos[out.Name])
				}
			}
		}
	}
}

func TestTopologicalOrder_Deterministic(t *testing.T) {
	a, _ := TopologicalOrder(chain())
	b, _ := TopologicalOrder(chain())
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("orders differ at %d: %v vs %v", i, a, b)
		}
	}
}

func TestTopologicalOrder_CycleDetected(t *testing.T) {
	tests := []struct {
		name    string
		recipes []*Recipe
	}{
		{"two-recipe cycle", []*Recipe{
			NewRecipe("R1", []Item{NewItem("A", 1)}, []Item{NewItem("B", 1)}),
			NewRecipe("R2", []Item{NewItem("B", 1)}, []Item{NewItem("A", 1)}),
		}},
		{"self loop", []*Recipe{
			NewRecipe("R1", []Item{NewItem("A", 1)}, []Item{NewItem("A", 2)}),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TopologicalOrder(NewInstance(tt.recipes, nil, nil))
			if !errors.Is(err, ErrCycleDetected) {
				t.Errorf("want ErrCycleDetected, got %v", err)
			}
		})
	}
}

func TestTopologicalOrder_EmptyInstance(t *testing.T) {
	order, err := TopologicalOrder(NewInstance(nil, nil, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("want empty order, got %v", order)
	}
}
