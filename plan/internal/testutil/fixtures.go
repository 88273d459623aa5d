// Package testutil provides shared test infrastructure for the planner.
// It holds small hand-built instances with known optima, the golden plan
// dataset under testdata/, and float assertion helpers.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/prodplan/prodplan/plan"
)

// SingleRecipe: R1 turns A into B one-for-one; 100 A available, 10 B wanted.
// Optimum: r=10, m=10, objective 10.
func SingleRecipe() *plan.Instance {
	return plan.NewInstance(
		[]*plan.Recipe{
			plan.NewRecipe("R1", []plan.Item{plan.NewItem("A", 1)}, []plan.Item{plan.NewItem("B", 1)}),
		},
		[]plan.Item{plan.NewItem("A", 100)},
		[]plan.Item{plan.NewItem("B", 10)},
	)
}

// FractionalDemand is SingleRecipe with 10.5 B wanted. Optimum: m=11.
func FractionalDemand() *plan.Instance {
	return plan.NewInstance(
		[]*plan.Recipe{
			plan.NewRecipe("R1", []plan.Item{plan.NewItem("A", 1)}, []plan.Item{plan.NewItem("B", 1)}),
		},
		[]plan.Item{plan.NewItem("A", 100)},
		[]plan.Item{plan.NewItem("B", 10.5)},
	)
}

// TwoStage: Ore(2) → Plate(1), Plate(3) → Gear(2); 5 Gear wanted.
// Optimum: r=(7.5, 2.5), m=(8, 3), objective 11.
func TwoStage() *plan.Instance {
	return plan.NewInstance(
		[]*plan.Recipe{
			plan.NewRecipe("Smelt", []plan.Item{plan.NewItem("Ore", 2)}, []plan.Item{plan.NewItem("Plate", 1)}),
			plan.NewRecipe("Press", []plan.Item{plan.NewItem("Plate", 3)}, []plan.Item{plan.NewItem("Gear", 2)}),
		},
		[]plan.Item{plan.NewItem("Ore", 100)},
		[]plan.Item{plan.NewItem("Gear", 5)},
	)
}

// Alternatives offers a slow and a fast recipe for B. Optimum uses only the
// fast one: r=(0, 2.5), m=(0, 3), objective 3.
func Alternatives() *plan.Instance {
	return plan.NewInstance(
		[]*plan.Recipe{
			plan.NewRecipe("Slow", []plan.Item{plan.NewItem("A", 1)}, []plan.Item{plan.NewItem("B", 1)}),
			plan.NewRecipe("Fast", []plan.Item{plan.NewItem("A", 1)}, []plan.Item{plan.NewItem("B", 4)}),
		},
		[]plan.Item{plan.NewItem("A", 100)},
		[]plan.Item{plan.NewItem("B", 10)},
	)
}

// Unreachable wants C, which no recipe produces and nobody supplies.
func Unreachable() *plan.Instance {
	return plan.NewInstance(
		[]*plan.Recipe{
			plan.NewRecipe("R1", []plan.Item{plan.NewItem("A", 1)}, []plan.Item{plan.NewItem("B", 1)}),
		},
		[]plan.Item{plan.NewItem("A", 100)},
		[]plan.Item{plan.NewItem("C", 1)},
	)
}

// Starved wants more B than the available A can yield.
func Starved() *plan.Instance {
	return plan.NewInstance(
		[]*plan.Recipe{
			plan.NewRecipe("R1", []plan.Item{plan.NewItem("A", 2)}, []plan.Item{plan.NewItem("B", 1)}),
		},
		[]plan.Item{plan.NewItem("A", 10)},
		[]plan.Item{plan.NewItem("B", 6)},
	)
}

// GoldenPlans represents the structure of testdata/golden_plans.json.
type GoldenPlans struct {
	Plans []GoldenPlan `json:"plans"`
}

// GoldenPlan is one instance file with its expected solve outcome.
type GoldenPlan struct {
	Instance  string    `json:"instance"`
	Status    string    `json:"status"`
	Objective float64   `json:"objective"`
	Machines  []float64 `json:"machines,omitempty"`
}

// testdataDir resolves plan/internal/testutil/ → repo root testdata/.
func testdataDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata")
}

// LoadGoldenPlans loads the golden plan dataset.
func LoadGoldenPlans(t *testing.T) *GoldenPlans {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(testdataDir(t), "golden_plans.json"))
	if err != nil {
		t.Fatalf("Failed to read golden plans: %v", err)
	}
	var plans GoldenPlans
	if err := json.Unmarshal(data, &plans); err != nil {
		t.Fatalf("Failed to parse golden plans: %v", err)
	}
	return &plans
}

// InstancePath returns the path of a file under testdata/instances/.
func InstancePath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(testdataDir(t), "instances", name)
}

// LoadInstance loads a testdata instance, failing the test on error.
func LoadInstance(t *testing.T, name string) *plan.Instance {
	t.Helper()
	inst, err := plan.LoadInstance(InstancePath(t, name))
	if err != nil {
		t.Fatalf("Failed to load instance %s: %v", name, err)
	}
	return inst
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
