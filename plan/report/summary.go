package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/prodplan/prodplan/plan"
	"github.com/prodplan/prodplan/plan/model"
	"github.com/prodplan/prodplan/plan/solver"
)

// RecipePlan is the chosen intensity of one recipe.
type RecipePlan struct {
	Name     string  `json:"name"`
	Usage    float64 `json:"usage"`
	Machines int     `json:"machines"`
}

// Summary is the machine-readable outcome of a solve.
type Summary struct {
	Instance      string             `json:"instance,omitempty"`
	Status        string             `json:"status"`
	Objective     float64            `json:"objective"`
	BestBound     float64            `json:"best_bound"`
	TotalMachines int                `json:"total_machines"`
	RecipesUsed   int                `json:"recipes_used"`
	Nodes         int                `json:"nodes"`
	RuntimeSec    float64            `json:"runtime_sec"`
	Recipes       []RecipePlan       `json:"recipes"`
	Balance       []ComponentBalance `json:"balance"`
	Demands       []DemandCheck      `json:"demands"`
}

// Summarize collects sol into a Summary. Without a solution only the status
// and search statistics are filled in.
func Summarize(inst *plan.Instance, prog *model.Program, sol *solver.Solution) Summary {
	s := Summary{
		Status:     sol.Status.String(),
		Nodes:      sol.Nodes,
		RuntimeSec: sol.Runtime.Seconds(),
		Recipes:    []RecipePlan{},
	}
	if !sol.Status.HasSolution() {
		return s
	}
	s.Objective = sol.Objective
	s.BestBound = sol.BestBound
	if math.IsInf(s.BestBound, 0) || math.IsNaN(s.BestBound) {
		s.BestBound = s.Objective
	}

	usage := Usage(prog, sol)
	for i, r := range inst.Recipes {
		if usage[i] <= Epsilon {
			continue
		}
		machines := int(sol.Value(prog.MachineVar(i)))
		s.Recipes = append(s.Recipes, RecipePlan{Name: r.Name, Usage: usage[i], Machines: machines})
		s.TotalMachines += machines
	}
	s.RecipesUsed = len(s.Recipes)
	s.Balance = Balance(inst, usage)
	s.Demands = CheckDemands(inst, usage)
	return s
}

// AllDemandsMet reports whether every demand check passed.
func (s Summary) AllDemandsMet() bool {
	for _, d := range s.Demands {
		if !d.Met {
			return false
		}
	}
	return true
}

// SaveResults writes s as indented JSON to path, creating the directory.
func (s Summary) SaveResults(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}
