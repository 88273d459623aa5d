// Package report turns solver output back into per-recipe and per-item terms.
package report

import (
	"math"

	"github.com/prodplan/prodplan/plan"
	"github.com/prodplan/prodplan/plan/model"
	"github.com/prodplan/prodplan/plan/solver"
)

// Epsilon is the threshold below which usages and net rates count as zero.
const Epsilon = 1e-6

// ComponentBalance is the net per-minute rate of one item: production minus
// consumption plus external supply.
type ComponentBalance struct {
	Name string  `json:"name"`
	Net  float64 `json:"net_per_min"`
}

// Label is SURPLUS for a positive net rate and DEFICIT otherwise.
func (b ComponentBalance) Label() string {
	if b.Net > 0 {
		return "SURPLUS"
	}
	return "DEFICIT"
}

// DemandCheck compares the net rate of a desired output against its demand.
type DemandCheck struct {
	Name     string  `json:"name"`
	Actual   float64 `json:"actual_per_min"`
	Required float64 `json:"required_per_min"`
	Met      bool    `json:"met"`
}

// Usage extracts the UseRecipe values of prog from sol, one per recipe.
func Usage(prog *model.Program, sol *solver.Solution) []float64 {
	usage := make([]float64, prog.NumRecipes())
	for i := range usage {
		usage[i] = sol.Value(prog.UsageVar(i))
	}
	return usage
}

// Balance returns the non-zero net rates of all components, in component
// order. Recipes with usage at or below Epsilon are ignored.
func Balance(inst *plan.Instance, usage []float64) []ComponentBalance {
	net := netRates(inst, usage)
	var out []ComponentBalance
	for _, c := range inst.Components() {
		if math.Abs(net[c]) > Epsilon {
			out = append(out, ComponentBalance{Name: c, Net: net[c]})
		}
	}
	return out
}

// CheckDemands evaluates every desired output occurrence in order.
func CheckDemands(inst *plan.Instance, usage []float64) []DemandCheck {
	net := netRates(inst, usage)
	out := make([]DemandCheck, 0, len(inst.DesiredOutputs))
	for _, d := range inst.DesiredOutputs {
		actual := net[d.Name]
		if math.Abs(actual) <= Epsilon {
			actual = 0
		}
		out = append(out, DemandCheck{
			Name:     d.Name,
			Actual:   actual,
			Required: d.QuantityPerMin,
			Met:      actual >= d.QuantityPerMin-Epsilon,
		})
	}
	return out
}

func netRates(inst *plan.Instance, usage []float64) map[string]float64 {
	net := make(map[string]float64)
	for i, r := range inst.Recipes {
		if i >= len(usage) || usage[i] <= Epsilon {
			continue
		}
		for _, out := range r.Outputs {
			net[out.Name] += out.QuantityPerMin * usage[i]
		}
		for _, in := range r.Inputs {
			net[in.Name] -= in.QuantityPerMin * usage[i]
		}
	}
	for _, it := range inst.AvailableInputs {
		net[it.Name] += it.QuantityPerMin
	}
	return net
}
