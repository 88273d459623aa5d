package model

import (
	"fmt"
	"math"

	"github.com/prodplan/prodplan/plan"
)

// CeilingSlack is ε in MachineCeil_i: m_i − r_i ≤ 1 − ε.
const CeilingSlack = 1e-6

// Options adjusts the formulation.
type Options struct {
	// ExplicitCeiling adds MachineCeil_i rows so that m_i = ceil(r_i) at every
	// feasible point, not only at an optimum.
	ExplicitCeiling bool
}

// Build returns the default formulation of inst.
func Build(inst *plan.Instance) *Program {
	return BuildWithOptions(inst, Options{})
}

// BuildWithOptions formulates inst as
//
//	min  Σ m_i
//	s.t. Σ_i r_i·net_i(d) ≥ demand(d)          Demand_<d>, one per desired occurrence
//	     Σ_i r_i·net_i(c) ≥ −available(c)      Balance_<c>, one per component
//	     m_i − r_i ≥ 0                          MachineLink_<i>
//	     r_i ≥ 0 continuous, m_i ≥ 0 integer
//
// where net_i(x) is recipe i's output rate of x minus its input rate of x.
// inst is not modified.
func BuildWithOptions(inst *plan.Instance, opts Options) *Program {
	n := len(inst.Recipes)
	p := NewProgram("production_plan")
	p.numRecipes = n

	for i := 0; i < n; i++ {
		p.AddVariable(Variable{Name: UsageName(i), Domain: Continuous, Lower: 0, Upper: math.Inf(1)})
	}
	for i := 0; i < n; i++ {
		p.AddVariable(Variable{Name: MachineName(i), Domain: Integer, Lower: 0, Upper: math.Inf(1)})
	}

	p.Objective = make([]Term, n)
	for i := 0; i < n; i++ {
		p.Objective[i] = Term{Var: p.MachineVar(i), Coef: 1}
	}

	for _, d := range inst.DesiredOutputs {
		p.AddConstraint(Constraint{
			Name:  "Demand_" + d.Name,
			Terms: netTerms(p, inst, d.Name),
			Sense: GreaterEqual,
			RHS:   d.QuantityPerMin,
		})
	}

	for _, c := range inst.Components() {
		rhs := 0.0
		if avail := inst.AvailableRate(c); avail != 0 {
			rhs = -avail
		}
		p.AddConstraint(Constraint{
			Name:  "Balance_" + c,
			Terms: netTerms(p, inst, c),
			Sense: GreaterEqual,
			RHS:   rhs,
		})
	}

	for i := 0; i < n; i++ {
		p.AddConstraint(Constraint{
			Name:  fmt.Sprintf("MachineLink_%d", i),
			Terms: []Term{{Var: p.MachineVar(i), Coef: 1}, {Var: p.UsageVar(i), Coef: -1}},
			Sense: GreaterEqual,
			RHS:   0,
		})
	}

	if opts.ExplicitCeiling {
		for i := 0; i < n; i++ {
			p.AddConstraint(Constraint{
				Name:  fmt.Sprintf("MachineCeil_%d", i),
				Terms: []Term{{Var: p.MachineVar(i), Coef: 1}, {Var: p.UsageVar(i), Coef: -1}},
				Sense: LessEqual,
				RHS:   1 - CeilingSlack,
			})
		}
	}
	return p
}

// UsageName is the variable name of recipe i's usage intensity.
func UsageName(i int) string { return fmt.Sprintf("UseRecipe_%d", i) }

// MachineName is the variable name of recipe i's machine count.
func MachineName(i int) string { return fmt.Sprintf("NumMachines_%d", i) }

// netTerms collects r_i·net_i(name) over recipes, omitting zero coefficients.
func netTerms(p *Program, inst *plan.Instance, name string) []Term {
	var terms []Term
	for i, r := range inst.Recipes {
		if coef := r.NetRate(name); coef != 0 {
			terms = append(terms, Term{Var: p.UsageVar(i), Coef: coef})
		}
	}
	return terms
}
