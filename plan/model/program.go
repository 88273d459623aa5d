// Package model turns a plan.Instance into a mixed-integer linear program.
//
// The program is plain data: variables, linear constraints, and a minimization
// objective. Any engine that understands continuous and integer variables with
// ≥, ≤, and = rows can consume it; see package solver for the bundled one.
package model

import (
	"fmt"
	"math"
)

// Domain is the value set of a decision variable.
type Domain int

const (
	Continuous Domain = iota
	Integer
)

func (d Domain) String() string {
	switch d {
	case Continuous:
		return "continuous"
	case Integer:
		return "integer"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

// Sense is the comparison of a constraint row against its right-hand side.
type Sense int

const (
	GreaterEqual Sense = iota
	LessEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case GreaterEqual:
		return ">="
	case LessEqual:
		return "<="
	case Equal:
		return "="
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// Variable is a decision variable with box bounds. Upper may be +Inf.
type Variable struct {
	Name   string
	Domain Domain
	Lower  float64
	Upper  float64
}

// Term is coef * x[Var].
type Term struct {
	Var  int
	Coef float64
}

// Constraint is Σ terms (Sense) RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Evaluate returns the left-hand side at x.
func (c Constraint) Evaluate(x []float64) float64 {
	var lhs float64
	for _, t := range c.Terms {
		lhs += t.Coef * x[t.Var]
	}
	return lhs
}

// Satisfied reports whether x meets the constraint within tol.
func (c Constraint) Satisfied(x []float64, tol float64) bool {
	lhs := c.Evaluate(x)
	switch c.Sense {
	case GreaterEqual:
		return lhs >= c.RHS-tol
	case LessEqual:
		return lhs <= c.RHS+tol
	default:
		return math.Abs(lhs-c.RHS) <= tol
	}
}

// Program is a minimization MILP over Variables.
type Program struct {
	Name        string
	Variables   []Variable
	Constraints []Constraint
	Objective   []Term

	numRecipes int
	index      map[string]int
}

// NewProgram returns an empty program. Programs produced by Build also record
// the recipe → variable layout; hand-built programs have NumRecipes() == 0.
func NewProgram(name string) *Program {
	return &Program{Name: name, index: make(map[string]int)}
}

// AddVariable appends a variable and returns its index.
func (p *Program) AddVariable(v Variable) int {
	if p.index == nil {
		p.index = make(map[string]int)
	}
	idx := len(p.Variables)
	p.Variables = append(p.Variables, v)
	p.index[v.Name] = idx
	return idx
}

// AddConstraint appends a constraint row.
func (p *Program) AddConstraint(c Constraint) {
	p.Constraints = append(p.Constraints, c)
}

// VariableIndex returns the position of the named variable in solution vectors.
func (p *Program) VariableIndex(name string) (int, bool) {
	idx, ok := p.index[name]
	return idx, ok
}

// NumRecipes is the number of recipes the program was built from.
func (p *Program) NumRecipes() int { return p.numRecipes }

// UsageVar is the index of UseRecipe_i.
func (p *Program) UsageVar(i int) int { return i }

// MachineVar is the index of NumMachines_i.
func (p *Program) MachineVar(i int) int { return p.numRecipes + i }

// IntegerVars returns the indices of integer variables in order.
func (p *Program) IntegerVars() []int {
	var idx []int
	for j, v := range p.Variables {
		if v.Domain == Integer {
			idx = append(idx, j)
		}
	}
	return idx
}

// ObjectiveValue returns the objective at x.
func (p *Program) ObjectiveValue(x []float64) float64 {
	var obj float64
	for _, t := range p.Objective {
		obj += t.Coef * x[t.Var]
	}
	return obj
}

// Violations returns the names of rows and variable bounds that x breaks by
// more than tol, including integrality of integer variables.
func (p *Program) Violations(x []float64, tol float64) []string {
	var out []string
	if len(x) != len(p.Variables) {
		return []string{fmt.Sprintf("solution has %d values, program has %d variables", len(x), len(p.Variables))}
	}
	for j, v := range p.Variables {
		if x[j] < v.Lower-tol || x[j] > v.Upper+tol {
			out = append(out, v.Name)
			continue
		}
		if v.Domain == Integer && math.Abs(x[j]-math.Round(x[j])) > tol {
			out = append(out, v.Name)
		}
	}
	for _, c := range p.Constraints {
		if !c.Satisfied(x, tol) {
			out = append(out, c.Name)
		}
	}
	return out
}

// Feasible reports whether x satisfies every bound, integrality requirement,
// and constraint within tol.
func (p *Program) Feasible(x []float64, tol float64) bool {
	return len(p.Violations(x, tol)) == 0
}
