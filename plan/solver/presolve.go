package solver

import (
	"fmt"
	"math"
	"sort"

	"github.com/prodplan/prodplan/plan/model"
)

// row is a constraint with merged, non-zero coefficients sorted by variable.
type row struct {
	name  string
	vars  []int
	coefs []float64
	sense model.Sense
	rhs   float64
}

// validate rejects programs the relaxation cannot represent.
func validate(p *model.Program) error {
	if p == nil {
		return fmt.Errorf("%w: nil program", ErrMalformedProgram)
	}
	n := len(p.Variables)
	for _, v := range p.Variables {
		if math.IsNaN(v.Lower) || math.IsInf(v.Lower, 0) {
			return fmt.Errorf("%w: variable %s: lower bound must be finite, got %v", ErrMalformedProgram, v.Name, v.Lower)
		}
		if math.IsNaN(v.Upper) || v.Upper < v.Lower {
			return fmt.Errorf("%w: variable %s: upper bound %v below lower bound %v", ErrMalformedProgram, v.Name, v.Upper, v.Lower)
		}
	}
	checkTerms := func(what string, terms []model.Term) error {
		for _, t := range terms {
			if t.Var < 0 || t.Var >= n {
				return fmt.Errorf("%w: %s references variable %d of %d", ErrMalformedProgram, what, t.Var, n)
			}
			if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
				return fmt.Errorf("%w: %s has non-finite coefficient", ErrMalformedProgram, what)
			}
		}
		return nil
	}
	if err := checkTerms("objective", p.Objective); err != nil {
		return err
	}
	for _, c := range p.Constraints {
		if err := checkTerms("constraint "+c.Name, c.Terms); err != nil {
			return err
		}
		if math.IsNaN(c.RHS) || math.IsInf(c.RHS, 0) {
			return fmt.Errorf("%w: constraint %s has non-finite right-hand side", ErrMalformedProgram, c.Name)
		}
	}
	return nil
}

// presolve merges repeated terms and removes empty rows. An empty row that
// does not hold at zero makes the program infeasible; its name is returned.
func presolve(p *model.Program, tol float64) (rows []row, violated string) {
	for _, c := range p.Constraints {
		merged := make(map[int]float64, len(c.Terms))
		for _, t := range c.Terms {
			merged[t.Var] += t.Coef
		}
		r := row{name: c.Name, sense: c.Sense, rhs: c.RHS}
		for j, coef := range merged {
			if coef != 0 {
				r.vars = append(r.vars, j)
			}
		}
		sort.Ints(r.vars)
		for _, j := range r.vars {
			r.coefs = append(r.coefs, merged[j])
		}

		if len(r.vars) == 0 {
			if !holds(0, r.sense, r.rhs, tol) {
				return nil, c.Name
			}
			continue
		}
		rows = append(rows, r)
	}
	return rows, ""
}

// objectiveCoefs returns the dense objective vector of p.
func objectiveCoefs(p *model.Program) []float64 {
	c := make([]float64, len(p.Variables))
	for _, t := range p.Objective {
		c[t.Var] += t.Coef
	}
	return c
}

// integralObjective reports whether every feasible point has an integer
// objective: all objective coefficients are integers on integer variables.
func integralObjective(p *model.Program, c []float64) bool {
	for j, coef := range c {
		if coef == 0 {
			continue
		}
		if p.Variables[j].Domain != model.Integer || coef != math.Trunc(coef) {
			return false
		}
	}
	return true
}

func holds(lhs float64, sense model.Sense, rhs, tol float64) bool {
	switch sense {
	case model.GreaterEqual:
		return lhs >= rhs-tol
	case model.LessEqual:
		return lhs <= rhs+tol
	default:
		return math.Abs(lhs-rhs) <= tol
	}
}
