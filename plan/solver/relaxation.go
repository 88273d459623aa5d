package solver

import (
	"context"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/prodplan/prodplan/plan/model"
)

type lpStatus int

const (
	lpOptimal lpStatus = iota
	lpInfeasible
	lpUnbounded
)

type lpResult struct {
	status lpStatus
	obj    float64
	x      []float64
}

// relaxation solves the LP relaxation of a presolved program under per-node
// variable bounds.
type relaxation struct {
	c    []float64
	rows []row
	tol  float64
}

// nodeRow is a row restricted to the free variables of one node, in the
// shifted variables y = x - lo, as a ≥ or = row with unit largest coefficient.
type nodeRow struct {
	vars  []int
	coefs []float64
	sense model.Sense
	rhs   float64
}

// solve minimizes cᵀx subject to the rows and lo ≤ x ≤ hi.
//
// Variables with lo == hi are substituted. Rows that hold everywhere in the
// box are dropped, rows with the same coefficients keep only the tightest
// right-hand side, and the remaining system is solved in standard form with
// one slack per inequality and per finite upper bound.
func (r *relaxation) solve(ctx context.Context, lo, hi []float64) (lpResult, error) {
	n := len(r.c)
	free := make([]bool, n)
	for j := 0; j < n; j++ {
		if lo[j] > hi[j]+r.tol {
			return lpResult{status: lpInfeasible}, nil
		}
		free[j] = hi[j]-lo[j] > r.tol
	}

	var kept []nodeRow
	tightest := make(map[string]int) // coefficient signature → index in kept
	for _, rw := range r.rows {
		nr, keep, infeasible := r.reduce(rw, lo, hi, free)
		if infeasible {
			return lpResult{status: lpInfeasible}, nil
		}
		if !keep {
			continue
		}
		if nr.sense == model.GreaterEqual {
			key := signature(nr)
			if k, ok := tightest[key]; ok {
				kept[k].rhs = math.Max(kept[k].rhs, nr.rhs)
				continue
			}
			tightest[key] = len(kept)
		}
		kept = append(kept, nr)
	}

	used := make([]bool, n)
	for _, nr := range kept {
		for _, j := range nr.vars {
			used[j] = true
		}
	}
	x := make([]float64, n)
	copy(x, lo)
	col := make([]int, n)
	numCols := 0
	for j := 0; j < n; j++ {
		col[j] = -1
		switch {
		case used[j]:
			col[j] = numCols
			numCols++
		case free[j] && r.c[j] < 0:
			// in no row: it moves straight to its upper bound
			if math.IsInf(hi[j], 1) {
				return lpResult{status: lpUnbounded}, nil
			}
			x[j] = hi[j]
		}
	}
	if numCols == 0 {
		return r.result(x), nil
	}

	std := make([]stdRow, 0, len(kept)+numCols)
	for _, nr := range kept {
		sr := stdRow{coefs: make([]float64, numCols), rhs: nr.rhs}
		for k, j := range nr.vars {
			sr.coefs[col[j]] = nr.coefs[k]
		}
		if nr.sense == model.GreaterEqual {
			sr.slack = -1
		}
		std = append(std, sr)
	}
	cStd := make([]float64, numCols)
	for j := 0; j < n; j++ {
		if col[j] < 0 {
			continue
		}
		cStd[col[j]] = r.c[j]
		if !math.IsInf(hi[j], 1) {
			sr := stdRow{coefs: make([]float64, numCols), slack: 1, rhs: hi[j] - lo[j]}
			sr.coefs[col[j]] = 1
			std = append(std, sr)
		}
	}

	status, y, err := simplex(ctx, cStd, std, r.tol)
	if err != nil || status != lpOptimal {
		return lpResult{status: status}, err
	}
	for j := 0; j < n; j++ {
		if col[j] >= 0 {
			x[j] = lo[j] + y[col[j]]
		}
	}
	return r.result(x), nil
}

// reduce rewrites rw for one node. keep is false when the row holds for every
// point of the box; infeasible is true when it holds for none.
func (r *relaxation) reduce(rw row, lo, hi []float64, free []bool) (nr nodeRow, keep, infeasible bool) {
	sign := 1.0
	nr.sense = rw.sense
	if rw.sense == model.LessEqual {
		sign, nr.sense = -1, model.GreaterEqual
	}
	nr.rhs = sign * rw.rhs

	var minAct, maxAct, scale float64
	for k, j := range rw.vars {
		a := sign * rw.coefs[k]
		nr.rhs -= a * lo[j]
		if !free[j] {
			continue
		}
		nr.vars = append(nr.vars, j)
		nr.coefs = append(nr.coefs, a)
		scale = math.Max(scale, math.Abs(a))
		if span := hi[j] - lo[j]; a > 0 {
			maxAct += a * span
		} else {
			minAct += a * span
		}
	}

	if len(nr.vars) == 0 {
		return nr, false, !holds(0, nr.sense, nr.rhs, r.tol)
	}
	if maxAct < nr.rhs-r.tol {
		return nr, false, true
	}
	switch nr.sense {
	case model.GreaterEqual:
		if minAct >= nr.rhs-r.tol {
			return nr, false, false
		}
	default:
		if minAct > nr.rhs+r.tol {
			return nr, false, true
		}
	}

	floats.Scale(1/scale, nr.coefs)
	nr.rhs /= scale
	return nr, true, false
}

// signature identifies rows with identical left-hand sides.
func signature(nr nodeRow) string {
	var b []byte
	for k, j := range nr.vars {
		b = strconv.AppendInt(b, int64(j), 10)
		b = append(b, ':')
		b = strconv.AppendFloat(b, nr.coefs[k], 'g', 12, 64)
		b = append(b, ';')
	}
	return string(b)
}

func (r *relaxation) result(x []float64) lpResult {
	return lpResult{status: lpOptimal, obj: floats.Dot(r.c, x), x: x}
}
