package solver

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// pivotEps is the magnitude below which tableau entries and reduced costs
	// count as zero.
	pivotEps = 1e-9

	// ctxCheckEvery is the pivot interval between context checks.
	ctxCheckEvery = 32

	// pivotsPerDim scales the pivot budget with the tableau size.
	pivotsPerDim = 50
)

// stdRow is one row of a standard-form system over non-negative columns:
// coefs·y + slack·s = rhs, with s ≥ 0 when slack is non-zero.
type stdRow struct {
	coefs []float64 // dense over the structural columns
	slack float64   // -1 for a ≥ row, +1 for an upper bound row, 0 for an equality
	rhs   float64
}

// tableau is a dense two-phase simplex tableau. Rows 0..m-1 are constraints,
// row m holds the reduced costs, and column w holds the right-hand side.
// Pivoting follows Bland's rule, so the method terminates on degenerate
// systems.
type tableau struct {
	t      *mat.Dense
	m, w   int
	basis  []int
	barred []bool // columns that may not enter the basis
	dead   []bool // rows found linearly dependent in phase one
	pivots int
	limit  int
}

// simplex minimizes cᵀy subject to rows and y ≥ 0. It returns the optimal y
// for the structural columns, or lpInfeasible / lpUnbounded. ctx is checked
// between pivots and its error is returned unwrapped.
func simplex(ctx context.Context, c []float64, rows []stdRow, tol float64) (lpStatus, []float64, error) {
	n, m := len(c), len(rows)

	// A row can start with its slack in the basis when the slack coefficient
	// is positive after making the right-hand side non-negative. Every other
	// row gets an artificial column.
	sign := make([]float64, m)
	needArt := make([]bool, m)
	numSlack, numArt := 0, 0
	maxRHS := 1.0
	for i, r := range rows {
		sign[i] = 1
		if r.rhs < 0 {
			sign[i] = -1
		}
		if r.slack != 0 {
			numSlack++
		}
		if r.slack*sign[i] <= 0 {
			needArt[i] = true
			numArt++
		}
		maxRHS = math.Max(maxRHS, math.Abs(r.rhs))
	}

	w := n + numSlack + numArt
	tb := &tableau{
		t:      mat.NewDense(m+1, w+1, nil),
		m:      m,
		w:      w,
		basis:  make([]int, m),
		barred: make([]bool, w),
		dead:   make([]bool, m),
		limit:  pivotsPerDim*(m+w) + 100,
	}
	s, a := n, n+numSlack
	for i, r := range rows {
		ri := tb.t.RawRowView(i)
		for j, v := range r.coefs {
			ri[j] = sign[i] * v
		}
		if r.slack != 0 {
			ri[s] = sign[i] * r.slack
			if !needArt[i] {
				tb.basis[i] = s
			}
			s++
		}
		if needArt[i] {
			ri[a] = 1
			tb.basis[i] = a
			a++
		}
		ri[w] = sign[i] * r.rhs
	}

	firstArt := n + numSlack
	if numArt > 0 {
		cost := make([]float64, w)
		for j := firstArt; j < w; j++ {
			cost[j] = 1
		}
		tb.setCost(cost)
		if _, err := tb.iterate(ctx); err != nil {
			return 0, nil, err
		}
		if infeas := -tb.t.At(m, w); infeas > tol*1e-3*maxRHS {
			return lpInfeasible, nil, nil
		}
		tb.dropArtificials(firstArt)
	}

	cost := make([]float64, w)
	copy(cost, c)
	tb.setCost(cost)
	status, err := tb.iterate(ctx)
	if err != nil || status != lpOptimal {
		return status, nil, err
	}

	y := make([]float64, n)
	for i, j := range tb.basis {
		if j < n && !tb.dead[i] {
			y[j] = math.Max(0, tb.t.At(i, w))
		}
	}
	return lpOptimal, y, nil
}

// setCost loads the reduced costs of cost under the current basis.
func (tb *tableau) setCost(cost []float64) {
	obj := tb.t.RawRowView(tb.m)
	copy(obj, cost)
	obj[tb.w] = 0
	for i := 0; i < tb.m; i++ {
		if cb := cost[tb.basis[i]]; cb != 0 {
			floats.AddScaled(obj, -cb, tb.t.RawRowView(i))
		}
	}
}

// iterate pivots until no reduced cost is negative or the entering column
// has no positive entry.
func (tb *tableau) iterate(ctx context.Context) (lpStatus, error) {
	obj := tb.t.RawRowView(tb.m)
	for {
		if tb.pivots%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		if tb.pivots > tb.limit {
			return 0, fmt.Errorf("%w: no convergence after %d pivots on a %dx%d tableau", ErrNumerical, tb.pivots, tb.m, tb.w)
		}

		e := -1
		for j := 0; j < tb.w; j++ {
			if !tb.barred[j] && obj[j] < -pivotEps {
				e = j
				break
			}
		}
		if e < 0 {
			return lpOptimal, nil
		}

		r, best := -1, 0.0
		for i := 0; i < tb.m; i++ {
			if tb.dead[i] {
				continue
			}
			a := tb.t.At(i, e)
			if a <= pivotEps {
				continue
			}
			ratio := tb.t.At(i, tb.w) / a
			switch {
			case r < 0, ratio < best-pivotEps:
				r, best = i, ratio
			case ratio <= best+pivotEps && tb.basis[i] < tb.basis[r]:
				r = i
			}
		}
		if r < 0 {
			return lpUnbounded, nil
		}
		tb.pivot(r, e)
	}
}

// dropArtificials pivots artificial columns out of the basis after phase one
// and bars them from re-entering. A row with no usable pivot is a linear
// combination of the others and is marked dead.
func (tb *tableau) dropArtificials(firstArt int) {
	for i := 0; i < tb.m; i++ {
		if tb.basis[i] < firstArt {
			continue
		}
		ri := tb.t.RawRowView(i)
		ri[tb.w] = 0
		e := -1
		for j := 0; j < firstArt; j++ {
			if math.Abs(ri[j]) > pivotEps {
				e = j
				break
			}
		}
		if e < 0 {
			tb.dead[i] = true
			continue
		}
		tb.pivot(i, e)
	}
	for j := firstArt; j < tb.w; j++ {
		tb.barred[j] = true
	}
}

func (tb *tableau) pivot(r, e int) {
	pr := tb.t.RawRowView(r)
	floats.Scale(1/pr[e], pr)
	pr[e] = 1
	for i := 0; i <= tb.m; i++ {
		if i == r {
			continue
		}
		ri := tb.t.RawRowView(i)
		if f := ri[e]; f != 0 {
			floats.AddScaled(ri, -f, pr)
			ri[e] = 0
		}
	}
	tb.basis[r] = e
	tb.pivots++
}
