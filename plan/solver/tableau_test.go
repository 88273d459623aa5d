package solver

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/prodplan/prodplan/plan/model"
)

func le(rhs float64, coefs ...float64) stdRow { return stdRow{coefs: coefs, slack: 1, rhs: rhs} }
func ge(rhs float64, coefs ...float64) stdRow { return stdRow{coefs: coefs, slack: -1, rhs: rhs} }
func eq(rhs float64, coefs ...float64) stdRow { return stdRow{coefs: coefs, rhs: rhs} }

func TestSimplex_AgreesWithGonum(t *testing.T) {
	// GIVEN min −x₁ − 2x₂ s.t. x₁ + x₂ ≤ 4, x₁ + 3x₂ ≤ 6
	c := []float64{-1, -2}

	// WHEN solved on the tableau
	status, y, err := simplex(context.Background(), c, []stdRow{le(4, 1, 1), le(6, 1, 3)}, 1e-9)
	require.NoError(t, err)
	require.Equal(t, lpOptimal, status)

	// THEN it matches gonum's simplex on the same standard form
	A := mat.NewDense(2, 4, []float64{
		1, 1, 1, 0,
		1, 3, 0, 1,
	})
	optF, optX, err := lp.Simplex([]float64{-1, -2, 0, 0}, A, []float64{4, 6}, 0, []int{2, 3})
	require.NoError(t, err)
	assert.InDelta(t, -5, optF, 1e-9)
	assert.InDeltaSlice(t, optX[:2], y, 1e-9)
	assert.InDeltaSlice(t, []float64{3, 1}, y, 1e-9)
}

func TestSimplex_Outcomes(t *testing.T) {
	tests := []struct {
		name   string
		c      []float64
		rows   []stdRow
		status lpStatus
		want   []float64
	}{
		{
			// the second row is twice the first
			name:   "redundant equality rows",
			c:      []float64{1, 2},
			rows:   []stdRow{eq(2, 1, 1), eq(4, 2, 2)},
			status: lpOptimal,
			want:   []float64{2, 0},
		},
		{
			name:   "negative right-hand side",
			c:      []float64{1},
			rows:   []stdRow{ge(-3, -1), ge(1, 1)},
			status: lpOptimal,
			want:   []float64{1},
		},
		{
			name:   "contradictory bounds",
			c:      []float64{1},
			rows:   []stdRow{ge(3, 1), le(1, 1)},
			status: lpInfeasible,
		},
		{
			name:   "improving ray",
			c:      []float64{-1},
			rows:   []stdRow{ge(1, 1)},
			status: lpUnbounded,
		},
		{
			// Beale's example cycles under the textbook largest-coefficient rule
			name: "degenerate cycling example",
			c:    []float64{-0.75, 20, -0.5, 6},
			rows: []stdRow{
				le(0, 0.25, -8, -1, 9),
				le(0, 0.5, -12, -0.5, 3),
				le(1, 0, 0, 1, 0),
			},
			status: lpOptimal,
			want:   []float64{1, 0, 1, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, y, err := simplex(context.Background(), tt.c, tt.rows, 1e-9)
			require.NoError(t, err)
			require.Equal(t, tt.status, status)
			if tt.want != nil {
				assert.InDeltaSlice(t, tt.want, y, 1e-9)
			}
		})
	}
}

func TestSimplex_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := simplex(ctx, []float64{1}, []stdRow{ge(1, 1)}, 1e-9)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRelaxation_DropsRowsThatAlwaysHold(t *testing.T) {
	r := &relaxation{tol: 1e-9}
	free := []bool{true, true}
	lo, hi := []float64{0, 0}, []float64{math.Inf(1), math.Inf(1)}

	// x + 2y ≥ 0 holds for every non-negative point
	_, keep, infeasible := r.reduce(row{vars: []int{0, 1}, coefs: []float64{1, 2}, sense: model.GreaterEqual}, lo, hi, free)
	assert.False(t, keep)
	assert.False(t, infeasible)

	// x ≤ 5 cannot be reached when x ≥ 6
	_, keep, infeasible = r.reduce(row{vars: []int{0}, coefs: []float64{1}, sense: model.LessEqual, rhs: 5},
		[]float64{6, 0}, hi, free)
	assert.False(t, keep)
	assert.True(t, infeasible)

	// x − y ≥ 1 is kept, scaled to a unit largest coefficient
	nr, keep, _ := r.reduce(row{vars: []int{0, 1}, coefs: []float64{4, -2}, sense: model.GreaterEqual, rhs: 4}, lo, hi, free)
	assert.True(t, keep)
	assert.Equal(t, []float64{1, -0.5}, nr.coefs)
	assert.Equal(t, 1.0, nr.rhs)
}

func TestRelaxation_KeepsTightestOfParallelRows(t *testing.T) {
	// GIVEN x ≥ 2 and 2x ≥ 6 over the same variable
	r := &relaxation{
		c: []float64{1},
		rows: []row{
			{name: "a", vars: []int{0}, coefs: []float64{1}, sense: model.GreaterEqual, rhs: 2},
			{name: "b", vars: []int{0}, coefs: []float64{2}, sense: model.GreaterEqual, rhs: 6},
		},
		tol: 1e-9,
	}

	res, err := r.solve(context.Background(), []float64{0}, []float64{math.Inf(1)})

	// THEN the tighter row decides the optimum
	require.NoError(t, err)
	require.Equal(t, lpOptimal, res.status)
	assert.InDelta(t, 3, res.obj, 1e-9)
}
