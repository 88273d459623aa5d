package solver

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prodplan/prodplan/plan/model"
)

// progressEvery is the node interval between debug progress lines.
const progressEvery = 500

// BranchAndBound is a depth-first branch-and-bound engine over gonum's simplex.
// It branches on the most fractional integer variable and explores the up
// branch first. The zero value is ready to use.
type BranchAndBound struct{}

var _ Engine = BranchAndBound{}

type node struct {
	lo, hi []float64
	bound  float64 // parent relaxation objective
	depth  int
}

type search struct {
	p        *model.Program
	relax    *relaxation
	tol      float64
	integral bool
	ints     []int

	best     []float64
	bestObj  float64
	nodes    int
	maxNodes int
}

// Solve implements Engine.
func (BranchAndBound) Solve(ctx context.Context, p *model.Program, opts Options) (*Solution, error) {
	start := time.Now()
	opts = opts.normalized()
	if err := validate(p); err != nil {
		return nil, err
	}
	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}

	rows, violated := presolve(p, opts.Tolerance)
	if violated != "" {
		logrus.Debugf("presolve: row %s cannot hold", violated)
		return finish(&Solution{Status: Infeasible, BestBound: math.Inf(1)}, start), nil
	}

	c := objectiveCoefs(p)
	s := &search{
		p:        p,
		relax:    &relaxation{c: c, rows: rows, tol: opts.Tolerance},
		tol:      opts.Tolerance,
		integral: integralObjective(p, c),
		ints:     p.IntegerVars(),
		bestObj:  math.Inf(1),
		maxNodes: opts.MaxNodes,
	}

	root := node{
		lo:    make([]float64, len(p.Variables)),
		hi:    make([]float64, len(p.Variables)),
		bound: math.Inf(-1),
	}
	for j, v := range p.Variables {
		root.lo[j], root.hi[j] = v.Lower, v.Upper
		if v.Domain == model.Integer {
			root.lo[j] = math.Ceil(v.Lower - s.tol)
			root.hi[j] = math.Floor(v.Upper + s.tol)
		}
	}

	sol, err := s.run(ctx, root)
	if err != nil {
		return nil, err
	}
	return finish(sol, start), nil
}

func finish(sol *Solution, start time.Time) *Solution {
	sol.Runtime = time.Since(start)
	logrus.Infof("solver: %s after %d node(s) in %s (objective %g, bound %g)",
		sol.Status, sol.Nodes, sol.Runtime.Round(time.Millisecond), sol.Objective, sol.BestBound)
	return sol
}

func (s *search) run(ctx context.Context, root node) (*Solution, error) {
	stack := []node{root}
	for len(stack) > 0 {
		if ctx.Err() != nil || (s.maxNodes > 0 && s.nodes >= s.maxNodes) {
			return s.limited(stack), nil
		}

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.prunable(nd.bound) {
			continue
		}

		res, err := s.relax.solve(ctx, nd.lo, nd.hi)
		if err != nil {
			if ctx.Err() != nil {
				return s.limited(append(stack, nd)), nil
			}
			return nil, err
		}
		s.nodes++
		if s.nodes%progressEvery == 0 {
			logrus.Debugf("solver: %d nodes, %d open, depth %d, incumbent %g", s.nodes, len(stack), nd.depth, s.bestObj)
		}

		switch res.status {
		case lpInfeasible:
			continue
		case lpUnbounded:
			return &Solution{Status: Unbounded, Objective: math.Inf(-1), BestBound: math.Inf(-1), Nodes: s.nodes}, nil
		}
		if s.prunable(res.obj) {
			continue
		}

		j := s.branchVar(res.x)
		if j < 0 {
			s.accept(res.x)
			continue
		}
		s.tryRounding(res.x)
		if s.prunable(res.obj) {
			continue
		}

		v := res.x[j]
		down := node{lo: nd.lo, hi: clone(nd.hi), bound: res.obj, depth: nd.depth + 1}
		down.hi[j] = math.Floor(v)
		up := node{lo: clone(nd.lo), hi: nd.hi, bound: res.obj, depth: nd.depth + 1}
		up.lo[j] = math.Ceil(v)
		stack = append(stack, down, up)
	}

	if s.best == nil {
		return &Solution{Status: Infeasible, BestBound: math.Inf(1), Nodes: s.nodes}, nil
	}
	return &Solution{Status: Optimal, Objective: s.bestObj, BestBound: s.bestObj, Values: s.best, Nodes: s.nodes}, nil
}

// limited reports the search state when time, ctx, or the node budget ran out.
func (s *search) limited(open []node) *Solution {
	bound := s.bestObj
	for _, nd := range open {
		bound = math.Min(bound, nd.bound)
	}
	if s.best == nil {
		return &Solution{Status: TimeLimitNoSolution, BestBound: bound, Nodes: s.nodes}
	}
	return &Solution{Status: TimeLimitWithSolution, Objective: s.bestObj, BestBound: bound, Values: s.best, Nodes: s.nodes}
}

// prunable reports whether a node with relaxation objective obj cannot beat
// the incumbent.
func (s *search) prunable(obj float64) bool {
	if s.best == nil {
		return false
	}
	if s.integral {
		obj = math.Ceil(obj - s.tol)
	}
	return obj >= s.bestObj-s.tol
}

// branchVar returns the most fractional integer variable, or -1 when x is
// integral within tolerance. Ties go to the lowest index.
func (s *search) branchVar(x []float64) int {
	best, bestDist := -1, s.tol
	for _, j := range s.ints {
		f := x[j] - math.Floor(x[j])
		if dist := math.Min(f, 1-f); dist > bestDist {
			best, bestDist = j, dist
		}
	}
	return best
}

// accept rounds the integer variables of x and records it if it improves on
// the incumbent.
func (s *search) accept(x []float64) bool {
	cand := clone(x)
	for _, j := range s.ints {
		cand[j] = math.Round(cand[j])
	}
	obj := s.p.ObjectiveValue(cand)
	if s.best != nil && obj >= s.bestObj-s.tol {
		return false
	}
	s.best, s.bestObj = cand, obj
	logrus.Debugf("solver: incumbent %g at node %d", obj, s.nodes)
	return true
}

// tryRounding offers x with integer variables rounded up, then to nearest, as
// incumbents when the rounded point is feasible.
func (s *search) tryRounding(x []float64) {
	for _, round := range []func(float64) float64{math.Ceil, math.Round} {
		cand := clone(x)
		for _, j := range s.ints {
			if f := cand[j] - math.Floor(cand[j]); math.Min(f, 1-f) > s.tol {
				cand[j] = round(cand[j])
			}
		}
		if s.p.Feasible(cand, s.tol) && s.accept(cand) {
			return
		}
	}
}

func clone(xs []float64) []float64 {
	return append([]float64(nil), xs...)
}
