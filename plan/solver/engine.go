// Package solver solves the mixed-integer programs built by package model.
//
// Engine is the contract the planner depends on. BranchAndBound is the bundled
// pure-Go implementation: LP relaxations are solved on a dense simplex
// tableau over gonum matrices and integrality is enforced by depth-first
// branch and bound.
package solver

import (
	"context"
	"errors"
	"time"

	"github.com/prodplan/prodplan/plan/model"
)

var (
	// ErrMalformedProgram is returned when a program references unknown
	// variables, carries non-finite data, or has inverted bounds.
	ErrMalformedProgram = errors.New("malformed program")

	// ErrNumerical is returned when the LP kernel exhausts its pivot budget.
	ErrNumerical = errors.New("numerical failure")
)

// Engine solves a program within the limits in opts.
// Reaching a limit is reported through Solution.Status, not as an error.
type Engine interface {
	Solve(ctx context.Context, p *model.Program, opts Options) (*Solution, error)
}

// Options bounds a solve.
type Options struct {
	// TimeLimit caps wall-clock time; zero means no limit beyond ctx.
	TimeLimit time.Duration
	// Tolerance is the feasibility and integrality tolerance.
	Tolerance float64
	// MaxNodes caps the number of relaxations solved; zero means unlimited.
	MaxNodes int
}

// DefaultOptions returns a one hour limit and a 1e-6 tolerance.
func DefaultOptions() Options {
	return Options{
		TimeLimit: time.Hour,
		Tolerance: 1e-6,
	}
}

func (o Options) normalized() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultOptions().Tolerance
	}
	return o
}

// Solution is the outcome of a solve. Values is indexed like
// Program.Variables and is nil unless Status.HasSolution().
type Solution struct {
	Status    Status
	Objective float64
	// BestBound is the best proven lower bound on the objective.
	BestBound float64
	Values    []float64
	Nodes     int
	Runtime   time.Duration
}

// Value returns the value of variable j, or 0 when there is no solution.
func (s *Solution) Value(j int) float64 {
	if s == nil || j < 0 || j >= len(s.Values) {
		return 0
	}
	return s.Values[j]
}
