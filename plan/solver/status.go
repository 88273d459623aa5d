package solver

import "fmt"

// Status is the terminal state of a solve. A status is data, not an error.
type Status int

const (
	Optimal Status = iota
	Infeasible
	Unbounded
	TimeLimitWithSolution
	TimeLimitNoSolution
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case Infeasible:
		return "INFEASIBLE"
	case Unbounded:
		return "UNBOUNDED"
	case TimeLimitWithSolution:
		return "TIME_LIMIT_WITH_SOLUTION"
	case TimeLimitNoSolution:
		return "TIME_LIMIT_NO_SOLUTION"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// HasSolution reports whether a Solution with this status carries Values.
func (s Status) HasSolution() bool {
	return s == Optimal || s == TimeLimitWithSolution
}
