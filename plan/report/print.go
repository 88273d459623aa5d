package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/prodplan/prodplan/plan"
	"github.com/prodplan/prodplan/plan/model"
	"github.com/prodplan/prodplan/plan/solver"
)

const rule = "------------------------------------------------------------"

// Print writes a human-readable account of sol to w.
func Print(w io.Writer, inst *plan.Instance, prog *model.Program, sol *solver.Solution) {
	switch sol.Status {
	case solver.Optimal:
		printPlan(w, inst, prog, sol)
	case solver.Infeasible:
		fmt.Fprintln(w, "=== Problem Is Infeasible ===")
		fmt.Fprintln(w, "The desired outputs cannot be achieved with the available inputs and recipes.")
	case solver.Unbounded:
		fmt.Fprintln(w, "=== Problem Is Unbounded ===")
		fmt.Fprintln(w, "The objective function can be improved indefinitely.")
	case solver.TimeLimitWithSolution:
		fmt.Fprintln(w, "=== Time Limit Reached ===")
		fmt.Fprintf(w, "Best solution found: %.2f total machines (bound %.2f)\n", sol.Objective, sol.BestBound)
	case solver.TimeLimitNoSolution:
		fmt.Fprintln(w, "=== Time Limit Reached ===")
		fmt.Fprintln(w, "No feasible solution found within time limit.")
	default:
		fmt.Fprintf(w, "=== Optimization Status: %s ===\n", sol.Status)
	}
}

func printPlan(w io.Writer, inst *plan.Instance, prog *model.Program, sol *solver.Solution) {
	s := Summarize(inst, prog, sol)
	usage := Usage(prog, sol)

	fmt.Fprintln(w, "=== Optimal Solution Found ===")
	fmt.Fprintf(w, "Objective Value      : %.2f total machines\n", sol.Objective)

	fmt.Fprintln(w, "\nRecipe Usage:")
	fmt.Fprintln(w, rule)
	for i, r := range inst.Recipes {
		if usage[i] <= Epsilon {
			continue
		}
		fmt.Fprintf(w, "  %s:\n", r.Name)
		fmt.Fprintf(w, "    Recipe usage     : %.3f units/min\n", usage[i])
		fmt.Fprintf(w, "    Machines needed  : %d\n", int(sol.Value(prog.MachineVar(i))))
		if len(r.Inputs) > 0 {
			fmt.Fprintf(w, "    Consumes         : %s\n", scaled(r.Inputs, usage[i]))
		}
		if len(r.Outputs) > 0 {
			fmt.Fprintf(w, "    Produces         : %s\n", scaled(r.Outputs, usage[i]))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Resource Balance:")
	fmt.Fprintln(w, rule)
	for _, b := range s.Balance {
		fmt.Fprintf(w, "  %s: %+.2f/min (%s)\n", b.Name, b.Net, b.Label())
	}

	fmt.Fprintln(w, "\nDesired Outputs Check:")
	fmt.Fprintln(w, rule)
	for _, d := range s.Demands {
		status := "MET"
		if !d.Met {
			status = "NOT MET"
		}
		fmt.Fprintf(w, "  %s: %.2f/min (required: %g/min) %s\n", d.Name, d.Actual, d.Required, status)
	}

	fmt.Fprintln(w, "\nSummary:")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  Total machines used: %d\n", s.TotalMachines)
	fmt.Fprintf(w, "  Optimization status: %s\n", sol.Status)
}

func scaled(items []plan.Item, usage float64) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s: %.2f/min", it.Name, it.QuantityPerMin*usage)
	}
	return strings.Join(parts, ", ")
}
