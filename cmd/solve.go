package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/prodplan/prodplan/plan"
	"github.com/prodplan/prodplan/plan/model"
	"github.com/prodplan/prodplan/plan/report"
	"github.com/prodplan/prodplan/plan/solver"
)

var (
	solveInput           string        // Instance file to solve
	solveOutDir          string        // Directory for the per-instance log
	solveTimeLimit       time.Duration // Wall-clock limit for the engine
	solveMaxNodes        int           // Node budget for branch and bound, 0 = unlimited
	solveVerbose         bool          // Print the loaded instance
	solveExplicitCeiling bool          // Add MachineCeil rows
	solveResultsPath     string        // Optional JSON results file
	solveLPPath          string        // Optional LP-format export of the program
)

// solveRequest carries the solve flags into solveInstance.
type solveRequest struct {
	InputPath       string
	TimeLimit       time.Duration
	MaxNodes        int
	Verbose         bool
	ExplicitCeiling bool
	ResultsPath     string
	LPPath          string
}

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Compute a minimum-machine production plan for an instance",
	Run: func(cmd *cobra.Command, args []string) {
		if solveInput == "" || solveOutDir == "" {
			logrus.Fatalf("--input and --outdir are required")
		}
		restore, err := attachInstanceLog(solveOutDir, instanceStem(solveInput))
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer restore()

		req := solveRequest{
			InputPath:       solveInput,
			TimeLimit:       solveTimeLimit,
			MaxNodes:        solveMaxNodes,
			Verbose:         solveVerbose,
			ExplicitCeiling: solveExplicitCeiling,
			ResultsPath:     solveResultsPath,
			LPPath:          solveLPPath,
		}
		if _, err := solveInstance(cmd.Context(), req, solver.BranchAndBound{}, os.Stdout); err != nil {
			logrus.Fatalf("Solve failed: %v", err)
		}
	},
}

// solveInstance loads, formulates, and solves one instance, printing the
// report to out. Terminal solver statuses are not errors.
func solveInstance(ctx context.Context, req solveRequest, engine solver.Engine, out io.Writer) (*report.Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	inst, err := plan.LoadInstance(req.InputPath)
	if err != nil {
		return nil, err
	}
	if req.Verbose {
		fmt.Fprintln(out, "Instance loaded:")
		if err := describeInstance(out, inst); err != nil {
			return nil, err
		}
	}

	prog := model.BuildWithOptions(inst, model.Options{ExplicitCeiling: req.ExplicitCeiling})
	logrus.Infof("Built program with %d variables and %d constraints", len(prog.Variables), len(prog.Constraints))
	if req.LPPath != "" {
		if err := writeLPFile(req.LPPath, prog); err != nil {
			return nil, err
		}
	}

	opts := solver.DefaultOptions()
	opts.TimeLimit = req.TimeLimit
	opts.MaxNodes = req.MaxNodes
	sol, err := engine.Solve(ctx, prog, opts)
	if err != nil {
		return nil, fmt.Errorf("solving %s: %w", req.InputPath, err)
	}

	report.Print(out, inst, prog, sol)
	summary := report.Summarize(inst, prog, sol)
	summary.Instance = instanceStem(req.InputPath)

	switch sol.Status {
	case solver.Optimal:
		logrus.Infof("Optimal solution found with %.2f total machines", sol.Objective)
		logrus.Infof("Total machines used: %d", summary.TotalMachines)
	case solver.Infeasible:
		logrus.Errorf("Problem is infeasible")
	case solver.Unbounded:
		logrus.Errorf("Problem is unbounded")
	case solver.TimeLimitWithSolution:
		logrus.Infof("Time limit reached. Best solution: %.2f", sol.Objective)
	case solver.TimeLimitNoSolution:
		logrus.Warnf("Time limit reached with no feasible solution")
	}

	if req.ResultsPath != "" {
		if err := summary.SaveResults(req.ResultsPath); err != nil {
			return nil, err
		}
	}
	return &summary, nil
}

func writeLPFile(path string, prog *model.Program) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating LP file: %w", err)
	}
	if err := model.WriteLP(f, prog); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing LP file: %w", err)
	}
	return f.Close()
}

func init() {
	solveCmd.Flags().StringVar(&solveInput, "input", "", "Input file of the instance")
	solveCmd.Flags().StringVar(&solveOutDir, "outdir", "", "Directory that receives <instance>.log")
	solveCmd.Flags().DurationVar(&solveTimeLimit, "time-limit", time.Hour, "Wall-clock limit for the solver")
	solveCmd.Flags().IntVar(&solveMaxNodes, "max-nodes", 0, "Branch-and-bound node budget (0 = unlimited)")
	solveCmd.Flags().BoolVarP(&solveVerbose, "verbose", "v", false, "Print the loaded instance")
	solveCmd.Flags().BoolVar(&solveExplicitCeiling, "explicit-ceiling", false, "Force machines = ceil(usage) at every feasible point")
	solveCmd.Flags().StringVar(&solveResultsPath, "results-path", "", "Write the plan summary as JSON to this file")
	solveCmd.Flags().StringVar(&solveLPPath, "write-lp", "", "Write the program in LP format to this file")
	rootCmd.AddCommand(solveCmd)
}
