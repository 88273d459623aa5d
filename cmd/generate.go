package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/prodplan/prodplan/plan"
	"github.com/prodplan/prodplan/plan/generator"
)

var (
	genItems        int    // Number of distinct items
	genInputItems   int    // Number of available input items
	genOutputItems  int    // Number of desired output items
	genRecipes      int    // Number of recipes to generate
	genSeed         int64  // Master seed
	genOutDir       string // Directory for the instance file
	genInstanceName string // Instance file stem
	genConfigPath   string // Optional YAML generator config
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random acyclic recipe-network instance",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := generator.DefaultConfig()
		if genConfigPath != "" {
			loaded, err := generator.LoadConfig(genConfigPath)
			if err != nil {
				logrus.Fatalf("Failed to load generator config: %v", err)
			}
			cfg = *loaded
		}
		if err := overlayGenerateFlags(&cfg, cmd.Flags()); err != nil {
			logrus.Fatalf("Failed to read flags: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid generator configuration: %v", err)
		}

		path, res, err := runGenerate(cfg)
		if err != nil {
			logrus.Fatalf("Generation failed: %v", err)
		}
		if err := res.CoverageErr(); err != nil {
			logrus.Warnf("%v", err)
		}
		logrus.Infof("Wrote %d recipes over %d items to %s (key %d)", len(res.Instance.Recipes), len(res.Instance.Components()), path, res.Key)
	},
}

// overlayGenerateFlags copies flags set on the command line into cfg.
// Flags left at their defaults do not override values from a config file.
func overlayGenerateFlags(cfg *generator.Config, fs *pflag.FlagSet) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"items", &cfg.Items},
		{"input-items", &cfg.InputItems},
		{"output-items", &cfg.OutputItems},
		{"recipes", &cfg.Recipes},
	}
	for _, f := range ints {
		if !fs.Changed(f.name) {
			continue
		}
		v, err := fs.GetInt(f.name)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	if fs.Changed("seed") {
		v, err := fs.GetInt64("seed")
		if err != nil {
			return err
		}
		cfg.Seed = v
	}
	strs := []struct {
		name string
		dst  *string
	}{
		{"outdir", &cfg.OutDir},
		{"instance-name", &cfg.InstanceName},
	}
	for _, f := range strs {
		if !fs.Changed(f.name) {
			continue
		}
		v, err := fs.GetString(f.name)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	return nil
}

// runGenerate generates an instance from cfg and saves it as
// <OutDir>/<InstanceName>.json. An empty InstanceName is derived from the counts
// and seed.
func runGenerate(cfg generator.Config) (string, *generator.Result, error) {
	res, err := generator.Generate(cfg)
	if err != nil {
		return "", nil, err
	}
	name := cfg.InstanceName
	if name == "" {
		name = fmt.Sprintf("rand_%d_%d_%d_%d_s%d", cfg.Items, cfg.InputItems, cfg.OutputItems, cfg.Recipes, cfg.Seed)
	}
	outDir := cfg.OutDir
	if outDir == "" {
		outDir = generator.DefaultConfig().OutDir
	}
	path := filepath.Join(outDir, name+".json")
	if err := plan.SaveInstance(path, res.Instance); err != nil {
		return "", nil, err
	}
	return path, res, nil
}

func registerGenerateFlags(fs *pflag.FlagSet) {
	fs.IntVar(&genItems, "items", 0, "Number of items to include in the instance")
	fs.IntVar(&genInputItems, "input-items", 0, "Number of input items to include in the instance")
	fs.IntVar(&genOutputItems, "output-items", 0, "Number of output items to include in the instance")
	fs.IntVar(&genRecipes, "recipes", 0, "Number of recipes to include in the instance")
	fs.Int64Var(&genSeed, "seed", 0, "Random seed for instance generation")
	fs.StringVar(&genOutDir, "outdir", "instances", "Output directory for instances")
	fs.StringVar(&genInstanceName, "instance-name", "", "Name of the generated instance")
	fs.StringVar(&genConfigPath, "config", "", "Path to a YAML generator config; explicit flags override it")
}

func init() {
	registerGenerateFlags(generateCmd.Flags())
	rootCmd.AddCommand(generateCmd)
}
