package generator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodplan/prodplan/plan"
)

var generatorCases = []Config{
	{Items: 2, InputItems: 1, OutputItems: 1, Recipes: 5},
	{Items: 5, InputItems: 1, OutputItems: 1, Recipes: 3},
	{Items: 10, InputItems: 2, OutputItems: 2, Recipes: 10},
	{Items: 20, InputItems: 3, OutputItems: 2, Recipes: 15},
	{Items: 40, InputItems: 5, OutputItems: 5, Recipes: 80},
	{Items: 12, InputItems: 0, OutputItems: 3, Recipes: 6},
	{Items: 8, InputItems: 4, OutputItems: 4, Recipes: 8},
}

func eachGenerated(t *testing.T, fn func(t *testing.T, cfg Config, res *Result)) {
	t.Helper()
	for _, base := range generatorCases {
		for seed := int64(0); seed < 15; seed++ {
			cfg := base
			cfg.Seed = seed
			name := fmt.Sprintf("N%d_I%d_O%d_R%d_seed%d", cfg.Items, cfg.InputItems, cfg.OutputItems, cfg.Recipes, seed)
			t.Run(name, func(t *testing.T) {
				res, err := Generate(cfg)
				require.NoError(t, err)
				fn(t, cfg, res)
			})
		}
	}
}

func TestGenerate_InputsPrecedeOutputs(t *testing.T) {
	eachGenerated(t, func(t *testing.T, _ Config, res *Result) {
		for _, r := range res.Instance.Recipes {
			maxIn, minOut := -1, len(res.Positions)
			for _, it := range r.Inputs {
				pos, ok := res.Positions[it.Name]
				require.True(t, ok, "unknown input %s", it.Name)
				maxIn = max(maxIn, pos)
			}
			for _, it := range r.Outputs {
				pos, ok := res.Positions[it.Name]
				require.True(t, ok, "unknown output %s", it.Name)
				minOut = min(minOut, pos)
			}
			assert.Less(t, maxIn, minOut, "recipe %s", r.Name)
		}
	})
}

func TestGenerate_ItemGraphIsAcyclic(t *testing.T) {
	eachGenerated(t, func(t *testing.T, _ Config, res *Result) {
		_, err := plan.TopologicalOrder(res.Instance)
		assert.NoError(t, err)
	})
}

func TestGenerate_ExactRecipeCount(t *testing.T) {
	eachGenerated(t, func(t *testing.T, cfg Config, res *Result) {
		require.Len(t, res.Instance.Recipes, cfg.Recipes)
		assert.Zero(t, res.Shortfall)
		for k, r := range res.Instance.Recipes {
			assert.Equal(t, fmt.Sprintf("Recipe_%d", k+1), r.Name)
		}
	})
}

func TestGenerate_RecipeShape(t *testing.T) {
	eachGenerated(t, func(t *testing.T, cfg Config, res *Result) {
		maxInputs := max(1, cfg.Items/4)
		maxOutputs := min(2, max(1, cfg.Items/5))
		for _, r := range res.Instance.Recipes {
			require.NotEmpty(t, r.Inputs)
			require.NotEmpty(t, r.Outputs)
			// phase 1 may add one target on top of its sampled secondaries
			assert.LessOrEqual(t, len(r.Inputs), maxInputs, "recipe %s", r.Name)
			assert.LessOrEqual(t, len(r.Outputs), maxOutputs+1, "recipe %s", r.Name)
			assert.Len(t, r.InputRates, len(r.Inputs), "duplicate input in %s", r.Name)
			assert.Len(t, r.OutputRates, len(r.Outputs), "duplicate output in %s", r.Name)
		}
	})
}

func TestGenerate_RatesWithinBounds(t *testing.T) {
	rs := DefaultRates()
	eachGenerated(t, func(t *testing.T, _ Config, res *Result) {
		for _, r := range res.Instance.Recipes {
			for _, it := range append(append([]plan.Item(nil), r.Inputs...), r.Outputs...) {
				assert.GreaterOrEqual(t, it.QuantityPerMin, rs.Min)
				assert.Less(t, it.QuantityPerMin, rs.Max)
			}
		}
		for _, it := range res.Instance.AvailableInputs {
			assert.GreaterOrEqual(t, it.QuantityPerMin, rs.Min*rs.AvailableScale+rs.AvailableShift)
			assert.Less(t, it.QuantityPerMin, rs.Max*rs.AvailableScale+rs.AvailableShift)
		}
		for _, it := range res.Instance.DesiredOutputs {
			assert.GreaterOrEqual(t, it.QuantityPerMin, rs.Min*rs.DesiredScale)
			assert.Less(t, it.QuantityPerMin, rs.Max*rs.DesiredScale)
		}
	})
}

func TestGenerate_Reproducible(t *testing.T) {
	// GIVEN the same configuration twice
	cfg := Config{Items: 20, InputItems: 3, OutputItems: 2, Recipes: 15, Seed: 42}

	// WHEN both are generated and serialized
	a, err := Generate(cfg)
	require.NoError(t, err)
	b, err := Generate(cfg)
	require.NoError(t, err)
	aJSON, err := plan.EncodeInstance(a.Instance)
	require.NoError(t, err)
	bJSON, err := plan.EncodeInstance(b.Instance)
	require.NoError(t, err)

	// THEN the files are byte-identical
	assert.Equal(t, string(aJSON), string(bJSON))
	assert.Equal(t, a.Positions, b.Positions)

	// AND a different seed gives a different instance
	cfg.Seed = 43
	c, err := Generate(cfg)
	require.NoError(t, err)
	cJSON, err := plan.EncodeInstance(c.Instance)
	require.NoError(t, err)
	assert.NotEqual(t, string(aJSON), string(cJSON))
}

func TestGenerateWithRNG_IgnoresConfigSeed(t *testing.T) {
	cfg := Config{Items: 15, InputItems: 2, OutputItems: 2, Recipes: 10, Seed: 42}
	want, err := Generate(cfg)
	require.NoError(t, err)

	cfg.Seed = 7
	got, err := GenerateWithRNG(cfg, plan.NewPartitionedRNG(plan.NewGenerationKey(42)))
	require.NoError(t, err)

	wantJSON, _ := plan.EncodeInstance(want.Instance)
	gotJSON, _ := plan.EncodeInstance(got.Instance)
	assert.Equal(t, string(wantJSON), string(gotJSON))
	assert.Equal(t, plan.GenerationKey(42), want.Key)
	assert.Equal(t, plan.GenerationKey(42), got.Key, "key comes from the random source, not cfg.Seed")
}

func TestGenerate_CoverageComplete(t *testing.T) {
	// GIVEN at least one input and enough recipes for every must-produce item
	cfg := Config{Items: 20, InputItems: 3, OutputItems: 2, Recipes: 30, Seed: 5}

	res, err := Generate(cfg)
	require.NoError(t, err)

	// THEN every non-input item has a producer
	assert.Empty(t, res.Skipped)
	assert.Empty(t, res.Uncovered)
	assert.NoError(t, res.CoverageErr())
	for _, it := range res.Instance.DesiredOutputs {
		assert.NotEmpty(t, res.Instance.Producers(it.Name), "%s has no producer", it.Name)
	}
}

func TestGenerate_NoInputsReportsUncovered(t *testing.T) {
	// GIVEN no available inputs
	cfg := Config{Items: 12, InputItems: 0, OutputItems: 3, Recipes: 6, Seed: 1}

	res, err := Generate(cfg)
	require.NoError(t, err)

	// THEN coverage skips every target and the lowest item stays unproduced
	assert.Len(t, res.Skipped, cfg.Items)
	require.NotEmpty(t, res.Uncovered)
	lowest := ""
	for name, pos := range res.Positions {
		if pos == 0 {
			lowest = name
		}
	}
	assert.Contains(t, res.Uncovered, lowest)

	err = res.CoverageErr()
	assert.True(t, errors.Is(err, plan.ErrNoFeasibleInput), "got %v", err)
	assert.Contains(t, err.Error(), lowest)

	// AND the requested recipe count is still met
	assert.Len(t, res.Instance.Recipes, cfg.Recipes)
}

func TestGenerate_InvalidConfigurationBeforeWork(t *testing.T) {
	res, err := Generate(Config{Items: 3, InputItems: 2, OutputItems: 2, Recipes: 5})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, plan.ErrInvalidConfiguration), "got %v", err)

	_, err = Generate(Config{Items: 3, InputItems: -1, Recipes: 5})
	assert.True(t, errors.Is(err, plan.ErrInvalidConfiguration), "got %v", err)
}

func TestGenerate_ZeroRecipes(t *testing.T) {
	res, err := Generate(Config{Items: 6, InputItems: 2, OutputItems: 1, Recipes: 0, Seed: 3})
	require.NoError(t, err)

	assert.Empty(t, res.Instance.Recipes)
	assert.Len(t, res.Instance.AvailableInputs, 2)
	assert.Len(t, res.Instance.DesiredOutputs, 1)
	assert.Zero(t, res.Shortfall)
}

func TestGenerate_ZeroItems(t *testing.T) {
	res, err := Generate(Config{Items: 0, Recipes: 4})
	require.NoError(t, err)

	assert.Empty(t, res.Instance.Recipes)
	assert.Empty(t, res.Instance.AvailableInputs)
	assert.Empty(t, res.Instance.DesiredOutputs)
	assert.Empty(t, res.Instance.Components())
}

func TestGenerate_SingleItemShortfall(t *testing.T) {
	// GIVEN one item, which admits no ordered input/output pair
	res, err := Generate(Config{Items: 1, Recipes: 3})
	require.NoError(t, err)

	// THEN no recipe is built and the shortfall is reported
	assert.Empty(t, res.Instance.Recipes)
	assert.Equal(t, 3, res.Shortfall)
	assert.Equal(t, []string{"Item_0"}, res.Uncovered)
}

func TestGenerate_CustomRates(t *testing.T) {
	cfg := Config{
		Items: 10, InputItems: 2, OutputItems: 2, Recipes: 8, Seed: 11,
		Rates: RateSpec{Min: 2, Max: 2, AvailableScale: 1, AvailableShift: 0, DesiredScale: 3, DesiredShift: 1},
	}
	res, err := Generate(cfg)
	require.NoError(t, err)

	for _, r := range res.Instance.Recipes {
		for _, it := range r.Inputs {
			assert.Equal(t, 2.0, it.QuantityPerMin)
		}
	}
	for _, it := range res.Instance.AvailableInputs {
		assert.Equal(t, 2.0, it.QuantityPerMin)
	}
	for _, it := range res.Instance.DesiredOutputs {
		assert.Equal(t, 7.0, it.QuantityPerMin)
	}
}

func TestSample_DistinctAndBounded(t *testing.T) {
	rng := plan.NewPartitionedRNG(plan.NewGenerationKey(1)).ForSubsystem(plan.SubsystemGeneration)
	pool := []int{3, 5, 8, 13, 21}

	got := sample(rng, pool, 3)
	assert.Len(t, got, 3)
	seen := map[int]bool{}
	for _, v := range got {
		assert.Contains(t, pool, v)
		assert.False(t, seen[v])
		seen[v] = true
	}
	assert.Equal(t, []int{3, 5, 8, 13, 21}, pool, "pool must not be modified")
	assert.Len(t, sample(rng, pool, 10), 5)
	assert.Nil(t, sample(rng, pool, 0))
}
