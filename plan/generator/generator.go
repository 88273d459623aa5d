package generator

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/prodplan/prodplan/plan"
)

// fillAttemptsPerRecipe bounds Phase 2: at most fillAttemptsPerRecipe*R draws.
const fillAttemptsPerRecipe = 20

// Result is a generated instance plus the generation-time artifacts that are
// not persisted in the instance file.
type Result struct {
	Instance *plan.Instance

	// Positions is the topological rank of every generated item.
	Positions map[string]int

	// Skipped lists must-produce items that had no earlier safe input when
	// coverage reached them, in position order.
	Skipped []string

	// Uncovered lists must-produce items that no recipe produces, in position order.
	Uncovered []string

	// Shortfall is the number of requested recipes that could not be built.
	// Non-zero only when fewer than two items exist.
	Shortfall int

	// Key is the master key of the random streams that produced the instance.
	Key plan.GenerationKey
}

// CoverageErr returns an error wrapping plan.ErrNoFeasibleInput that names the
// uncovered items, or nil when every must-produce item has a producer.
func (r *Result) CoverageErr() error {
	if len(r.Uncovered) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d item(s) have no producing recipe: %s",
		plan.ErrNoFeasibleInput, len(r.Uncovered), strings.Join(r.Uncovered, ", "))
}

// Generate builds a random acyclic recipe network from cfg.
// Deterministic given the same cfg (including Seed).
func Generate(cfg Config) (*Result, error) {
	return GenerateWithRNG(cfg, plan.NewPartitionedRNG(plan.NewGenerationKey(cfg.Seed)))
}

// GenerateWithRNG is Generate with an explicit random source; cfg.Seed is ignored.
// The configuration is validated before any random draw.
func GenerateWithRNG(cfg Config, rng *plan.PartitionedRNG) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rs := cfg.EffectiveRates()
	gen := rng.ForSubsystem(plan.SubsystemGeneration)
	rates := newRateSampler(rng.ForSubsystem(plan.SubsystemRates), rs)

	if cfg.Items < 1 {
		return &Result{Instance: plan.NewInstance(nil, nil, nil), Positions: map[string]int{}, Key: rng.Key()}, nil
	}

	order, err := NewOrdering(cfg.Items, cfg.InputItems, cfg.OutputItems, gen)
	if err != nil {
		return nil, err
	}

	available := rates.items(order.AvailableInputs(), rs.AvailableScale, rs.AvailableShift)
	desired := rates.items(order.DesiredOutputs(), rs.DesiredScale, rs.DesiredShift)

	b := newDAGBuilder(order, gen, rates, cfg.Recipes)
	if cfg.Recipes >= 1 {
		b.cover()
		b.fill()
		b.fallback()
	}

	res := &Result{
		Instance:  plan.NewInstance(b.recipes, available, desired),
		Positions: order.Positions(),
		Skipped:   b.skippedNames(),
		Uncovered: b.uncovered(),
		Key:       rng.Key(),
	}
	if cfg.Recipes > len(b.recipes) {
		res.Shortfall = cfg.Recipes - len(b.recipes)
		logrus.Warnf("generated %d of %d recipes: %d item(s) admit no ordered pair", len(b.recipes), cfg.Recipes, cfg.Items)
	}
	logrus.Debugf("generated %d recipes over %d items with key %d (%d uncovered)", len(b.recipes), cfg.Items, res.Key, len(res.Uncovered))
	return res, nil
}

// dagBuilder holds the mutable state of one generation run. All bookkeeping is
// by position; names are only materialized when a recipe is emitted.
type dagBuilder struct {
	order  *Ordering
	rng    *rand.Rand
	rates  *rateSampler
	target int

	maxInputs  int
	maxOutputs int

	safe     []int // sorted positions usable as inputs
	safeSet  map[int]bool
	produced map[int]bool
	skipped  []int

	recipes []*plan.Recipe
}

func newDAGBuilder(order *Ordering, rng *rand.Rand, rates *rateSampler, target int) *dagBuilder {
	n := order.Len()
	b := &dagBuilder{
		order:      order,
		rng:        rng,
		rates:      rates,
		target:     target,
		maxInputs:  max(1, n/4),
		maxOutputs: min(2, max(1, n/5)),
		safeSet:    make(map[int]bool, n),
		produced:   make(map[int]bool, n),
	}
	for pos := 0; pos < n; pos++ {
		if order.IsAvailableInput(pos) {
			b.markSafe(pos)
		}
	}
	return b
}

func (b *dagBuilder) full() bool { return len(b.recipes) >= b.target }

func (b *dagBuilder) markSafe(pos int) {
	if b.safeSet[pos] {
		return
	}
	b.safeSet[pos] = true
	i := sort.SearchInts(b.safe, pos)
	b.safe = append(b.safe, 0)
	copy(b.safe[i+1:], b.safe[i:])
	b.safe[i] = pos
}

// cover walks must-produce items in increasing position and gives each
// uncovered one a producing recipe built from strictly earlier safe items.
func (b *dagBuilder) cover() {
	for target := 0; target < b.order.Len(); target++ {
		if b.full() {
			return
		}
		if b.order.IsAvailableInput(target) || b.produced[target] {
			continue
		}
		candidates := b.safe[:sort.SearchInts(b.safe, target)]
		if len(candidates) == 0 {
			b.skipped = append(b.skipped, target)
			logrus.Debugf("coverage: no safe input precedes %s; skipping", b.order.NameAt(target))
			continue
		}

		inputs := sample(b.rng, candidates, 1+b.rng.Intn(b.maxInputs))
		maxIn := maxOf(inputs)

		var secondary []int
		for pos := maxIn + 1; pos < b.order.Len(); pos++ {
			if pos != target && !b.produced[pos] && !b.order.IsAvailableInput(pos) {
				secondary = append(secondary, pos)
			}
		}
		outputs := append([]int{target}, sample(b.rng, secondary, b.rng.Intn(b.maxOutputs))...)
		b.emit(inputs, outputs)
	}
}

// fill adds random recipes until the target count is reached or the attempt
// budget runs out. An attempt whose inputs leave no later item is discarded.
func (b *dagBuilder) fill() {
	limit := fillAttemptsPerRecipe * b.target
	for attempt := 0; !b.full() && attempt < limit; attempt++ {
		if len(b.safe) == 0 {
			continue
		}
		inputs := sample(b.rng, b.safe, 1+b.rng.Intn(b.maxInputs))
		maxIn := maxOf(inputs)
		if maxIn+1 >= b.order.Len() {
			continue
		}
		later := make([]int, 0, b.order.Len()-maxIn-1)
		for pos := maxIn + 1; pos < b.order.Len(); pos++ {
			later = append(later, pos)
		}
		outputs := sample(b.rng, later, 1+b.rng.Intn(b.maxOutputs))
		b.emit(inputs, outputs)
	}
}

// fallback tops up the recipe count with single-input/single-output recipes
// between two random items in increasing position order.
func (b *dagBuilder) fallback() {
	n := b.order.Len()
	if n < 2 {
		return
	}
	for !b.full() {
		a, c := b.rng.Intn(n), b.rng.Intn(n)
		if a < c {
			b.emit([]int{a}, []int{c})
		}
	}
}

func (b *dagBuilder) emit(inputs, outputs []int) {
	name := fmt.Sprintf("Recipe_%d", len(b.recipes)+1)
	r := plan.NewRecipe(name, b.rates.items(b.names(inputs), 1, 0), b.rates.items(b.names(outputs), 1, 0))
	b.recipes = append(b.recipes, r)
	for _, pos := range outputs {
		b.produced[pos] = true
		b.markSafe(pos)
	}
}

func (b *dagBuilder) names(positions []int) []string {
	out := make([]string, len(positions))
	for i, pos := range positions {
		out[i] = b.order.NameAt(pos)
	}
	return out
}

func (b *dagBuilder) skippedNames() []string {
	if len(b.skipped) == 0 {
		return nil
	}
	return b.names(b.skipped)
}

func (b *dagBuilder) uncovered() []string {
	var out []string
	for pos := 0; pos < b.order.Len(); pos++ {
		if !b.order.IsAvailableInput(pos) && !b.produced[pos] {
			out = append(out, b.order.NameAt(pos))
		}
	}
	return out
}

// sample draws min(k, len(pool)) distinct elements of pool without replacement
// via a partial Fisher-Yates shuffle of a copy. pool is not modified.
func sample(rng *rand.Rand, pool []int, k int) []int {
	if k > len(pool) {
		k = len(pool)
	}
	if k <= 0 {
		return nil
	}
	cp := append([]int(nil), pool...)
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(cp)-i)
		cp[i], cp[j] = cp[j], cp[i]
	}
	return cp[:k]
}

func maxOf(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
