package plan

import "sort"

// Item is a named resource with a rate in one particular occurrence.
// The same name may carry different rates in different recipes.
type Item struct {
	Name           string  `json:"name"`
	QuantityPerMin float64 `json:"quantity_per_min"`
}

// NewItem creates an Item.
func NewItem(name string, quantityPerMin float64) Item {
	return Item{Name: name, QuantityPerMin: quantityPerMin}
}

// Recipe converts its inputs into its outputs at the declared per-minute rates.
// InputRates and OutputRates are derived once at construction; when a name repeats
// within inputs (or outputs) the later occurrence wins.
type Recipe struct {
	Name    string
	Inputs  []Item
	Outputs []Item

	InputRates  map[string]float64
	OutputRates map[string]float64
}

// NewRecipe creates a Recipe and precomputes its name → rate maps.
func NewRecipe(name string, inputs, outputs []Item) *Recipe {
	return &Recipe{
		Name:        name,
		Inputs:      inputs,
		Outputs:     outputs,
		InputRates:  rateMap(inputs),
		OutputRates: rateMap(outputs),
	}
}

func rateMap(items []Item) map[string]float64 {
	m := make(map[string]float64, len(items))
	for _, it := range items {
		m[it.Name] = it.QuantityPerMin
	}
	return m
}

// NetRate returns output rate minus input rate of name for one unit of usage.
// Names the recipe does not touch yield 0.
func (r *Recipe) NetRate(name string) float64 {
	return r.OutputRates[name] - r.InputRates[name]
}

// Touches returns the sorted names appearing in the recipe's inputs or outputs.
func (r *Recipe) Touches() []string {
	seen := make(map[string]bool, len(r.InputRates)+len(r.OutputRates))
	for name := range r.InputRates {
		seen[name] = true
	}
	for name := range r.OutputRates {
		seen[name] = true
	}
	return sortedKeys(seen)
}

// Instance is a complete planning problem: the recipes, what is supplied
// externally, and what must be produced.
type Instance struct {
	Recipes         []*Recipe
	AvailableInputs []Item
	DesiredOutputs  []Item

	components []string
}

// NewInstance creates an Instance and derives its component universe.
func NewInstance(recipes []*Recipe, availableInputs, desiredOutputs []Item) *Instance {
	inst := &Instance{
		Recipes:         recipes,
		AvailableInputs: availableInputs,
		DesiredOutputs:  desiredOutputs,
	}
	inst.components = inst.collectComponents()
	return inst
}

func (in *Instance) collectComponents() []string {
	seen := make(map[string]bool)
	for _, r := range in.Recipes {
		for _, it := range r.Inputs {
			seen[it.Name] = true
		}
		for _, it := range r.Outputs {
			seen[it.Name] = true
		}
	}
	for _, it := range in.AvailableInputs {
		seen[it.Name] = true
	}
	for _, it := range in.DesiredOutputs {
		seen[it.Name] = true
	}
	return sortedKeys(seen)
}

// Components returns every distinct item name in the instance, sorted.
// The returned slice is a copy.
func (in *Instance) Components() []string {
	return append([]string(nil), in.components...)
}

// AvailableRate returns the external supply of name, summed over duplicate entries.
func (in *Instance) AvailableRate(name string) float64 {
	var total float64
	for _, it := range in.AvailableInputs {
		if it.Name == name {
			total += it.QuantityPerMin
		}
	}
	return total
}

// IsAvailable reports whether name is listed as an available input.
func (in *Instance) IsAvailable(name string) bool {
	for _, it := range in.AvailableInputs {
		if it.Name == name {
			return true
		}
	}
	return false
}

// Producers returns the indices of recipes that list name among their outputs.
func (in *Instance) Producers(name string) []int {
	var idx []int
	for i, r := range in.Recipes {
		if _, ok := r.OutputRates[name]; ok {
			idx = append(idx, i)
		}
	}
	return idx
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
