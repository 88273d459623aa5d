package generator

import (
	"fmt"
	"math/rand"

	"github.com/prodplan/prodplan/plan"
)

// ItemName returns the generated name of the i-th item.
func ItemName(i int) string {
	return fmt.Sprintf("Item_%d", i)
}

// Ordering is a strict total order over generated item names. The first
// inputs names are the available inputs, the last outputs names are the desired
// outputs, and intermediates sit between them in random order.
//
// Any recipe whose inputs all precede all of its outputs in this order cannot
// take part in a production cycle.
type Ordering struct {
	names     []string // names[pos]
	positions map[string]int
	inputs    int
	outputs   int
}

// NewOrdering assigns positions to n items. Only the intermediate block is
// shuffled; rng is the sole source of randomness.
func NewOrdering(n, inputs, outputs int, rng *rand.Rand) (*Ordering, error) {
	if n < 0 || inputs < 0 || outputs < 0 {
		return nil, fmt.Errorf("%w: counts must be non-negative (items=%d, input_items=%d, output_items=%d)",
			plan.ErrInvalidConfiguration, n, inputs, outputs)
	}
	if inputs+outputs > n {
		return nil, fmt.Errorf("%w: input_items (%d) + output_items (%d) exceeds items (%d)",
			plan.ErrInvalidConfiguration, inputs, outputs, n)
	}

	names := make([]string, n)
	for i := range names {
		names[i] = ItemName(i)
	}
	middle := names[inputs : n-outputs]
	rng.Shuffle(len(middle), func(i, j int) {
		middle[i], middle[j] = middle[j], middle[i]
	})

	positions := make(map[string]int, n)
	for pos, name := range names {
		positions[name] = pos
	}
	return &Ordering{names: names, positions: positions, inputs: inputs, outputs: outputs}, nil
}

// Len returns the number of ordered items.
func (o *Ordering) Len() int { return len(o.names) }

// NameAt returns the item at position pos.
func (o *Ordering) NameAt(pos int) string { return o.names[pos] }

// Position returns the rank of name and whether name is part of the ordering.
func (o *Ordering) Position(name string) (int, bool) {
	pos, ok := o.positions[name]
	return pos, ok
}

// Names returns all names in position order.
func (o *Ordering) Names() []string {
	return append([]string(nil), o.names...)
}

// Positions returns a copy of the name → position map.
func (o *Ordering) Positions() map[string]int {
	out := make(map[string]int, len(o.positions))
	for k, v := range o.positions {
		out[k] = v
	}
	return out
}

// AvailableInputs returns the lowest-positioned names.
func (o *Ordering) AvailableInputs() []string {
	return append([]string(nil), o.names[:o.inputs]...)
}

// DesiredOutputs returns the highest-positioned names.
func (o *Ordering) DesiredOutputs() []string {
	return append([]string(nil), o.names[len(o.names)-o.outputs:]...)
}

// Intermediates returns the names between the inputs and the outputs.
func (o *Ordering) Intermediates() []string {
	return append([]string(nil), o.names[o.inputs:len(o.names)-o.outputs]...)
}

// IsAvailableInput reports whether pos belongs to the available-input block.
func (o *Ordering) IsAvailableInput(pos int) bool {
	return pos < o.inputs
}
