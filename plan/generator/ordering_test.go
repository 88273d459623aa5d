package generator

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodplan/prodplan/plan"
)

func TestNewOrdering_BlocksAtTheEnds(t *testing.T) {
	// GIVEN 10 items of which 3 are inputs and 2 are outputs
	o, err := NewOrdering(10, 3, 2, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	// THEN inputs occupy the lowest positions and outputs the highest
	assert.Equal(t, []string{"Item_0", "Item_1", "Item_2"}, o.AvailableInputs())
	assert.Equal(t, []string{"Item_8", "Item_9"}, o.DesiredOutputs())
	assert.ElementsMatch(t, []string{"Item_3", "Item_4", "Item_5", "Item_6", "Item_7"}, o.Intermediates())
	for _, name := range o.AvailableInputs() {
		pos, ok := o.Position(name)
		require.True(t, ok)
		assert.Less(t, pos, 3)
	}
	for _, name := range o.DesiredOutputs() {
		pos, _ := o.Position(name)
		assert.GreaterOrEqual(t, pos, 8)
	}
}

func TestNewOrdering_PositionsArePermutation(t *testing.T) {
	o, err := NewOrdering(25, 4, 6, rand.New(rand.NewSource(99)))
	require.NoError(t, err)

	seen := make(map[int]bool)
	for _, name := range o.Names() {
		pos, ok := o.Position(name)
		require.True(t, ok)
		assert.Equal(t, name, o.NameAt(pos))
		seen[pos] = true
	}
	assert.Len(t, seen, 25)
	assert.Len(t, o.Positions(), 25)
}

func TestNewOrdering_ShufflesIntermediates(t *testing.T) {
	// Across seeds the intermediate block should not always keep index order.
	identity := 0
	for seed := int64(0); seed < 20; seed++ {
		o, err := NewOrdering(12, 1, 1, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		mid := o.Intermediates()
		inOrder := true
		for i := range mid {
			if mid[i] != ItemName(i+1) {
				inOrder = false
				break
			}
		}
		if inOrder {
			identity++
		}
	}
	assert.Less(t, identity, 20, "intermediates were never shuffled")
}

func TestNewOrdering_Deterministic(t *testing.T) {
	a, _ := NewOrdering(30, 5, 5, rand.New(rand.NewSource(7)))
	b, _ := NewOrdering(30, 5, 5, rand.New(rand.NewSource(7)))
	assert.Equal(t, a.Names(), b.Names())
}

func TestNewOrdering_InvalidCounts(t *testing.T) {
	tests := []struct {
		name              string
		n, inputs, output int
	}{
		{"inputs plus outputs exceed items", 5, 3, 3},
		{"negative inputs", 5, -1, 0},
		{"negative outputs", 5, 0, -2},
		{"negative items", -1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrdering(tt.n, tt.inputs, tt.output, rand.New(rand.NewSource(1)))
			assert.True(t, errors.Is(err, plan.ErrInvalidConfiguration), "got %v", err)
		})
	}
}

func TestNewOrdering_AllSpecial(t *testing.T) {
	o, err := NewOrdering(4, 2, 2, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Empty(t, o.Intermediates())
	assert.True(t, o.IsAvailableInput(1))
	assert.False(t, o.IsAvailableInput(2))
}
