package plan

import (
	"hash/fnv"
	"math/rand"
)

// GenerationKey identifies a reproducible generation run. Equal keys and equal
// generator configurations yield byte-identical instance files.
type GenerationKey int64

// NewGenerationKey wraps a master seed.
func NewGenerationKey(seed int64) GenerationKey {
	return GenerationKey(seed)
}

// Random streams drawn by the generator.
const (
	// SubsystemGeneration shuffles intermediates and shapes recipes.
	// It is seeded with the master seed itself.
	SubsystemGeneration = "generation"

	// SubsystemRates draws every quantity_per_min.
	SubsystemRates = "rates"
)

// PartitionedRNG hands out one *rand.Rand per named stream, so that adding
// draws to one stream leaves the others unchanged. A stream other than
// SubsystemGeneration is seeded with key XOR fnv1a64(name).
//
// Not safe for concurrent use.
type PartitionedRNG struct {
	key     GenerationKey
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates the streams for key lazily.
func NewPartitionedRNG(key GenerationKey) *PartitionedRNG {
	return &PartitionedRNG{key: key, streams: make(map[string]*rand.Rand)}
}

// ForSubsystem returns the stream for name, creating it on first use.
// Repeated calls return the same *rand.Rand.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.streams[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.seedFor(name)))
	p.streams[name] = rng
	return rng
}

// Key returns the master key the streams derive from.
func (p *PartitionedRNG) Key() GenerationKey {
	return p.key
}

func (p *PartitionedRNG) seedFor(name string) int64 {
	if name == SubsystemGeneration {
		return int64(p.key)
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(p.key) ^ int64(h.Sum64())
}
