package generator

import (
	"math/rand"

	"github.com/prodplan/prodplan/plan"
)

// rateSampler draws an independent rate for every item occurrence.
// Rates are never cached per name.
type rateSampler struct {
	rng      *rand.Rand
	min, max float64
}

func newRateSampler(rng *rand.Rand, rs RateSpec) *rateSampler {
	return &rateSampler{rng: rng, min: rs.Min, max: rs.Max}
}

func (s *rateSampler) Sample(scale, shift float64) float64 {
	u := s.min + s.rng.Float64()*(s.max-s.min)
	return u*scale + shift
}

func (s *rateSampler) items(names []string, scale, shift float64) []plan.Item {
	items := make([]plan.Item, 0, len(names))
	for _, name := range names {
		items = append(items, plan.NewItem(name, s.Sample(scale, shift)))
	}
	return items
}
