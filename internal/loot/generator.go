package loot

import "math"

// Generator models one spawn opportunity per time-quantum of Period with
// success probability Probability — the classic scarcity-aware model from
// the original loot_generator: the chance of at least one spawn rises
// with elapsed time but is capped by the looter/loot gap. Deterministic
// given its RNG.
type Generator struct {
	PeriodS     float64
	Probability float64
	rng         randSource
	timeSinceLastGenS float64
}

// randSource is the minimal surface Generator needs from an RNG, so tests
// can supply a deterministic stand-in without importing math/rand here.
type randSource interface {
	Float64() float64
}

func NewGenerator(periodS, probability float64, rng randSource) *Generator {
	return &Generator{PeriodS: periodS, Probability: probability, rng: rng}
}

// Generate returns how many new items should be spawned this tick, given
// the elapsed time, the current live-loot count and the number of
// looters (dogs) on the map. The result never pushes currentLoots above
// looterCount.
func (g *Generator) Generate(deltaMs uint64, currentLoots, looterCount int) int {
	if looterCount <= currentLoots {
		return 0
	}
	missing := looterCount - currentLoots

	g.timeSinceLastGenS += float64(deltaMs) / 1000
	if g.PeriodS <= 0 {
		return missing
	}

	// Probability of at least one success over the elapsed time, treating
	// each PeriodS quantum as an independent Bernoulli trial.
	quanta := g.timeSinceLastGenS / g.PeriodS
	pAtLeastOne := 1 - math.Pow(1-g.Probability, quanta)

	count := 0
	for i := 0; i < missing; i++ {
		if g.rng.Float64() < pAtLeastOne {
			count++
		}
	}
	if count > 0 {
		g.timeSinceLastGenS = 0
	}
	return count
}
