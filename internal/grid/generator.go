package grid

import "math/rand/v2"

// Generator is the contract shared by every map generator: fill g
// deterministically from seed. Generators always produce some grid.
type Generator interface {
	Generate(g *Grid, seed uint64)
}

// stream constant for the PCG source; fixed so a seed alone determines output
const pcgStream = 0x9e3779b97f4a7c15

func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, pcgStream))
}
