package gen

import (
	"geotokens/internal/grid"
	"geotokens/internal/world"
)

// SpawnGenerator produces repeatable baseline cell content using a hashed
// roll of the cell coordinates. It keeps no state beyond its configuration,
// so identical coordinates yield identical cells across processes and
// sessions.
type SpawnGenerator struct {
	seed             int64
	spawnProbability float64
	baseValue        int
}

func NewSpawnGenerator(seed int64, spawnProbability float64, baseValue int) *SpawnGenerator {
	return &SpawnGenerator{
		seed:             seed,
		spawnProbability: spawnProbability,
		baseValue:        baseValue,
	}
}

func (g *SpawnGenerator) Generate(coord grid.CellCoord) world.Cell {
	if g.roll(coord) < g.spawnProbability {
		return world.TokenCell(g.baseValue)
	}
	return world.EmptyCell()
}

// roll derives a reproducible value in [0, 1) from the coordinate pair.
func (g *SpawnGenerator) roll(coord grid.CellCoord) float64 {
	h := hash2(uint32(g.seed), int32(coord.I), int32(coord.J))
	return float64(h) / float64(1<<32)
}

// hash2 returns a stable hash for 2D integer coordinates plus seed.
// Large odd constants decorrelate the axes.
func hash2(seed uint32, x, y int32) uint32 {
	h := seed
	h ^= uint32(x) * 0x9e3779b1
	h ^= uint32(y) * 0x85ebca6b
	return hash32(h)
}

// hash32 mixes a 32-bit input into a well-distributed 32-bit output.
func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}
