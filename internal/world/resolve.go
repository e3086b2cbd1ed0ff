package world

import "geotokens/internal/grid"

// Generator produces the baseline content of a cell from its coordinates
// alone. Implementations must be deterministic and must not consult
// overrides.
type Generator interface {
	Generate(coord grid.CellCoord) Cell
}

// Resolver applies the single resolution order for cell truth: the saved
// override when one exists, otherwise the generated baseline. Every
// component that needs a cell's current content goes through Resolve,
// whether the cell is being shown for the first time, re-shown after
// eviction, or restored from a snapshot.
type Resolver struct {
	overrides *Overrides
	generator Generator
}

func NewResolver(overrides *Overrides, generator Generator) *Resolver {
	return &Resolver{overrides: overrides, generator: generator}
}

func (r *Resolver) Resolve(coord grid.CellCoord) Cell {
	if cell, ok := r.overrides.Lookup(coord); ok {
		return cell
	}
	return r.generator.Generate(coord)
}
