package cache

import (
	"go.uber.org/zap"

	"geotokens/internal/grid"
	"geotokens/internal/world"
)

// Renderer receives presentation side effects for cells entering, leaving,
// or changing inside the viewport. It is write-only: the core never queries
// it for cell truth.
type Renderer interface {
	Materialize(coord grid.CellCoord, cell world.Cell)
	Evict(coord grid.CellCoord)
	UpdateToken(coord grid.CellCoord, cell world.Cell)
}

// NopRenderer discards all side effects, letting the core run headless.
type NopRenderer struct{}

func (NopRenderer) Materialize(grid.CellCoord, world.Cell) {}
func (NopRenderer) Evict(grid.CellCoord)                   {}
func (NopRenderer) UpdateToken(grid.CellCoord, world.Cell) {}

// Cache keeps the bounded set of currently materialized cells, synchronized
// to the last viewport it was given. Cell truth always comes from the
// resolver, so an evicted cell re-materializes with exactly the content its
// override (or the baseline) dictates.
type Cache struct {
	mapper   grid.Mapper
	resolver *world.Resolver
	renderer Renderer
	logger   *zap.Logger

	resident map[grid.CellCoord]world.Cell
	viewport grid.CellRange
}

func New(mapper grid.Mapper, resolver *world.Resolver, renderer Renderer, logger *zap.Logger) *Cache {
	return &Cache{
		mapper:   mapper,
		resolver: resolver,
		renderer: renderer,
		logger:   logger,
		resident: make(map[grid.CellCoord]world.Cell),
		viewport: grid.EmptyRange(),
	}
}

// Sync reconciles the resident set with the cell range covered by vp.
// Coordinates entering the range are resolved and materialized; coordinates
// leaving it are evicted. After Sync the resident set equals the computed
// range exactly. An unchanged viewport performs no side effects.
func (c *Cache) Sync(vp grid.Viewport) {
	next := c.mapper.CellRange(vp)

	materialized := 0
	next.Each(func(coord grid.CellCoord) {
		if _, ok := c.resident[coord]; ok {
			return
		}
		cell := c.resolver.Resolve(coord)
		c.resident[coord] = cell
		c.renderer.Materialize(coord, cell)
		materialized++
	})

	evicted := 0
	for coord := range c.resident {
		if next.Contains(coord) {
			continue
		}
		c.renderer.Evict(coord)
		delete(c.resident, coord)
		evicted++
	}

	c.viewport = next
	if materialized > 0 || evicted > 0 {
		c.logger.Debug("viewport sync",
			zap.Int("materialized", materialized),
			zap.Int("evicted", evicted),
			zap.Int("resident", len(c.resident)),
		)
	}
}

// Resident returns the materialized cell at coord, if it is in view.
func (c *Cache) Resident(coord grid.CellCoord) (world.Cell, bool) {
	cell, ok := c.resident[coord]
	return cell, ok
}

// Update replaces the resident copy at coord after a committed mutation and
// forwards the change to the renderer. Updates to coordinates outside the
// viewport are ignored; their truth lives in the override store.
func (c *Cache) Update(coord grid.CellCoord, cell world.Cell) {
	if _, ok := c.resident[coord]; !ok {
		return
	}
	c.resident[coord] = cell
	c.renderer.UpdateToken(coord, cell)
}

// Len returns the number of resident cells.
func (c *Cache) Len() int {
	return len(c.resident)
}

// Viewport returns the cell range of the last sync.
func (c *Cache) Viewport() grid.CellRange {
	return c.viewport
}

// Reset evicts every resident cell and forgets the synced viewport, so the
// next Sync re-resolves everything. Used by the new-game reset after the
// override store is cleared.
func (c *Cache) Reset() {
	for coord := range c.resident {
		c.renderer.Evict(coord)
		delete(c.resident, coord)
	}
	c.viewport = grid.EmptyRange()
}
