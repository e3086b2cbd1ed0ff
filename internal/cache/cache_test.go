package cache

import (
	"testing"

	"go.uber.org/zap"

	"geotokens/internal/grid"
	"geotokens/internal/world"
)

type recordingRenderer struct {
	materialized map[grid.CellCoord]world.Cell
	evicted      []grid.CellCoord
	updated      []grid.CellCoord
	events       int
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{materialized: make(map[grid.CellCoord]world.Cell)}
}

func (r *recordingRenderer) Materialize(coord grid.CellCoord, cell world.Cell) {
	r.materialized[coord] = cell
	r.events++
}

func (r *recordingRenderer) Evict(coord grid.CellCoord) {
	delete(r.materialized, coord)
	r.evicted = append(r.evicted, coord)
	r.events++
}

func (r *recordingRenderer) UpdateToken(coord grid.CellCoord, cell world.Cell) {
	r.materialized[coord] = cell
	r.updated = append(r.updated, coord)
	r.events++
}

type tokenEverywhere struct{}

func (tokenEverywhere) Generate(coord grid.CellCoord) world.Cell {
	return world.TokenCell(2)
}

func testCache(renderer Renderer) (*Cache, *world.Overrides) {
	overrides := world.NewOverrides()
	resolver := world.NewResolver(overrides, tokenEverywhere{})
	return New(grid.NewMapper(1.0), resolver, renderer, zap.NewNop()), overrides
}

func viewportAround(i, j int, cells float64) grid.Viewport {
	return grid.Viewport{
		Min: grid.Position{Lat: float64(i) + 0.5 - cells/2, Lng: float64(j) + 0.5 - cells/2},
		Max: grid.Position{Lat: float64(i) + 0.5 + cells/2, Lng: float64(j) + 0.5 + cells/2},
	}
}

func TestSyncMatchesResidentSetToViewport(t *testing.T) {
	renderer := newRecordingRenderer()
	c, _ := testCache(renderer)

	vp := viewportAround(0, 0, 3)
	c.Sync(vp)

	want := c.Viewport()
	if want.Empty() || c.Len() != want.Count() {
		t.Fatalf("resident %d cells, range covers %d", c.Len(), want.Count())
	}
	want.Each(func(coord grid.CellCoord) {
		cell, ok := c.Resident(coord)
		if !ok {
			t.Fatalf("coordinate %v in range but not resident", coord)
		}
		if cell != world.TokenCell(2) {
			t.Fatalf("resident cell %v = %+v, want baseline token", coord, cell)
		}
		if renderer.materialized[coord] != cell {
			t.Fatalf("renderer missing materialize for %v", coord)
		}
	})
}

func TestSyncIsIdempotentForUnchangedViewport(t *testing.T) {
	renderer := newRecordingRenderer()
	c, _ := testCache(renderer)

	vp := viewportAround(0, 0, 3)
	c.Sync(vp)
	before := renderer.events

	c.Sync(vp)
	if renderer.events != before {
		t.Fatalf("second sync performed %d side effects", renderer.events-before)
	}
}

func TestSyncEvictsCellsLeavingTheViewport(t *testing.T) {
	renderer := newRecordingRenderer()
	c, _ := testCache(renderer)

	c.Sync(viewportAround(0, 0, 3))
	first := c.Viewport()

	c.Sync(viewportAround(10, 10, 3))
	second := c.Viewport()

	if c.Len() != second.Count() {
		t.Fatalf("resident %d cells after move, range covers %d", c.Len(), second.Count())
	}
	first.Each(func(coord grid.CellCoord) {
		if _, ok := c.Resident(coord); ok {
			t.Fatalf("coordinate %v from old range still resident", coord)
		}
	})
	if len(renderer.evicted) != first.Count() {
		t.Fatalf("renderer saw %d evicts, want %d", len(renderer.evicted), first.Count())
	}
}

func TestEvictedOverriddenCellRematerializesFromOverride(t *testing.T) {
	renderer := newRecordingRenderer()
	c, overrides := testCache(renderer)

	home := viewportAround(0, 0, 3)
	c.Sync(home)

	// Mutate the origin cell the way a committed action would: override
	// first, resident copy second.
	coord := grid.CellCoord{I: 0, J: 0}
	overrides.Save(coord, world.EmptyCell())
	c.Update(coord, world.EmptyCell())

	// Leave and come back, repeatedly. The baseline generator would put a
	// token back; the override must win every time.
	for cycle := 0; cycle < 5; cycle++ {
		c.Sync(viewportAround(20, 20, 3))
		c.Sync(home)

		cell, ok := c.Resident(coord)
		if !ok {
			t.Fatalf("cycle %d: origin not resident after return", cycle)
		}
		if cell != world.EmptyCell() {
			t.Fatalf("cycle %d: origin regenerated to %+v", cycle, cell)
		}
	}
}

func TestDegenerateViewportEvictsEverything(t *testing.T) {
	renderer := newRecordingRenderer()
	c, _ := testCache(renderer)

	c.Sync(viewportAround(0, 0, 3))
	point := grid.Viewport{Min: grid.Position{Lat: 0, Lng: 0}, Max: grid.Position{Lat: 0, Lng: 0}}
	c.Sync(point)

	if c.Len() != 0 {
		t.Fatalf("resident %d cells for degenerate viewport", c.Len())
	}
	if len(renderer.materialized) != 0 {
		t.Fatalf("renderer still holds %d cells", len(renderer.materialized))
	}
}

func TestUpdateIgnoresNonResidentCoordinates(t *testing.T) {
	renderer := newRecordingRenderer()
	c, _ := testCache(renderer)

	c.Sync(viewportAround(0, 0, 3))
	c.Update(grid.CellCoord{I: 100, J: 100}, world.EmptyCell())

	if len(renderer.updated) != 0 {
		t.Fatalf("renderer saw %d updates for non-resident cell", len(renderer.updated))
	}
}

func TestResetClearsResidencyAndViewport(t *testing.T) {
	renderer := newRecordingRenderer()
	c, _ := testCache(renderer)

	vp := viewportAround(0, 0, 3)
	c.Sync(vp)
	count := c.Len()

	c.Reset()
	if c.Len() != 0 {
		t.Fatalf("resident %d cells after reset", c.Len())
	}
	if !c.Viewport().Empty() {
		t.Fatalf("viewport %v not cleared by reset", c.Viewport())
	}
	if len(renderer.evicted) != count {
		t.Fatalf("renderer saw %d evicts on reset, want %d", len(renderer.evicted), count)
	}

	// A sync after reset materializes the full range again.
	renderer.events = 0
	c.Sync(vp)
	if c.Len() != count {
		t.Fatalf("resident %d cells after re-sync, want %d", c.Len(), count)
	}
}
