package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CellCoord identifies a cell in global grid space.
type CellCoord struct {
	I int
	J int
}

// Key returns the stable serialization key for the coordinate.
func (c CellCoord) Key() string {
	return strconv.Itoa(c.I) + "," + strconv.Itoa(c.J)
}

// ParseKey decodes a coordinate key produced by Key.
func ParseKey(key string) (CellCoord, error) {
	left, right, ok := strings.Cut(key, ",")
	if !ok {
		return CellCoord{}, fmt.Errorf("coordinate key %q missing separator", key)
	}
	i, err := strconv.Atoi(left)
	if err != nil {
		return CellCoord{}, fmt.Errorf("coordinate key %q: %w", key, err)
	}
	j, err := strconv.Atoi(right)
	if err != nil {
		return CellCoord{}, fmt.Errorf("coordinate key %q: %w", key, err)
	}
	return CellCoord{I: i, J: j}, nil
}

// Position is a continuous world coordinate.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance returns the Euclidean distance to other in world units.
func (p Position) Distance(other Position) float64 {
	dLat := p.Lat - other.Lat
	dLng := p.Lng - other.Lng
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

// Viewport is an axis-aligned rectangle in continuous world coordinates.
type Viewport struct {
	Min Position
	Max Position
}

// CellRange is an inclusive rectangle of cell coordinates.
type CellRange struct {
	Min CellCoord
	Max CellCoord
}

// EmptyRange is the canonical empty cell range.
func EmptyRange() CellRange {
	return CellRange{Min: CellCoord{I: 0, J: 0}, Max: CellCoord{I: -1, J: -1}}
}

func (r CellRange) Empty() bool {
	return r.Min.I > r.Max.I || r.Min.J > r.Max.J
}

func (r CellRange) Contains(c CellCoord) bool {
	return c.I >= r.Min.I && c.I <= r.Max.I && c.J >= r.Min.J && c.J <= r.Max.J
}

// Count returns the number of cells covered by the range.
func (r CellRange) Count() int {
	if r.Empty() {
		return 0
	}
	return (r.Max.I - r.Min.I + 1) * (r.Max.J - r.Min.J + 1)
}

// Each invokes fn for every coordinate in the range.
func (r CellRange) Each(fn func(CellCoord)) {
	if r.Empty() {
		return
	}
	for i := r.Min.I; i <= r.Max.I; i++ {
		for j := r.Min.J; j <= r.Max.J; j++ {
			fn(CellCoord{I: i, J: j})
		}
	}
}

// Mapper converts continuous world coordinates to and from cell coordinates.
// Cells are squares of CellSize world units; cell (i, j) covers
// [i*CellSize, (i+1)*CellSize) on the latitude axis and likewise for
// longitude, so boundaries never overlap or gap.
type Mapper struct {
	CellSize float64
}

func NewMapper(cellSize float64) Mapper {
	return Mapper{CellSize: cellSize}
}

// ToCell maps a continuous position to its cell. Rounds toward negative
// infinity so negative coordinates land in the correct cell.
func (m Mapper) ToCell(pos Position) CellCoord {
	return CellCoord{
		I: int(math.Floor(pos.Lat / m.CellSize)),
		J: int(math.Floor(pos.Lng / m.CellSize)),
	}
}

// CellCenter returns the geometric center of a cell.
func (m Mapper) CellCenter(c CellCoord) Position {
	return Position{
		Lat: (float64(c.I) + 0.5) * m.CellSize,
		Lng: (float64(c.J) + 0.5) * m.CellSize,
	}
}

// CellRange translates a viewport into the inclusive range of cells it
// covers. Degenerate or inverted viewports translate to the empty range.
func (m Mapper) CellRange(vp Viewport) CellRange {
	if vp.Max.Lat <= vp.Min.Lat || vp.Max.Lng <= vp.Min.Lng {
		return EmptyRange()
	}
	return CellRange{
		Min: m.ToCell(vp.Min),
		Max: m.ToCell(vp.Max),
	}
}
