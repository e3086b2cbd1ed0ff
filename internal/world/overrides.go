package world

import (
	"encoding/json"
	"fmt"
	"sort"

	"geotokens/internal/grid"
)

// Entry pairs a coordinate with its overridden cell in the wire format, a
// two-element array of [coordinateKey, cell].
type Entry struct {
	Coord grid.CellCoord
	Cell  Cell
}

func (e Entry) MarshalJSON() ([]byte, error) {
	key, err := json.Marshal(e.Coord.Key())
	if err != nil {
		return nil, err
	}
	cell, err := json.Marshal(e.Cell)
	if err != nil {
		return nil, err
	}
	return json.Marshal([2]json.RawMessage{key, cell})
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	parsed, err := ParseEntry(data)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// ParseEntry decodes a single override entry, rejecting malformed keys and
// out-of-domain cells so callers can skip individual entries.
func ParseEntry(data []byte) (Entry, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return Entry{}, fmt.Errorf("decode override entry: %w", err)
	}
	if len(parts) != 2 {
		return Entry{}, fmt.Errorf("override entry has %d elements, want 2", len(parts))
	}
	var key string
	if err := json.Unmarshal(parts[0], &key); err != nil {
		return Entry{}, fmt.Errorf("decode override key: %w", err)
	}
	coord, err := grid.ParseKey(key)
	if err != nil {
		return Entry{}, err
	}
	var cell Cell
	if err := json.Unmarshal(parts[1], &cell); err != nil {
		return Entry{}, err
	}
	return Entry{Coord: coord, Cell: cell}, nil
}

// Overrides is the sparse record of every cell whose truth has diverged from
// the generator's baseline. Presence of an entry means the stored cell is
// authoritative; absence means the baseline is.
type Overrides struct {
	cells map[grid.CellCoord]Cell
}

func NewOverrides() *Overrides {
	return &Overrides{cells: make(map[grid.CellCoord]Cell)}
}

// Save upserts the override for coord, replacing any prior entry.
func (o *Overrides) Save(coord grid.CellCoord, cell Cell) {
	o.cells[coord] = cell
}

// Lookup returns the overridden cell for coord, if any.
func (o *Overrides) Lookup(coord grid.CellCoord) (Cell, bool) {
	cell, ok := o.cells[coord]
	return cell, ok
}

// Clear removes every override. Used only by an explicit new-game reset.
func (o *Overrides) Clear() {
	o.cells = make(map[grid.CellCoord]Cell)
}

func (o *Overrides) Len() int {
	return len(o.cells)
}

// Serialize returns all overrides as entries in stable key order.
func (o *Overrides) Serialize() []Entry {
	entries := make([]Entry, 0, len(o.cells))
	for coord, cell := range o.cells {
		entries = append(entries, Entry{Coord: coord, Cell: cell})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Coord.I != entries[j].Coord.I {
			return entries[i].Coord.I < entries[j].Coord.I
		}
		return entries[i].Coord.J < entries[j].Coord.J
	})
	return entries
}

// Restore replaces the current contents wholesale with the given entries.
func (o *Overrides) Restore(entries []Entry) {
	o.cells = make(map[grid.CellCoord]Cell, len(entries))
	for _, entry := range entries {
		o.cells[entry.Coord] = entry.Cell
	}
}
