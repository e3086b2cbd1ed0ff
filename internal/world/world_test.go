package world

import (
	"encoding/json"
	"testing"

	"geotokens/internal/grid"
)

func TestCellJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		wire string
	}{
		{name: "token", cell: TokenCell(4), wire: `{"hasToken":true,"tokenValue":4}`},
		{name: "empty", cell: EmptyCell(), wire: `{"hasToken":false,"tokenValue":null}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.cell)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tc.wire {
				t.Fatalf("marshal = %s, want %s", data, tc.wire)
			}
			var decoded Cell
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if decoded != tc.cell {
				t.Fatalf("round trip = %+v, want %+v", decoded, tc.cell)
			}
		})
	}
}

func TestCellUnmarshalRejectsOutOfDomainValues(t *testing.T) {
	tests := []struct {
		name string
		wire string
	}{
		{name: "flag without value", wire: `{"hasToken":true,"tokenValue":null}`},
		{name: "value without flag", wire: `{"hasToken":false,"tokenValue":2}`},
		{name: "non positive value", wire: `{"hasToken":true,"tokenValue":0}`},
		{name: "negative value", wire: `{"hasToken":true,"tokenValue":-8}`},
		{name: "not an object", wire: `[1,2]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var cell Cell
			if err := json.Unmarshal([]byte(tc.wire), &cell); err == nil {
				t.Fatalf("expected error decoding %s", tc.wire)
			}
		})
	}
}

func TestOverridesSaveLookupClear(t *testing.T) {
	o := NewOverrides()
	coord := grid.CellCoord{I: 3, J: -7}

	if _, ok := o.Lookup(coord); ok {
		t.Fatal("lookup on empty store returned an entry")
	}

	o.Save(coord, TokenCell(2))
	cell, ok := o.Lookup(coord)
	if !ok || cell != TokenCell(2) {
		t.Fatalf("lookup = %+v, %v; want token cell 2", cell, ok)
	}

	// Save replaces the prior entry.
	o.Save(coord, EmptyCell())
	cell, ok = o.Lookup(coord)
	if !ok || cell != EmptyCell() {
		t.Fatalf("lookup after upsert = %+v, %v; want empty cell", cell, ok)
	}

	o.Clear()
	if o.Len() != 0 {
		t.Fatalf("store holds %d entries after Clear", o.Len())
	}
}

func TestOverridesSerializeRestoreRoundTrip(t *testing.T) {
	o := NewOverrides()
	o.Save(grid.CellCoord{I: 1, J: 2}, TokenCell(8))
	o.Save(grid.CellCoord{I: -4, J: 0}, EmptyCell())
	o.Save(grid.CellCoord{I: 1, J: -9}, TokenCell(2))

	entries := o.Serialize()
	if len(entries) != 3 {
		t.Fatalf("serialized %d entries, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1].Coord, entries[i].Coord
		if prev.I > cur.I || (prev.I == cur.I && prev.J >= cur.J) {
			t.Fatalf("entries not in stable order: %v before %v", prev, cur)
		}
	}

	restored := NewOverrides()
	restored.Restore(entries)
	if restored.Len() != o.Len() {
		t.Fatalf("restored %d entries, want %d", restored.Len(), o.Len())
	}
	for _, entry := range entries {
		cell, ok := restored.Lookup(entry.Coord)
		if !ok || cell != entry.Cell {
			t.Fatalf("restored %v = %+v, %v; want %+v", entry.Coord, cell, ok, entry.Cell)
		}
	}
}

func TestEntryWireFormat(t *testing.T) {
	entry := Entry{Coord: grid.CellCoord{I: -2, J: 5}, Cell: TokenCell(16)}
	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal entry: %v", err)
	}
	want := `["-2,5",{"hasToken":true,"tokenValue":16}]`
	if string(data) != want {
		t.Fatalf("entry wire = %s, want %s", data, want)
	}

	var decoded Entry
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal entry: %v", err)
	}
	if decoded != entry {
		t.Fatalf("round trip = %+v, want %+v", decoded, entry)
	}
}

func TestParseEntryRejectsMalformedEntries(t *testing.T) {
	tests := []struct {
		name string
		wire string
	}{
		{name: "bad key", wire: `["nope",{"hasToken":false,"tokenValue":null}]`},
		{name: "bad cell", wire: `["0,0",{"hasToken":true,"tokenValue":null}]`},
		{name: "wrong arity", wire: `["0,0"]`},
		{name: "not an array", wire: `{"hasToken":false}`},
		{name: "numeric key", wire: `[7,{"hasToken":false,"tokenValue":null}]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseEntry([]byte(tc.wire)); err == nil {
				t.Fatalf("expected error parsing %s", tc.wire)
			}
		})
	}
}

func TestReachableValue(t *testing.T) {
	tests := []struct {
		base  int
		value int
		want  bool
	}{
		{base: 2, value: 2, want: true},
		{base: 2, value: 4, want: true},
		{base: 2, value: 2048, want: true},
		{base: 2, value: 7, want: false},
		{base: 2, value: 6, want: false},
		{base: 2, value: 1, want: false},
		{base: 2, value: 0, want: false},
		{base: 3, value: 12, want: true},
		{base: 3, value: 9, want: false},
		{base: 0, value: 4, want: false},
	}

	for _, tc := range tests {
		if got := ReachableValue(tc.base, tc.value); got != tc.want {
			t.Errorf("ReachableValue(%d, %d) = %v, want %v", tc.base, tc.value, got, tc.want)
		}
	}
}

type fixedGenerator struct {
	cell Cell
}

func (g fixedGenerator) Generate(coord grid.CellCoord) Cell {
	return g.cell
}

func TestResolvePrefersOverride(t *testing.T) {
	overrides := NewOverrides()
	resolver := NewResolver(overrides, fixedGenerator{cell: TokenCell(2)})
	coord := grid.CellCoord{I: 0, J: 0}

	if got := resolver.Resolve(coord); got != TokenCell(2) {
		t.Fatalf("baseline resolve = %+v, want generated token", got)
	}

	overrides.Save(coord, EmptyCell())
	if got := resolver.Resolve(coord); got != EmptyCell() {
		t.Fatalf("resolve with override = %+v, want empty cell", got)
	}

	// Neighbouring coordinates still fall through to the generator.
	if got := resolver.Resolve(grid.CellCoord{I: 0, J: 1}); got != TokenCell(2) {
		t.Fatalf("resolve without override = %+v, want generated token", got)
	}
}
