// Package ui draws the game on a terminal. It is a write-only collaborator:
// the core pushes materialize/evict/update events at it and the core is
// never queried for cell truth in return.
package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"geotokens/internal/grid"
	"geotokens/internal/world"
)

// Cell box footprint in terminal cells.
const (
	BoxWidth  = 9
	BoxHeight = 3
)

var (
	styleDefault = tcell.StyleDefault
	styleBorder  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleToken   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	stylePlayer  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleStatus  = tcell.StyleDefault.Reverse(true)
	styleVictory = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// Renderer keeps the render handles (the drawn content) for every
// materialized cell and repaints the screen on demand.
type Renderer struct {
	screen tcell.Screen
	cells  map[grid.CellCoord]world.Cell
	view   grid.CellRange
}

func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{
		screen: screen,
		cells:  make(map[grid.CellCoord]world.Cell),
		view:   grid.EmptyRange(),
	}
}

func (r *Renderer) Materialize(coord grid.CellCoord, cell world.Cell) {
	r.cells[coord] = cell
}

func (r *Renderer) Evict(coord grid.CellCoord) {
	delete(r.cells, coord)
}

func (r *Renderer) UpdateToken(coord grid.CellCoord, cell world.Cell) {
	r.cells[coord] = cell
}

// SetView tells the renderer which cell range the next frame covers.
func (r *Renderer) SetView(view grid.CellRange) {
	r.view = view
}

// CoordAt maps a screen position back to the cell drawn there, if any.
func (r *Renderer) CoordAt(x, y int) (grid.CellCoord, bool) {
	if r.view.Empty() {
		return grid.CellCoord{}, false
	}
	col := x / BoxWidth
	row := y / BoxHeight
	coord := grid.CellCoord{
		I: r.view.Max.I - row,
		J: r.view.Min.J + col,
	}
	return coord, r.view.Contains(coord)
}

// Frame repaints the whole screen: cell boxes, token labels, the player
// marker, and the status line.
func (r *Renderer) Frame(player grid.CellCoord, inventory int, hasInventory bool, victory bool, status string) {
	r.screen.Clear()

	r.view.Each(func(coord grid.CellCoord) {
		x := (coord.J - r.view.Min.J) * BoxWidth
		y := (r.view.Max.I - coord.I) * BoxHeight
		r.drawBox(x, y)

		cell, ok := r.cells[coord]
		if ok && cell.HasToken {
			label := fmt.Sprintf("%d", cell.TokenValue)
			r.drawText(x+(BoxWidth-len(label))/2, y+BoxHeight/2, label, styleToken)
		}
		if coord == player {
			r.drawText(x+1, y+BoxHeight/2, "@", stylePlayer)
		}
	})

	r.drawStatus(inventory, hasInventory, victory, status)
	r.screen.Show()
}

func (r *Renderer) drawBox(x, y int) {
	for dx := 0; dx < BoxWidth; dx++ {
		r.screen.SetContent(x+dx, y, tcell.RuneHLine, nil, styleBorder)
		r.screen.SetContent(x+dx, y+BoxHeight-1, tcell.RuneHLine, nil, styleBorder)
	}
	for dy := 0; dy < BoxHeight; dy++ {
		r.screen.SetContent(x, y+dy, tcell.RuneVLine, nil, styleBorder)
		r.screen.SetContent(x+BoxWidth-1, y+dy, tcell.RuneVLine, nil, styleBorder)
	}
	r.screen.SetContent(x, y, tcell.RuneULCorner, nil, styleBorder)
	r.screen.SetContent(x+BoxWidth-1, y, tcell.RuneURCorner, nil, styleBorder)
	r.screen.SetContent(x, y+BoxHeight-1, tcell.RuneLLCorner, nil, styleBorder)
	r.screen.SetContent(x+BoxWidth-1, y+BoxHeight-1, tcell.RuneLRCorner, nil, styleBorder)
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	for i, ch := range text {
		r.screen.SetContent(x+i, y, ch, nil, style)
	}
}

func (r *Renderer) drawStatus(inventory int, hasInventory bool, victory bool, status string) {
	width, height := r.screen.Size()
	y := height - 1

	slot := "slot: -"
	if hasInventory {
		slot = fmt.Sprintf("slot: %d", inventory)
	}
	line := fmt.Sprintf(" %s | %s", slot, status)
	if victory {
		line = " VICTORY!" + line
	}

	style := styleStatus
	if victory {
		style = styleVictory.Reverse(true)
	}
	for x := 0; x < width; x++ {
		r.screen.SetContent(x, y, ' ', nil, style)
	}
	r.drawText(0, y, line, style)
}
