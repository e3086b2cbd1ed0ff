// Package session owns the whole mutable state of one play session: the
// player's position, the single inventory slot, the victory flag, and the
// override store recording every cell the player has changed. All gameplay
// operations go through the Session; nothing reads or writes this state
// ambiently.
package session

import (
	"fmt"

	"go.uber.org/zap"

	"geotokens/internal/cache"
	"geotokens/internal/config"
	"geotokens/internal/gen"
	"geotokens/internal/grid"
	"geotokens/internal/world"
)

// Outcome names the branch a gameplay interaction took. Rejections are
// outcomes too, never errors.
type Outcome int

const (
	OutcomePickedUp Outcome = iota
	OutcomePlaced
	OutcomeCrafted
	OutcomeEmpty
	OutcomeMismatch
	OutcomeOutOfRange
	OutcomeInventoryFull
	OutcomeInventoryEmpty
	OutcomeOccupied
)

func (o Outcome) String() string {
	switch o {
	case OutcomePickedUp:
		return "pickedUp"
	case OutcomePlaced:
		return "placed"
	case OutcomeCrafted:
		return "crafted"
	case OutcomeEmpty:
		return "empty"
	case OutcomeMismatch:
		return "mismatch"
	case OutcomeOutOfRange:
		return "outOfRange"
	case OutcomeInventoryFull:
		return "inventoryFull"
	case OutcomeInventoryEmpty:
		return "inventoryEmpty"
	case OutcomeOccupied:
		return "occupied"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result describes what an interaction did, for the UI to present.
type Result struct {
	Outcome Outcome
	Coord   grid.CellCoord
	Cell    world.Cell
	Message string
}

// Mutated reports whether the interaction committed a state change.
func (r Result) Mutated() bool {
	switch r.Outcome {
	case OutcomePickedUp, OutcomePlaced, OutcomeCrafted:
		return true
	}
	return false
}

// Session is the explicit state object for one game. It is single-threaded:
// every operation runs to completion before the next external event is
// processed.
type Session struct {
	logger    *zap.Logger
	mapper    grid.Mapper
	overrides *world.Overrides
	cells     *cache.Cache

	player       grid.Position
	inventory    int
	hasInventory bool
	victory      bool

	interactionRadius float64
	victoryThreshold  int

	onVictory func(value int)
	onCommit  func()
}

func New(cfg *config.Config, renderer cache.Renderer, logger *zap.Logger) *Session {
	generator := gen.NewSpawnGenerator(cfg.Grid.Seed, cfg.Game.SpawnProbability, cfg.Game.BaseTokenValue)
	overrides := world.NewOverrides()
	resolver := world.NewResolver(overrides, generator)
	mapper := grid.NewMapper(cfg.Grid.CellSize)

	return &Session{
		logger:            logger,
		mapper:            mapper,
		overrides:         overrides,
		cells:             cache.New(mapper, resolver, renderer, logger),
		interactionRadius: cfg.Game.InteractionRadius,
		victoryThreshold:  cfg.Game.VictoryThreshold,
	}
}

// SetVictoryHandler registers a callback fired exactly once, when a craft
// first reaches the victory threshold.
func (s *Session) SetVictoryHandler(fn func(value int)) {
	s.onVictory = fn
}

// SetCommitHook registers a callback fired after every committed mutation,
// once the override store and the resident cell agree. Used for snapshot
// checkpoints.
func (s *Session) SetCommitHook(fn func()) {
	s.onCommit = fn
}

func (s *Session) Mapper() grid.Mapper   { return s.mapper }
func (s *Session) Player() grid.Position { return s.player }
func (s *Session) Victory() bool         { return s.victory }
func (s *Session) ResidentCells() int    { return s.cells.Len() }

// Inventory returns the slot's token value and whether the slot is filled.
func (s *Session) Inventory() (int, bool) {
	return s.inventory, s.hasInventory
}

// OnPositionChange records the player's new position, moving the
// interaction range with it.
func (s *Session) OnPositionChange(pos grid.Position) {
	s.player = pos
}

// SyncViewport reconciles the materialized cell set with the given view
// rectangle.
func (s *Session) SyncViewport(vp grid.Viewport) {
	s.cells.Sync(vp)
}

// ResidentCell returns the materialized cell at coord, if it is in view.
func (s *Session) ResidentCell(coord grid.CellCoord) (world.Cell, bool) {
	return s.cells.Resident(coord)
}

func (s *Session) inRange(coord grid.CellCoord) bool {
	return s.player.Distance(s.mapper.CellCenter(coord)) <= s.interactionRadius
}

// gate applies the checks shared by every interaction: the cell must be
// materialized and within the player's reach.
func (s *Session) gate(coord grid.CellCoord) (world.Cell, *Result) {
	cell, ok := s.cells.Resident(coord)
	if !ok {
		return world.Cell{}, &Result{Outcome: OutcomeOutOfRange, Coord: coord, Message: "that cell is not in view"}
	}
	if !s.inRange(coord) {
		return world.Cell{}, &Result{Outcome: OutcomeOutOfRange, Coord: coord, Cell: cell, Message: "too far away"}
	}
	return cell, nil
}

// commit writes the mutated cell through to the override store strictly
// before any render side effect, so eviction or a crash immediately after
// can never resurrect the old content.
func (s *Session) commit(coord grid.CellCoord, cell world.Cell) {
	s.overrides.Save(coord, cell)
	s.cells.Update(coord, cell)
	if s.onCommit != nil {
		s.onCommit()
	}
}

// AttemptPickUp moves the cell's token into the empty inventory slot.
func (s *Session) AttemptPickUp(coord grid.CellCoord) Result {
	cell, rejected := s.gate(coord)
	if rejected != nil {
		return *rejected
	}
	if !cell.HasToken {
		return Result{Outcome: OutcomeEmpty, Coord: coord, Cell: cell, Message: "nothing to pick up"}
	}
	if s.hasInventory {
		return Result{Outcome: OutcomeInventoryFull, Coord: coord, Cell: cell, Message: "inventory slot is full"}
	}

	s.inventory = cell.TokenValue
	s.hasInventory = true
	updated := world.EmptyCell()
	s.commit(coord, updated)

	s.logger.Info("picked up token",
		zap.String("cell", coord.Key()),
		zap.Int("value", s.inventory),
	)
	return Result{Outcome: OutcomePickedUp, Coord: coord, Cell: updated,
		Message: fmt.Sprintf("picked up %d", s.inventory)}
}

// AttemptPlace drops the inventory token onto the empty cell.
func (s *Session) AttemptPlace(coord grid.CellCoord) Result {
	cell, rejected := s.gate(coord)
	if rejected != nil {
		return *rejected
	}
	if cell.HasToken {
		return Result{Outcome: OutcomeOccupied, Coord: coord, Cell: cell, Message: "there is already a token here"}
	}
	if !s.hasInventory {
		return Result{Outcome: OutcomeInventoryEmpty, Coord: coord, Cell: cell, Message: "inventory slot is empty"}
	}

	updated := world.TokenCell(s.inventory)
	s.hasInventory = false
	s.inventory = 0
	s.commit(coord, updated)

	s.logger.Info("placed token",
		zap.String("cell", coord.Key()),
		zap.Int("value", updated.TokenValue),
	)
	return Result{Outcome: OutcomePlaced, Coord: coord, Cell: updated,
		Message: fmt.Sprintf("placed %d", updated.TokenValue)}
}

// AttemptCraft merges the inventory token into an equal-valued cell token,
// doubling it. Reaching the victory threshold sets the victory flag exactly
// once; later crafts past the threshold neither unset nor re-trigger it.
func (s *Session) AttemptCraft(coord grid.CellCoord) Result {
	cell, rejected := s.gate(coord)
	if rejected != nil {
		return *rejected
	}
	if !cell.HasToken {
		return Result{Outcome: OutcomeEmpty, Coord: coord, Cell: cell, Message: "nothing to craft with"}
	}
	if !s.hasInventory {
		return Result{Outcome: OutcomeInventoryEmpty, Coord: coord, Cell: cell, Message: "inventory slot is empty"}
	}
	if cell.TokenValue != s.inventory {
		return Result{Outcome: OutcomeMismatch, Coord: coord, Cell: cell,
			Message: fmt.Sprintf("cannot merge %d with %d", s.inventory, cell.TokenValue)}
	}

	updated := world.TokenCell(cell.TokenValue + s.inventory)
	s.hasInventory = false
	s.inventory = 0
	s.commit(coord, updated)

	s.logger.Info("crafted token",
		zap.String("cell", coord.Key()),
		zap.Int("value", updated.TokenValue),
	)

	if updated.TokenValue >= s.victoryThreshold && !s.victory {
		s.victory = true
		s.logger.Info("victory reached", zap.Int("value", updated.TokenValue))
		if s.onVictory != nil {
			s.onVictory(updated.TokenValue)
		}
	}

	return Result{Outcome: OutcomeCrafted, Coord: coord, Cell: updated,
		Message: fmt.Sprintf("crafted %d", updated.TokenValue)}
}

// Interact picks the branch a plain tap means for the current cell and slot
// contents: pick-up, place, craft, mismatch, or nothing to do.
func (s *Session) Interact(coord grid.CellCoord) Result {
	cell, rejected := s.gate(coord)
	if rejected != nil {
		return *rejected
	}

	switch {
	case cell.HasToken && !s.hasInventory:
		return s.AttemptPickUp(coord)
	case cell.HasToken && cell.TokenValue == s.inventory:
		return s.AttemptCraft(coord)
	case cell.HasToken:
		return Result{Outcome: OutcomeMismatch, Coord: coord, Cell: cell,
			Message: fmt.Sprintf("cannot merge %d with %d", s.inventory, cell.TokenValue)}
	case s.hasInventory:
		return s.AttemptPlace(coord)
	default:
		return Result{Outcome: OutcomeEmpty, Coord: coord, Cell: cell, Message: "nothing here"}
	}
}

// Reset wipes the session back to a fresh game: overrides cleared, slot
// emptied, victory unset, every resident cell evicted. The caller re-syncs
// the viewport afterwards.
func (s *Session) Reset() {
	s.overrides.Clear()
	s.inventory = 0
	s.hasInventory = false
	s.victory = false
	s.cells.Reset()
	s.logger.Info("session reset")
}
