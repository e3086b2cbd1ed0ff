package main

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"geotokens/internal/config"
	"geotokens/internal/grid"
	"geotokens/internal/logs"
	"geotokens/internal/movement"
	"geotokens/internal/session"
	"geotokens/internal/ui"
)

// game runs the single-threaded event loop: every external event (key
// press, mouse click, position update, resize) is handled to completion
// before the next one is taken.
type game struct {
	cfg        *config.Config
	logger     *zap.Logger
	logLevel   zap.AtomicLevel
	screen     tcell.Screen
	renderer   *ui.Renderer
	sess       *session.Session
	serializer *session.Serializer
	buttons    *movement.Buttons
	walker     *movement.Walker

	reloads chan *config.Config
	status  string
}

func newGame(
	cfg *config.Config,
	logger *zap.Logger,
	logLevel zap.AtomicLevel,
	screen tcell.Screen,
	renderer *ui.Renderer,
	sess *session.Session,
	serializer *session.Serializer,
	buttons *movement.Buttons,
	walker *movement.Walker,
) *game {
	g := &game{
		cfg:        cfg,
		logger:     logger,
		logLevel:   logLevel,
		screen:     screen,
		renderer:   renderer,
		sess:       sess,
		serializer: serializer,
		buttons:    buttons,
		walker:     walker,
		reloads:    make(chan *config.Config, 1),
		status:     "arrows move, space interacts, n new game, q quits",
	}
	sess.SetVictoryHandler(func(value int) {
		g.status = "you win!"
		g.logger.Info("player reached victory", zap.Int("value", value))
	})
	return g
}

// configChanged is invoked by the config watcher; the event loop picks the
// reload up on its own goroutine.
func (g *game) configChanged(cfg *config.Config) {
	select {
	case g.reloads <- cfg:
	default:
	}
}

// applyReload adopts the reloaded settings that are safe to change under a
// live session. Grid and spawn parameters define the world layout and
// still require a restart.
func (g *game) applyReload(cfg *config.Config) {
	g.logLevel.SetLevel(logs.ParseLevel(cfg.Log.Level))
	g.buttons.SetStep(cfg.Movement.Step)
	g.logger.Info("applied reloaded settings",
		zap.String("logLevel", cfg.Log.Level),
		zap.Float64("movementStep", cfg.Movement.Step),
	)
	g.status = "config reloaded; world settings apply on restart"
	g.draw()
}

func (g *game) run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go g.screen.ChannelEvents(events, quit)
	defer close(quit)

	g.refresh(g.sess.Player())

	var walkerPositions <-chan grid.Position
	if g.walker != nil {
		walkerPositions = g.walker.Positions()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case pos := <-g.buttons.Positions():
			g.refresh(pos)
		case pos, ok := <-walkerPositions:
			if !ok {
				walkerPositions = nil
				continue
			}
			g.refresh(pos)
		case cfg := <-g.reloads:
			g.applyReload(cfg)
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if done := g.handleEvent(ev); done {
				return nil
			}
		}
	}
}

func (g *game) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		g.screen.Sync()
		g.refresh(g.sess.Player())
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return false
		}
		x, y := ev.Position()
		if coord, ok := g.renderer.CoordAt(x, y); ok {
			g.interact(coord)
		}
	case *tcell.EventKey:
		return g.handleKey(ev)
	}
	return false
}

func (g *game) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		g.buttons.Move(1, 0)
	case tcell.KeyDown:
		g.buttons.Move(-1, 0)
	case tcell.KeyLeft:
		g.buttons.Move(0, -1)
	case tcell.KeyRight:
		g.buttons.Move(0, 1)
	case tcell.KeyEnter:
		g.interact(g.sess.Mapper().ToCell(g.sess.Player()))
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'k':
			g.buttons.Move(1, 0)
		case 'j':
			g.buttons.Move(-1, 0)
		case 'h':
			g.buttons.Move(0, -1)
		case 'l':
			g.buttons.Move(0, 1)
		case ' ':
			g.interact(g.sess.Mapper().ToCell(g.sess.Player()))
		case 'n':
			g.sess.Reset()
			g.status = "new game"
			g.refresh(g.sess.Player())
		case 's':
			if err := g.serializer.Save(g.sess); err != nil {
				g.status = "save failed"
				g.logger.Warn("manual save failed", zap.Error(err))
			} else {
				g.status = "saved"
			}
			g.draw()
		}
	}
	return false
}

func (g *game) interact(coord grid.CellCoord) {
	result := g.sess.Interact(coord)
	g.status = result.Message
	g.draw()
}

// refresh recomputes the viewport around pos, syncs the cell cache to it,
// and repaints.
func (g *game) refresh(pos grid.Position) {
	g.sess.OnPositionChange(pos)
	vp := g.viewport(pos)
	g.sess.SyncViewport(vp)
	g.renderer.SetView(g.sess.Mapper().CellRange(vp))
	g.draw()
}

func (g *game) draw() {
	inventory, hasInventory := g.sess.Inventory()
	g.renderer.Frame(
		g.sess.Mapper().ToCell(g.sess.Player()),
		inventory, hasInventory,
		g.sess.Victory(),
		g.status,
	)
}

// viewport centers a view on pos sized to what the terminal can show,
// leaving the bottom line for status.
func (g *game) viewport(pos grid.Position) grid.Viewport {
	width, height := g.screen.Size()
	cols := width / ui.BoxWidth
	if cols < 1 {
		cols = 1
	}
	rows := (height - 1) / ui.BoxHeight
	if rows < 1 {
		rows = 1
	}

	cell := g.cfg.Grid.CellSize
	halfLat := float64(rows) * cell / 2
	halfLng := float64(cols) * cell / 2
	return grid.Viewport{
		Min: grid.Position{Lat: pos.Lat - halfLat, Lng: pos.Lng - halfLng},
		Max: grid.Position{Lat: pos.Lat + halfLat, Lng: pos.Lng + halfLng},
	}
}
