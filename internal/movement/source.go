// Package movement supplies position-change events to the game. The two
// sources share a single capability so the client can select either: button
// presses stepping the player a fixed distance, or a timed stroll standing
// in for a geolocation stream.
package movement

import (
	"context"
	"math"
	"math/rand"
	"time"

	"geotokens/internal/grid"
)

// Source produces absolute player positions. Consumers treat each position
// as an independent update; dropping one has no lasting effect.
type Source interface {
	Positions() <-chan grid.Position
}

const eventBuffer = 16

// Buttons turns discrete step commands into position events.
type Buttons struct {
	step float64
	pos  grid.Position
	out  chan grid.Position
}

func NewButtons(start grid.Position, step float64) *Buttons {
	return &Buttons{
		step: step,
		pos:  start,
		out:  make(chan grid.Position, eventBuffer),
	}
}

// Move steps the player by (dLat, dLng) button units and emits the new
// position. If the consumer is lagging the update is dropped; the next
// press re-emits an absolute position anyway.
func (b *Buttons) Move(dLat, dLng int) grid.Position {
	b.pos.Lat += float64(dLat) * b.step
	b.pos.Lng += float64(dLng) * b.step
	select {
	case b.out <- b.pos:
	default:
	}
	return b.pos
}

// SetStep changes the distance of subsequent steps. Call only from the
// goroutine that calls Move.
func (b *Buttons) SetStep(step float64) {
	b.step = step
}

func (b *Buttons) Positions() <-chan grid.Position {
	return b.out
}

// Walker emits a seeded pseudo-random stroll at a fixed interval, the local
// stand-in for a device location stream.
type Walker struct {
	step     float64
	interval time.Duration
	rng      *rand.Rand
	pos      grid.Position
	out      chan grid.Position
}

func NewWalker(start grid.Position, step float64, interval time.Duration, seed int64) *Walker {
	return &Walker{
		step:     step,
		interval: interval,
		rng:      rand.New(rand.NewSource(seed)),
		pos:      start,
		out:      make(chan grid.Position, eventBuffer),
	}
}

// Run emits positions until ctx is cancelled.
func (w *Walker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.out)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			heading := w.rng.Float64() * 2 * math.Pi
			w.pos.Lat += math.Cos(heading) * w.step
			w.pos.Lng += math.Sin(heading) * w.step
			select {
			case w.out <- w.pos:
			default:
			}
		}
	}
}

func (w *Walker) Positions() <-chan grid.Position {
	return w.out
}
