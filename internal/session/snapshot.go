package session

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"geotokens/internal/grid"
	"geotokens/internal/store"
	"geotokens/internal/world"
)

// Snapshot is the entire durable state of a session.
type Snapshot struct {
	PlayerPosition grid.Position `json:"playerPosition"`
	Inventory      *int          `json:"inventory"`
	Overrides      []world.Entry `json:"overrides"`
	VictoryFlag    bool          `json:"victoryFlag"`
}

// Snapshot captures the session's current durable state, overrides in
// stable order.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		PlayerPosition: s.player,
		Overrides:      s.overrides.Serialize(),
		VictoryFlag:    s.victory,
	}
	if s.hasInventory {
		value := s.inventory
		snap.Inventory = &value
	}
	return snap
}

// Restore replaces the session state wholesale from a snapshot. Call before
// the first viewport sync; restored overrides are then picked up by the
// ordinary resolution path, with no restore-specific branch. Restoring into
// a live session evicts every resident cell so the next sync re-resolves.
func (s *Session) Restore(snap Snapshot) {
	s.overrides.Restore(snap.Overrides)
	s.player = snap.PlayerPosition
	s.hasInventory = snap.Inventory != nil
	if snap.Inventory != nil {
		s.inventory = *snap.Inventory
	} else {
		s.inventory = 0
	}
	s.victory = snap.VictoryFlag
	s.cells.Reset()
}

// Serializer moves snapshots through the opaque key-value storage
// collaborator. It knows the base token value so it can reject stored
// override entries whose values no sequence of doublings could produce.
type Serializer struct {
	kv        store.KV
	key       string
	baseValue int
	logger    *zap.Logger
}

func NewSerializer(kv store.KV, key string, baseValue int, logger *zap.Logger) *Serializer {
	return &Serializer{kv: kv, key: key, baseValue: baseValue, logger: logger}
}

// Save writes the session's snapshot to storage.
func (p *Serializer) Save(s *Session) error {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := p.kv.Set(p.key, string(data)); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// snapshotWire defers override decoding so individual malformed entries can
// be skipped without aborting the whole restore.
type snapshotWire struct {
	PlayerPosition grid.Position     `json:"playerPosition"`
	Inventory      *int              `json:"inventory"`
	Overrides      []json.RawMessage `json:"overrides"`
	VictoryFlag    bool              `json:"victoryFlag"`
}

// Load reads the stored snapshot. A missing or unparseable blob yields a
// fresh snapshot; malformed override entries are skipped individually and
// the rest of the restore continues.
func (p *Serializer) Load() Snapshot {
	value, ok, err := p.kv.Get(p.key)
	if err != nil {
		p.logger.Warn("snapshot unavailable, starting fresh", zap.Error(err))
		return Snapshot{}
	}
	if !ok {
		return Snapshot{}
	}

	var wire snapshotWire
	if err := json.Unmarshal([]byte(value), &wire); err != nil {
		p.logger.Warn("snapshot malformed, starting fresh", zap.Error(err))
		return Snapshot{}
	}

	entries := make([]world.Entry, 0, len(wire.Overrides))
	for _, raw := range wire.Overrides {
		entry, err := world.ParseEntry(raw)
		if err != nil {
			p.logger.Warn("skipping malformed override entry", zap.Error(err))
			continue
		}
		if entry.Cell.HasToken && !world.ReachableValue(p.baseValue, entry.Cell.TokenValue) {
			p.logger.Warn("skipping override with unreachable token value",
				zap.String("cell", entry.Coord.Key()),
				zap.Int("value", entry.Cell.TokenValue),
			)
			continue
		}
		entries = append(entries, entry)
	}

	return Snapshot{
		PlayerPosition: wire.PlayerPosition,
		Inventory:      wire.Inventory,
		Overrides:      entries,
		VictoryFlag:    wire.VictoryFlag,
	}
}
