package world

import (
	"encoding/json"
	"fmt"
)

// Cell is the logical content of one grid coordinate. A cell either holds a
// token with a positive value or holds nothing; TokenValue is meaningful
// only while HasToken is set.
type Cell struct {
	HasToken   bool
	TokenValue int
}

// TokenCell returns a cell holding a token of the given value.
func TokenCell(value int) Cell {
	return Cell{HasToken: true, TokenValue: value}
}

// EmptyCell returns a cell holding nothing.
func EmptyCell() Cell {
	return Cell{}
}

// Validate reports whether the cell is inside the model's domain:
// a token value present exactly when a token is present, and positive.
func (c Cell) Validate() error {
	if c.HasToken && c.TokenValue <= 0 {
		return fmt.Errorf("cell token value %d must be positive", c.TokenValue)
	}
	if !c.HasToken && c.TokenValue != 0 {
		return fmt.Errorf("empty cell carries token value %d", c.TokenValue)
	}
	return nil
}

// ReachableValue reports whether value can arise from a base-value spawn
// doubled zero or more times. Every token the game produces is of this
// form, so anything else in a stored override is out of domain.
func ReachableValue(base, value int) bool {
	if base <= 0 || value < base {
		return false
	}
	for v := base; v <= value; v *= 2 {
		if v == value {
			return true
		}
	}
	return false
}

// cellWire is the serialized form: tokenValue is null exactly when the cell
// holds no token.
type cellWire struct {
	HasToken   bool `json:"hasToken"`
	TokenValue *int `json:"tokenValue"`
}

func (c Cell) MarshalJSON() ([]byte, error) {
	wire := cellWire{HasToken: c.HasToken}
	if c.HasToken {
		value := c.TokenValue
		wire.TokenValue = &value
	}
	return json.Marshal(wire)
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var wire cellWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decode cell: %w", err)
	}
	if wire.HasToken != (wire.TokenValue != nil) {
		return fmt.Errorf("cell token flag and value disagree")
	}
	decoded := Cell{HasToken: wire.HasToken}
	if wire.TokenValue != nil {
		decoded.TokenValue = *wire.TokenValue
	}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*c = decoded
	return nil
}
