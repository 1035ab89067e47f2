package stream

import (
	"encoding/json"
	"math"

	"github.com/lixenwraith/danmaku/engine"
)

// FrameMessage is the wire form of one engine frame
type FrameMessage struct {
	Tick   uint64        `json:"tick"`
	Player [2]float32    `json:"player"`
	Hits   int           `json:"hits,omitempty"`
	Pools  []PoolMessage `json:"pools"`
}

// PoolMessage carries one pool's bullets as [x, y, rotation] triples
// Bullets with a NaN or infinite component stay in the simulation but are left off the wire
type PoolMessage struct {
	ID      string       `json:"id"`
	Sprite  string       `json:"sprite"`
	Bullets [][3]float32 `json:"bullets"`
}

// NewFrameMessage converts a frame for encoding
func NewFrameMessage(f *engine.Frame) FrameMessage {
	msg := FrameMessage{
		Tick:   f.Tick,
		Player: [2]float32{f.Player.X, f.Player.Y},
		Hits:   f.Hits,
		Pools:  make([]PoolMessage, len(f.Pools)),
	}
	for i, pf := range f.Pools {
		bullets := make([][3]float32, 0, len(pf.Positions))
		for j, pos := range pf.Positions {
			b := [3]float32{pos.X, pos.Y, pf.Rotations[j]}
			if !finite(b) {
				continue
			}
			bullets = append(bullets, b)
		}
		msg.Pools[i] = PoolMessage{ID: pf.PoolID.String(), Sprite: pf.Sprite, Bullets: bullets}
	}
	return msg
}

// Encode marshals f as a JSON text message
func Encode(f *engine.Frame) ([]byte, error) {
	return json.Marshal(NewFrameMessage(f))
}

func finite(v [3]float32) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
