package parameter

import "time"

// Terminal Render
const (
	// DefaultWorldScale is world units per terminal column
	// Rows use twice the scale since terminal cells are roughly 1:2
	DefaultWorldScale = 4.0

	// PlayerGlyph marks the player cell
	PlayerGlyph = '@'

	// StatusLineRows reserved at the bottom of the screen
	StatusLineRows = 1
)

// Stream
const (
	// DefaultStreamAddr is empty: streaming disabled unless configured
	DefaultStreamAddr = ""

	// StreamClientBuffer is the per-client frame backlog before frames are dropped
	StreamClientBuffer = 4

	// StreamWriteTimeout bounds one frame write to a client
	StreamWriteTimeout = 2 * time.Second

	// StreamPath is the websocket endpoint served by the stream server
	StreamPath = "/ws"
)
