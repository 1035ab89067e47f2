package parameter

// Player Hitbox
const (
	// PlayerRadius approximates the player sprite hitbox in world units
	PlayerRadius = 5.0

	// PlayerSpeed is the driver's player movement in world units per second
	PlayerSpeed = 90.0
)

// Driver Input
const (
	// PlayerStepSeconds is the movement one arrow key press applies at PlayerSpeed
	PlayerStepSeconds = 0.05

	// EmitterHeight places the emitter at this fraction of the upper half of the view
	EmitterHeight = 0.6
)
