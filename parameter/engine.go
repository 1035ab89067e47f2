package parameter

// Simulation Loop Timing
const (
	// DefaultTickRate is the simulation steps per second
	DefaultTickRate = 60

	// MaxStepDelta caps a single step's dt in seconds after a stall (debugger, suspend)
	MaxStepDelta = 0.25
)

// Fire Queue Limits
const (
	// FireQueueSize is the fixed capacity of the fire request ring buffer
	FireQueueSize = 256

	// FireBufferMask is the bitmask for fast modulo operations (256 - 1)
	FireBufferMask = 255
)

// Parallel Tick
const (
	// ParallelThreshold is the pool capacity above which Tick fans out across goroutines
	ParallelThreshold = 8192

	// ParallelChunkSize is the number of slots integrated per goroutine
	// Multiple of 64 keeps chunk boundaries cache-line aligned for float32 slices
	ParallelChunkSize = 4096
)
