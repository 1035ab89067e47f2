package parameter

// Pool Defaults
const (
	// DefaultPoolCapacity is the slot count of a pool created without explicit capacity
	DefaultPoolCapacity = 1 << 16

	// FreeSlotAge marks an unused slot; any negative age is dead
	FreeSlotAge float32 = -1
)

// Pattern Defaults
const (
	// DefaultSeedSpeed is the base speed of the initial seed of a fired pattern
	DefaultSeedSpeed = 60.0

	// DefaultBulletLifetime is the lifetime in seconds when a bullet node omits it
	DefaultBulletLifetime = 10.0

	// DefaultRingRadius is the spawn offset when a ring node omits radius
	DefaultRingRadius = 0.0

	// MaxRingCount caps the seeds one ring node expands a single seed into
	MaxRingCount = 4096

	// PatternFileSuffix identifies pattern sources inside a patterns directory
	PatternFileSuffix = ".pattern.json"

	// DefaultPatternsDir is scanned at startup for pattern sources
	DefaultPatternsDir = "./assets/patterns"
)
