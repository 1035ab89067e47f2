package parameter

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 44100

	// DefaultMasterVolume is the linear gain applied to all cues
	DefaultMasterVolume = 0.5

	// AudioBufferDuration determines latency of the speaker buffer
	AudioBufferDuration = 100 * time.Millisecond

	// MinSoundGap between consecutive cues of the same kind
	MinSoundGap = 50 * time.Millisecond
)

// Fire Sound
const (
	FireSoundDuration = 90 * time.Millisecond
	FireSoundAttack   = 5 * time.Millisecond
	FireSoundRelease  = 60 * time.Millisecond
	FireSoundFreqLow  = 660.0
	FireSoundFreqHigh = 990.0
)

// Hit Sound
const (
	HitSoundDuration = 150 * time.Millisecond
	HitSoundAttack   = 5 * time.Millisecond
	HitSoundRelease  = 80 * time.Millisecond
	HitSoundFreq     = 110.0
)
