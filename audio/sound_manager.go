// Package audio synthesizes fire and hit cues with beep
// Audio is optional: every call is a no-op until Initialize succeeds
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/danmaku/engine"
	"github.com/lixenwraith/danmaku/parameter"
)

// Cue identifies a sound the simulation can trigger
type Cue int

const (
	CueFire Cue = iota
	CueHit
	cueCount
)

// SoundManager mixes cues into the speaker
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	rate        beep.SampleRate
	volume      float64
	initialized bool

	lastPlayed [cueCount]time.Time
	now        func() time.Time

	// speaker.Lock/Unlock once the speaker owns the mixer
	lock   func()
	unlock func()
}

// NewSoundManager creates a manager at masterVolume in [0,1]
func NewSoundManager(masterVolume float64) *SoundManager {
	return &SoundManager{
		mixer:  &beep.Mixer{},
		rate:   beep.SampleRate(parameter.AudioSampleRate),
		volume: min(max(masterVolume, 0), 1),
		now:    time.Now,
		lock:   func() {},
		unlock: func() {},
	}
}

// Initialize opens the speaker and starts the mixer
// Failure leaves the manager silent and is safe to ignore
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sm.rate, sm.rate.N(parameter.AudioBufferDuration)); err != nil {
		return err
	}
	speaker.Play(sm.mixer)
	sm.lock, sm.unlock = speaker.Lock, speaker.Unlock
	sm.initialized = true
	return nil
}

// Cleanup silences the mixer and closes the speaker
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	sm.lock()
	sm.mixer.Clear()
	sm.unlock()
	speaker.Close()
	sm.lock, sm.unlock = func() {}, func() {}
	sm.initialized = false
}

// Play queues cue unless the same cue played within parameter.MinSoundGap
// Returns whether the cue was queued
func (sm *SoundManager) Play(cue Cue) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || cue < 0 || cue >= cueCount {
		return false
	}

	now := sm.now()
	if now.Sub(sm.lastPlayed[cue]) < parameter.MinSoundGap {
		return false
	}
	sm.lastPlayed[cue] = now

	var s beep.Streamer
	switch cue {
	case CueFire:
		s = NewFireSound(sm.rate, sm.volume)
	case CueHit:
		s = NewHitSound(sm.rate, sm.volume)
	}

	sm.lock()
	sm.mixer.Add(s)
	sm.unlock()
	return true
}

// ObserveFrame plays the hit cue when the frame recorded collisions
func (sm *SoundManager) ObserveFrame(f *engine.Frame) {
	if f != nil && f.Hits > 0 {
		sm.Play(CueHit)
	}
}

// Active returns the number of cues still sounding
func (sm *SoundManager) Active() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.lock()
	defer sm.unlock()
	return sm.mixer.Len()
}

func (sm *SoundManager) IsInitialized() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.initialized
}
