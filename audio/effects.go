package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/danmaku/parameter"
)

// WaveType selects an oscillator shape
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
)

// sample maps a phase in [0,1) to an amplitude in [-1,1]
func (w WaveType) sample(phase float64) float64 {
	switch w {
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveSaw:
		return 2*phase - 1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// NewOscillator creates a fixed-frequency tone lasting duration
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewSweep(freq, freq, duration, wave, rate)
}

// NewSweep creates a tone whose frequency glides linearly from freqStart to freqEnd
// The same value is written to both channels
func NewSweep(freqStart, freqEnd float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	perSample := 1 / float64(rate)
	var phase float64
	pos := 0

	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := min(len(samples), total-pos)
		for i := range n {
			v := wave.sample(phase)
			samples[i] = [2]float64{v, v}

			freq := freqStart + (freqEnd-freqStart)*float64(pos)/float64(total)
			_, phase = math.Modf(phase + freq*perSample)
			pos++
		}
		return n, true
	})
}

// NewEnvelope shapes s with a linear attack ramp, flat sustain and linear release
// The result ends after duration even if s keeps streaming
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	releaseAt := att + max(total-att-rel, 0)

	gain := func(pos int) float64 {
		switch {
		case pos < att:
			return float64(pos) / float64(att)
		case pos >= releaseAt && rel > 0:
			return max(float64(total-pos)/float64(rel), 0)
		default:
			return 1
		}
	}

	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n, ok := s.Stream(samples[:min(len(samples), total-pos)])
		for i := range n {
			g := gain(pos)
			samples[i][0] *= g
			samples[i][1] *= g
			pos++
		}
		return n, ok || n > 0
	})
}

// newVolume wraps s with a linear gain
// math.Log2(0) is -Inf, so zero gain maps to a silent effect
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// NewFireSound is a short rising square chirp
func NewFireSound(rate beep.SampleRate, volume float64) beep.Streamer {
	osc := NewSweep(parameter.FireSoundFreqLow, parameter.FireSoundFreqHigh, parameter.FireSoundDuration, WaveSquare, rate)
	shaped := NewEnvelope(osc, parameter.FireSoundDuration, parameter.FireSoundAttack, parameter.FireSoundRelease, rate)
	return newVolume(shaped, volume*0.4)
}

// NewHitSound is a low saw buzz layered with its fifth
func NewHitSound(rate beep.SampleRate, volume float64) beep.Streamer {
	fund := NewOscillator(parameter.HitSoundFreq, parameter.HitSoundDuration, WaveSaw, rate)
	fifth := NewOscillator(parameter.HitSoundFreq*1.5, parameter.HitSoundDuration, WaveSine, rate)
	mixed := beep.Mix(newVolume(fund, 0.7), newVolume(fifth, 0.3))
	shaped := NewEnvelope(mixed, parameter.HitSoundDuration, parameter.HitSoundAttack, parameter.HitSoundRelease, rate)
	return newVolume(shaped, volume)
}
