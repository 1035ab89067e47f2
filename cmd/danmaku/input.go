package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/danmaku/audio"
	"github.com/lixenwraith/danmaku/engine"
	"github.com/lixenwraith/danmaku/event"
	"github.com/lixenwraith/danmaku/parameter"
	"github.com/lixenwraith/danmaku/status"
	"github.com/lixenwraith/danmaku/vmath"
)

// driver translates key presses into simulation calls
// All methods run on the main loop goroutine
type driver struct {
	sim    *engine.Simulation
	clock  *engine.PausableClock
	sounds *audio.SoundManager // nil when audio is disabled

	names    []string
	selected int
	player   vmath.Vec2
	extent   vmath.Vec2

	statSelected *status.AtomicString
}

func newDriver(sim *engine.Simulation, clock *engine.PausableClock, sounds *audio.SoundManager) *driver {
	d := &driver{
		sim:          sim,
		clock:        clock,
		sounds:       sounds,
		names:        sim.Library().Names(),
		statSelected: sim.Status().Strings.Get(status.PatternSelected),
	}
	d.selectPattern(0)
	return d
}

// setExtent records the visible half-size and starts the player in the lower half
func (d *driver) setExtent(extent vmath.Vec2) {
	first := d.extent == (vmath.Vec2{})
	d.extent = extent
	if first {
		d.movePlayer(0, -extent.Y*parameter.EmitterHeight)
		return
	}
	d.movePlayer(0, 0)
}

// emitter is the fixed firing origin in the upper half of the view
func (d *driver) emitter() vmath.Vec2 {
	return vmath.V2(0, d.extent.Y*parameter.EmitterHeight)
}

func (d *driver) current() string {
	if len(d.names) == 0 {
		return ""
	}
	return d.names[d.selected]
}

func (d *driver) selectPattern(i int) {
	if len(d.names) == 0 {
		return
	}
	d.selected = ((i % len(d.names)) + len(d.names)) % len(d.names)
	d.statSelected.Store(d.current())
}

func (d *driver) movePlayer(dx, dy float32) {
	p := vmath.V2(d.player.X+dx, d.player.Y+dy)
	if d.extent != (vmath.Vec2{}) {
		p.X = min(max(p.X, -d.extent.X), d.extent.X)
		p.Y = min(max(p.Y, -d.extent.Y), d.extent.Y)
	}
	d.player = p
	d.sim.SetPlayer(p)
}

// fire aims the current pattern from the emitter at the player
func (d *driver) fire() {
	name := d.current()
	if name == "" {
		return
	}
	origin := d.emitter()
	d.sim.Trigger(event.FireRequest{
		Pattern:  name,
		Origin:   origin,
		Rotation: vmath.V2Angle(vmath.V2Sub(d.player, origin)),
	})
	if d.sounds != nil {
		d.sounds.Play(audio.CueFire)
	}
}

// handleKey applies one key press, returning false to quit
func (d *driver) handleKey(ev *tcell.EventKey) bool {
	const step = float32(parameter.PlayerSpeed * parameter.PlayerStepSeconds)

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		d.movePlayer(0, step)
	case tcell.KeyDown:
		d.movePlayer(0, -step)
	case tcell.KeyLeft:
		d.movePlayer(-step, 0)
	case tcell.KeyRight:
		d.movePlayer(step, 0)
	case tcell.KeyTab:
		d.selectPattern(d.selected + 1)
	case tcell.KeyBacktab:
		d.selectPattern(d.selected - 1)
	case tcell.KeyRune:
		switch r := ev.Rune(); r {
		case 'q':
			return false
		case ' ', 'e':
			d.fire()
		case 'p':
			d.clock.Toggle()
		case 'r':
			d.sim.Reset()
		default:
			if r >= '1' && r <= '9' && int(r-'1') < len(d.names) {
				d.selectPattern(int(r - '1'))
			}
		}
	}
	return true
}

// statusLine summarizes the selection and live metrics for the bottom row
func (d *driver) statusLine() string {
	metrics := d.sim.Status().Summary(status.BulletAlive, status.PlayerHits, status.EngineStepMs)
	line := "no patterns  " + metrics
	if len(d.names) > 0 {
		line = fmt.Sprintf("[%d/%d] %s  %s", d.selected+1, len(d.names), d.current(), metrics)
	}
	if d.clock.IsPaused() {
		line += "  PAUSED"
	}
	return line
}
