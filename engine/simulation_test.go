package engine

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/lixenwraith/danmaku/bullet"
	"github.com/lixenwraith/danmaku/event"
	"github.com/lixenwraith/danmaku/parameter"
	"github.com/lixenwraith/danmaku/pattern"
	"github.com/lixenwraith/danmaku/status"
	"github.com/lixenwraith/danmaku/vmath"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLibrary(t *testing.T) *pattern.Library {
	t.Helper()
	lib := pattern.NewLibrary()
	sources := map[string]string{
		"ring":  `{"type":"ring","count":8,"radius":20,"child":{"type":"bullet","speed":10,"lifetime":1}}`,
		"still": `{"type":"ring","count":4,"child":{"type":"bullet"}}`,
	}
	for name, src := range sources {
		p, err := pattern.Parse([]byte(src))
		if err != nil {
			t.Fatalf("Parse %s: %v", name, err)
		}
		p.Name = name
		lib.Add(name, p)
	}
	return lib
}

func newTestSimulation(t *testing.T, opts ...Option) *Simulation {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger()), WithPoolCapacity(64)}, opts...)
	return NewSimulation(testLibrary(t), opts...)
}

// TestSimulationInitialFrame verifies Frame is never nil
func TestSimulationInitialFrame(t *testing.T) {
	sim := NewSimulation(nil)
	if f := sim.Frame(); f == nil || f.Bullets() != 0 {
		t.Errorf("Expected empty initial frame, got %+v", f)
	}
}

// TestSimulationFireAndStep verifies a fired pattern shows up in the next frame
func TestSimulationFireAndStep(t *testing.T) {
	sim := newTestSimulation(t)
	sim.SetPlayer(vmath.V2(1000, 1000))
	sim.Fire("ring")

	f := sim.Step(0.5)
	if f.Tick != 1 {
		t.Errorf("Expected tick 1, got %d", f.Tick)
	}
	if f.Bullets() != 8 {
		t.Fatalf("Expected 8 bullets, got %d", f.Bullets())
	}
	if len(f.Pools) != 1 || f.Pools[0].Sprite != DefaultPool {
		t.Errorf("Expected one default pool, got %d", len(f.Pools))
	}
	for i, pos := range f.Pools[0].Positions {
		if d := vmath.V2Mag(pos); d < 24.99 || d > 25.01 {
			t.Errorf("Bullet %d: expected distance 25 after half a second, got %v", i, d)
		}
	}
	if sim.Frame() != f {
		t.Error("Expected Frame to return the published frame")
	}

	// lifetime 1 expires on the third half-second step
	sim.Step(0.5)
	if f := sim.Step(0.5); f.Bullets() != 0 {
		t.Errorf("Expected expiry, got %d bullets", f.Bullets())
	}
}

// TestSimulationUnknownPattern verifies unknown names are a counted no-op
func TestSimulationUnknownPattern(t *testing.T) {
	reg := status.NewRegistry()
	sim := newTestSimulation(t, WithStatus(reg))
	sim.Fire("nope")
	sim.Step(0.1)

	if sim.Pools().Len() != 0 {
		t.Errorf("Expected no pools created, got %d", sim.Pools().Len())
	}
	if got := reg.Ints.Get(status.FireUnknown).Load(); got != 1 {
		t.Errorf("Expected fire.unknown 1, got %d", got)
	}
	if got := reg.Ints.Get(status.FireRequests).Load(); got != 1 {
		t.Errorf("Expected fire.requests 1, got %d", got)
	}
}

// TestSimulationCollisions verifies hits are removed and reported
func TestSimulationCollisions(t *testing.T) {
	reg := status.NewRegistry()
	sim := newTestSimulation(t, WithStatus(reg))
	sim.Fire("still")

	f := sim.Step(0.1)
	if f.Hits != 4 || f.Bullets() != 0 {
		t.Errorf("Expected 4 hits and empty frame, got hits=%d bullets=%d", f.Hits, f.Bullets())
	}
	if got := reg.Ints.Get(status.PlayerHits).Load(); got != 4 {
		t.Errorf("Expected player.hits 4, got %d", got)
	}
	if got := reg.Ints.Get(status.BulletCollided).Load(); got != 4 {
		t.Errorf("Expected bullet.collided 4, got %d", got)
	}
}

// TestSimulationAimsAtPlayer verifies aimed bullets face the player position at fire time
func TestSimulationAimsAtPlayer(t *testing.T) {
	lib := pattern.NewLibrary()
	p, err := pattern.Parse([]byte(`{"type":"bullet","speed":10,"aimed":true}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	lib.Add("aimed", p)

	sim := NewSimulation(lib, WithLogger(quietLogger()), WithPoolCapacity(8))
	sim.SetPlayer(vmath.V2(0, 100))
	sim.Trigger(event.FireRequest{Pattern: "aimed", Origin: vmath.V2(0, 0), Rotation: 1})

	f := sim.Step(0)
	if f.Bullets() != 1 {
		t.Fatalf("Expected 1 bullet, got %d", f.Bullets())
	}
	if r := f.Pools[0].Rotations[0]; math.Abs(float64(r)-math.Pi/2) > 1e-5 {
		t.Errorf("Expected heading π/2 toward player, got %v", r)
	}
}

// TestSimulationFrameImmutable verifies published frames are not touched by later steps
func TestSimulationFrameImmutable(t *testing.T) {
	sim := newTestSimulation(t)
	sim.SetPlayer(vmath.V2(-500, -500))
	sim.Fire("ring")
	first := sim.Step(0.1)
	before := append([]vmath.Vec2(nil), first.Pools[0].Positions...)

	sim.Step(0.1)
	sim.Step(0.1)

	for i, pos := range first.Pools[0].Positions {
		if pos != before[i] {
			t.Fatalf("Frame mutated at %d: %v -> %v", i, before[i], pos)
		}
	}
}

// TestSimulationTriggerPools verifies requests route to named pools in key order
func TestSimulationTriggerPools(t *testing.T) {
	sim := newTestSimulation(t, WithPoolOptions(bullet.WithPlayerRadius(1)))
	sim.SetPlayer(vmath.V2(-500, -500))
	sim.Trigger(event.FireRequest{Pattern: "still", Pool: "zeta", Origin: vmath.V2(3, 4)})
	sim.Trigger(event.FireRequest{Pattern: "ring", Pool: "alpha"})

	f := sim.Step(0.1)
	if len(f.Pools) != 2 {
		t.Fatalf("Expected 2 pools, got %d", len(f.Pools))
	}
	if f.Pools[0].Sprite != "alpha" || f.Pools[1].Sprite != "zeta" {
		t.Errorf("Expected alpha, zeta order, got %s, %s", f.Pools[0].Sprite, f.Pools[1].Sprite)
	}
	if f.Pools[1].Positions[0] != vmath.V2(3, 4) {
		t.Errorf("Expected still bullets at origin (3,4), got %v", f.Pools[1].Positions[0])
	}
	if r := sim.Pool("zeta").PlayerRadius(); r != 1 {
		t.Errorf("Expected pool option applied, radius %v", r)
	}
}

// TestSimulationReset verifies pools empty on the next step
func TestSimulationReset(t *testing.T) {
	sim := newTestSimulation(t)
	sim.SetPlayer(vmath.V2(-500, -500))
	sim.Fire("ring")
	sim.Step(0.1)

	sim.Reset()
	if f := sim.Step(0.1); f.Bullets() != 0 {
		t.Errorf("Expected empty frame after reset, got %d", f.Bullets())
	}
	if sim.Pool("").Elapsed() > 0.11 {
		t.Errorf("Expected pool time restarted, got %v", sim.Pool("").Elapsed())
	}
}

// TestSimulationPlayerRoundTrip verifies the packed player position
func TestSimulationPlayerRoundTrip(t *testing.T) {
	sim := NewSimulation(nil)
	for _, p := range []vmath.Vec2{{X: 0, Y: 0}, {X: -3.5, Y: 12.25}, {X: 1e6, Y: -1e-6}} {
		sim.SetPlayer(p)
		if got := sim.Player(); got != p {
			t.Errorf("Expected %v, got %v", p, got)
		}
	}
}

// TestSimulationMetrics verifies tick and step timing metrics
func TestSimulationMetrics(t *testing.T) {
	reg := status.NewRegistry()
	sim := newTestSimulation(t, WithStatus(reg))
	for range 3 {
		sim.Step(0.01)
	}
	if got := reg.Ints.Get(status.EngineTicks).Load(); got != 3 {
		t.Errorf("Expected 3 ticks, got %d", got)
	}
	if sim.Ticks() != 3 {
		t.Errorf("Expected Ticks 3, got %d", sim.Ticks())
	}
	if !reg.Floats.Has(status.EngineStepMs) {
		t.Error("Expected step timing metric")
	}
}

// TestSimulationTriggerFullQueue verifies requests beyond queue capacity are rejected and counted
func TestSimulationTriggerFullQueue(t *testing.T) {
	reg := status.NewRegistry()
	sim := newTestSimulation(t, WithStatus(reg))
	for range parameter.FireQueueSize {
		if !sim.Fire("nope") {
			t.Fatal("Expected request accepted below capacity")
		}
	}
	if sim.Fire("nope") {
		t.Error("Expected request rejected by full queue")
	}
	if got := reg.Ints.Get(status.FireDropped).Load(); got != 1 {
		t.Errorf("Expected fire.dropped 1, got %d", got)
	}

	sim.Step(0)
	if !sim.Fire("nope") {
		t.Error("Expected queue to accept again after Step drained it")
	}
}

func BenchmarkStep(b *testing.B) {
	lib := pattern.NewLibrary()
	p, err := pattern.Parse([]byte(`{"type":"ring","count":256,"child":{"type":"arc","count":8,"angle":40,
		"child":{"type":"bullet","speed":"50","angular_velocity":"0.3","lifetime":30}}}`))
	if err != nil {
		b.Fatal(err)
	}
	lib.Add("dense", p)

	sim := NewSimulation(lib, WithLogger(quietLogger()), WithPoolCapacity(1<<15))
	sim.SetPlayer(vmath.V2(1e6, 1e6))
	for range 16 {
		sim.Fire("dense")
	}
	sim.Step(0)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sim.Step(1.0 / 60)
	}
}
