package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lixenwraith/danmaku/parameter"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "danmaku.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadDefaults verifies an empty path yields the parameter defaults
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PoolCapacity != parameter.DefaultPoolCapacity {
		t.Errorf("Expected capacity %d, got %d", parameter.DefaultPoolCapacity, cfg.PoolCapacity)
	}
	if cfg.PlayerRadius != 5 {
		t.Errorf("Expected radius 5, got %v", cfg.PlayerRadius)
	}
	if cfg.TickRate != parameter.DefaultTickRate || cfg.PatternsDir != parameter.DefaultPatternsDir {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
}

// TestLoadFileOverridesDefaults verifies TOML values replace defaults and omitted keys keep them
func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
pool_capacity = 1024
player_radius = 2.5
patterns_dir = "/srv/patterns"
audio_enabled = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PoolCapacity != 1024 || cfg.PlayerRadius != 2.5 || cfg.PatternsDir != "/srv/patterns" || cfg.AudioEnabled {
		t.Errorf("File values not applied: %+v", cfg)
	}
	if cfg.TickRate != parameter.DefaultTickRate {
		t.Errorf("Expected default tick rate kept, got %d", cfg.TickRate)
	}
}

// TestLoadEnvOverridesFile verifies precedence default < file < env
func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "pool_capacity = 1024\ntick_rate = 30\n")
	t.Setenv("DANMAKU_POOL_CAPACITY", "2048")
	t.Setenv("DANMAKU_MASTER_VOLUME", "150")
	t.Setenv("DANMAKU_STREAM_ADDR", ":8080")
	t.Setenv("DANMAKU_WORLD_SCALE", "2.5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PoolCapacity != 2048 {
		t.Errorf("Expected env capacity 2048, got %d", cfg.PoolCapacity)
	}
	if cfg.TickRate != 30 {
		t.Errorf("Expected file tick rate 30, got %d", cfg.TickRate)
	}
	if cfg.MasterVolume != 1 {
		t.Errorf("Expected volume clamped to 1, got %v", cfg.MasterVolume)
	}
	if cfg.StreamAddr != ":8080" || cfg.WorldScale != 2.5 {
		t.Errorf("Expected env stream addr and scale, got %q %v", cfg.StreamAddr, cfg.WorldScale)
	}
}

// TestLoadStreamOrigins verifies the origin list from file and env
func TestLoadStreamOrigins(t *testing.T) {
	path := writeConfig(t, "stream_origins = [\"localhost:*\"]\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.StreamOrigins) != 1 || cfg.StreamOrigins[0] != "localhost:*" {
		t.Errorf("Expected file origins [localhost:*], got %v", cfg.StreamOrigins)
	}

	t.Setenv("DANMAKU_STREAM_ORIGINS", " a.test, ,*.b.test ")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.StreamOrigins) != 2 || cfg.StreamOrigins[0] != "a.test" || cfg.StreamOrigins[1] != "*.b.test" {
		t.Errorf("Expected env origins [a.test *.b.test], got %v", cfg.StreamOrigins)
	}
}

// TestLoadIgnoresMalformedEnv verifies unparsable overrides keep the previous value
func TestLoadIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("DANMAKU_TICK_RATE", "fast")
	t.Setenv("DANMAKU_AUDIO_ENABLED", "maybe")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TickRate != parameter.DefaultTickRate || !cfg.AudioEnabled {
		t.Errorf("Expected defaults kept, got %+v", cfg)
	}
}

// TestLoadRejects verifies file and validation errors wrap ErrInvalid
func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"syntax":        "pool_capacity = = 3",
		"unknown key":   "pool_size = 3",
		"zero capacity": "pool_capacity = 0",
		"bad tick":      "tick_rate = -1",
		"bad volume":    "master_volume = 1.5",
		"bad scale":     "world_scale = 0.0",
		"wrong type":    `pool_capacity = "many"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid for missing file, got %v", err)
	}
}

// TestValidateReportsAll verifies every violation is reported together
func TestValidateReportsAll(t *testing.T) {
	cfg := Default()
	cfg.PoolCapacity = 0
	cfg.TickRate = 0
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Expected ErrInvalid, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"pool_capacity", "tick_rate"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected %q in %q", want, msg)
		}
	}
}
