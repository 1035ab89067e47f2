// Package config loads runtime settings: defaults, then an optional TOML file, then DANMAKU_* environment variables
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/danmaku/parameter"
)

// ErrInvalid wraps every load and validation failure
var ErrInvalid = errors.New("invalid config")

// EnvPrefix namespaces environment overrides
const EnvPrefix = "DANMAKU_"

// Config holds all runtime-tunable settings
type Config struct {
	PoolCapacity      int     `toml:"pool_capacity"`
	PlayerRadius      float32 `toml:"player_radius"`
	TickRate          int     `toml:"tick_rate"`
	PatternsDir       string  `toml:"patterns_dir"`
	WorldScale        float32 `toml:"world_scale"`
	ParallelThreshold int     `toml:"parallel_threshold"`
	AudioEnabled      bool    `toml:"audio_enabled"`
	MasterVolume      float64 `toml:"master_volume"`
	StreamAddr        string  `toml:"stream_addr"`
	// StreamOrigins lists host patterns of pages allowed to open the stream from another origin
	StreamOrigins []string `toml:"stream_origins"`
}

// Default returns the parameter defaults
func Default() *Config {
	return &Config{
		PoolCapacity:      parameter.DefaultPoolCapacity,
		PlayerRadius:      parameter.PlayerRadius,
		TickRate:          parameter.DefaultTickRate,
		PatternsDir:       parameter.DefaultPatternsDir,
		WorldScale:        parameter.DefaultWorldScale,
		ParallelThreshold: parameter.ParallelThreshold,
		AudioEnabled:      true,
		MasterVolume:      parameter.DefaultMasterVolume,
		StreamAddr:        parameter.DefaultStreamAddr,
	}
}

// Load layers defaults, the TOML file at path (skipped when empty) and the environment,
// then validates the result
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalid, path, strings.Join(keys, ", "))
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from DANMAKU_* variables
// Unparsable values are logged and ignored
func (c *Config) applyEnv() {
	envInt("POOL_CAPACITY", &c.PoolCapacity)
	envFloat32("PLAYER_RADIUS", &c.PlayerRadius)
	envInt("TICK_RATE", &c.TickRate)
	envString("PATTERNS_DIR", &c.PatternsDir)
	envFloat32("WORLD_SCALE", &c.WorldScale)
	envInt("PARALLEL_THRESHOLD", &c.ParallelThreshold)
	envString("STREAM_ADDR", &c.StreamAddr)
	envList("STREAM_ORIGINS", &c.StreamOrigins)

	if v := lookup("AUDIO_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AudioEnabled = b
		} else {
			rejected("AUDIO_ENABLED", v, err)
		}
	}

	// Master volume 0-100 converted to 0.0-1.0
	if v := lookup("MASTER_VOLUME"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MasterVolume = min(max(float64(n)/100.0, 0), 1)
		} else {
			rejected("MASTER_VOLUME", v, err)
		}
	}
}

// Validate rejects settings the simulation cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.PoolCapacity <= 0 {
		errs = append(errs, fmt.Errorf("pool_capacity must be positive, got %d", c.PoolCapacity))
	}
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate must be positive, got %d", c.TickRate))
	}
	if c.PlayerRadius < 0 {
		errs = append(errs, fmt.Errorf("player_radius must not be negative, got %v", c.PlayerRadius))
	}
	if c.WorldScale <= 0 {
		errs = append(errs, fmt.Errorf("world_scale must be positive, got %v", c.WorldScale))
	}
	if c.MasterVolume < 0 || c.MasterVolume > 1 {
		errs = append(errs, fmt.Errorf("master_volume must be within [0,1], got %v", c.MasterVolume))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func lookup(name string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + name))
}

func rejected(name, value string, err error) {
	slog.Warn("ignoring environment override", "var", EnvPrefix+name, "value", value, "error", err)
}

func envString(name string, dst *string) {
	if v := lookup(name); v != "" {
		*dst = v
	}
}

// envList splits a comma-separated value, dropping empty entries
func envList(name string, dst *[]string) {
	v := lookup(name)
	if v == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func envInt(name string, dst *int) {
	v := lookup(name)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		rejected(name, v, err)
		return
	}
	*dst = n
}

func envFloat32(name string, dst *float32) {
	v := lookup(name)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		rejected(name, v, err)
		return
	}
	*dst = float32(f)
}
