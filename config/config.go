// Package config loads the game configuration from TOML with environment
// overrides. Zero-valued sections are never relied on: Default fills every
// field and Load decodes on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/pitch-fighter/mapping"
	"github.com/lixenwraith/pitch-fighter/note"
	"github.com/lixenwraith/pitch-fighter/parameter"
	"github.com/lixenwraith/pitch-fighter/pitch"
	"github.com/lixenwraith/pitch-fighter/systems"
)

// Capture backends accepted by audio.backend
const (
	BackendAuto    = "auto"
	BackendDevice  = "device"
	BackendProcess = "process"
	BackendFile    = "file"
	BackendTone    = "tone"
)

// Config is the full configuration document
type Config struct {
	Audio    AudioConfig    `toml:"audio"`
	Tuning   TuningConfig   `toml:"tuning"`
	Detector pitch.Config   `toml:"detector"`
	Game     GameConfig     `toml:"game"`
	Movement MovementConfig `toml:"movement"`
	Sound    SoundConfig    `toml:"sound"`
	MIDI     MIDIConfig     `toml:"midi"`
	Log      LogConfig      `toml:"log"`
}

// AudioConfig selects and shapes the capture source
type AudioConfig struct {
	Backend    string `toml:"backend"`
	SampleRate int    `toml:"sample_rate"`
	BufferSize int    `toml:"buffer_size"`

	// OpenTimeoutMS bounds Start while the device is acquired
	OpenTimeoutMS int `toml:"open_timeout_ms"`

	// WAVPath is read by the file backend
	WAVPath string `toml:"wav_path"`
	// ToneHz is generated by the tone backend
	ToneHz float64 `toml:"tone_hz"`
	// Command overrides process backend detection, split on whitespace
	Command string `toml:"command"`
}

// TuningConfig anchors the note table
type TuningConfig struct {
	ReferenceHz float64    `toml:"reference_hz"`
	Range       note.Range `toml:"range"`
}

// GameConfig covers the field, the pools and spawning
type GameConfig struct {
	TickRateHz int     `toml:"tick_rate_hz"`
	Width      float64 `toml:"width"`
	Height     float64 `toml:"height"`
	Margin     float64 `toml:"margin"`
	PlayerX    float64 `toml:"player_x"`

	MaxCollectibles  int `toml:"max_collectibles"`
	MaxHazards       int `toml:"max_hazards"`
	HazardDamage     int `toml:"hazard_damage"`
	CollectibleValue int `toml:"collectible_value"`

	CollectibleChance float64 `toml:"collectible_chance"`
	HazardChance      float64 `toml:"hazard_chance"`
	CollectibleSpeed  float64 `toml:"collectible_speed"`
	HazardSpeed       float64 `toml:"hazard_speed"`
	RowJitter         float64 `toml:"row_jitter"`
	Wobble            float64 `toml:"wobble"`
	Spin              float64 `toml:"spin"`

	// Seed drives spawning, 0 picks one from the clock at session start
	Seed uint64 `toml:"seed"`
}

// MovementConfig holds both steering profiles
type MovementConfig struct {
	Steer systems.Profile `toml:"steer"`
	Idle  systems.Profile `toml:"idle"`
}

type SoundConfig struct {
	Enabled bool    `toml:"enabled"`
	Volume  float64 `toml:"volume"`
}

type MIDIConfig struct {
	Enabled bool `toml:"enabled"`
	// Port is a substring of the output port name, empty selects the first port
	Port     string `toml:"port"`
	Channel  int    `toml:"channel"`
	Velocity int    `toml:"velocity"`
}

type LogConfig struct {
	Debug bool   `toml:"debug"`
	Dir   string `toml:"dir"`
	File  string `toml:"file"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Audio: AudioConfig{
			Backend:       BackendAuto,
			SampleRate:    parameter.CaptureSampleRate,
			BufferSize:    parameter.CaptureBufferSize,
			OpenTimeoutMS: int(parameter.CaptureOpenTimeout / time.Millisecond),
			ToneHz:        parameter.TuningDefault,
		},
		Tuning: TuningConfig{
			ReferenceHz: parameter.TuningDefault,
			Range:       note.DefaultRange(),
		},
		Detector: pitch.DefaultConfig(),
		Game: GameConfig{
			TickRateHz:        parameter.TickRate,
			Width:             parameter.FieldWidth,
			Height:            parameter.FieldHeight,
			Margin:            parameter.FieldMargin,
			PlayerX:           parameter.PlayerX,
			MaxCollectibles:   parameter.MaxCollectibles,
			MaxHazards:        parameter.MaxHazards,
			HazardDamage:      parameter.HazardDamage,
			CollectibleValue:  parameter.CollectibleValue,
			CollectibleChance: parameter.CollectibleChance,
			HazardChance:      parameter.HazardChance,
			CollectibleSpeed:  parameter.CollectibleSpeed,
			HazardSpeed:       parameter.HazardSpeed,
			RowJitter:         parameter.CollectibleRowJitter,
			Wobble:            parameter.CollectibleWobble,
			Spin:              parameter.HazardSpin,
		},
		Movement: MovementConfig{
			Steer: systems.SteerProfile(),
			Idle:  systems.IdleProfile(),
		},
		Sound: SoundConfig{
			Enabled: true,
			Volume:  parameter.SoundDefaultVolume,
		},
		MIDI: MIDIConfig{
			Channel:  parameter.MIDIDefaultChannel,
			Velocity: parameter.MIDIDefaultVelocity,
		},
		Log: LogConfig{
			Dir:  parameter.LogDir,
			File: parameter.LogFileName,
		},
	}
}

// Load decodes path over the defaults
// An empty path or a missing file yields the defaults
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.Decode(string(data)); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode applies a TOML document on top of c, rejecting unknown keys
func (c *Config) Decode(doc string) error {
	md, err := toml.Decode(doc, c)
	if err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Validate reports every invalid field at once
func (c Config) Validate() error {
	var errs []error

	switch c.Audio.Backend {
	case BackendAuto, BackendDevice, BackendProcess, BackendFile, BackendTone:
	default:
		errs = append(errs, fmt.Errorf("audio.backend: unknown backend %q", c.Audio.Backend))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate: must be positive, got %d", c.Audio.SampleRate))
	}
	if c.Audio.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("audio.buffer_size: must be positive, got %d", c.Audio.BufferSize))
	}
	if c.Audio.BufferSize > 0 && c.Audio.SampleRate > 0 && c.Detector.MinFreq > 0 {
		if need := c.Detector.MinFrame(c.Audio.SampleRate); c.Audio.BufferSize < need {
			errs = append(errs, fmt.Errorf("audio.buffer_size: %d is shorter than the %d samples the detector needs", c.Audio.BufferSize, need))
		}
	}
	if c.Audio.Backend == BackendFile && c.Audio.WAVPath == "" {
		errs = append(errs, errors.New("audio.wav_path: required by the file backend"))
	}
	if c.Audio.Backend == BackendTone && c.Audio.ToneHz <= 0 {
		errs = append(errs, fmt.Errorf("audio.tone_hz: must be positive, got %g", c.Audio.ToneHz))
	}

	if err := note.ValidateReference(c.Tuning.ReferenceHz); err != nil {
		errs = append(errs, fmt.Errorf("tuning.reference_hz: %w", err))
	}
	if err := c.Tuning.Range.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tuning.range: %w", err))
	}
	if err := c.Detector.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("detector: %w", err))
	}

	g := c.Game
	if g.TickRateHz <= 0 {
		errs = append(errs, fmt.Errorf("game.tick_rate_hz: must be positive, got %d", g.TickRateHz))
	}
	if g.Width <= 0 || g.Height <= 0 {
		errs = append(errs, fmt.Errorf("game: field %gx%g must be positive", g.Width, g.Height))
	}
	if g.Margin < 0 || 2*g.Margin >= g.Height {
		errs = append(errs, fmt.Errorf("game.margin: %g leaves no band in height %g", g.Margin, g.Height))
	}
	if g.MaxCollectibles < 0 || g.MaxHazards < 0 {
		errs = append(errs, errors.New("game: pool capacities must not be negative"))
	}
	if g.HazardDamage <= 0 {
		errs = append(errs, fmt.Errorf("game.hazard_damage: must be positive, got %d", g.HazardDamage))
	}
	if g.CollectibleValue < 0 {
		errs = append(errs, fmt.Errorf("game.collectible_value: must not be negative, got %d", g.CollectibleValue))
	}
	if !probability(g.CollectibleChance) || !probability(g.HazardChance) {
		errs = append(errs, errors.New("game: spawn chances must be in [0, 1]"))
	}

	if err := c.Movement.Steer.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("movement.steer: %w", err))
	}
	if err := c.Movement.Idle.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("movement.idle: %w", err))
	}

	if c.Sound.Volume < 0 || c.Sound.Volume > 1 {
		errs = append(errs, fmt.Errorf("sound.volume: must be in [0, 1], got %g", c.Sound.Volume))
	}
	if c.MIDI.Channel < 0 || c.MIDI.Channel > 15 {
		errs = append(errs, fmt.Errorf("midi.channel: must be in [0, 15], got %d", c.MIDI.Channel))
	}
	if c.MIDI.Velocity < 1 || c.MIDI.Velocity > 127 {
		errs = append(errs, fmt.Errorf("midi.velocity: must be in [1, 127], got %d", c.MIDI.Velocity))
	}

	return errors.Join(errs...)
}

// Mapper builds the position mapper for the configured field
func (c Config) Mapper() mapping.Mapper {
	return mapping.New(c.Game.Height, c.Game.Margin)
}

// SpawnRules derives spawner rules, collectible notes follow the detector note band
func (c Config) SpawnRules() systems.SpawnRules {
	return systems.SpawnRules{
		CollectibleChance: c.Game.CollectibleChance,
		HazardChance:      c.Game.HazardChance,
		CollectibleValue:  c.Game.CollectibleValue,
		HazardDamage:      c.Game.HazardDamage,
		CollectibleSpeed:  c.Game.CollectibleSpeed,
		HazardSpeed:       c.Game.HazardSpeed,
		RowJitter:         c.Game.RowJitter,
		Wobble:            c.Game.Wobble,
		Spin:              c.Game.Spin,
		NoteMin:           c.Detector.NoteMin,
		NoteMax:           c.Detector.NoteMax,
	}
}

// OpenTimeout returns audio.open_timeout_ms as a duration
func (c Config) OpenTimeout() time.Duration {
	return time.Duration(c.Audio.OpenTimeoutMS) * time.Millisecond
}

func probability(p float64) bool {
	return p >= 0 && p <= 1
}
