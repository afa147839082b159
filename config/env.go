package config

import (
	"os"
	"strconv"
)

// Environment overrides
const (
	EnvBackend      = "PITCH_FIGHTER_BACKEND"
	EnvWAV          = "PITCH_FIGHTER_WAV"
	EnvTuning       = "PITCH_FIGHTER_TUNING"
	EnvTickRate     = "PITCH_FIGHTER_TICK_RATE"
	EnvSeed         = "PITCH_FIGHTER_SEED"
	EnvSoundEnabled = "PITCH_FIGHTER_SOUND_ENABLED"
	EnvVolume       = "PITCH_FIGHTER_VOLUME"
	EnvMIDIEnabled  = "PITCH_FIGHTER_MIDI_ENABLED"
	EnvMIDIPort     = "PITCH_FIGHTER_MIDI_PORT"
	EnvDebug        = "PITCH_FIGHTER_DEBUG"
)

// ApplyEnv overrides fields from PITCH_FIGHTER_* variables
// Unparseable values are ignored and leave the field unchanged
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBackend); v != "" {
		c.Audio.Backend = v
	}
	if v := os.Getenv(EnvWAV); v != "" {
		c.Audio.WAVPath = v
		c.Audio.Backend = BackendFile
	}
	if v := os.Getenv(EnvTuning); v != "" {
		if hz, err := strconv.ParseFloat(v, 64); err == nil {
			c.Tuning.ReferenceHz = hz
		}
	}
	if v := os.Getenv(EnvTickRate); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Game.TickRateHz = n
		}
	}
	if v := os.Getenv(EnvSeed); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Game.Seed = n
		}
	}
	if v := os.Getenv(EnvSoundEnabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Sound.Enabled = b
		}
	}

	// Volume is 0-100 converted to 0.0-1.0
	if v := os.Getenv(EnvVolume); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			vol := float64(n) / 100
			if vol < 0 {
				vol = 0
			}
			if vol > 1 {
				vol = 1
			}
			c.Sound.Volume = vol
		}
	}

	if v := os.Getenv(EnvMIDIEnabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.MIDI.Enabled = b
		}
	}
	if v := os.Getenv(EnvMIDIPort); v != "" {
		c.MIDI.Port = v
	}
	if v := os.Getenv(EnvDebug); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Log.Debug = b
		}
	}
}
