package main

import (
	"fmt"
	"log/slog"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/lixenwraith/pitch-fighter/config"
	"github.com/lixenwraith/pitch-fighter/midiecho"
)

// openMIDI opens the configured output port and returns its send func and a closer
func openMIDI(cfg config.MIDIConfig, logger *slog.Logger) (midiecho.SendFunc, func(), error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, nil, fmt.Errorf("rtmididrv: %w", err)
	}

	outs, err := drv.Outs()
	if err != nil {
		drv.Close()
		return nil, nil, fmt.Errorf("list outputs: %w", err)
	}
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	logger.Debug("midi outputs found", "count", len(names), "devices", names)

	idx, ok := midiecho.SelectPort(names, cfg.Port)
	if !ok {
		drv.Close()
		return nil, nil, fmt.Errorf("no midi output matching %q", cfg.Port)
	}

	var out drivers.Out = outs[idx]
	if err := out.Open(); err != nil {
		drv.Close()
		return nil, nil, fmt.Errorf("open %q: %w", names[idx], err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		_ = out.Close()
		drv.Close()
		return nil, nil, fmt.Errorf("send to %q: %w", names[idx], err)
	}

	logger.Info("midi connected", "device", names[idx])
	closer := func() {
		_ = out.Close()
		drv.Close()
	}
	return send, closer, nil
}
