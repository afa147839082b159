package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/pitch-fighter/capture"
	"github.com/lixenwraith/pitch-fighter/config"
	"github.com/lixenwraith/pitch-fighter/engine"
	"github.com/lixenwraith/pitch-fighter/event"
	"github.com/lixenwraith/pitch-fighter/midiecho"
	"github.com/lixenwraith/pitch-fighter/parameter"
	"github.com/lixenwraith/pitch-fighter/sound"
)

var (
	configFlag  = flag.String("config", "", "Path to a TOML config file")
	debugFlag   = flag.Bool("debug", false, "Write debug logs to the log directory")
	backendFlag = flag.String("backend", "", "Capture backend: auto, device, process, file, tone")
	wavFlag     = flag.String("wav", "", "Replay a WAV file instead of the microphone")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 2
	}
	cfg.ApplyEnv()
	if *debugFlag {
		cfg.Log.Debug = true
	}
	if *backendFlag != "" {
		cfg.Audio.Backend = *backendFlag
	}
	if *wavFlag != "" {
		cfg.Audio.Backend = config.BackendFile
		cfg.Audio.WAVPath = *wavFlag
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config:\n%v\n", err)
		return 2
	}

	if logFile := setupLogging(cfg.Log); logFile != nil {
		defer logFile.Close()
	}
	logger := slog.Default()

	src, err := capture.Open(cfg, logger)
	if err != nil {
		// Runs idle-only, Start reports the failure on screen
		logger.Warn("capture source unavailable", "error", err)
		src = nil
	}

	eng, err := engine.New(cfg, src, engine.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create engine: %v\n", err)
		return 1
	}
	defer func() {
		logger.Info("final metrics", "metrics", eng.Registry().Snapshot())
	}()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		return 1
	}
	defer screen.Fini()

	crash := func(r any) {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "\r\n\x1b[31mPITCH FIGHTER CRASHED: %v\x1b[0m\r\n", r)
		fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
		os.Exit(1)
	}
	engine.SetCrashHandler(crash)
	defer func() {
		if r := recover(); r != nil {
			crash(r)
		}
	}()

	router := event.NewRouter(eng.Queue())

	sounds := sound.NewManager(cfg.Sound, logger)
	if err := sounds.Init(); err != nil {
		logger.Warn("continuing without sound", "error", err)
	}
	defer sounds.Close()
	router.Register(sounds)

	if cfg.MIDI.Enabled {
		if send, closeMIDI, err := openMIDI(cfg.MIDI, logger); err != nil {
			logger.Warn("continuing without midi", "error", err)
		} else {
			echo := midiecho.New(cfg.MIDI, send, logger)
			defer closeMIDI()
			defer echo.Close()
			router.Register(echo)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := engine.NewScheduler(func() {
		eng.Tick()
		router.DispatchAll()
	}, cfg.Game.TickRateHz, nil)

	app := NewApp(ctx, screen, eng, sched, cfg.Game.Height)
	router.Register(app)

	sched.Start()
	defer sched.Stop()

	// Acquire the microphone right away, s retries later
	engine.Go(func() {
		if err := eng.Start(ctx); err != nil && !errors.Is(err, engine.ErrExited) {
			logger.Warn("start failed", "error", err)
		}
	})

	events := make(chan tcell.Event, 64)
	engine.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	})

	frames := time.NewTicker(parameter.FrameUpdateInterval)
	defer frames.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !app.HandleKey(ev) {
					return 0
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-frames.C:
			if eng.Exited() {
				return 0
			}
			app.Draw()
		}
	}
}
