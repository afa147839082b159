package parameter

import "time"

// Capture Settings
const (
	// CaptureSampleRate matches the rate most desktop capture stacks deliver natively
	CaptureSampleRate = 44100

	// CaptureBufferSize is the detector frame length (analyser fftSize)
	CaptureBufferSize = 4096

	// CaptureRingSeconds is how much history the capture ring retains
	CaptureRingSeconds = 1

	// CaptureOpenTimeout bounds device acquisition
	CaptureOpenTimeout = 5 * time.Second
)

// Feedback Sound Settings
const (
	SoundSampleRate   = 44100
	SoundBufferLength = 100 * time.Millisecond

	// CollectChimeDuration is the length of the note-pitched chime on plasma pickup
	CollectChimeDuration = 120 * time.Millisecond

	// HitBuzzDuration and HitBuzzFrequency shape the obstacle collision buzz
	HitBuzzDuration  = 150 * time.Millisecond
	HitBuzzFrequency = 110.0

	// GameOverSweepDuration is the descending sweep played on game over
	GameOverSweepDuration = 900 * time.Millisecond
	GameOverSweepFrom     = 440.0
	GameOverSweepTo       = 55.0

	SoundDefaultVolume = 0.3
)

// MIDI Echo
const (
	MIDIDefaultChannel  = 0
	MIDIDefaultVelocity = 96
)
