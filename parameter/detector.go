package parameter

// Tuning Reference
const (
	// TuningDefault is the A4 anchor frequency
	TuningDefault = 440.0

	// TuningMin and TuningMax bound the accepted reference, values outside are rejected
	TuningMin = 432.0
	TuningMax = 446.0

	// TuningStep is the retune increment used by the front end
	TuningStep = 1.0
)

// Note Table Range
const (
	// NoteTableLowMIDI is C2
	NoteTableLowMIDI = 36

	// NoteTableOctaves is the default table span, C2 through B4
	NoteTableOctaves = 3

	NoteTableMinOctaves = 2
	NoteTableMaxOctaves = 6
)

// Autocorrelation Search
const (
	// DetectorMinFreq and DetectorMaxFreq define the lag search band
	DetectorMinFreq = 60.0
	DetectorMaxFreq = 500.0

	// DetectorSanityMin and DetectorSanityMax are the exclusive post-detection band
	DetectorSanityMin = 60.0
	DetectorSanityMax = 500.0

	// DetectorNoteMin and DetectorNoteMax bound the resolved note frequency (C2 at 432 Hz .. A4 at 446 Hz)
	DetectorNoteMin = 64.22
	DetectorNoteMax = 446.0

	// DetectorNoiseFloor is the RMS below which a frame is treated as silence
	DetectorNoiseFloor = 0.01

	// DetectorEarlyExitCorrelation stops the lag search at the first peak above it
	DetectorEarlyExitCorrelation = 0.9

	// DetectorMinCorrelation is the lowest best score accepted as a pitch
	DetectorMinCorrelation = 0.2

	// DetectorMinLag guards against degenerate short lags
	DetectorMinLag = 8

	// DetectorWindow is the number of trailing samples correlated per frame
	DetectorWindow = 2048

	// CentsEpsilon absorbs log2 rounding so exact cent offsets floor to themselves
	CentsEpsilon = 1e-9
)

// Pitch Statistics
const (
	// AnalysisHistorySize is the number of voiced readings retained
	AnalysisHistorySize = 100

	// AnalysisDefaultTolerance is the cents tolerance for accuracy scoring
	AnalysisDefaultTolerance = 50.0
)
