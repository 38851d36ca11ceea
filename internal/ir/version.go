package ir

// Version constants for record schema and engine.
const (
	// RecordVersion is the version of the stored run/pulse record layout.
	RecordVersion = "1"

	// EngineVersion is the pulsesim engine version.
	EngineVersion = "0.1.0"
)
