package ir

// Version constants for the snapshot format and engine.
const (
	// SnapshotVersion is the snapshot schema version written by the store.
	SnapshotVersion = 1

	// EngineVersion is the haze engine version.
	EngineVersion = "0.1.0"
)
