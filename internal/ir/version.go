package ir

// Version constants for the tree format and the expansion engine.
const (
	// IRVersion is the tree format version. Bump it when expansions of the
	// same source can change shape, so cached expansions are invalidated.
	IRVersion = "1"

	// EngineVersion is the tri-ton engine version.
	EngineVersion = "0.1.0"
)
