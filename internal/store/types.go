package store

import "encoding/json"

// Expansion is one cached expansion of a source text.
type Expansion struct {
	Key           string
	File          string
	Source        string
	CatalogDigest string
	// Output is the expanded program text.
	Output string
	// Report is the per-invocation expansion report as JSON.
	Report json.RawMessage
	// Warnings are the recursion warnings of the file as JSON.
	Warnings      json.RawMessage
	Seq           int64
	Hits          int64
	EngineVersion string
	IRVersion     string
}

// Run is the recorded outcome of executing an expansion.
type Run struct {
	ID           string
	ExpansionKey string
	Entry        string
	// Args are the argument value literals, in order.
	Args     []string
	MaxSteps int64
	// Value is the returned value's literal form; empty when the run failed.
	Value string
	// ErrorCode is the runtime error code; empty when the run succeeded.
	ErrorCode string
	Steps     int64
	Output    string
	Seq       int64
}
