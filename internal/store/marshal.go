package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalArgs converts run arguments to JSON TEXT for storage.
// Arguments are value literals such as Some("a"), so HTML escaping is
// disabled to keep them readable in the database.
func marshalArgs(args []string) (string, error) {
	if args == nil {
		args = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(args); err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalArgs parses JSON TEXT to run arguments.
func unmarshalArgs(data string) ([]string, error) {
	args := []string{}
	if data == "" || data == "[]" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(data), &args); err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	return args, nil
}

// marshalReport stores an expansion report compactly. An empty report is
// stored as an empty JSON array.
func marshalReport(report json.RawMessage) (string, error) {
	if len(report) == 0 {
		return "[]", nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, report); err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return buf.String(), nil
}
