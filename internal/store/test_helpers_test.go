package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// createTestStore creates a new in-memory store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestExpansion creates an expansion whose key is derived from src.
func createTestExpansion(src string) Expansion {
	return Expansion{
		Key:           ir.ExpansionKey(src, "test-catalog"),
		File:          "test.tri",
		Source:        src,
		CatalogDigest: "test-catalog",
		Output:        "expanded: " + src,
		Report:        json.RawMessage(`[{"operator": "fall"}]`),
		Warnings:      json.RawMessage(`[{"path": ["f", "f"]}]`),
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
}

// saveTestExpansion stores an expansion and returns its key.
func saveTestExpansion(t *testing.T, s *Store, src string) string {
	t.Helper()
	e := createTestExpansion(src)
	if _, _, err := s.SaveExpansion(context.Background(), e); err != nil {
		t.Fatalf("SaveExpansion() failed: %v", err)
	}
	return e.Key
}
