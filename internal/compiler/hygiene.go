package compiler

import (
	"strings"

	"github.com/google/uuid"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

// hygieneSpace namespaces the name-based UUIDs behind generated identifiers.
var hygieneSpace = uuid.MustParse("5b0f6a7e-2c4d-4e8b-9a1f-3d6c8e2b7f40")

// hygienicName derives the loop-state name for an invocation from its
// canonical text, so the same invocation always expands to the same code.
// The lexer rejects the prefix in user source, so the name cannot collide.
func hygienicName(d *ir.Descriptor) string {
	id := uuid.NewSHA1(hygieneSpace, []byte(ir.FormatDescriptor(d)))
	return ir.HygienePrefix + strings.ReplaceAll(id.String(), "-", "")[:8]
}
