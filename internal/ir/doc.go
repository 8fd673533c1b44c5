// Package ir provides the syntax tree, invocation descriptor and runtime value
// types shared by every tri-ton package.
//
// This package contains type definitions, the canonical printer and content
// hashing only. All other internal packages import ir; ir imports nothing
// internal. This keeps the tree the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - The tree is immutable once built; passes build new nodes instead of
//     mutating shared ones.
//   - Printing is canonical: the same tree always formats to the same bytes,
//     so formatted text can be hashed and compared against golden files.
//   - NO float values anywhere; numbers are int64.
//   - Identifiers starting with HygienePrefix are reserved for names the
//     expander introduces.
package ir
