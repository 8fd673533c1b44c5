package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content-addressed keys.
// Version suffix enables future algorithm migration.
const (
	DomainExpansion = "tri/expansion/v1"
	DomainCatalog   = "tri/catalog/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeText returns s in Unicode NFC with "\r\n" folded to "\n", the form
// every hash and cache key is computed over.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return norm.NFC.String(s)
}

// ExpansionKey identifies the expansion of one source text under one variant
// catalog and engine version. Equal keys always expand to equal output.
func ExpansionKey(source, catalogDigest string) string {
	var sb strings.Builder
	sb.WriteString(IRVersion)
	sb.WriteByte(0)
	sb.WriteString(EngineVersion)
	sb.WriteByte(0)
	sb.WriteString(catalogDigest)
	sb.WriteByte(0)
	sb.WriteString(NormalizeText(source))
	return hashWithDomain(DomainExpansion, []byte(sb.String()))
}

// CatalogDigest hashes a set of variant arities independent of map order.
func CatalogDigest(arities map[string]int) string {
	names := make([]string, 0, len(arities))
	for name := range arities {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(NormalizeText(name))
		sb.WriteByte('/')
		sb.WriteString(Int(arities[name]).String())
		sb.WriteByte('\n')
	}
	return hashWithDomain(DomainCatalog, []byte(sb.String()))
}
