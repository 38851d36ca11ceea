package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed hashes.
// Version suffix enables future algorithm migration.
const (
	DomainGraph = "pulsesim/graph/v1"
	DomainState = "pulsesim/state/v1"
	DomainTrace = "pulsesim/trace/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashCanonical hashes the canonical JSON encoding of v under domain.
func HashCanonical(domain string, v any) (string, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", domain, err)
	}
	return hashWithDomain(domain, data), nil
}

// StateHash fingerprints a simulator state snapshot.
// Two runs over the same graph and press count must produce equal hashes.
func StateHash(s StateSnapshot) (string, error) {
	return HashCanonical(DomainState, s.CanonicalMap())
}
