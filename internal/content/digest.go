package content

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest returns a blake3 fingerprint of the merged content.
// encoding/json writes map keys sorted, so equal content hashes equally.
func (m *Merged) Digest() (string, error) {
	canonical, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("canonicalize merged content: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(canonical); err != nil {
		return "", fmt.Errorf("hash merged content: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
