package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Metadata describes where an ingested artifact came from.
type Metadata struct {
	SourceURL string `json:"source_url,omitempty"`
	Timestamp string `json:"timestamp"` // RFC3339
	Hash      string `json:"hash"`      // SHA256 hex digest of the cleaned text
	Platform  string `json:"platform,omitempty"`
	Rendered  bool   `json:"rendered,omitempty"`
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content string, url string) *Metadata {
	return &Metadata{
		SourceURL: url,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// announcement returns the metadata fields carried on a bus announcement.
func (m *Metadata) announcement() map[string]any {
	out := map[string]any{"hash": m.Hash}
	if m.SourceURL != "" {
		out["source_url"] = m.SourceURL
	}
	return out
}
