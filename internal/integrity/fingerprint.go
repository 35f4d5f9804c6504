// Package integrity produces deterministic content fingerprints for emission
// entries and records verification artifacts derived from them.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/carbonlens/scope3-engine/internal/domain"
)

// ErrNoSupplier is returned when an entry is fingerprinted without its
// supplier association loaded.
var ErrNoSupplier = errors.New("integrity: entry has no supplier loaded")

// Fingerprint computes the SHA-256 content hash of an entry's immutable
// fields. It is a pure function of the entry content: the same field values
// always yield the same digest, regardless of entry identity — deliberate
// content-addressing, not an identity check.
//
// The canonical input is a JSON object with deterministically ordered keys:
// supplier id, supplier code, ISO-8601 reported date, the emissions amount
// rendered at the stored column scale (two decimal places), and notes.
func Fingerprint(entry *domain.EmissionEntry) (string, error) {
	if entry.Supplier == nil {
		return "", ErrNoSupplier
	}

	// Map keys are serialized in sorted order, making the digest stable.
	// The emissions amount is rendered with a fixed two-decimal scale so the
	// digest does not depend on how the in-memory decimal happens to be
	// represented.
	canonical := map[string]any{
		"supplier_id":      entry.Supplier.ID,
		"supplier_code":    entry.Supplier.Code,
		"date_reported":    entry.DateReported.Format(time.RFC3339),
		"scope3_emissions": entry.Scope3Emissions.StringFixed(2),
		"notes":            entry.Notes,
	}
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("encoding canonical entry: %w", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
