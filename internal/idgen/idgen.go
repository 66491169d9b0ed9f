// Package idgen generates the report, audit, and ledger identifiers.
// Generation sits behind an interface so tests can pin deterministic IDs.
package idgen

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator produces the three identifier kinds used across artifacts
type Generator interface {
	ReportID(year int) string
	AuditID(year int) string
	LedgerEntryID(now time.Time) string
}

// Random is the default Generator. Suffix entropy comes from hashed fresh
// UUIDs, collision-resistant within a ledger's lifetime.
type Random struct{}

// NewRandom creates the default random generator
func NewRandom() *Random {
	return &Random{}
}

// ReportID returns an identifier of the form HK-<year>-XXXXXX
func (g *Random) ReportID(year int) string {
	return fmt.Sprintf("HK-%d-%s", year, randSuffix(6))
}

// AuditID returns an identifier of the form AUD-<year>-XXXXXXXX
func (g *Random) AuditID(year int) string {
	return fmt.Sprintf("AUD-%d-%s", year, randSuffix(8))
}

// LedgerEntryID returns a time-ordered identifier: LED-<unix millis>-XXXX
func (g *Random) LedgerEntryID(now time.Time) string {
	return fmt.Sprintf("LED-%d-%s", now.UnixMilli(), randSuffix(4))
}

// randSuffix draws n characters from the suffix alphabet. The UUID is
// hashed first; raw UUID bytes carry fixed version and variant bits that
// would pin two suffix positions to a subrange of the alphabet.
func randSuffix(n int) string {
	u := uuid.New()
	sum := sha256.Sum256(u[:])
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		b[i] = suffixAlphabet[int(sum[i])%len(suffixAlphabet)]
	}
	return string(b)
}
