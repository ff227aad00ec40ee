package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// KindStatus is the load state of one breakdown
type KindStatus string

const (
	KindStatusIdle    KindStatus = "IDLE"    // Nothing selected
	KindStatusPending KindStatus = "PENDING" // Fetch in flight
	KindStatusLoaded  KindStatus = "LOADED"
	KindStatusFailed  KindStatus = "FAILED" // No data for this kind; Error says why
)

// FetchTag identifies the selection a fetch was issued for.
// Results are only applied while their Generation is still the active one.
type FetchTag struct {
	Generation uint64
	Selection  Selection
	RequestID  uuid.UUID // Correlates log lines of one selection change
}

// Breakdown is the record list and derived total for one kind.
// Total always equals the sum of Contribution over Records.
type Breakdown struct {
	Kind         RecordKind
	Records      []Record
	Total        decimal.Decimal
	InvalidCount int
	Status       KindStatus
	Error        string
}

// EmptyBreakdown returns a breakdown with no records and a zero total
func EmptyBreakdown(kind RecordKind, status KindStatus) Breakdown {
	return Breakdown{
		Kind:    kind,
		Records: []Record{},
		Total:   decimal.Zero,
		Status:  status,
	}
}

// Equal compares two breakdowns by value
func (b Breakdown) Equal(other Breakdown) bool {
	if b.Kind != other.Kind ||
		!b.Total.Equal(other.Total) ||
		b.InvalidCount != other.InvalidCount ||
		b.Status != other.Status ||
		b.Error != other.Error ||
		len(b.Records) != len(other.Records) {
		return false
	}

	for i := range b.Records {
		if !b.Records[i].Equal(other.Records[i]) {
			return false
		}
	}

	return true
}

// ViewSnapshot is the complete state needed to render the view at one instant.
// Snapshots are values: they are replaced wholesale and their slices are never mutated.
type ViewSnapshot struct {
	Revision  uint64
	Selection Selection
	AdSpend   Breakdown
	Crypto    Breakdown
}

// EmptySnapshot returns the snapshot shown when nothing is selected
func EmptySnapshot() ViewSnapshot {
	return ViewSnapshot{
		Selection: Unselected(),
		AdSpend:   EmptyBreakdown(RecordKindAdSpend, KindStatusIdle),
		Crypto:    EmptyBreakdown(RecordKindCryptoEarning, KindStatusIdle),
	}
}

// Breakdown returns the breakdown for a kind
func (s ViewSnapshot) Breakdown(kind RecordKind) Breakdown {
	if kind == RecordKindCryptoEarning {
		return s.Crypto
	}
	return s.AdSpend
}

// WithBreakdown returns a copy of the snapshot with the breakdown for b.Kind replaced
func (s ViewSnapshot) WithBreakdown(b Breakdown) ViewSnapshot {
	if b.Kind == RecordKindCryptoEarning {
		s.Crypto = b
	} else {
		s.AdSpend = b
	}
	return s
}
