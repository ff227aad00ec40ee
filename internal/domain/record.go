package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RecordKind identifies which breakdown a record belongs to
type RecordKind string

const (
	RecordKindAdSpend       RecordKind = "AD_SPEND"
	RecordKindCryptoEarning RecordKind = "CRYPTO_EARNING"
)

// RecordKinds lists every breakdown in display order
var RecordKinds = []RecordKind{RecordKindAdSpend, RecordKindCryptoEarning}

// DateLayout is the calendar date format used by the upstream resource
const DateLayout = "2006-01-02"

// ErrAmountMissing is returned when a record carries no amount at all
var ErrAmountMissing = errors.New("amount is missing")

// RawAmount is a monetary field exactly as the upstream sent it.
// JSON strings are unquoted, JSON numbers keep their literal text,
// null and absent fields leave Present false.
type RawAmount struct {
	Text    string
	Present bool
}

// UnmarshalJSON never fails on odd values; they are kept as text and flagged at parse time
func (a *RawAmount) UnmarshalJSON(data []byte) error {
	text, present, err := decodeRawText(data)
	if err != nil {
		return err
	}
	*a = RawAmount{Text: text, Present: present}
	return nil
}

// DateText is a calendar date exactly as the upstream sent it.
// Strings are unquoted and any other JSON value keeps its literal text.
type DateText string

// UnmarshalJSON accepts any JSON value
func (d *DateText) UnmarshalJSON(data []byte) error {
	text, _, err := decodeRawText(data)
	if err != nil {
		return err
	}
	*d = DateText(text)
	return nil
}

// decodeRawText unquotes JSON strings and returns any other value as compact JSON text.
// null reports false.
func decodeRawText(data []byte) (string, bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", false, nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return "", false, err
	}
	return buf.String(), true, nil
}

// Parse converts the amount into an exact base-10 decimal
func (a RawAmount) Parse() (decimal.Decimal, error) {
	if !a.Present {
		return decimal.Zero, ErrAmountMissing
	}

	value, err := decimal.NewFromString(strings.TrimSpace(a.Text))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", a.Text, err)
	}

	return value, nil
}

// AdSpendRecord is an advertising spend entry as returned by /ad-spends/
type AdSpendRecord struct {
	ID       ID        `json:"id"`
	Amount   RawAmount `json:"amount"`
	Date     DateText  `json:"date"`
	Location string    `json:"location,omitempty"`
}

// ToRecord converts the entry into a breakdown record.
// fallbackLocation is used when the upstream did not name the location.
func (r AdSpendRecord) ToRecord(fallbackLocation string) Record {
	return newRecord(RecordKindAdSpend, r.ID, r.Amount, string(r.Date), firstNonEmpty(r.Location, fallbackLocation))
}

// CryptoEarningRecord is a business crypto earning entry as returned by /business-cryptos/
type CryptoEarningRecord struct {
	ID           ID        `json:"id"`
	CryptoAmount RawAmount `json:"crypto_amount"`
	Date         DateText  `json:"date"`
	Location     string    `json:"location,omitempty"`
}

// ToRecord converts the entry into a breakdown record
func (r CryptoEarningRecord) ToRecord(fallbackLocation string) Record {
	return newRecord(RecordKindCryptoEarning, r.ID, r.CryptoAmount, string(r.Date), firstNonEmpty(r.Location, fallbackLocation))
}

// Record is one line of a breakdown.
// A record whose amount does not parse stays listed with Invalid set and contributes zero to totals.
type Record struct {
	ID            ID
	Kind          RecordKind
	Amount        string          // Display text, verbatim from the upstream
	Value         decimal.Decimal // Zero when Invalid
	Date          string          // Verbatim from the upstream
	Day           time.Time       // Zero when Date is not a calendar date
	LocationName  string
	Invalid       bool
	InvalidReason string
}

func newRecord(kind RecordKind, id ID, amount RawAmount, date, location string) Record {
	rec := Record{
		ID:           id,
		Kind:         kind,
		Amount:       amount.Text,
		Value:        decimal.Zero,
		Date:         date,
		LocationName: location,
	}

	value, err := amount.Parse()
	if err != nil {
		rec.Invalid = true
		rec.InvalidReason = err.Error()
	} else {
		rec.Value = value
	}

	if day, err := time.Parse(DateLayout, strings.TrimSpace(date)); err == nil {
		rec.Day = day
	}

	return rec
}

// Contribution returns what the record adds to its breakdown total
func (r Record) Contribution() decimal.Decimal {
	if r.Invalid {
		return decimal.Zero
	}
	return r.Value
}

// Equal compares two records by value
func (r Record) Equal(other Record) bool {
	return r.ID == other.ID &&
		r.Kind == other.Kind &&
		r.Amount == other.Amount &&
		r.Value.Equal(other.Value) &&
		r.Date == other.Date &&
		r.Day.Equal(other.Day) &&
		r.LocationName == other.LocationName &&
		r.Invalid == other.Invalid &&
		r.InvalidReason == other.InvalidReason
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
