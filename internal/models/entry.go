package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the direction of a cash entry. Amounts are always positive;
// direction is carried by the type, not by sign.
type EntryType string

const (
	EntryGiven    EntryType = "given"
	EntryReceived EntryType = "received"
)

// Valid reports whether t is one of the known directions.
func (t EntryType) Valid() bool {
	return t == EntryGiven || t == EntryReceived
}

// Marker returns the display sign for an entry direction: given entries
// reduce what the counterparty owes, received entries increase it.
func (t EntryType) Marker() string {
	if t == EntryGiven {
		return "-"
	}
	return "+"
}

// Entry is a single directional cash movement against an account. Date is
// the user-assigned transaction date; CreatedAt is the server timestamp and
// breaks ordering ties between entries dated the same day.
type Entry struct {
	ID        string          `json:"_id"`
	AccountID string          `json:"accountId"`
	Type      EntryType       `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Reason    string          `json:"reason,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CalendarDate returns the entry's transaction date as YYYY-MM-DD.
// Time-of-day is not part of entry identity for display or editing.
func (e Entry) CalendarDate() string {
	return e.Date.Format("2006-01-02")
}
