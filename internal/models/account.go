package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LastEntry is the display snapshot of an account's most recent entry.
type LastEntry struct {
	Amount decimal.Decimal `json:"amount"`
	Type   EntryType       `json:"type,omitempty"`
	Date   time.Time       `json:"date"`
}

// Account is a counterparty ledger. Balance is authoritative server state:
// the client never recomputes it from entries, it only re-fetches it.
type Account struct {
	ID        string          `json:"_id"`
	Name      string          `json:"accountName"`
	Phone     string          `json:"phoneNumber,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	LastEntry *LastEntry      `json:"lastEntry,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	Deleted   bool            `json:"deleted,omitempty"`
}
