package models

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// BalanceStatus classifies an account balance for display.
type BalanceStatus string

const (
	// StatusAdvance: the user holds an advance (balance > 0).
	StatusAdvance BalanceStatus = "Advance"
	// StatusDue: money is due (balance < 0).
	StatusDue BalanceStatus = "Due"
	// StatusClear: the account is settled (balance == 0).
	StatusClear BalanceStatus = "Clear"
)

// ClassifyBalance maps a balance value to its display status. Pure; the sign
// convention itself is defined by the server.
func ClassifyBalance(balance decimal.Decimal) BalanceStatus {
	switch balance.Sign() {
	case 1:
		return StatusAdvance
	case -1:
		return StatusDue
	default:
		return StatusClear
	}
}

// AmountFormatter renders amounts as absolute values with locale-aware digit
// grouping. It is currency-agnostic: no symbol is attached.
type AmountFormatter struct {
	p *message.Printer
}

// NewAmountFormatter builds a formatter for the given BCP 47 locale tag.
// An unparsable tag falls back to English grouping.
func NewAmountFormatter(locale string) *AmountFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &AmountFormatter{p: message.NewPrinter(tag)}
}

// Format renders the absolute value of v with grouped digits and at most two
// fraction digits.
func (f *AmountFormatter) Format(v decimal.Decimal) string {
	abs, _ := v.Abs().Float64()
	return f.p.Sprintf("%v", number.Decimal(abs, number.MaxFractionDigits(2)))
}
