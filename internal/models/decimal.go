package models

import "github.com/shopspring/decimal"

func init() {
	// The ledger service speaks bare JSON numbers for amounts and balances.
	decimal.MarshalJSONWithoutQuotes = true
}
