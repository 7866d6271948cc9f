package models

import "github.com/shopspring/decimal"

type KPI struct {
	Field      string          `json:"field"`
	Value      decimal.Decimal `json:"value"`
	Change     float64         `json:"change"`
	ChangeText string          `json:"change_text"`
}

// TransactionTable keeps the transaction file as read: header order and row order
// are preserved and every cell stays a string.
type TransactionTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type MonthlyEarning struct {
	Month           string  `json:"month"`
	CurrentIncome   float64 `json:"current_income"`
	LastMonthIncome float64 `json:"last_month_income"`
}

type SaleStatus struct {
	Status string  `json:"status"`
	Count  float64 `json:"count"`
}

type DailySales struct {
	Day   string  `json:"day"`
	Sales float64 `json:"sales"`
}
