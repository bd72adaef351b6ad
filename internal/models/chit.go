package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Chit is a rotating savings pool: fixed monthly contributions and a
// single eventual payout (the "collection").
type Chit struct {
	ID              int64            `json:"id"`
	ChitName        string           `json:"chit_name"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	DurationMonths  int              `json:"duration_months"`
	MonthlyAmount   decimal.Decimal  `json:"monthly_amount"`
	ToWhom          string           `json:"to_whom"`
	StartDate       Date             `json:"start_date"`
	IsClosed        bool             `json:"is_closed"`
	IsCollected     bool             `json:"is_collected"`
	CollectedAmount *decimal.Decimal `json:"collected_amount,omitempty"`
	CollectedDate   *Date            `json:"collected_date,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}
