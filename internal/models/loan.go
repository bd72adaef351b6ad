package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan is money borrowed from a lender.
type Loan struct {
	ID               int64            `json:"id"`
	LenderName       string           `json:"lender_name"`
	LenderType       LenderType       `json:"lender_type"`
	PrincipleAmount  decimal.Decimal  `json:"principle_amount"`
	InterestRate     decimal.Decimal  `json:"interest_rate"`
	PaymentFrequency PaymentFrequency `json:"payment_frequency"`
	DateOfBorrowing  Date             `json:"date_of_borrowing"`
	IsClosed         bool             `json:"is_closed"`
	ClosureDate      *Date            `json:"closure_date,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	DeletedAt        *time.Time       `json:"deleted_at,omitempty"`
}
