package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OutsideInterest is money lent out at interest.
type OutsideInterest struct {
	ID               int64            `json:"id"`
	ToWhom           string           `json:"to_whom"`
	Category         string           `json:"category"`
	PrincipleAmount  decimal.Decimal  `json:"principle_amount"`
	InterestRate     decimal.Decimal  `json:"interest_rate"`
	PaymentFrequency PaymentFrequency `json:"payment_frequency"`
	DateOfLending    Date             `json:"date_of_lending"`
	LendTo           string           `json:"lend_to"`
	IsClosed         bool             `json:"is_closed"`
	ClosureDate      *Date            `json:"closure_date,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	DeletedAt        *time.Time       `json:"deleted_at,omitempty"`
}
