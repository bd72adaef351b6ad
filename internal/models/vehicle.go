package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vehicle is a vehicle rented out against a principal.
type Vehicle struct {
	ID               int64            `json:"id"`
	VehicleName      string           `json:"vehicle_name"`
	PrincipleAmount  decimal.Decimal  `json:"principle_amount"`
	Rent             decimal.Decimal  `json:"rent"`
	PaymentFrequency PaymentFrequency `json:"payment_frequency"`
	DateOfLending    Date             `json:"date_of_lending"`
	LendTo           string           `json:"lend_to"`
	IsClosed         bool             `json:"is_closed"`
	ClosureDate      *Date            `json:"closure_date,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	DeletedAt        *time.Time       `json:"deleted_at,omitempty"`
}
