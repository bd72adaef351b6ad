package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a money movement against a lending-like record. The
// (source_type, source_id) pair is a weak reference: the referenced
// record may have been deleted since.
type Payment struct {
	ID            int64           `json:"id"`
	SourceType    SourceType      `json:"source_type"`
	SourceID      *int64          `json:"source_id,omitempty"`
	PaymentType   PaymentType     `json:"payment_type"`
	PaymentDate   Date            `json:"payment_date"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	ClientRef     string          `json:"client_ref,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
