package store

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"pride-finance-backend/internal/models"
)

const paymentsTable = "payments"

// PaymentFilter narrows a payment listing. Nil fields are ignored.
type PaymentFilter struct {
	SourceType *models.SourceType
	SourceID   *int64
}

func (s *Store) ListPayments(ctx context.Context, f PaymentFilter) ([]models.Payment, error) {
	q := url.Values{}
	q.Set("order", "id.asc")
	if f.SourceType != nil {
		q.Set("source_type", eq(*f.SourceType))
	}
	if f.SourceID != nil {
		q.Set("source_id", eq(*f.SourceID))
	}
	return listRows[models.Payment](ctx, s, paymentsTable, q)
}

// ListPaymentsBySources fetches payments for many records of one source
// type in a single call, so list enrichment does not degrade into one
// query per record.
func (s *Store) ListPaymentsBySources(ctx context.Context, sourceType models.SourceType, ids []int64) ([]models.Payment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := url.Values{}
	q.Set("source_type", eq(sourceType))
	q.Set("source_id", in(ids))
	q.Set("order", "id.asc")
	return listRows[models.Payment](ctx, s, paymentsTable, q)
}

func (s *Store) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	row, err := firstRow[models.Payment](ctx, s, paymentsTable, byID(id))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return row, nil
}

// CreatePayment inserts a payment. Every insert carries a generated
// client_ref so the row can be reconciled exactly when the store answers
// with an empty body.
func (s *Store) CreatePayment(ctx context.Context, p models.Payment) (*models.Payment, error) {
	ref := p.ClientRef
	if ref == "" {
		ref = uuid.NewString()
	}
	payload := map[string]any{
		"source_type":    p.SourceType,
		"payment_type":   p.PaymentType,
		"payment_date":   p.PaymentDate.String(),
		"amount":         p.Amount,
		"description":    p.Description,
		"payment_status": p.PaymentStatus,
		"client_ref":     ref,
	}
	if p.SourceID != nil {
		payload["source_id"] = *p.SourceID
	}
	match := url.Values{}
	match.Set("client_ref", eq(ref))
	return createRow[models.Payment](ctx, s, paymentsTable, payload, match)
}

func (s *Store) UpdatePayment(ctx context.Context, id int64, patch map[string]any) (*models.Payment, error) {
	return patchRow[models.Payment](ctx, s, paymentsTable, byID(id), patch)
}

// DeletePayment removes the payment permanently.
func (s *Store) DeletePayment(ctx context.Context, id int64) error {
	return deleteRows(ctx, s, paymentsTable, byID(id))
}
