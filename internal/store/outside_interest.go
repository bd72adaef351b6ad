package store

import (
	"context"
	"net/url"
	"time"

	"pride-finance-backend/internal/models"
)

const outsideInterestTable = "outside_interest"

func (s *Store) ListOutsideInterests(ctx context.Context, isClosed *bool) ([]models.OutsideInterest, error) {
	q := url.Values{}
	q.Set("deleted_at", isNull)
	q.Set("order", "id.asc")
	if isClosed != nil {
		q.Set("is_closed", eq(*isClosed))
	}
	return listRows[models.OutsideInterest](ctx, s, outsideInterestTable, q)
}

func (s *Store) GetOutsideInterest(ctx context.Context, id int64) (*models.OutsideInterest, error) {
	q := byID(id)
	q.Set("deleted_at", isNull)
	row, err := firstRow[models.OutsideInterest](ctx, s, outsideInterestTable, q)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return row, nil
}

func (s *Store) CreateOutsideInterest(ctx context.Context, o models.OutsideInterest) (*models.OutsideInterest, error) {
	payload := map[string]any{
		"to_whom":           o.ToWhom,
		"category":          o.Category,
		"principle_amount":  o.PrincipleAmount,
		"interest_rate":     o.InterestRate,
		"payment_frequency": o.PaymentFrequency,
		"date_of_lending":   o.DateOfLending.String(),
		"lend_to":           o.LendTo,
		"is_closed":         false,
	}
	match := url.Values{}
	match.Set("to_whom", eq(o.ToWhom))
	match.Set("lend_to", eq(o.LendTo))
	match.Set("date_of_lending", eq(o.DateOfLending.String()))
	return createRow[models.OutsideInterest](ctx, s, outsideInterestTable, payload, match)
}

func (s *Store) UpdateOutsideInterest(ctx context.Context, id int64, patch map[string]any) (*models.OutsideInterest, error) {
	return patchRow[models.OutsideInterest](ctx, s, outsideInterestTable, activeByID(id), patch)
}

func (s *Store) CloseOutsideInterest(ctx context.Context, id int64) error {
	_, err := patchRow[models.OutsideInterest](ctx, s, outsideInterestTable, activeByID(id), closePatch(time.Now()))
	return err
}

func (s *Store) SoftDeleteOutsideInterest(ctx context.Context, id int64) error {
	return softDeleteRow[models.OutsideInterest](ctx, s, outsideInterestTable, id)
}
