package store

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"

	"pride-finance-backend/internal/models"
)

const chitsTable = "chits"

func (s *Store) ListChits(ctx context.Context, isClosed *bool) ([]models.Chit, error) {
	q := url.Values{}
	q.Set("order", "id.asc")
	if isClosed != nil {
		q.Set("is_closed", eq(*isClosed))
	}
	return listRows[models.Chit](ctx, s, chitsTable, q)
}

func (s *Store) GetChit(ctx context.Context, id int64) (*models.Chit, error) {
	row, err := firstRow[models.Chit](ctx, s, chitsTable, byID(id))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return row, nil
}

func (s *Store) CreateChit(ctx context.Context, c models.Chit) (*models.Chit, error) {
	payload := map[string]any{
		"chit_name":       c.ChitName,
		"total_amount":    c.TotalAmount,
		"duration_months": c.DurationMonths,
		"monthly_amount":  c.MonthlyAmount,
		"to_whom":         c.ToWhom,
		"start_date":      c.StartDate.String(),
		"is_closed":       false,
		"is_collected":    false,
	}
	match := url.Values{}
	match.Set("chit_name", eq(c.ChitName))
	match.Set("to_whom", eq(c.ToWhom))
	match.Set("start_date", eq(c.StartDate.String()))
	return createRow[models.Chit](ctx, s, chitsTable, payload, match)
}

func (s *Store) UpdateChit(ctx context.Context, id int64, patch map[string]any) (*models.Chit, error) {
	return patchRow[models.Chit](ctx, s, chitsTable, byID(id), patch)
}

func (s *Store) CloseChit(ctx context.Context, id int64) error {
	_, err := patchRow[models.Chit](ctx, s, chitsTable, byID(id), map[string]any{"is_closed": true})
	return err
}

// CollectChit stamps the single payout onto the chit.
func (s *Store) CollectChit(ctx context.Context, id int64, amount decimal.Decimal, date models.Date) error {
	patch := map[string]any{
		"is_collected":     true,
		"collected_amount": amount,
		"collected_date":   date.String(),
	}
	_, err := patchRow[models.Chit](ctx, s, chitsTable, byID(id), patch)
	return err
}

// DeleteChit removes the chit permanently.
func (s *Store) DeleteChit(ctx context.Context, id int64) error {
	return deleteRows(ctx, s, chitsTable, byID(id))
}
