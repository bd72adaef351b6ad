package store

import (
	"context"
	"net/url"
	"time"

	"pride-finance-backend/internal/models"
)

const loansTable = "loans"

func (s *Store) ListLoans(ctx context.Context, isClosed *bool) ([]models.Loan, error) {
	q := url.Values{}
	q.Set("deleted_at", isNull)
	q.Set("order", "id.asc")
	if isClosed != nil {
		q.Set("is_closed", eq(*isClosed))
	}
	return listRows[models.Loan](ctx, s, loansTable, q)
}

func (s *Store) GetLoan(ctx context.Context, id int64) (*models.Loan, error) {
	q := byID(id)
	q.Set("deleted_at", isNull)
	row, err := firstRow[models.Loan](ctx, s, loansTable, q)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return row, nil
}

func (s *Store) CreateLoan(ctx context.Context, l models.Loan) (*models.Loan, error) {
	payload := map[string]any{
		"lender_name":       l.LenderName,
		"lender_type":       l.LenderType,
		"principle_amount":  l.PrincipleAmount,
		"interest_rate":     l.InterestRate,
		"payment_frequency": l.PaymentFrequency,
		"date_of_borrowing": l.DateOfBorrowing.String(),
		"is_closed":         false,
	}
	match := url.Values{}
	match.Set("lender_name", eq(l.LenderName))
	match.Set("date_of_borrowing", eq(l.DateOfBorrowing.String()))
	return createRow[models.Loan](ctx, s, loansTable, payload, match)
}

func (s *Store) UpdateLoan(ctx context.Context, id int64, patch map[string]any) (*models.Loan, error) {
	return patchRow[models.Loan](ctx, s, loansTable, activeByID(id), patch)
}

func (s *Store) CloseLoan(ctx context.Context, id int64) error {
	_, err := patchRow[models.Loan](ctx, s, loansTable, activeByID(id), closePatch(time.Now()))
	return err
}

func (s *Store) SoftDeleteLoan(ctx context.Context, id int64) error {
	return softDeleteRow[models.Loan](ctx, s, loansTable, id)
}
