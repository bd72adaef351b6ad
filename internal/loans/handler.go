package loans

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"pride-finance-backend/internal/finance"
	"pride-finance-backend/internal/models"
	"pride-finance-backend/internal/store"
)

type CreateLoanRequest struct {
	LenderName       string                  `json:"lender_name"`
	LenderType       models.LenderType       `json:"lender_type"`
	PrincipleAmount  decimal.Decimal         `json:"principle_amount"`
	InterestRate     decimal.Decimal         `json:"interest_rate"`
	PaymentFrequency models.PaymentFrequency `json:"payment_frequency"`
	DateOfBorrowing  string                  `json:"date_of_borrowing"`
}

type UpdateLoanRequest struct {
	LenderName       *string                  `json:"lender_name"`
	LenderType       *models.LenderType       `json:"lender_type"`
	PrincipleAmount  *decimal.Decimal         `json:"principle_amount"`
	InterestRate     *decimal.Decimal         `json:"interest_rate"`
	PaymentFrequency *models.PaymentFrequency `json:"payment_frequency"`
	DateOfBorrowing  *string                  `json:"date_of_borrowing"`
}

type CreatePaymentRequest struct {
	PaymentType   models.PaymentType   `json:"payment_type"`
	PaymentDate   string               `json:"payment_date"`
	Amount        decimal.Decimal      `json:"amount"`
	Description   string               `json:"description"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
}

type LoanResponse struct {
	models.Loan
	ExtendedDays  *int            `json:"extended_days"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
}

func toResponse(l models.Loan, totals finance.Totals, today time.Time) (LoanResponse, error) {
	resp := LoanResponse{
		Loan:          l,
		TotalPayments: totals.Total,
		PendingAmount: totals.Pending,
	}
	days, applicable, err := finance.ExtendedDays(l.IsClosed, l.DateOfBorrowing.Time, l.PaymentFrequency, today)
	if err != nil {
		return resp, err
	}
	if applicable {
		resp.ExtendedDays = &days
	}
	return resp, nil
}

// GET /api/loans?is_closed=true|false
func ListLoansHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		isClosed, err := parseIsClosed(c)
		if err != nil {
			return err
		}

		recs, err := st.ListLoans(c.Context(), isClosed)
		if err != nil {
			return err
		}

		ids := make([]int64, 0, len(recs))
		for _, r := range recs {
			ids = append(ids, r.ID)
		}
		pays, err := st.ListPaymentsBySources(c.Context(), models.SourceLoan, ids)
		if err != nil {
			return err
		}
		totals := finance.TotalsBySource(pays)

		now := time.Now()
		resp := make([]LoanResponse, 0, len(recs))
		for _, r := range recs {
			item, err := toResponse(r, totals[r.ID], now)
			if err != nil {
				return err
			}
			resp = append(resp, item)
		}
		return c.JSON(resp)
	}
}

// GET /api/loans/:id
func GetLoanHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		rec, err := st.GetLoan(c.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Loan not found")
		}
		if err != nil {
			return err
		}

		pays, err := st.ListPayments(c.Context(), paymentFilter(id))
		if err != nil {
			return err
		}

		resp, err := toResponse(*rec, finance.PaymentTotals(pays), time.Now())
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

// POST /api/loans
func CreateLoanHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateLoanRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.LenderName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "lender_name is required")
		}
		if !body.LenderType.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "lender_type must be bank, personal or other")
		}
		if !body.PrincipleAmount.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "principle_amount must be greater than 0")
		}
		if !body.InterestRate.IsPositive() || body.InterestRate.GreaterThan(decimal.NewFromInt(100)) {
			return fiber.NewError(fiber.StatusBadRequest, "interest_rate must be between 0 and 100")
		}
		if !body.PaymentFrequency.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "payment_frequency must be monthly, bimonthly or quarterly")
		}
		date, err := models.ParseDate(body.DateOfBorrowing)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date_of_borrowing must be 'YYYY-MM-DD'")
		}

		created, err := st.CreateLoan(c.Context(), models.Loan{
			LenderName:       body.LenderName,
			LenderType:       body.LenderType,
			PrincipleAmount:  body.PrincipleAmount,
			InterestRate:     body.InterestRate,
			PaymentFrequency: body.PaymentFrequency,
			DateOfBorrowing:  date,
		})
		if err != nil {
			return err
		}

		resp, err := toResponse(*created, finance.Totals{Total: decimal.Zero, Pending: decimal.Zero}, time.Now())
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// PUT /api/loans/:id
func UpdateLoanHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body UpdateLoanRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if _, err := st.GetLoan(c.Context(), id); errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Loan not found")
		} else if err != nil {
			return err
		}

		patch := map[string]any{}
		if body.LenderName != nil {
			if *body.LenderName == "" {
				return fiber.NewError(fiber.StatusBadRequest, "lender_name cannot be empty")
			}
			patch["lender_name"] = *body.LenderName
		}
		if body.LenderType != nil {
			if !body.LenderType.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "lender_type must be bank, personal or other")
			}
			patch["lender_type"] = *body.LenderType
		}
		if body.PrincipleAmount != nil {
			if !body.PrincipleAmount.IsPositive() {
				return fiber.NewError(fiber.StatusBadRequest, "principle_amount must be greater than 0")
			}
			patch["principle_amount"] = *body.PrincipleAmount
		}
		if body.InterestRate != nil {
			if !body.InterestRate.IsPositive() || body.InterestRate.GreaterThan(decimal.NewFromInt(100)) {
				return fiber.NewError(fiber.StatusBadRequest, "interest_rate must be between 0 and 100")
			}
			patch["interest_rate"] = *body.InterestRate
		}
		if body.PaymentFrequency != nil {
			if !body.PaymentFrequency.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "payment_frequency must be monthly, bimonthly or quarterly")
			}
			patch["payment_frequency"] = *body.PaymentFrequency
		}
		if body.DateOfBorrowing != nil {
			date, err := models.ParseDate(*body.DateOfBorrowing)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date_of_borrowing must be 'YYYY-MM-DD'")
			}
			patch["date_of_borrowing"] = date.String()
		}
		if len(patch) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "No fields to update")
		}

		updated, err := st.UpdateLoan(c.Context(), id, patch)
		if err != nil {
			return err
		}

		pays, err := st.ListPayments(c.Context(), paymentFilter(id))
		if err != nil {
			return err
		}
		resp, err := toResponse(*updated, finance.PaymentTotals(pays), time.Now())
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

// POST /api/loans/:id/close
func CloseLoanHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if err := st.CloseLoan(c.Context(), id); errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Loan not found")
		} else if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Loan closed successfully"})
	}
}

// DELETE /api/loans/:id (soft delete)
func DeleteLoanHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if err := st.SoftDeleteLoan(c.Context(), id); errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Loan not found")
		} else if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Loan deleted successfully"})
	}
}

// POST /api/loans/:id/payments
func CreateLoanPaymentHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if _, err := st.GetLoan(c.Context(), id); errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Loan not found")
		} else if err != nil {
			return err
		}

		var body CreatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if !body.PaymentType.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "payment_type must be credit or debit")
		}
		if !body.PaymentStatus.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "payment_status must be PAID, PARTIAL or PENDING")
		}
		if !body.Amount.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be greater than 0")
		}
		date, err := models.ParseDate(body.PaymentDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "payment_date must be 'YYYY-MM-DD'")
		}

		created, err := st.CreatePayment(c.Context(), models.Payment{
			SourceType:    models.SourceLoan,
			SourceID:      &id,
			PaymentType:   body.PaymentType,
			PaymentDate:   date,
			Amount:        body.Amount,
			Description:   body.Description,
			PaymentStatus: body.PaymentStatus,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return id, nil
}

func parseIsClosed(c *fiber.Ctx) (*bool, error) {
	raw := c.Query("is_closed")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "is_closed must be true or false")
	}
	return &v, nil
}

func paymentFilter(id int64) store.PaymentFilter {
	st := models.SourceLoan
	return store.PaymentFilter{SourceType: &st, SourceID: &id}
}
