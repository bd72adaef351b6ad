package outside

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

type CreateOutsideInterestRequest struct {
	ToWhom           string                  `json:"to_whom"`
	Category         string                  `json:"category"`
	PrincipleAmount  decimal.Decimal         `json:"principle_amount"`
	InterestRate     decimal.Decimal         `json:"interest_rate"`
	PaymentFrequency models.PaymentFrequency `json:"payment_frequency"`
	DateOfLending    string                  `json:"date_of_lending"`
	LendTo           string                  `json:"lend_to"`
}

type UpdateOutsideInterestRequest struct {
	ToWhom           *string                  `json:"to_whom"`
	Category         *string                  `json:"category"`
	PrincipleAmount  *decimal.Decimal         `json:"principle_amount"`
	InterestRate     *decimal.Decimal         `json:"interest_rate"`
	PaymentFrequency *models.PaymentFrequency `json:"payment_frequency"`
	DateOfLending    *string                  `json:"date_of_lending"`
	LendTo           *string                  `json:"lend_to"`
}

type CreatePaymentRequest struct {
	PaymentType   models.PaymentType   `json:"payment_type"`
	PaymentDate   string               `json:"payment_date"`
	Amount        decimal.Decimal      `json:"amount"`
	Description   string               `json:"description"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
}

type OutsideInterestResponse struct {
	models.OutsideInterest
	ExtendedDays  *int            `json:"extended_days"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
}

func toResponse(o models.OutsideInterest, totals finance.Totals, today time.Time) (OutsideInterestResponse, error) {
	resp := OutsideInterestResponse{
		OutsideInterest: o,
		TotalPayments:   totals.Total,
		PendingAmount:   totals.Pending,
	}
	days, applicable, err := finance.ExtendedDays(o.IsClosed, o.DateOfLending.Time, o.PaymentFrequency, today)
	if err != nil {
		return resp, err
	}
	if applicable {
		resp.ExtendedDays = &days
	}
	return resp, nil
}

func validRate(rate decimal.Decimal) bool {
	return rate.IsPositive() && rate.LessThanOrEqual(decimal.NewFromInt(100))
}

// GET /api/outside-interest?is_closed=true|false
func ListOutsideInterestsHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		isClosed, err := parseIsClosed(c)
		if err != nil {
			return err
		}

		recs, err := st.ListOutsideInterests(c.Context(), isClosed)
		if err != nil {
			return err
		}

		ids := make([]int64, 0, len(recs))
		for _, r := range recs {
			ids = append(ids, r.ID)
		}
		pays, err := st.ListPaymentsBySources(c.Context(), models.SourceOutsideInterest, ids)
		if err != nil {
			return err
		}
		totals := finance.TotalsBySource(pays)

		now := time.Now()
		resp := make([]OutsideInterestResponse, 0, len(recs))
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

// GET /api/outside-interest/:id
func GetOutsideInterestHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		rec, err := st.GetOutsideInterest(c.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Outside interest record not found")
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

// POST /api/outside-interest
func CreateOutsideInterestHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOutsideInterestRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.ToWhom == "" || body.Category == "" || body.LendTo == "" {
			return fiber.NewError(fiber.StatusBadRequest, "to_whom, category and lend_to are required")
		}
		if !body.PrincipleAmount.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "principle_amount must be greater than 0")
		}
		if !validRate(body.InterestRate) {
			return fiber.NewError(fiber.StatusBadRequest, "interest_rate must be between 0 and 100")
		}
		if !body.PaymentFrequency.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "payment_frequency must be monthly, bimonthly or quarterly")
		}
		date, err := models.ParseDate(body.DateOfLending)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date_of_lending must be 'YYYY-MM-DD'")
		}

		created, err := st.CreateOutsideInterest(c.Context(), models.OutsideInterest{
			ToWhom:           body.ToWhom,
			Category:         body.Category,
			PrincipleAmount:  body.PrincipleAmount,
			InterestRate:     body.InterestRate,
			PaymentFrequency: body.PaymentFrequency,
			DateOfLending:    date,
			LendTo:           body.LendTo,
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

// PUT /api/outside-interest/:id
func UpdateOutsideInterestHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body UpdateOutsideInterestRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if _, err := st.GetOutsideInterest(c.Context(), id); errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Outside interest record not found")
		} else if err != nil {
			return err
		}

		patch := map[string]any{}
		if body.ToWhom != nil {
			if *body.ToWhom == "" {
				return fiber.NewError(fiber.StatusBadRequest, "to_whom cannot be empty")
			}
			patch["to_whom"] = *body.ToWhom
		}
		if body.Category != nil {
			if *body.Category == "" {
				return fiber.NewError(fiber.StatusBadRequest, "category cannot be empty")
			}
			patch["category"] = *body.Category
		}
		if body.PrincipleAmount != nil {
			if !body.PrincipleAmount.IsPositive() {
				return fiber.NewError(fiber.StatusBadRequest, "principle_amount must be greater than 0")
			}
			patch["principle_amount"] = *body.PrincipleAmount
		}
		if body.InterestRate != nil {
			if !validRate(*body.InterestRate) {
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
		if body.DateOfLending != nil {
			date, err := models.ParseDate(*body.DateOfLending)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date_of_lending must be 'YYYY-MM-DD'")
			}
			patch["date_of_lending"] = date.String()
		}
		if body.LendTo != nil {
			if *body.LendTo == "" {
				return fiber.NewError(fiber.StatusBadRequest, "lend_to cannot be empty")
			}
			patch["lend_to"] = *body.LendTo
		}
		if len(patch) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "No fields to update")
		}

		updated, err := st.UpdateOutsideInterest(c.Context(), id, patch)
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

// POST /api/outside-interest/:id/close
func CloseOutsideInterestHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if err := st.CloseOutsideInterest(c.Context(), id); errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Outside interest record not found")
		} else if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Outside interest record closed successfully"})
	}
}

// DELETE /api/outside-interest/:id (soft delete)
func DeleteOutsideInterestHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if err := st.SoftDeleteOutsideInterest(c.Context(), id); errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Outside interest record not found")
		} else if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Outside interest record deleted successfully"})
	}
}

// POST /api/outside-interest/:id/payments
func CreateOutsideInterestPaymentHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if _, err := st.GetOutsideInterest(c.Context(), id); errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Outside interest record not found")
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
			SourceType:    models.SourceOutsideInterest,
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
	st := models.SourceOutsideInterest
	return store.PaymentFilter{SourceType: &st, SourceID: &id}
}
