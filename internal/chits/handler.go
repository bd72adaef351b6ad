package chits

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"pride-finance-backend/internal/finance"
	"pride-finance-backend/internal/models"
	"pride-finance-backend/internal/store"
)

type CreateChitRequest struct {
	ChitName       string          `json:"chit_name"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	DurationMonths int             `json:"duration_months"`
	ToWhom         string          `json:"to_whom"`
	StartDate      string          `json:"start_date"`
}

type UpdateChitRequest struct {
	ChitName       *string          `json:"chit_name"`
	TotalAmount    *decimal.Decimal `json:"total_amount"`
	DurationMonths *int             `json:"duration_months"`
	ToWhom         *string          `json:"to_whom"`
	StartDate      *string          `json:"start_date"`
}

type CollectChitRequest struct {
	CollectedAmount decimal.Decimal `json:"collected_amount"`
	CollectedDate   string          `json:"collected_date"`
}

type ChitResponse struct {
	models.Chit
	TotalPayments       decimal.Decimal `json:"total_payments"`
	TotalProfit         decimal.Decimal `json:"total_profit"`
	ProfitPercentage    decimal.Decimal `json:"profit_percentage"`
	PaymentsCount       int             `json:"payments_count"`
	NetProfit           decimal.Decimal `json:"net_profit"`
	NetProfitPercentage decimal.Decimal `json:"net_profit_percentage"`
}

// ChitPaymentItem is one contribution annotated with its profit against
// the expected monthly amount.
type ChitPaymentItem struct {
	models.Payment
	ExpectedAmount   decimal.Decimal `json:"expected_amount"`
	Profit           decimal.Decimal `json:"profit"`
	ProfitPercentage decimal.Decimal `json:"profit_percentage"`
}

type ChitPaymentsResponse struct {
	Chit                    models.Chit       `json:"chit"`
	Payments                []ChitPaymentItem `json:"payments"`
	TotalPayments           int               `json:"total_payments"`
	TotalAmountReceived     decimal.Decimal   `json:"total_amount_received"`
	TotalExpected           decimal.Decimal   `json:"total_expected"`
	TotalProfit             decimal.Decimal   `json:"total_profit"`
	OverallProfitPercentage decimal.Decimal   `json:"overall_profit_percentage"`
}

func toResponse(c models.Chit, payments []models.Payment) ChitResponse {
	p := finance.ProfitForChit(c, payments)
	return ChitResponse{
		Chit:                c,
		TotalPayments:       p.TotalPayments,
		TotalProfit:         p.TotalProfit,
		ProfitPercentage:    p.ProfitPercentage,
		PaymentsCount:       p.PaymentsCount,
		NetProfit:           p.NetProfit,
		NetProfitPercentage: p.NetProfitPercentage,
	}
}

// GET /api/chits?is_closed=true|false
func ListChitsHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		isClosed, err := parseIsClosed(c)
		if err != nil {
			return err
		}

		recs, err := st.ListChits(c.Context(), isClosed)
		if err != nil {
			return err
		}

		ids := make([]int64, 0, len(recs))
		for _, r := range recs {
			ids = append(ids, r.ID)
		}
		pays, err := st.ListPaymentsBySources(c.Context(), models.SourceChit, ids)
		if err != nil {
			return err
		}
		grouped := make(map[int64][]models.Payment)
		for _, p := range pays {
			if p.SourceID != nil {
				grouped[*p.SourceID] = append(grouped[*p.SourceID], p)
			}
		}

		resp := make([]ChitResponse, 0, len(recs))
		for _, r := range recs {
			resp = append(resp, toResponse(r, grouped[r.ID]))
		}
		return c.JSON(resp)
	}
}

// GET /api/chits/:id
func GetChitHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		chit, err := st.GetChit(c.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Chit not found")
		}
		if err != nil {
			return err
		}

		pays, err := st.ListPayments(c.Context(), paymentFilter(id))
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*chit, pays))
	}
}

// POST /api/chits
func CreateChitHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateChitRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.ChitName == "" || body.ToWhom == "" {
			return fiber.NewError(fiber.StatusBadRequest, "chit_name and to_whom are required")
		}
		if !body.TotalAmount.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "total_amount must be greater than 0")
		}
		if body.DurationMonths <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "duration_months must be greater than 0")
		}
		startDate, err := models.ParseDate(body.StartDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "start_date must be 'YYYY-MM-DD'")
		}

		monthly := body.TotalAmount.Div(decimal.NewFromInt(int64(body.DurationMonths)))
		created, err := st.CreateChit(c.Context(), models.Chit{
			ChitName:       body.ChitName,
			TotalAmount:    body.TotalAmount,
			DurationMonths: body.DurationMonths,
			MonthlyAmount:  monthly,
			ToWhom:         body.ToWhom,
			StartDate:      startDate,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(*created, nil))
	}
}

// PUT /api/chits/:id
func UpdateChitHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body UpdateChitRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		existing, err := st.GetChit(c.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Chit not found")
		}
		if err != nil {
			return err
		}

		patch := map[string]any{}
		totalAmount := existing.TotalAmount
		durationMonths := existing.DurationMonths

		if body.ChitName != nil {
			if *body.ChitName == "" {
				return fiber.NewError(fiber.StatusBadRequest, "chit_name cannot be empty")
			}
			patch["chit_name"] = *body.ChitName
		}
		if body.TotalAmount != nil {
			if !body.TotalAmount.IsPositive() {
				return fiber.NewError(fiber.StatusBadRequest, "total_amount must be greater than 0")
			}
			patch["total_amount"] = *body.TotalAmount
			totalAmount = *body.TotalAmount
		}
		if body.DurationMonths != nil {
			if *body.DurationMonths <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "duration_months must be greater than 0")
			}
			patch["duration_months"] = *body.DurationMonths
			durationMonths = *body.DurationMonths
		}
		if body.ToWhom != nil {
			if *body.ToWhom == "" {
				return fiber.NewError(fiber.StatusBadRequest, "to_whom cannot be empty")
			}
			patch["to_whom"] = *body.ToWhom
		}
		if body.StartDate != nil {
			startDate, err := models.ParseDate(*body.StartDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "start_date must be 'YYYY-MM-DD'")
			}
			patch["start_date"] = startDate.String()
		}
		if len(patch) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "No fields to update")
		}

		// The monthly contribution follows total and duration.
		if body.TotalAmount != nil || body.DurationMonths != nil {
			patch["monthly_amount"] = totalAmount.Div(decimal.NewFromInt(int64(durationMonths)))
		}

		updated, err := st.UpdateChit(c.Context(), id, patch)
		if err != nil {
			return err
		}

		pays, err := st.ListPayments(c.Context(), paymentFilter(id))
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*updated, pays))
	}
}

// POST /api/chits/:id/close
func CloseChitHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if err := st.CloseChit(c.Context(), id); errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Chit not found")
		} else if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Chit closed successfully"})
	}
}

// POST /api/chits/:id/collect
func CollectChitHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body CollectChitRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if !body.CollectedAmount.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "collected_amount must be greater than 0")
		}
		date, err := models.ParseDate(body.CollectedDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "collected_date must be 'YYYY-MM-DD'")
		}

		existing, err := st.GetChit(c.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Chit not found")
		}
		if err != nil {
			return err
		}
		if existing.IsCollected {
			return fiber.NewError(fiber.StatusBadRequest, "Chit is already collected")
		}

		if err := st.CollectChit(c.Context(), id, body.CollectedAmount, date); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Chit collected successfully"})
	}
}

// DELETE /api/chits/:id (permanent)
func DeleteChitHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if err := st.DeleteChit(c.Context(), id); errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Chit not found")
		} else if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Chit deleted successfully"})
	}
}

// GET /api/chits/:id/payments
func GetChitPaymentsHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		chit, err := st.GetChit(c.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Chit not found")
		}
		if err != nil {
			return err
		}

		pays, err := st.ListPayments(c.Context(), paymentFilter(id))
		if err != nil {
			return err
		}

		items := make([]ChitPaymentItem, 0, len(pays))
		received := decimal.Zero
		profitSum := decimal.Zero
		for _, p := range pays {
			profit := chit.MonthlyAmount.Sub(p.Amount)
			pct := decimal.Zero
			if chit.MonthlyAmount.IsPositive() {
				pct = profit.Div(chit.MonthlyAmount).Mul(decimal.NewFromInt(100))
			}
			items = append(items, ChitPaymentItem{
				Payment:          p,
				ExpectedAmount:   chit.MonthlyAmount,
				Profit:           profit,
				ProfitPercentage: pct,
			})
			received = received.Add(p.Amount)
			profitSum = profitSum.Add(profit)
		}

		overallPct := decimal.Zero
		if chit.TotalAmount.IsPositive() {
			overallPct = profitSum.Div(chit.TotalAmount).Mul(decimal.NewFromInt(100))
		}

		return c.JSON(ChitPaymentsResponse{
			Chit:                    *chit,
			Payments:                items,
			TotalPayments:           len(pays),
			TotalAmountReceived:     received,
			TotalExpected:           chit.MonthlyAmount.Mul(decimal.NewFromInt(int64(len(pays)))),
			TotalProfit:             profitSum,
			OverallProfitPercentage: overallPct,
		})
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
	st := models.SourceChit
	return store.PaymentFilter{SourceType: &st, SourceID: &id}
}
