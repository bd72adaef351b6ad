package vehicles

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

type CreateVehicleRequest struct {
	VehicleName      string                  `json:"vehicle_name"`
	PrincipleAmount  decimal.Decimal         `json:"principle_amount"`
	Rent             decimal.Decimal         `json:"rent"`
	PaymentFrequency models.PaymentFrequency `json:"payment_frequency"`
	DateOfLending    string                  `json:"date_of_lending"`
	LendTo           string                  `json:"lend_to"`
}

type UpdateVehicleRequest struct {
	VehicleName      *string                  `json:"vehicle_name"`
	PrincipleAmount  *decimal.Decimal         `json:"principle_amount"`
	Rent             *decimal.Decimal         `json:"rent"`
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

type VehicleResponse struct {
	models.Vehicle
	ExtendedDays  *int            `json:"extended_days"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
}

func toResponse(v models.Vehicle, totals finance.Totals, today time.Time) (VehicleResponse, error) {
	resp := VehicleResponse{
		Vehicle:       v,
		TotalPayments: totals.Total,
		PendingAmount: totals.Pending,
	}
	days, applicable, err := finance.ExtendedDays(v.IsClosed, v.DateOfLending.Time, v.PaymentFrequency, today)
	if err != nil {
		return resp, err
	}
	if applicable {
		resp.ExtendedDays = &days
	}
	return resp, nil
}

// GET /api/vehicles?is_closed=true|false
func ListVehiclesHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		isClosed, err := parseIsClosed(c)
		if err != nil {
			return err
		}

		recs, err := st.ListVehicles(c.Context(), isClosed)
		if err != nil {
			return err
		}

		ids := make([]int64, 0, len(recs))
		for _, r := range recs {
			ids = append(ids, r.ID)
		}
		// One batched payment query for the whole listing.
		pays, err := st.ListPaymentsBySources(c.Context(), models.SourceVehicle, ids)
		if err != nil {
			return err
		}
		totals := finance.TotalsBySource(pays)

		now := time.Now()
		resp := make([]VehicleResponse, 0, len(recs))
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

// GET /api/vehicles/:id
func GetVehicleHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		rec, err := st.GetVehicle(c.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Vehicle not found")
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

// POST /api/vehicles
func CreateVehicleHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateVehicleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.VehicleName == "" || body.LendTo == "" {
			return fiber.NewError(fiber.StatusBadRequest, "vehicle_name and lend_to are required")
		}
		if !body.PrincipleAmount.IsPositive() || !body.Rent.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "principle_amount and rent must be greater than 0")
		}
		if !body.PaymentFrequency.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "payment_frequency must be monthly, bimonthly or quarterly")
		}
		date, err := models.ParseDate(body.DateOfLending)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date_of_lending must be 'YYYY-MM-DD'")
		}

		created, err := st.CreateVehicle(c.Context(), models.Vehicle{
			VehicleName:      body.VehicleName,
			PrincipleAmount:  body.PrincipleAmount,
			Rent:             body.Rent,
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

// PUT /api/vehicles/:id
func UpdateVehicleHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body UpdateVehicleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if _, err := st.GetVehicle(c.Context(), id); errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Vehicle not found")
		} else if err != nil {
			return err
		}

		patch := map[string]any{}
		if body.VehicleName != nil {
			if *body.VehicleName == "" {
				return fiber.NewError(fiber.StatusBadRequest, "vehicle_name cannot be empty")
			}
			patch["vehicle_name"] = *body.VehicleName
		}
		if body.PrincipleAmount != nil {
			if !body.PrincipleAmount.IsPositive() {
				return fiber.NewError(fiber.StatusBadRequest, "principle_amount must be greater than 0")
			}
			patch["principle_amount"] = *body.PrincipleAmount
		}
		if body.Rent != nil {
			if !body.Rent.IsPositive() {
				return fiber.NewError(fiber.StatusBadRequest, "rent must be greater than 0")
			}
			patch["rent"] = *body.Rent
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

		updated, err := st.UpdateVehicle(c.Context(), id, patch)
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

// POST /api/vehicles/:id/close
func CloseVehicleHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if err := st.CloseVehicle(c.Context(), id); errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Vehicle not found")
		} else if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Vehicle record closed successfully"})
	}
}

// DELETE /api/vehicles/:id (soft delete)
func DeleteVehicleHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if err := st.SoftDeleteVehicle(c.Context(), id); errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Vehicle not found")
		} else if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Vehicle record deleted successfully"})
	}
}

// POST /api/vehicles/:id/payments
func CreateVehiclePaymentHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if _, err := st.GetVehicle(c.Context(), id); errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Vehicle not found")
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
			SourceType:    models.SourceVehicle,
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
	st := models.SourceVehicle
	return store.PaymentFilter{SourceType: &st, SourceID: &id}
}
