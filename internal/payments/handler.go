package payments

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"pride-finance-backend/internal/models"
	"pride-finance-backend/internal/store"
)

type CreatePaymentRequest struct {
	SourceType    models.SourceType    `json:"source_type"`
	SourceID      *int64               `json:"source_id"`
	PaymentType   models.PaymentType   `json:"payment_type"`
	PaymentDate   string               `json:"payment_date"`
	Amount        decimal.Decimal      `json:"amount"`
	Description   string               `json:"description"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
}

type UpdatePaymentRequest struct {
	SourceType    *models.SourceType    `json:"source_type"`
	SourceID      *int64                `json:"source_id"`
	PaymentType   *models.PaymentType   `json:"payment_type"`
	PaymentDate   *string               `json:"payment_date"`
	Amount        *decimal.Decimal      `json:"amount"`
	Description   *string               `json:"description"`
	PaymentStatus *models.PaymentStatus `json:"payment_status"`
}

// GET /api/payments?source_type=&source_id=
// Raw listing: dangling source references are preserved here.
func ListPaymentsHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var filter store.PaymentFilter

		if raw := c.Query("source_type"); raw != "" {
			t := models.SourceType(raw)
			if !t.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "source_type must be vehicle, outside_interest, loan, chit or other")
			}
			filter.SourceType = &t
		}
		if raw := c.Query("source_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "source_id must be a positive integer")
			}
			filter.SourceID = &id
		}

		pays, err := st.ListPayments(c.Context(), filter)
		if err != nil {
			return err
		}
		return c.JSON(pays)
	}
}

// GET /api/payments/:id
func GetPaymentHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		p, err := st.GetPayment(c.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Payment not found")
		}
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// POST /api/payments
func CreatePaymentHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if !body.SourceType.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "source_type must be vehicle, outside_interest, loan, chit or other")
		}
		if body.SourceType != models.SourceOther && body.SourceID == nil {
			return fiber.NewError(fiber.StatusBadRequest, "source_id is required for this source_type")
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
			SourceType:    body.SourceType,
			SourceID:      body.SourceID,
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

// PUT /api/payments/:id
func UpdatePaymentHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body UpdatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if _, err := st.GetPayment(c.Context(), id); errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Payment not found")
		} else if err != nil {
			return err
		}

		patch := map[string]any{}
		if body.SourceType != nil {
			if !body.SourceType.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "source_type must be vehicle, outside_interest, loan, chit or other")
			}
			patch["source_type"] = *body.SourceType
		}
		if body.SourceID != nil {
			if *body.SourceID <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "source_id must be a positive integer")
			}
			patch["source_id"] = *body.SourceID
		}
		if body.PaymentType != nil {
			if !body.PaymentType.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "payment_type must be credit or debit")
			}
			patch["payment_type"] = *body.PaymentType
		}
		if body.PaymentDate != nil {
			date, err := models.ParseDate(*body.PaymentDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "payment_date must be 'YYYY-MM-DD'")
			}
			patch["payment_date"] = date.String()
		}
		if body.Amount != nil {
			if !body.Amount.IsPositive() {
				return fiber.NewError(fiber.StatusBadRequest, "amount must be greater than 0")
			}
			patch["amount"] = *body.Amount
		}
		if body.Description != nil {
			patch["description"] = *body.Description
		}
		if body.PaymentStatus != nil {
			if !body.PaymentStatus.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "payment_status must be PAID, PARTIAL or PENDING")
			}
			patch["payment_status"] = *body.PaymentStatus
		}
		if len(patch) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "No fields to update")
		}

		updated, err := st.UpdatePayment(c.Context(), id, patch)
		if err != nil {
			return err
		}
		return c.JSON(updated)
	}
}

// DELETE /api/payments/:id (permanent)
func DeletePaymentHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if err := st.DeletePayment(c.Context(), id); errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Payment not found")
		} else if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Payment deleted successfully"})
	}
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return id, nil
}
