package store

import (
	"context"
	"net/url"
	"time"

	"pride-finance-backend/internal/models"
)

const vehiclesTable = "vehicles"

// ListVehicles returns vehicles, newest last, excluding soft-deleted
// rows. isClosed narrows to closed or open records when set.
func (s *Store) ListVehicles(ctx context.Context, isClosed *bool) ([]models.Vehicle, error) {
	q := url.Values{}
	q.Set("deleted_at", isNull)
	q.Set("order", "id.asc")
	if isClosed != nil {
		q.Set("is_closed", eq(*isClosed))
	}
	return listRows[models.Vehicle](ctx, s, vehiclesTable, q)
}

func (s *Store) GetVehicle(ctx context.Context, id int64) (*models.Vehicle, error) {
	q := byID(id)
	q.Set("deleted_at", isNull)
	row, err := firstRow[models.Vehicle](ctx, s, vehiclesTable, q)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return row, nil
}

func (s *Store) CreateVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error) {
	payload := map[string]any{
		"vehicle_name":      v.VehicleName,
		"principle_amount":  v.PrincipleAmount,
		"rent":              v.Rent,
		"payment_frequency": v.PaymentFrequency,
		"date_of_lending":   v.DateOfLending.String(),
		"lend_to":           v.LendTo,
		"is_closed":         false,
	}
	match := url.Values{}
	match.Set("vehicle_name", eq(v.VehicleName))
	match.Set("lend_to", eq(v.LendTo))
	match.Set("date_of_lending", eq(v.DateOfLending.String()))
	return createRow[models.Vehicle](ctx, s, vehiclesTable, payload, match)
}

func (s *Store) UpdateVehicle(ctx context.Context, id int64, patch map[string]any) (*models.Vehicle, error) {
	return patchRow[models.Vehicle](ctx, s, vehiclesTable, activeByID(id), patch)
}

func (s *Store) CloseVehicle(ctx context.Context, id int64) error {
	_, err := patchRow[models.Vehicle](ctx, s, vehiclesTable, activeByID(id), closePatch(time.Now()))
	return err
}

func (s *Store) SoftDeleteVehicle(ctx context.Context, id int64) error {
	return softDeleteRow[models.Vehicle](ctx, s, vehiclesTable, id)
}
