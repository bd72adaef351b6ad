package vehicles_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pride-finance-backend/internal/store"
	"pride-finance-backend/internal/vehicles"
)

// fakeTableStore answers like the hosted table store: JSON row arrays
// per table, narrowing on the filter params the client sends.
func fakeTableStore(t *testing.T, vehicleRows, paymentRows []map[string]any) *store.Store {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var rows []map[string]any
		switch r.URL.Path {
		case "/vehicles":
			for _, row := range vehicleRows {
				if idFilter := r.URL.Query().Get("id"); idFilter != "" && idFilter != "eq."+itoa(row["id"]) {
					continue
				}
				rows = append(rows, row)
			}
		case "/payments":
			rows = paymentRows
		default:
			t.Errorf("unexpected table %s", r.URL.Path)
		}
		if rows == nil {
			rows = []map[string]any{}
		}
		if err := json.NewEncoder(w).Encode(rows); err != nil {
			t.Errorf("encode rows: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return store.New(srv.URL, "test-key")
}

func itoa(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func newApp(st *store.Store) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Get("/api/vehicles", vehicles.ListVehiclesHandler(st))
	app.Get("/api/vehicles/:id", vehicles.GetVehicleHandler(st))
	app.Post("/api/vehicles", vehicles.CreateVehicleHandler(st))
	return app
}

func TestListVehiclesEnrichment(t *testing.T) {
	st := fakeTableStore(t,
		[]map[string]any{
			{
				"id": 1, "vehicle_name": "TN-01", "lend_to": "Kumar",
				"principle_amount": "200000", "rent": "6000",
				"payment_frequency": "monthly", "date_of_lending": "2024-01-15",
				"is_closed": false,
			},
			{
				"id": 2, "vehicle_name": "TN-02", "lend_to": "Ravi",
				"principle_amount": "150000", "rent": "5000",
				"payment_frequency": "monthly", "date_of_lending": "2023-05-01",
				"is_closed": true, "closure_date": "2024-01-01",
			},
		},
		[]map[string]any{
			{"id": 10, "source_type": "vehicle", "source_id": 1, "payment_type": "credit", "amount": "6000", "payment_date": "2024-02-15", "payment_status": "PAID"},
			{"id": 11, "source_type": "vehicle", "source_id": 1, "payment_type": "debit", "amount": "2000", "payment_date": "2024-03-15", "payment_status": "PENDING"},
		},
	)
	app := newApp(st)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/vehicles", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []struct {
		ID            int64   `json:"id"`
		ExtendedDays  *int    `json:"extended_days"`
		TotalPayments string  `json:"total_payments"`
		PendingAmount string  `json:"pending_amount"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 2)

	open := got[0]
	assert.Equal(t, int64(1), open.ID)
	require.NotNil(t, open.ExtendedDays, "open records age")
	assert.Greater(t, *open.ExtendedDays, 0)
	assert.Equal(t, "6000", open.TotalPayments)
	assert.Equal(t, "2000", open.PendingAmount)

	closed := got[1]
	assert.Nil(t, closed.ExtendedDays, "closed records do not age")
	assert.Equal(t, "0", closed.TotalPayments)
}

func TestGetVehicleNotFound(t *testing.T) {
	st := fakeTableStore(t, nil, nil)
	app := newApp(st)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/vehicles/99", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Vehicle not found", body["error"])
}

func TestCreateVehicleValidation(t *testing.T) {
	st := fakeTableStore(t, nil, nil)
	app := newApp(st)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"lend_to": "Kumar", "principle_amount": "1000", "rent": "100", "payment_frequency": "monthly", "date_of_lending": "2024-01-01"}},
		{"zero rent", map[string]any{"vehicle_name": "TN-01", "lend_to": "Kumar", "principle_amount": "1000", "rent": "0", "payment_frequency": "monthly", "date_of_lending": "2024-01-01"}},
		{"unknown frequency", map[string]any{"vehicle_name": "TN-01", "lend_to": "Kumar", "principle_amount": "1000", "rent": "100", "payment_frequency": "weekly", "date_of_lending": "2024-01-01"}},
		{"bad date", map[string]any{"vehicle_name": "TN-01", "lend_to": "Kumar", "principle_amount": "1000", "rent": "100", "payment_frequency": "monthly", "date_of_lending": "01/01/2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/vehicles", bytes.NewReader(raw))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}
