package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pride-finance-backend/internal/models"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	st := New(srv.URL, "test-key")
	st.backoffBase = time.Millisecond
	return st
}

func writeRows(t *testing.T, w http.ResponseWriter, rows any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rows); err != nil {
		t.Errorf("encode rows: %v", err)
	}
}

func TestRetryOnTransientStatus(t *testing.T) {
	calls := 0
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeRows(t, w, []models.Vehicle{{ID: 1, VehicleName: "TN-01"}})
	})

	got, err := st.ListVehicles(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, got, 1)
	assert.Equal(t, "TN-01", got[0].VehicleName)
}

func TestRetriesExhaustedBecomeUnavailable(t *testing.T) {
	calls := 0
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := st.ListVehicles(context.Background(), nil)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, 3, calls)
}

func TestClientErrorNeverRetries(t *testing.T) {
	calls := 0
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid input"}`))
	})

	_, err := st.ListVehicles(context.Background(), nil)

	assert.Equal(t, 1, calls)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnprocessableEntity, reqErr.Status)
	assert.Contains(t, reqErr.Body, "invalid input")
}

func TestListVehiclesQueryShape(t *testing.T) {
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vehicles", r.URL.Path)
		assert.Equal(t, "is.null", r.URL.Query().Get("deleted_at"))
		assert.Equal(t, "id.asc", r.URL.Query().Get("order"))
		assert.Equal(t, "eq.false", r.URL.Query().Get("is_closed"))
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		writeRows(t, w, []models.Vehicle{})
	})

	open := false
	_, err := st.ListVehicles(context.Background(), &open)
	assert.NoError(t, err)
}

func TestListPaymentsBySources(t *testing.T) {
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments", r.URL.Path)
		assert.Equal(t, "eq.vehicle", r.URL.Query().Get("source_type"))
		assert.Equal(t, "in.(1,2,5)", r.URL.Query().Get("source_id"))
		writeRows(t, w, []models.Payment{{ID: 10}})
	})

	got, err := st.ListPaymentsBySources(context.Background(), models.SourceVehicle, []int64{1, 2, 5})

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestListPaymentsBySourcesEmptyIDsSkipsCall(t *testing.T) {
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no call expected for an empty id set")
	})

	got, err := st.ListPaymentsBySources(context.Background(), models.SourceVehicle, nil)

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetVehicleNotFound(t *testing.T) {
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeRows(t, w, []models.Vehicle{})
	})

	_, err := st.GetVehicle(context.Background(), 42)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateReconcilesEmptyWriteBody(t *testing.T) {
	// The store accepts the insert but echoes nothing; the row must be
	// recovered through the distinguishing-field read-back.
	var readBackQuery map[string]string
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			readBackQuery = map[string]string{
				"vehicle_name": r.URL.Query().Get("vehicle_name"),
				"order":        r.URL.Query().Get("order"),
				"limit":        r.URL.Query().Get("limit"),
			}
			writeRows(t, w, []models.Vehicle{{ID: 7, VehicleName: "TN-07"}})
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	date, _ := models.ParseDate("2024-01-15")
	got, err := st.CreateVehicle(context.Background(), models.Vehicle{
		VehicleName:   "TN-07",
		LendTo:        "Kumar",
		DateOfLending: date,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "eq.TN-07", readBackQuery["vehicle_name"])
	assert.Equal(t, "id.desc", readBackQuery["order"])
	assert.Equal(t, "1", readBackQuery["limit"])
}

func TestCreateUnconfirmableWriteFails(t *testing.T) {
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			writeRows(t, w, []models.Vehicle{})
		}
	})

	date, _ := models.ParseDate("2024-01-15")
	_, err := st.CreateVehicle(context.Background(), models.Vehicle{
		VehicleName:   "TN-07",
		LendTo:        "Kumar",
		DateOfLending: date,
	})

	assert.ErrorIs(t, err, ErrWriteVerification)
}

func TestCreatePaymentMatchesOnClientRef(t *testing.T) {
	var inserted map[string]any
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			if err := json.NewDecoder(r.Body).Decode(&inserted); err != nil {
				t.Errorf("decode insert body: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			ref, _ := inserted["client_ref"].(string)
			assert.Equal(t, "eq."+ref, r.URL.Query().Get("client_ref"))
			writeRows(t, w, []models.Payment{{ID: 3, ClientRef: ref}})
		}
	})

	date, _ := models.ParseDate("2024-02-01")
	got, err := st.CreatePayment(context.Background(), models.Payment{
		SourceType:    models.SourceOther,
		PaymentType:   models.PaymentTypeCredit,
		PaymentDate:   date,
		PaymentStatus: models.PaymentStatusPaid,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
	assert.NotEmpty(t, inserted["client_ref"], "every insert carries a client_ref")
}

func TestPatchRefetchesWhenStoreStaysSilent(t *testing.T) {
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			assert.Equal(t, "eq.5", r.URL.Query().Get("id"))
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			writeRows(t, w, []models.Vehicle{{ID: 5, VehicleName: "renamed"}})
		}
	})

	got, err := st.UpdateVehicle(context.Background(), 5, map[string]any{"vehicle_name": "renamed"})

	require.NoError(t, err)
	assert.Equal(t, "renamed", got.VehicleName)
}

func TestPatchMissingRowIsNotFound(t *testing.T) {
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			writeRows(t, w, []models.Vehicle{})
		}
	})

	_, err := st.UpdateVehicle(context.Background(), 999, map[string]any{"rent": "100"})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteWithNoMatchIsNotFound(t *testing.T) {
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		writeRows(t, w, []models.Payment{})
	})

	err := st.DeletePayment(context.Background(), 404)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteConfirmedByEcho(t *testing.T) {
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeRows(t, w, []models.Payment{{ID: 11}})
	})

	assert.NoError(t, st.DeletePayment(context.Background(), 11))
}

func TestCloseSkipsSoftDeletedRow(t *testing.T) {
	// The close patch must carry the deleted_at guard so a hidden row is
	// never stamped closed; with nothing matched the close is a not-found.
	var patchQuery string
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			patchQuery = r.URL.Query().Get("deleted_at")
			writeRows(t, w, []models.Vehicle{})
		case http.MethodGet:
			writeRows(t, w, []models.Vehicle{})
		}
	})

	err := st.CloseVehicle(context.Background(), 5)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "is.null", patchQuery)
}

func TestSoftDeleteConfirmedByAbsence(t *testing.T) {
	gets := 0
	patched := false
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gets++
			if gets == 1 {
				writeRows(t, w, []models.Vehicle{{ID: 5}})
				return
			}
			// After the patch the row is hidden from active queries.
			writeRows(t, w, []models.Vehicle{})
		case http.MethodPatch:
			patched = true
			assert.Equal(t, "is.null", r.URL.Query().Get("deleted_at"))
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode patch body: %v", err)
			}
			if _, ok := body["deleted_at"]; !ok {
				t.Error("patch body must stamp deleted_at")
			}
			w.WriteHeader(http.StatusNoContent)
		}
	})

	err := st.SoftDeleteVehicle(context.Background(), 5)

	assert.NoError(t, err)
	assert.True(t, patched)
	assert.Equal(t, 2, gets)
}

func TestSoftDeleteOfDeletedRowIsNotFound(t *testing.T) {
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			t.Error("no patch expected for an already-hidden row")
		}
		writeRows(t, w, []models.Vehicle{})
	})

	err := st.SoftDeleteVehicle(context.Background(), 5)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSoftDeleteLeavingRowActiveFails(t *testing.T) {
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeRows(t, w, []models.Vehicle{{ID: 5}})
		case http.MethodPatch:
			w.WriteHeader(http.StatusNoContent)
		}
	})

	err := st.SoftDeleteVehicle(context.Background(), 5)

	assert.ErrorIs(t, err, ErrWriteVerification)
}

func TestDeleteSilentStoreConfirmedByAbsence(t *testing.T) {
	gets := 0
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			gets++
			writeRows(t, w, []models.Payment{})
		}
	})

	err := st.DeletePayment(context.Background(), 11)

	assert.NoError(t, err)
	assert.Equal(t, 1, gets)
}

func TestDeleteLeavingRowFails(t *testing.T) {
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			writeRows(t, w, []models.Payment{{ID: 11}})
		}
	})

	err := st.DeletePayment(context.Background(), 11)

	assert.ErrorIs(t, err, ErrWriteVerification)
}

func TestContextCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		cancel()
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	st.backoffBase = time.Minute // would hang without the ctx check

	_, err := st.ListVehicles(ctx, nil)

	assert.ErrorIs(t, err, context.Canceled)
}
