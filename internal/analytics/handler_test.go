package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pride-finance-backend/internal/models"
)

func paymentOn(sourceType models.SourceType, date string, amount string) models.Payment {
	d, _ := models.ParseDate(date)
	return models.Payment{
		SourceType:  sourceType,
		PaymentType: models.PaymentTypeCredit,
		PaymentDate: d,
		Amount:      decimal.RequireFromString(amount),
	}
}

func TestBuildRevenueTrendsBuckets(t *testing.T) {
	payments := []models.Payment{
		paymentOn(models.SourceVehicle, "2024-01-10", "6000"),
		paymentOn(models.SourceOutsideInterest, "2024-02-05", "1500"),
		paymentOn(models.SourceVehicle, "2024-03-01", "6000"),
		paymentOn(models.SourceChit, "2024-03-15", "900"),
		paymentOn(models.SourceVehicle, "2023-12-20", "5000"), // before the window
	}

	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	got := buildRevenueTrends(payments, now, 3)

	assert.Equal(t, []string{"Jan 2024", "Feb 2024", "Mar 2024"}, got.Labels)
	require.Len(t, got.Datasets, 3)

	vehicle := got.Datasets[0].Data
	interest := got.Datasets[1].Data
	total := got.Datasets[2].Data
	assert.True(t, vehicle[0].Equal(decimal.RequireFromString("6000")))
	assert.True(t, interest[1].Equal(decimal.RequireFromString("1500")))
	assert.True(t, vehicle[2].Equal(decimal.RequireFromString("6000")))
	assert.True(t, total[2].Equal(decimal.RequireFromString("6900")), "chit credits count toward total")
	assert.True(t, total[0].Equal(decimal.RequireFromString("6000")), "payments before the window are dropped")
}

func TestBuildRevenueTrendsMonthEndAnchor(t *testing.T) {
	// Buckets built from March 31 itself would skip February entirely
	// (Feb 31 normalizes to March). The first-of-month anchor keeps every
	// month distinct.
	payments := []models.Payment{
		paymentOn(models.SourceVehicle, "2024-02-14", "2000"),
	}

	now := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	got := buildRevenueTrends(payments, now, 3)

	assert.Equal(t, []string{"Jan 2024", "Feb 2024", "Mar 2024"}, got.Labels)
	assert.True(t, got.Datasets[0].Data[1].Equal(decimal.RequireFromString("2000")))
	assert.True(t, got.Datasets[2].Data[1].Equal(decimal.RequireFromString("2000")))
}

func TestBuildRevenueTrendsDebitsIgnored(t *testing.T) {
	d, _ := models.ParseDate("2024-03-01")
	payments := []models.Payment{
		{
			SourceType:  models.SourceVehicle,
			PaymentType: models.PaymentTypeDebit,
			PaymentDate: d,
			Amount:      decimal.RequireFromString("4000"),
		},
	}

	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	got := buildRevenueTrends(payments, now, 1)

	assert.True(t, got.Datasets[2].Data[0].IsZero())
}
