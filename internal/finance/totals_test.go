package finance_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pride-finance-backend/internal/finance"
	"pride-finance-backend/internal/models"
)

func amt(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func credit(sourceID int64, v string) models.Payment {
	return models.Payment{
		SourceID:    &sourceID,
		PaymentType: models.PaymentTypeCredit,
		Amount:      amt(v),
	}
}

func debit(sourceID int64, v string) models.Payment {
	return models.Payment{
		SourceID:    &sourceID,
		PaymentType: models.PaymentTypeDebit,
		Amount:      amt(v),
	}
}

func TestPaymentTotals(t *testing.T) {
	t.Run("empty list is zero", func(t *testing.T) {
		got := finance.PaymentTotals(nil)
		assert.True(t, got.Total.IsZero())
		assert.True(t, got.Pending.IsZero())
	})

	t.Run("credits and debits split", func(t *testing.T) {
		got := finance.PaymentTotals([]models.Payment{
			credit(1, "60"),
			credit(1, "40"),
			debit(1, "40"),
		})
		assert.True(t, got.Total.Equal(amt("100")), "total %s", got.Total)
		assert.True(t, got.Pending.Equal(amt("40")), "pending %s", got.Pending)
	})
}

func TestTotalsBySource(t *testing.T) {
	payments := []models.Payment{
		credit(1, "100"),
		debit(1, "25"),
		credit(2, "10"),
		{PaymentType: models.PaymentTypeCredit, Amount: amt("999")}, // no source id
	}

	got := finance.TotalsBySource(payments)

	assert.Len(t, got, 2)
	assert.True(t, got[1].Total.Equal(amt("100")))
	assert.True(t, got[1].Pending.Equal(amt("25")))
	assert.True(t, got[2].Total.Equal(amt("10")))
}

func TestProfitForChit(t *testing.T) {
	chit := models.Chit{
		TotalAmount:    amt("12000"),
		DurationMonths: 12,
		MonthlyAmount:  amt("1000"),
	}
	payments := []models.Payment{
		{PaymentType: models.PaymentTypeCredit, Amount: amt("900")},
		{PaymentType: models.PaymentTypeCredit, Amount: amt("900")},
		{PaymentType: models.PaymentTypeCredit, Amount: amt("900")},
	}

	t.Run("discounted contributions accrue profit", func(t *testing.T) {
		got := finance.ProfitForChit(chit, payments)

		assert.Equal(t, 3, got.PaymentsCount)
		assert.True(t, got.TotalPayments.Equal(amt("2700")))
		assert.True(t, got.ExpectedTotal.Equal(amt("3000")))
		assert.True(t, got.TotalProfit.Equal(amt("300")))
		assert.True(t, got.ProfitPercentage.Equal(amt("2.5")), "pct %s", got.ProfitPercentage)
		assert.True(t, got.NetProfit.IsZero(), "net profit only after collection")
	})

	t.Run("overpaying goes negative", func(t *testing.T) {
		got := finance.ProfitForChit(chit, []models.Payment{
			{PaymentType: models.PaymentTypeCredit, Amount: amt("1100")},
		})
		assert.True(t, got.TotalProfit.Equal(amt("-100")))
	})

	t.Run("collection yields net profit", func(t *testing.T) {
		collected := amt("3200")
		c := chit
		c.IsCollected = true
		c.CollectedAmount = &collected

		got := finance.ProfitForChit(c, payments)

		assert.True(t, got.CollectedAmount.Equal(amt("3200")))
		assert.True(t, got.NetProfit.Equal(amt("500")))
		assert.True(t, got.NetProfitPercentage.Round(4).Equal(amt("18.5185")), "pct %s", got.NetProfitPercentage)
	})

	t.Run("no payments no division", func(t *testing.T) {
		got := finance.ProfitForChit(models.Chit{}, nil)
		assert.True(t, got.TotalProfit.IsZero())
		assert.True(t, got.ProfitPercentage.IsZero())
	})
}

func TestFilterDangling(t *testing.T) {
	deleted := int64(99)
	live := finance.LiveSet{}
	live.Add(models.SourceVehicle, 1)
	live.Add(models.SourceChit, 7)

	payments := []models.Payment{
		credit(1, "10"),
		{SourceType: models.SourceVehicle, SourceID: &deleted, PaymentType: models.PaymentTypeCredit, Amount: amt("50")},
		{SourceType: models.SourceChit, SourceID: ptr(int64(7)), PaymentType: models.PaymentTypeCredit, Amount: amt("20")},
		{SourceType: models.SourceOther, PaymentType: models.PaymentTypeCredit, Amount: amt("5")},
	}
	payments[0].SourceType = models.SourceVehicle

	got := finance.FilterDangling(payments, live)

	assert.Len(t, got, 3)
	for _, p := range got {
		if p.SourceID != nil {
			assert.NotEqual(t, deleted, *p.SourceID)
		}
	}
}

func ptr[T any](v T) *T { return &v }
