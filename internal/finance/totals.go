package finance

import (
	"github.com/shopspring/decimal"

	"pride-finance-backend/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Totals is the running payment position of one record: credited amount
// in, debit amount still pending.
type Totals struct {
	Total   decimal.Decimal
	Pending decimal.Decimal
}

// PaymentTotals sums credits into Total and debits into Pending. An
// empty list is a legitimate zero, not an error.
func PaymentTotals(payments []models.Payment) Totals {
	t := Totals{Total: decimal.Zero, Pending: decimal.Zero}
	for _, p := range payments {
		switch p.PaymentType {
		case models.PaymentTypeCredit:
			t.Total = t.Total.Add(p.Amount)
		case models.PaymentTypeDebit:
			t.Pending = t.Pending.Add(p.Amount)
		}
	}
	return t
}

// TotalsBySource groups payment totals by source id, for enriching a
// whole listing from one batched payment query.
func TotalsBySource(payments []models.Payment) map[int64]Totals {
	grouped := make(map[int64][]models.Payment)
	for _, p := range payments {
		if p.SourceID == nil {
			continue
		}
		grouped[*p.SourceID] = append(grouped[*p.SourceID], p)
	}
	out := make(map[int64]Totals, len(grouped))
	for id, ps := range grouped {
		out[id] = PaymentTotals(ps)
	}
	return out
}

// ChitProfit is the derived position of a chit against its payments.
type ChitProfit struct {
	TotalPayments       decimal.Decimal
	ExpectedTotal       decimal.Decimal
	TotalProfit         decimal.Decimal
	ProfitPercentage    decimal.Decimal
	PaymentsCount       int
	CollectedAmount     decimal.Decimal
	NetProfit           decimal.Decimal
	NetProfitPercentage decimal.Decimal
}

// ProfitForChit computes chit profit figures. TotalProfit is left
// unclamped: paying more than the expected monthly amount yields a
// negative profit. Percentages guard their zero denominators.
func ProfitForChit(c models.Chit, payments []models.Payment) ChitProfit {
	p := ChitProfit{
		TotalPayments:       decimal.Zero,
		ExpectedTotal:       decimal.Zero,
		TotalProfit:         decimal.Zero,
		ProfitPercentage:    decimal.Zero,
		CollectedAmount:     decimal.Zero,
		NetProfit:           decimal.Zero,
		NetProfitPercentage: decimal.Zero,
		PaymentsCount:       len(payments),
	}

	for _, pay := range payments {
		p.TotalPayments = p.TotalPayments.Add(pay.Amount)
	}
	p.ExpectedTotal = c.MonthlyAmount.Mul(decimal.NewFromInt(int64(len(payments))))
	p.TotalProfit = p.ExpectedTotal.Sub(p.TotalPayments)
	if c.TotalAmount.IsPositive() {
		p.ProfitPercentage = p.TotalProfit.Div(c.TotalAmount).Mul(hundred)
	}

	if c.IsCollected {
		if c.CollectedAmount != nil {
			p.CollectedAmount = *c.CollectedAmount
		}
		p.NetProfit = p.CollectedAmount.Sub(p.TotalPayments)
		if p.TotalPayments.IsPositive() {
			p.NetProfitPercentage = p.NetProfit.Div(p.TotalPayments).Mul(hundred)
		}
	}

	return p
}
