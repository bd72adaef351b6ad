package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"pride-finance-backend/internal/finance"
	"pride-finance-backend/internal/models"
	"pride-finance-backend/internal/store"
)

type Summary struct {
	TotalVehicles          int             `json:"total_vehicles"`
	ActiveVehicles         int             `json:"active_vehicles"`
	ClosedVehicles         int             `json:"closed_vehicles"`
	TotalOutsideInterest   int             `json:"total_outside_interest"`
	ActiveOutsideInterest  int             `json:"active_outside_interest"`
	ClosedOutsideInterest  int             `json:"closed_outside_interest"`
	TotalLoans             int             `json:"total_loans"`
	ActiveLoans            int             `json:"active_loans"`
	ClosedLoans            int             `json:"closed_loans"`
	TotalPaymentsThisMonth decimal.Decimal `json:"total_payments_this_month"`
	PendingPayments        decimal.Decimal `json:"pending_payments"`
	TotalPrincipleAmount   decimal.Decimal `json:"total_principle_amount"`
}

type Overview struct {
	Vehicles         []models.Vehicle         `json:"vehicles"`
	OutsideInterests []models.OutsideInterest `json:"outside_interests"`
	Loans            []models.Loan            `json:"loans"`
	RecentPayments   []models.Payment         `json:"recent_payments"`
	Summary          Summary                  `json:"summary"`
}

// buildSummary aggregates the whole book. Payments whose source no
// longer resolves are excluded here, unlike the raw payment listing.
func buildSummary(ctx context.Context, st *store.Store, now time.Time) (*Summary, []models.Vehicle, []models.OutsideInterest, []models.Loan, []models.Payment, error) {
	vehicles, err := st.ListVehicles(ctx, nil)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	outsides, err := st.ListOutsideInterests(ctx, nil)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	loans, err := st.ListLoans(ctx, nil)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	chits, err := st.ListChits(ctx, nil)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	payments, err := st.ListPayments(ctx, store.PaymentFilter{})
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	live := finance.LiveSet{}
	for _, v := range vehicles {
		live.Add(models.SourceVehicle, v.ID)
	}
	for _, o := range outsides {
		live.Add(models.SourceOutsideInterest, o.ID)
	}
	for _, l := range loans {
		live.Add(models.SourceLoan, l.ID)
	}
	for _, c := range chits {
		live.Add(models.SourceChit, c.ID)
	}
	payments = finance.FilterDangling(payments, live)

	s := Summary{
		TotalVehicles:          len(vehicles),
		TotalOutsideInterest:   len(outsides),
		TotalLoans:             len(loans),
		TotalPaymentsThisMonth: decimal.Zero,
		PendingPayments:        decimal.Zero,
		TotalPrincipleAmount:   decimal.Zero,
	}

	for _, v := range vehicles {
		if v.IsClosed {
			s.ClosedVehicles++
		} else {
			s.ActiveVehicles++
			s.TotalPrincipleAmount = s.TotalPrincipleAmount.Add(v.PrincipleAmount)
		}
	}
	for _, o := range outsides {
		if o.IsClosed {
			s.ClosedOutsideInterest++
		} else {
			s.ActiveOutsideInterest++
			s.TotalPrincipleAmount = s.TotalPrincipleAmount.Add(o.PrincipleAmount)
		}
	}
	for _, l := range loans {
		if l.IsClosed {
			s.ClosedLoans++
		} else {
			s.ActiveLoans++
		}
	}

	for _, p := range payments {
		if p.PaymentType == models.PaymentTypeCredit &&
			p.PaymentDate.Year() == now.Year() && p.PaymentDate.Month() == now.Month() {
			s.TotalPaymentsThisMonth = s.TotalPaymentsThisMonth.Add(p.Amount)
		}
		if p.PaymentType == models.PaymentTypeDebit && p.PaymentStatus == models.PaymentStatusPending {
			s.PendingPayments = s.PendingPayments.Add(p.Amount)
		}
	}

	return &s, vehicles, outsides, loans, payments, nil
}

// GET /api/dashboard/summary
func SummaryHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, _, _, _, _, err := buildSummary(c.Context(), st, time.Now())
		if err != nil {
			return err
		}
		return c.JSON(s)
	}
}

// GET /api/dashboard/overview
func OverviewHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, vehicles, outsides, loans, payments, err := buildSummary(c.Context(), st, time.Now())
		if err != nil {
			return err
		}

		sort.Slice(payments, func(i, j int) bool {
			return payments[i].CreatedAt.After(payments[j].CreatedAt)
		})
		if len(payments) > 10 {
			payments = payments[:10]
		}

		return c.JSON(Overview{
			Vehicles:         vehicles,
			OutsideInterests: outsides,
			Loans:            loans,
			RecentPayments:   payments,
			Summary:          *s,
		})
	}
}
