package analytics

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"pride-finance-backend/internal/finance"
	"pride-finance-backend/internal/models"
	"pride-finance-backend/internal/store"
)

type PaymentAnalysis struct {
	TotalPayments      int             `json:"total_payments"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	AveragePayment     decimal.Decimal `json:"average_payment"`
	LargestPayment     decimal.Decimal `json:"largest_payment"`
	SmallestPayment    decimal.Decimal `json:"smallest_payment"`
	PaymentSuccessRate decimal.Decimal `json:"payment_success_rate"`
	PendingAmount      decimal.Decimal `json:"pending_amount"`
}

type VehicleAnalytics struct {
	TotalVehicles          int             `json:"total_vehicles"`
	ActiveVehicles         int             `json:"active_vehicles"`
	ClosedVehicles         int             `json:"closed_vehicles"`
	TotalPrinciple         decimal.Decimal `json:"total_principle"`
	TotalRent              decimal.Decimal `json:"total_rent"`
	AverageRent            decimal.Decimal `json:"average_rent"`
	RentCollectionRate     decimal.Decimal `json:"rent_collection_rate"`
	ExtendedDaysTotal      int             `json:"extended_days_total"`
	VehiclesWithExtensions int             `json:"vehicles_with_extensions"`
}

type InterestAnalytics struct {
	TotalLoans             int             `json:"total_loans"`
	ActiveLoans            int             `json:"active_loans"`
	ClosedLoans            int             `json:"closed_loans"`
	TotalPrinciple         decimal.Decimal `json:"total_principle"`
	TotalInterestEarned    decimal.Decimal `json:"total_interest_earned"`
	AverageInterestRate    decimal.Decimal `json:"average_interest_rate"`
	HighestInterestRate    decimal.Decimal `json:"highest_interest_rate"`
	LowestInterestRate     decimal.Decimal `json:"lowest_interest_rate"`
	InterestCollectionRate decimal.Decimal `json:"interest_collection_rate"`
}

type CustomerTotal struct {
	Name      string          `json:"name"`
	TotalPaid decimal.Decimal `json:"total_paid"`
}

type CustomerAnalytics struct {
	TotalCustomers         int                        `json:"total_customers"`
	TopCustomers           []CustomerTotal            `json:"top_customers"`
	CustomerPaymentHistory map[string]decimal.Decimal `json:"customer_payment_history"`
}

type ChartDataset struct {
	Label string            `json:"label"`
	Data  []decimal.Decimal `json:"data"`
}

type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// livePayments fetches every payment and drops the ones whose source no
// longer resolves; analytics never count orphaned money twice.
func livePayments(ctx context.Context, st *store.Store) ([]models.Payment, finance.LiveSet, error) {
	vehicles, err := st.ListVehicles(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	outsides, err := st.ListOutsideInterests(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	loans, err := st.ListLoans(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	chits, err := st.ListChits(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	payments, err := st.ListPayments(ctx, store.PaymentFilter{})
	if err != nil {
		return nil, nil, err
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
	return finance.FilterDangling(payments, live), live, nil
}

// GET /api/analytics/payment-analysis
func PaymentAnalysisHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payments, _, err := livePayments(c.Context(), st)
		if err != nil {
			return err
		}
		return c.JSON(analyzePayments(payments))
	}
}

func analyzePayments(payments []models.Payment) PaymentAnalysis {
	a := PaymentAnalysis{
		TotalAmount:        decimal.Zero,
		AveragePayment:     decimal.Zero,
		LargestPayment:     decimal.Zero,
		SmallestPayment:    decimal.Zero,
		PaymentSuccessRate: decimal.Zero,
		PendingAmount:      decimal.Zero,
	}
	if len(payments) == 0 {
		return a
	}

	a.TotalPayments = len(payments)
	a.SmallestPayment = payments[0].Amount
	paid := 0
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
		if p.Amount.GreaterThan(a.LargestPayment) {
			a.LargestPayment = p.Amount
		}
		if p.Amount.LessThan(a.SmallestPayment) {
			a.SmallestPayment = p.Amount
		}
		switch p.PaymentType {
		case models.PaymentTypeCredit:
			a.TotalAmount = a.TotalAmount.Add(p.Amount)
		case models.PaymentTypeDebit:
			a.PendingAmount = a.PendingAmount.Add(p.Amount)
		}
		if p.PaymentStatus == models.PaymentStatusPaid {
			paid++
		}
	}
	a.AveragePayment = sum.Div(decimal.NewFromInt(int64(len(payments))))
	a.PaymentSuccessRate = decimal.NewFromInt(int64(paid)).
		Div(decimal.NewFromInt(int64(len(payments)))).
		Mul(decimal.NewFromInt(100))
	return a
}

// GET /api/analytics/vehicle-analytics
func VehicleAnalyticsHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vehicles, err := st.ListVehicles(c.Context(), nil)
		if err != nil {
			return err
		}
		payments, _, err := livePayments(c.Context(), st)
		if err != nil {
			return err
		}

		a := VehicleAnalytics{
			TotalVehicles:      len(vehicles),
			TotalPrinciple:     decimal.Zero,
			TotalRent:          decimal.Zero,
			AverageRent:        decimal.Zero,
			RentCollectionRate: decimal.Zero,
		}

		now := time.Now()
		for _, v := range vehicles {
			if v.IsClosed {
				a.ClosedVehicles++
				continue
			}
			a.ActiveVehicles++
			a.TotalPrinciple = a.TotalPrinciple.Add(v.PrincipleAmount)
			a.TotalRent = a.TotalRent.Add(v.Rent)

			days, applicable, err := finance.ExtendedDays(v.IsClosed, v.DateOfLending.Time, v.PaymentFrequency, now)
			if err != nil {
				return err
			}
			if applicable && days > 0 {
				a.ExtendedDaysTotal += days
				a.VehiclesWithExtensions++
			}
		}
		if a.ActiveVehicles > 0 {
			a.AverageRent = a.TotalRent.Div(decimal.NewFromInt(int64(a.ActiveVehicles)))
		}

		credited := decimal.Zero
		pending := decimal.Zero
		for _, p := range payments {
			if p.SourceType != models.SourceVehicle {
				continue
			}
			switch p.PaymentType {
			case models.PaymentTypeCredit:
				credited = credited.Add(p.Amount)
			case models.PaymentTypeDebit:
				pending = pending.Add(p.Amount)
			}
		}
		if denom := credited.Add(pending); denom.IsPositive() {
			a.RentCollectionRate = credited.Div(denom).Mul(decimal.NewFromInt(100))
		}

		return c.JSON(a)
	}
}

// GET /api/analytics/interest-analytics
func InterestAnalyticsHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		outsides, err := st.ListOutsideInterests(c.Context(), nil)
		if err != nil {
			return err
		}
		payments, _, err := livePayments(c.Context(), st)
		if err != nil {
			return err
		}

		a := InterestAnalytics{
			TotalLoans:             len(outsides),
			TotalPrinciple:         decimal.Zero,
			TotalInterestEarned:    decimal.Zero,
			AverageInterestRate:    decimal.Zero,
			HighestInterestRate:    decimal.Zero,
			LowestInterestRate:     decimal.Zero,
			InterestCollectionRate: decimal.Zero,
		}
		if len(outsides) == 0 {
			return c.JSON(a)
		}

		rateSum := decimal.Zero
		a.LowestInterestRate = outsides[0].InterestRate
		for _, o := range outsides {
			if o.IsClosed {
				a.ClosedLoans++
			} else {
				a.ActiveLoans++
				a.TotalPrinciple = a.TotalPrinciple.Add(o.PrincipleAmount)
			}
			rateSum = rateSum.Add(o.InterestRate)
			if o.InterestRate.GreaterThan(a.HighestInterestRate) {
				a.HighestInterestRate = o.InterestRate
			}
			if o.InterestRate.LessThan(a.LowestInterestRate) {
				a.LowestInterestRate = o.InterestRate
			}
		}
		a.AverageInterestRate = rateSum.Div(decimal.NewFromInt(int64(len(outsides))))

		credited := decimal.Zero
		pending := decimal.Zero
		for _, p := range payments {
			if p.SourceType != models.SourceOutsideInterest {
				continue
			}
			switch p.PaymentType {
			case models.PaymentTypeCredit:
				credited = credited.Add(p.Amount)
			case models.PaymentTypeDebit:
				pending = pending.Add(p.Amount)
			}
		}
		a.TotalInterestEarned = credited
		if denom := credited.Add(pending); denom.IsPositive() {
			a.InterestCollectionRate = credited.Div(denom).Mul(decimal.NewFromInt(100))
		}

		return c.JSON(a)
	}
}

// GET /api/analytics/customer-analytics
func CustomerAnalyticsHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vehicles, err := st.ListVehicles(c.Context(), nil)
		if err != nil {
			return err
		}
		outsides, err := st.ListOutsideInterests(c.Context(), nil)
		if err != nil {
			return err
		}
		payments, _, err := livePayments(c.Context(), st)
		if err != nil {
			return err
		}

		// Map each live record back to the counterparty name so payments
		// can be attributed per customer.
		vehicleOwner := make(map[int64]string, len(vehicles))
		outsideOwner := make(map[int64]string, len(outsides))
		customers := make(map[string]decimal.Decimal)
		for _, v := range vehicles {
			vehicleOwner[v.ID] = v.LendTo
			if _, ok := customers[v.LendTo]; !ok {
				customers[v.LendTo] = decimal.Zero
			}
		}
		for _, o := range outsides {
			outsideOwner[o.ID] = o.LendTo
			if _, ok := customers[o.LendTo]; !ok {
				customers[o.LendTo] = decimal.Zero
			}
		}

		for _, p := range payments {
			if p.PaymentType != models.PaymentTypeCredit || p.SourceID == nil {
				continue
			}
			var name string
			switch p.SourceType {
			case models.SourceVehicle:
				name = vehicleOwner[*p.SourceID]
			case models.SourceOutsideInterest:
				name = outsideOwner[*p.SourceID]
			}
			if name == "" {
				continue
			}
			customers[name] = customers[name].Add(p.Amount)
		}

		top := make([]CustomerTotal, 0, len(customers))
		for name, total := range customers {
			top = append(top, CustomerTotal{Name: name, TotalPaid: total})
		}
		sort.Slice(top, func(i, j int) bool {
			if top[i].TotalPaid.Equal(top[j].TotalPaid) {
				return top[i].Name < top[j].Name
			}
			return top[i].TotalPaid.GreaterThan(top[j].TotalPaid)
		})
		if len(top) > 5 {
			top = top[:5]
		}

		return c.JSON(CustomerAnalytics{
			TotalCustomers:         len(customers),
			TopCustomers:           top,
			CustomerPaymentHistory: customers,
		})
	}
}

// GET /api/analytics/revenue-trends?period=12
func RevenueTrendsHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := 12
		if raw := c.Query("period"); raw != "" {
			p, err := strconv.Atoi(raw)
			if err != nil || p <= 0 || p > 120 {
				return fiber.NewError(fiber.StatusBadRequest, "period must be between 1 and 120 months")
			}
			period = p
		}

		payments, _, err := livePayments(c.Context(), st)
		if err != nil {
			return err
		}
		return c.JSON(buildRevenueTrends(payments, time.Now(), period))
	}
}

// buildRevenueTrends buckets credited payments into the last period
// months, oldest first. Months are anchored on the first of the current
// month; AddDate from a month-end day would normalize into a neighboring
// month and collapse short months' buckets.
func buildRevenueTrends(payments []models.Payment, now time.Time, period int) ChartData {
	labels := make([]string, period)
	vehicleRevenue := make([]decimal.Decimal, period)
	interestRevenue := make([]decimal.Decimal, period)
	totalRevenue := make([]decimal.Decimal, period)

	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	bucket := make(map[string]int, period)
	for i := 0; i < period; i++ {
		m := anchor.AddDate(0, i-period+1, 0)
		bucket[m.Format("2006-01")] = i
		labels[i] = m.Format("Jan 2006")
		vehicleRevenue[i] = decimal.Zero
		interestRevenue[i] = decimal.Zero
		totalRevenue[i] = decimal.Zero
	}

	for _, p := range payments {
		if p.PaymentType != models.PaymentTypeCredit {
			continue
		}
		i, ok := bucket[p.PaymentDate.Format("2006-01")]
		if !ok {
			continue
		}
		switch p.SourceType {
		case models.SourceVehicle:
			vehicleRevenue[i] = vehicleRevenue[i].Add(p.Amount)
		case models.SourceOutsideInterest:
			interestRevenue[i] = interestRevenue[i].Add(p.Amount)
		}
		totalRevenue[i] = totalRevenue[i].Add(p.Amount)
	}

	return ChartData{
		Labels: labels,
		Datasets: []ChartDataset{
			{Label: "Vehicle Revenue", Data: vehicleRevenue},
			{Label: "Interest Revenue", Data: interestRevenue},
			{Label: "Total Revenue", Data: totalRevenue},
		},
	}
}
