package main

import (
	"errors"
	"log"
	"strings"

	"pride-finance-backend/internal/analytics"
	"pride-finance-backend/internal/auth"
	"pride-finance-backend/internal/chits"
	"pride-finance-backend/internal/config"
	"pride-finance-backend/internal/dashboard"
	"pride-finance-backend/internal/loans"
	"pride-finance-backend/internal/outside"
	"pride-finance-backend/internal/payments"
	"pride-finance-backend/internal/store"
	"pride-finance-backend/internal/vehicles"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	st := store.New(cfg.StoreURL, cfg.StoreKey)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			if errors.Is(err, store.ErrStoreUnavailable) {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "Data store temporarily unavailable",
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	// Vehicles
	protected.Get("/vehicles", vehicles.ListVehiclesHandler(st))
	protected.Post("/vehicles", vehicles.CreateVehicleHandler(st))
	protected.Get("/vehicles/:id", vehicles.GetVehicleHandler(st))
	protected.Put("/vehicles/:id", vehicles.UpdateVehicleHandler(st))
	protected.Delete("/vehicles/:id", vehicles.DeleteVehicleHandler(st))
	protected.Post("/vehicles/:id/close", vehicles.CloseVehicleHandler(st))
	protected.Post("/vehicles/:id/payments", vehicles.CreateVehiclePaymentHandler(st))

	// Outside interest lending
	protected.Get("/outside-interest", outside.ListOutsideInterestsHandler(st))
	protected.Post("/outside-interest", outside.CreateOutsideInterestHandler(st))
	protected.Get("/outside-interest/:id", outside.GetOutsideInterestHandler(st))
	protected.Put("/outside-interest/:id", outside.UpdateOutsideInterestHandler(st))
	protected.Delete("/outside-interest/:id", outside.DeleteOutsideInterestHandler(st))
	protected.Post("/outside-interest/:id/close", outside.CloseOutsideInterestHandler(st))
	protected.Post("/outside-interest/:id/payments", outside.CreateOutsideInterestPaymentHandler(st))

	// Loans taken from lenders
	protected.Get("/loans", loans.ListLoansHandler(st))
	protected.Post("/loans", loans.CreateLoanHandler(st))
	protected.Get("/loans/:id", loans.GetLoanHandler(st))
	protected.Put("/loans/:id", loans.UpdateLoanHandler(st))
	protected.Delete("/loans/:id", loans.DeleteLoanHandler(st))
	protected.Post("/loans/:id/close", loans.CloseLoanHandler(st))
	protected.Post("/loans/:id/payments", loans.CreateLoanPaymentHandler(st))

	// Chit funds
	protected.Get("/chits", chits.ListChitsHandler(st))
	protected.Post("/chits", chits.CreateChitHandler(st))
	protected.Get("/chits/:id", chits.GetChitHandler(st))
	protected.Put("/chits/:id", chits.UpdateChitHandler(st))
	protected.Delete("/chits/:id", chits.DeleteChitHandler(st))
	protected.Post("/chits/:id/close", chits.CloseChitHandler(st))
	protected.Post("/chits/:id/collect", chits.CollectChitHandler(st))
	protected.Get("/chits/:id/payments", chits.GetChitPaymentsHandler(st))

	// Payments ledger
	protected.Get("/payments", payments.ListPaymentsHandler(st))
	protected.Post("/payments", payments.CreatePaymentHandler(st))
	protected.Get("/payments/:id", payments.GetPaymentHandler(st))
	protected.Put("/payments/:id", payments.UpdatePaymentHandler(st))
	protected.Delete("/payments/:id", payments.DeletePaymentHandler(st))

	// Dashboard
	protected.Get("/dashboard/summary", dashboard.SummaryHandler(st))
	protected.Get("/dashboard/overview", dashboard.OverviewHandler(st))

	// Analytics
	protected.Get("/analytics/payment-analysis", analytics.PaymentAnalysisHandler(st))
	protected.Get("/analytics/vehicle-analytics", analytics.VehicleAnalyticsHandler(st))
	protected.Get("/analytics/interest-analytics", analytics.InterestAnalyticsHandler(st))
	protected.Get("/analytics/customer-analytics", analytics.CustomerAnalyticsHandler(st))
	protected.Get("/analytics/revenue-trends", analytics.RevenueTrendsHandler(st))

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
