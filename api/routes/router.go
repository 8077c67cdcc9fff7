package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bawasa/bawasa-backend/api/controllers"
	"github.com/bawasa/bawasa-backend/api/middleware"
	authsvc "github.com/bawasa/bawasa-backend/internal/auth"
	"github.com/bawasa/bawasa-backend/internal/billing"
	"github.com/bawasa/bawasa-backend/internal/consumers"
	"github.com/bawasa/bawasa-backend/internal/dashboard"
	"github.com/bawasa/bawasa-backend/internal/meterchange"
	"github.com/bawasa/bawasa-backend/internal/payments"
	"github.com/bawasa/bawasa-backend/internal/readings"
	"github.com/bawasa/bawasa-backend/internal/users"
	"github.com/bawasa/bawasa-backend/pkg/auth/session"
	"github.com/bawasa/bawasa-backend/pkg/config"
	"github.com/bawasa/bawasa-backend/pkg/db"
	"github.com/bawasa/bawasa-backend/pkg/enums"
	"github.com/bawasa/bawasa-backend/pkg/logger"
	"github.com/bawasa/bawasa-backend/pkg/redis"
)

// Services bundles every domain service the router exposes.
type Services struct {
	Auth        authsvc.Service
	Users       users.Service
	Consumers   consumers.Service
	Readings    readings.Service
	MeterChange meterchange.Service
	Billing     billing.Service
	Payments    payments.Service
	Dashboard   dashboard.Service
}

// NewRouter assembles the full HTTP surface: public health endpoints, the
// shared auth routes, the cashier portal under /api/v1, and the admin portal
// under /api/admin/v1.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.Login(svcs.Auth, logg))
		r.Post("/refresh", controllers.RefreshToken(svcs.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Post("/logout", controllers.Logout(svcs.Auth, logg))
			r.Get("/me", controllers.Me(svcs.Auth, logg))
			r.Post("/change-password", controllers.ChangePassword(svcs.Users, logg))
		})
	})

	// cashier portal: readings and collections
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/readings", func(r chi.Router) {
			r.Post("/", controllers.SubmitReading(svcs.Readings, logg))
		})
		r.Get("/consumers/{consumerId}/readings", controllers.ListReadings(svcs.Readings, logg))

		r.Route("/bills", func(r chi.Router) {
			r.Get("/", controllers.ListBills(svcs.Billing, logg))
			r.Get("/{billId}", controllers.GetBill(svcs.Billing, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", controllers.RecordPayment(svcs.Payments, logg))
			r.Get("/", controllers.ListPayments(svcs.Payments, logg))
			r.Get("/{paymentId}", controllers.GetPayment(svcs.Payments, logg))
		})
	})

	// admin portal: consumer management, billing, meter changes, staff
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.AdminPing())
		r.Get("/dashboard", controllers.DashboardSummary(svcs.Dashboard, logg))

		r.Route("/consumers", func(r chi.Router) {
			r.Post("/", controllers.CreateConsumer(svcs.Consumers, logg))
			r.Get("/", controllers.ListConsumers(svcs.Consumers, logg))
			r.Get("/{consumerId}", controllers.GetConsumer(svcs.Consumers, logg))
			r.Patch("/{consumerId}", controllers.UpdateConsumer(svcs.Consumers, logg))
			r.Post("/{consumerId}/bills/generate", controllers.GenerateBill(svcs.Billing, logg))
			r.Post("/{consumerId}/meter-change", controllers.ChangeMeter(svcs.MeterChange, logg))
			r.Get("/{consumerId}/readings", controllers.ListReadings(svcs.Readings, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", controllers.CreateUser(svcs.Users, logg))
			r.Get("/", controllers.ListUsers(svcs.Users, logg))
		})
	})

	return r
}
