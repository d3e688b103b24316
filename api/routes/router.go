package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vigneshnair/bazaarly-backend/api/controllers"
	"github.com/vigneshnair/bazaarly-backend/api/middleware"
	authsvc "github.com/vigneshnair/bazaarly-backend/internal/auth"
	ordersvc "github.com/vigneshnair/bazaarly-backend/internal/orders"
	productsvc "github.com/vigneshnair/bazaarly-backend/internal/products"
	userssvc "github.com/vigneshnair/bazaarly-backend/internal/users"
	vendorsvc "github.com/vigneshnair/bazaarly-backend/internal/vendors"
	"github.com/vigneshnair/bazaarly-backend/pkg/config"
	"github.com/vigneshnair/bazaarly-backend/pkg/db"
	"github.com/vigneshnair/bazaarly-backend/pkg/enums"
	"github.com/vigneshnair/bazaarly-backend/pkg/logger"
	pkgredis "github.com/vigneshnair/bazaarly-backend/pkg/redis"
)

// Services bundles the wired business services the router exposes.
type Services struct {
	Auth     authsvc.Service
	Register authsvc.RegisterService
	Users    userssvc.Service
	Products productsvc.Service
	Vendors  vendorsvc.Service
	Orders   ordersvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	services Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginAccountLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupAccountLimit,
	)

	// A typed nil must not reach the interface-valued parameter.
	var redisPinger pkgredis.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	r.Route("/api/users", func(r chi.Router) {
		r.With(rateLimitIfAvailable(signupPolicy, redisClient, logg)).
			Post("/signup", controllers.Signup(services.Register, services.Auth, logg))
		r.With(rateLimitIfAvailable(loginPolicy, redisClient, logg)).
			Post("/login", controllers.Login(services.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/me", controllers.Me(services.Users, logg))
		})
	})

	r.Route("/api/store", func(r chi.Router) {
		// Public catalog reads.
		r.Get("/products", controllers.ListProducts(services.Products, logg))
		r.Get("/products/{id}", controllers.GetProduct(services.Products, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			if redisClient != nil {
				r.Use(middleware.Idempotency(redisClient, logg))
			}

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.RoleVendor, logg))
				r.Post("/products", controllers.CreateProduct(services.Products, logg))
				r.Put("/products/{id}", controllers.UpdateProduct(services.Products, logg))
				r.Delete("/products/{id}", controllers.DeleteProduct(services.Products, logg))
			})

			r.Route("/vendors", func(r chi.Router) {
				r.With(middleware.RequireRole(enums.RoleCustomer, logg)).
					Post("/apply", controllers.VendorApply(services.Vendors, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
					r.Get("/pending", controllers.ListPendingApplications(services.Vendors, logg))
					r.Post("/{id}/approve", controllers.ApproveApplication(services.Vendors, logg))
					r.Post("/{id}/reject", controllers.RejectApplication(services.Vendors, logg))
				})
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListOrders(services.Orders, logg))
				r.Get("/{id}", controllers.GetOrder(services.Orders, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(enums.RoleCustomer, logg))
					r.Post("/", controllers.PlaceOrder(services.Orders, logg))
					r.Post("/{id}/confirm-payment", controllers.ConfirmPayment(services.Orders, logg))
					r.Post("/{id}/cancel", controllers.CancelOrder(services.Orders, logg))
				})
			})
		})
	})

	return r
}

func rateLimitIfAvailable(policy middleware.AuthRateLimitPolicy, store *pkgredis.Client, logg *logger.Logger) func(http.Handler) http.Handler {
	if store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.AuthRateLimit(policy, store, logg)
}
