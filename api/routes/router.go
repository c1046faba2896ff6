package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/distrigas/distrigas-backend/api/controllers"
	"github.com/distrigas/distrigas-backend/api/middleware"
	"github.com/distrigas/distrigas-backend/internal/catalog"
	"github.com/distrigas/distrigas-backend/internal/customers"
	"github.com/distrigas/distrigas-backend/internal/deliveries"
	"github.com/distrigas/distrigas-backend/internal/employees"
	"github.com/distrigas/distrigas-backend/internal/inventory"
	"github.com/distrigas/distrigas-backend/internal/orders"
	"github.com/distrigas/distrigas-backend/internal/payments"
	"github.com/distrigas/distrigas-backend/internal/settings"
	"github.com/distrigas/distrigas-backend/pkg/auth/session"
	"github.com/distrigas/distrigas-backend/pkg/config"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	"github.com/distrigas/distrigas-backend/pkg/logger"
	"github.com/distrigas/distrigas-backend/pkg/redis"
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
}

// Services groups everything the router wires into handlers.
type Services struct {
	Catalog    catalog.Service
	Customers  customers.Service
	Deliveries deliveries.Service
	Employees  employees.Service
	Inventory  inventory.Service
	Orders     orders.Service
	Payments   payments.Service
	Settings   settings.Service
}

// NewRouter assembles the full HTTP surface: public health and auth routes,
// then the authenticated API with role gates per route group.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP dbPinger,
	redisClient *redis.Client,
	sessions sessionManager,
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
		cfg.AuthRateLimit.LoginPhoneLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})
	r.Get("/ping", controllers.PublicPing())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AuthLogin(svcs.Employees, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).
			Post("/logout", controllers.AuthLogout(svcs.Employees, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(svcs.Orders, logg))
			r.Get("/", controllers.ListOrders(svcs.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(svcs.Orders, logg))
			r.Post("/{orderID}/cancel", controllers.CancelOrder(svcs.Orders, logg))

			r.With(middleware.RequireRole(logg, enums.ActorRoleAdmin)).
				Post("/{orderID}/assign", controllers.AssignDelivery(svcs.Deliveries, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.ActorRoleRepartidor, enums.ActorRoleAdmin))
				r.Post("/{orderID}/start", controllers.StartDelivery(svcs.Deliveries, logg))
				r.Post("/{orderID}/complete", controllers.CompleteDelivery(svcs.Deliveries, logg))
				r.Post("/{orderID}/issue", controllers.ReportDeliveryIssue(svcs.Deliveries, logg))
			})
			r.Get("/{orderID}/delivery", controllers.GetDelivery(svcs.Deliveries, logg))

			r.Post("/{orderID}/payments", controllers.SubmitPayment(svcs.Payments, logg))
			r.Get("/{orderID}/payments", controllers.ListOrderPayments(svcs.Payments, logg))
		})

		r.With(middleware.RequireRole(logg, enums.ActorRoleContador, enums.ActorRoleAdmin)).
			Post("/payments/{paymentID}/verify", controllers.VerifyPayment(svcs.Payments, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.ActorRoleBodeguero, enums.ActorRoleAdmin))
			r.Post("/transfer", controllers.TransferStock(svcs.Inventory, logg))
			r.Post("/adjust", controllers.AdjustStock(svcs.Inventory, logg))
		})

		r.Route("/warehouses", func(r chi.Router) {
			r.Get("/", controllers.ListWarehouses(svcs.Catalog, logg))
			r.With(middleware.RequireRole(logg, enums.ActorRoleAdmin)).
				Post("/", controllers.CreateWarehouse(svcs.Catalog, logg))
			r.With(middleware.RequireRole(logg, enums.ActorRoleAdmin)).
				Post("/{warehouseID}/default", controllers.SetDefaultWarehouse(svcs.Catalog, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.ActorRoleBodeguero, enums.ActorRoleContador, enums.ActorRoleAdmin))
				r.Get("/{warehouseID}/stock", controllers.ListWarehouseStock(svcs.Inventory, logg))
				r.Get("/{warehouseID}/movements", controllers.ListStockMovements(svcs.Inventory, logg))
			})
		})

		r.Route("/cylinder-types", func(r chi.Router) {
			r.Get("/", controllers.ListCylinderTypes(svcs.Catalog, logg))
			r.Get("/{cylinderTypeID}", controllers.GetCylinderType(svcs.Catalog, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.ActorRoleAdmin))
				r.Post("/", controllers.CreateCylinderType(svcs.Catalog, logg))
				r.Patch("/{cylinderTypeID}", controllers.UpdateCylinderType(svcs.Catalog, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Catalog, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.ActorRoleAdmin))
				r.Post("/", controllers.CreateProduct(svcs.Catalog, logg))
				r.Patch("/{productID}", controllers.UpdateProduct(svcs.Catalog, logg))
			})
		})

		r.Route("/customers", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, enums.ActorRoleAdmin, enums.ActorRoleContador)).
				Post("/", controllers.RegisterCustomer(svcs.Customers, logg))
			r.With(middleware.RequireRole(logg, enums.ActorRoleAdmin, enums.ActorRoleContador)).
				Get("/", controllers.ListCustomers(svcs.Customers, logg))

			r.Get("/{customerID}", controllers.GetCustomer(svcs.Customers, logg))
			r.Patch("/{customerID}", controllers.UpdateCustomer(svcs.Customers, logg))
			r.Get("/{customerID}/points", controllers.GetPointsBalance(svcs.Customers, logg))
			r.Get("/{customerID}/points/history", controllers.GetPointsHistory(svcs.Customers, logg))

			r.Route("/{customerID}/prices", func(r chi.Router) {
				r.With(middleware.RequireRole(logg, enums.ActorRoleAdmin, enums.ActorRoleContador)).
					Get("/", controllers.ListCustomerPrices(svcs.Catalog, logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, enums.ActorRoleAdmin))
					r.Put("/", controllers.SetCustomerPrice(svcs.Catalog, logg))
					r.Delete("/{cylinderTypeID}", controllers.RemoveCustomerPrice(svcs.Catalog, logg))
				})
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.ActorRoleAdmin))
			r.Post("/", controllers.CreateEmployee(svcs.Employees, logg))
			r.Get("/", controllers.ListEmployees(svcs.Employees, logg))
			r.Get("/{employeeID}", controllers.GetEmployee(svcs.Employees, logg))
			r.Patch("/{employeeID}", controllers.UpdateEmployee(svcs.Employees, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, enums.ActorRoleAdmin, enums.ActorRoleContador)).
				Get("/", controllers.ListSettings(svcs.Settings, logg))
			r.With(middleware.RequireRole(logg, enums.ActorRoleAdmin, enums.ActorRoleContador)).
				Get("/{key}", controllers.GetSetting(svcs.Settings, logg))
			r.With(middleware.RequireRole(logg, enums.ActorRoleAdmin)).
				Put("/{key}", controllers.SetSetting(svcs.Settings, logg))
		})
	})

	return r
}
