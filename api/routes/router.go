package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quickcart-app/quickcart-backend/api/controllers"
	"github.com/quickcart-app/quickcart-backend/api/middleware"
	authsvc "github.com/quickcart-app/quickcart-backend/internal/auth"
	cartsvc "github.com/quickcart-app/quickcart-backend/internal/cart"
	"github.com/quickcart-app/quickcart-backend/internal/catalog"
	checkoutsvc "github.com/quickcart-app/quickcart-backend/internal/checkout"
	ordersvc "github.com/quickcart-app/quickcart-backend/internal/orders"
	profilesvc "github.com/quickcart-app/quickcart-backend/internal/profile"
	"github.com/quickcart-app/quickcart-backend/pkg/config"
	"github.com/quickcart-app/quickcart-backend/pkg/db"
	"github.com/quickcart-app/quickcart-backend/pkg/logger"
	"github.com/quickcart-app/quickcart-backend/pkg/redis"
)

// Deps carries everything the router mounts.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        redis.Pinger
	Registry     *prometheus.Registry
	Auth         authsvc.Service
	Catalog      catalog.Service
	Carts        cartsvc.Service
	Reservations *cartsvc.ReservationManager
	Checkout     checkoutsvc.Service
	Profiles     profilesvc.Service
	Orders       *ordersvc.Book
}

// NewRouter mounts the storefront API.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(logg))

		r.Post("/auth/login", controllers.AuthLogin(deps.Auth, logg))

		r.Route("/stores", func(r chi.Router) {
			r.Get("/", controllers.StoreList(deps.Catalog, logg))
			r.Get("/{storeId}", controllers.StoreDetail(deps.Catalog, logg))
			r.Get("/{storeId}/products", controllers.StoreProducts(deps.Catalog, logg))
		})
		r.Get("/products/{productId}", controllers.ProductDetail(deps.Catalog, logg))
		r.Get("/map/stores", controllers.MapMarkers(deps.Catalog, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Carts, logg))
			r.Delete("/", controllers.CartClear(deps.Carts, logg))
			r.Post("/items", controllers.CartAddItem(deps.Carts, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(deps.Carts, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.Carts, logg))
			r.Post("/promo", controllers.CartCheckPromo(deps.Carts, logg))
			r.Get("/cross-sell", controllers.CartCrossSell(deps.Carts, deps.Catalog, logg))
			r.Post("/reservation", controllers.ReservationStart(deps.Reservations, logg))
			r.Get("/reservation", controllers.ReservationStatus(deps.Reservations, logg))
			r.Delete("/reservation", controllers.ReservationStop(deps.Reservations, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.CheckoutBegin(deps.Checkout, logg))
			r.Get("/", controllers.CheckoutGet(deps.Checkout, logg))
			r.Post("/address", controllers.CheckoutSelectAddress(deps.Checkout, logg))
			r.Post("/delivery", controllers.CheckoutSelectDelivery(deps.Checkout, logg))
			r.Post("/payment", controllers.CheckoutSubmitPayment(deps.Checkout, logg))
			r.Post("/back", controllers.CheckoutBack(deps.Checkout, logg))
			r.Delete("/", controllers.CheckoutAbandon(deps.Checkout, logg))
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(deps.Profiles, logg))
			r.Put("/", controllers.ProfileUpdate(deps.Profiles, logg))
			r.Route("/addresses", func(r chi.Router) {
				r.Post("/", controllers.AddressAdd(deps.Profiles, logg))
				r.Get("/default", controllers.AddressDefault(deps.Profiles, logg))
				r.Delete("/{addressId}", controllers.AddressRemove(deps.Profiles, logg))
				r.Post("/{addressId}/default", controllers.AddressSetDefault(deps.Profiles, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Get("/latest", controllers.OrderLatest(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
			r.Get("/{orderId}/tracking", controllers.OrderTrack(deps.Orders, logg))
			r.Delete("/{orderId}/tracking", controllers.OrderStopTracking(deps.Orders, logg))
		})
	})

	return r
}
