package rest

import (
	"log/slog"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/pix-checkout/internal/checkout"
	"github.com/frahmantamala/pix-checkout/internal/session"
	"github.com/frahmantamala/pix-checkout/internal/storefront"
	"github.com/frahmantamala/pix-checkout/internal/transport/middleware"
	"github.com/frahmantamala/pix-checkout/internal/transport/swagger"
)

type Routes struct {
	Checkout       *checkout.Handler
	Storefront     *storefront.Handler
	Sessions       *session.Store
	Health         *HealthHandler
	AllowedOrigins string
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, routes Routes) {
	// Apply global middleware
	router.Use(middleware.CORS(routes.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(routes.Logger))
	router.Use(middleware.RecoveryMiddleware(routes.Logger))

	router.Get(swagger.SpecPath, swagger.SpecHandler)
	router.Handle("/swagger/*", swagger.Handler())

	if routes.Health != nil {
		router.Get("/health", routes.Health.healthCheckHandler)
		router.Get("/ping", routes.Health.pingHandler)
	}

	// Gateway-facing and polling endpoints are stateless.
	if routes.Checkout != nil {
		router.Post("/charge/webhook", routes.Checkout.ChargeWebhook)
		router.Get("/check-payment-status/{orderId}", routes.Checkout.CheckPaymentStatus)
	}

	// Visitor-facing routes carry the session.
	router.Group(func(r chi.Router) {
		if routes.Sessions != nil {
			r.Use(routes.Sessions.LoadAndSave)
			r.Use(routes.Sessions.VisitorMiddleware)
		}

		if routes.Checkout != nil {
			r.Post("/generate-pix", routes.Checkout.GeneratePix)
		}

		if routes.Storefront != nil {
			r.Get("/", routes.Storefront.Index)
			r.Get("/verificar-cpf", routes.Storefront.VerifyCPF)
			r.Get("/buscar-cpf", routes.Storefront.SearchCPF)
			// Any other path is treated as a CPF.
			r.Get("/*", routes.Storefront.CPF)
		}
	})
}
