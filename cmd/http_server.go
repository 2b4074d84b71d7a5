package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/pix-checkout/internal"
	"github.com/frahmantamala/pix-checkout/internal/checkout"
	"github.com/frahmantamala/pix-checkout/internal/core/events"
	"github.com/frahmantamala/pix-checkout/internal/lookup"
	"github.com/frahmantamala/pix-checkout/internal/notifier"
	"github.com/frahmantamala/pix-checkout/internal/paymentgateway"
	"github.com/frahmantamala/pix-checkout/internal/pix"
	"github.com/frahmantamala/pix-checkout/internal/qrcode"
	"github.com/frahmantamala/pix-checkout/internal/session"
	"github.com/frahmantamala/pix-checkout/internal/storefront"
	"github.com/frahmantamala/pix-checkout/internal/transport"
	"github.com/frahmantamala/pix-checkout/internal/transport/rest"
	"github.com/frahmantamala/pix-checkout/internal/transport/swagger"
	"github.com/frahmantamala/pix-checkout/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server serving the storefront pages and the checkout API`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	Router   *chi.Mux
	EventBus *events.EventBus
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.EventBus.Drain(ctx); err != nil {
			deps.Logger.Warn("Pending event handlers abandoned", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.L()

	if _, err := swagger.LoadSpec(context.Background()); err != nil {
		return nil, err
	}

	amount, err := config.Checkout.AmountDecimal()
	if err != nil {
		return nil, fmt.Errorf("invalid checkout amount: %w", err)
	}

	fallback, err := pix.NewFallbackPolicy(
		config.Pix.FallbackStrategy,
		config.Pix.KeyURLTemplate,
		config.Pix.MerchantName,
		config.Pix.MerchantCity,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid pix fallback: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	alerts := notifier.New(notifier.Config{
		WebhookURL: config.Notifier.WebhookURL,
		Timeout:    config.Notifier.Timeout,
	}, lg)
	alerts.Subscribe(eventBus)
	if !alerts.Enabled() {
		lg.Warn("notifier webhook not configured, sale alerts disabled")
	}

	gateway := paymentgateway.NewClient(paymentgateway.Config{
		BaseURL:    config.Gateway.BaseURL,
		SecretKey:  config.Gateway.SecretKey,
		CompanyID:  config.Gateway.CompanyID,
		WebhookURL: webhookURL(config.Server.BaseURL),
		Timeout:    config.Gateway.Timeout,
	}, lg)

	lookups := lookup.NewClient(lookup.Config{
		CPFURL:     config.Lookup.CPFURL,
		CPFToken:   config.Lookup.CPFToken,
		ContactURL: config.Lookup.ContactURL,
		Timeout:    config.Lookup.Timeout,
	}, lg)

	sessions := session.NewStore(session.Config{
		CookieName:   config.Session.CookieName,
		Lifetime:     config.Session.Lifetime,
		SecureCookie: config.Session.SecureCookie,
	}, lg)

	checkoutService := checkout.NewService(checkout.Config{
		Amount:       amount,
		Description:  config.Checkout.Description,
		DefaultEmail: config.Checkout.DefaultEmail,
		DefaultPhone: config.Checkout.DefaultPhone,
		PollDelay:    config.Gateway.PollDelay,
	}, gateway, lookups, sessions, qrcode.NewRenderer(qrcode.DefaultSize), fallback, eventBus, lg)

	views, err := storefront.NewViews()
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Routes{
		Checkout:       checkout.NewHandler(transport.NewBaseHandler(lg), checkoutService),
		Storefront:     storefront.NewHandler(views, lookups, lookups, sessions, amount),
		Sessions:       sessions,
		Health:         rest.NewHealthHandler(map[string]rest.Pinger{"gateway": gateway}),
		AllowedOrigins: config.Server.AllowedOrigins,
		Logger:         lg,
	})

	return &Dependencies{
		Config:   config,
		Router:   router,
		EventBus: eventBus,
		Logger:   lg,
	}, nil
}

// webhookURL is the postback address handed to the gateway; empty when the
// public base URL is unknown.
func webhookURL(baseURL string) string {
	if baseURL == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/charge/webhook"
}
