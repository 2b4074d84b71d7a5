package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/frahmantamala/pix-checkout/internal"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "pix-checkout",
	Short: "PIX Checkout",
	Long:  `Storefront that looks up a visitor by CPF and collects a fixed payment through PIX.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*internal.Config, error) {
	// Check if we're running in Docker environment
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		// Load configuration from environment variables (Docker deployment)
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	// Load configuration from file (development)
	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults mirrors the defaults of internal.LoadConfigFromEnv so a short
// config.yml is enough.
func setDefaults(v *viper.Viper) {
	defaults := internal.DefaultConfig()
	v.SetDefault("http_server.port", defaults.Server.Port)
	v.SetDefault("http_server.allowed_origins", defaults.Server.AllowedOrigins)
	v.SetDefault("http_server.read_header_timeout", defaults.Server.ReadHeaderTimeout)
	v.SetDefault("http_server.read_timeout", defaults.Server.ReadTimeout)
	v.SetDefault("http_server.idle_timeout", defaults.Server.IdleTimeout)
	v.SetDefault("http_server.write_timeout", defaults.Server.WriteTimeout)
	v.SetDefault("session.cookie_name", defaults.Session.CookieName)
	v.SetDefault("session.lifetime", defaults.Session.Lifetime)
	v.SetDefault("session.secure_cookie", defaults.Session.SecureCookie)
	v.SetDefault("gateway.timeout", defaults.Gateway.Timeout)
	v.SetDefault("gateway.poll_delay", defaults.Gateway.PollDelay)
	v.SetDefault("lookup.timeout", defaults.Lookup.Timeout)
	v.SetDefault("notifier.timeout", defaults.Notifier.Timeout)
	v.SetDefault("checkout.amount", defaults.Checkout.Amount)
	v.SetDefault("checkout.description", defaults.Checkout.Description)
	v.SetDefault("checkout.default_email", defaults.Checkout.DefaultEmail)
	v.SetDefault("checkout.default_phone", defaults.Checkout.DefaultPhone)
	v.SetDefault("pix.fallback_strategy", defaults.Pix.FallbackStrategy)
	v.SetDefault("pix.key_url_template", defaults.Pix.KeyURLTemplate)
	v.SetDefault("pix.merchant_name", defaults.Pix.MerchantName)
	v.SetDefault("pix.merchant_city", defaults.Pix.MerchantCity)
	v.SetDefault("observability.logging.level", defaults.Observability.Logging.Level)
	v.SetDefault("observability.logging.format", defaults.Observability.Logging.Format)
}

func init() {
	httpServerCmd.Flags().StringVar(&configPath, "config", ".", "Directory containing config.yml")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(pixCmd)
}
