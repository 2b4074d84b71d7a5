package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Session       SessionConfig       `mapstructure:"session"`
	Gateway       GatewayConfig       `mapstructure:"gateway"`
	Lookup        LookupConfig        `mapstructure:"lookup"`
	Notifier      NotifierConfig      `mapstructure:"notifier"`
	Checkout      CheckoutConfig      `mapstructure:"checkout"`
	Pix           PixConfig           `mapstructure:"pix"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type SessionConfig struct {
	CookieName   string        `mapstructure:"cookie_name"`
	Lifetime     time.Duration `mapstructure:"lifetime"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
}

type GatewayConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	SecretKey string        `mapstructure:"secret_key"`
	CompanyID string        `mapstructure:"company_id"`
	Timeout   time.Duration `mapstructure:"timeout"`
	// PollDelay is how long to wait before re-querying a charge that came
	// back without a PIX code.
	PollDelay time.Duration `mapstructure:"poll_delay"`
}

type LookupConfig struct {
	CPFURL     string        `mapstructure:"cpf_url"`
	CPFToken   string        `mapstructure:"cpf_token"`
	ContactURL string        `mapstructure:"contact_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type NotifierConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type CheckoutConfig struct {
	Amount       string `mapstructure:"amount"`
	Description  string `mapstructure:"description"`
	DefaultEmail string `mapstructure:"default_email"`
	DefaultPhone string `mapstructure:"default_phone"`
}

type PixConfig struct {
	FallbackStrategy string `mapstructure:"fallback_strategy"`
	KeyURLTemplate   string `mapstructure:"key_url_template"`
	MerchantName     string `mapstructure:"merchant_name"`
	MerchantCity     string `mapstructure:"merchant_city"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns the configuration used when a setting is not given.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:              5000,
			AllowedOrigins:    "*",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
		Session: SessionConfig{
			CookieName:   "pix_session",
			Lifetime:     24 * time.Hour,
			SecureCookie: true,
		},
		Gateway: GatewayConfig{
			Timeout:   30 * time.Second,
			PollDelay: 3 * time.Second,
		},
		Lookup: LookupConfig{
			Timeout: 10 * time.Second,
		},
		Notifier: NotifierConfig{
			Timeout: 10 * time.Second,
		},
		Checkout: CheckoutConfig{
			Amount:       "137.46",
			Description:  "Receita de bolo",
			DefaultEmail: "gerarpagamento@gmail.com",
			DefaultPhone: "(11) 98768-9080",
		},
		Pix: PixConfig{
			FallbackStrategy: "key_url_template",
			KeyURLTemplate:   "qrcode.owempay.com.br/pix/%s",
			MerchantName:     "PAG INTERMEDIACOES DE VE",
			MerchantCity:     "SAO BERNARDO",
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "json",
			},
		},
	}
}

// LoadConfigFromEnv builds the configuration from environment variables,
// reading an optional .env file first.
func LoadConfigFromEnv() *Config {
	_ = godotenv.Load()
	d := DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("SERVER_PORT", d.Server.Port),
			BaseURL:           getEnv("SERVER_BASE_URL", d.Server.BaseURL),
			AllowedOrigins:    getEnv("SERVER_ALLOWED_ORIGINS", d.Server.AllowedOrigins),
			ReadHeaderTimeout: getEnvAsDuration("SERVER_READ_HEADER_TIMEOUT", d.Server.ReadHeaderTimeout),
			ReadTimeout:       getEnvAsDuration("SERVER_READ_TIMEOUT", d.Server.ReadTimeout),
			IdleTimeout:       getEnvAsDuration("SERVER_IDLE_TIMEOUT", d.Server.IdleTimeout),
			WriteTimeout:      getEnvAsDuration("SERVER_WRITE_TIMEOUT", d.Server.WriteTimeout),
		},
		Session: SessionConfig{
			CookieName:   getEnv("SESSION_COOKIE_NAME", d.Session.CookieName),
			Lifetime:     getEnvAsDuration("SESSION_LIFETIME", d.Session.Lifetime),
			SecureCookie: getEnvAsBool("SESSION_SECURE_COOKIE", d.Session.SecureCookie),
		},
		Gateway: GatewayConfig{
			BaseURL:   getEnv("GATEWAY_BASE_URL", ""),
			SecretKey: getEnv("GATEWAY_SECRET_KEY", ""),
			CompanyID: getEnv("GATEWAY_COMPANY_ID", ""),
			Timeout:   getEnvAsDuration("GATEWAY_TIMEOUT", d.Gateway.Timeout),
			PollDelay: getEnvAsDuration("GATEWAY_POLL_DELAY", d.Gateway.PollDelay),
		},
		Lookup: LookupConfig{
			CPFURL:     getEnv("LOOKUP_CPF_URL", ""),
			CPFToken:   getEnv("LOOKUP_CPF_TOKEN", ""),
			ContactURL: getEnv("LOOKUP_CONTACT_URL", ""),
			Timeout:    getEnvAsDuration("LOOKUP_TIMEOUT", d.Lookup.Timeout),
		},
		Notifier: NotifierConfig{
			WebhookURL: getEnv("NOTIFIER_WEBHOOK_URL", ""),
			Timeout:    getEnvAsDuration("NOTIFIER_TIMEOUT", d.Notifier.Timeout),
		},
		Checkout: CheckoutConfig{
			Amount:       getEnv("CHECKOUT_AMOUNT", d.Checkout.Amount),
			Description:  getEnv("CHECKOUT_DESCRIPTION", d.Checkout.Description),
			DefaultEmail: getEnv("CHECKOUT_DEFAULT_EMAIL", d.Checkout.DefaultEmail),
			DefaultPhone: getEnv("CHECKOUT_DEFAULT_PHONE", d.Checkout.DefaultPhone),
		},
		Pix: PixConfig{
			FallbackStrategy: getEnv("PIX_FALLBACK_STRATEGY", d.Pix.FallbackStrategy),
			KeyURLTemplate:   getEnv("PIX_KEY_URL_TEMPLATE", d.Pix.KeyURLTemplate),
			MerchantName:     getEnv("PIX_MERCHANT_NAME", d.Pix.MerchantName),
			MerchantCity:     getEnv("PIX_MERCHANT_CITY", d.Pix.MerchantCity),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", d.Observability.Logging.Level),
				Format: getEnv("LOG_FORMAT", d.Observability.Logging.Format),
			},
		},
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Gateway.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("gateway config: %v", err))
	}

	if err := c.Lookup.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("lookup config: %v", err))
	}

	if err := c.Checkout.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("checkout config: %v", err))
	}

	if err := c.Pix.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("pix config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *GatewayConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if c.SecretKey == "" {
		return errors.New("secret_key is required")
	}
	if c.PollDelay < 0 {
		return errors.New("poll_delay cannot be negative")
	}
	return nil
}

func (c *LookupConfig) Validate() error {
	for name, raw := range map[string]string{"cpf_url": c.CPFURL, "contact_url": c.ContactURL} {
		if raw == "" {
			continue
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

func (c *CheckoutConfig) Validate() error {
	amount, err := c.AmountDecimal()
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		return errors.New("amount must be greater than 0")
	}
	return nil
}

// AmountDecimal parses the fixed checkout amount in BRL.
func (c *CheckoutConfig) AmountDecimal() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(c.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", c.Amount, err)
	}
	return amount, nil
}

func (c *PixConfig) Validate() error {
	switch c.FallbackStrategy {
	case "", "key_url_template":
		if !strings.Contains(c.KeyURLTemplate, "%s") {
			return errors.New("key_url_template must contain a %s placeholder")
		}
		if c.MerchantName == "" || c.MerchantCity == "" {
			return errors.New("merchant_name and merchant_city are required")
		}
	case "disabled":
	default:
		return fmt.Errorf("unknown fallback_strategy %q", c.FallbackStrategy)
	}
	return nil
}
