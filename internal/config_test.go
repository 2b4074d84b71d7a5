package internal_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/pix-checkout/internal"
)

var _ = Describe("Config", func() {
	var cfg internal.Config

	BeforeEach(func() {
		cfg = internal.DefaultConfig()
		cfg.Gateway.BaseURL = "https://api.gateway.example.com/v1"
		cfg.Gateway.SecretKey = "sk_test"
	})

	It("accepts the defaults once the gateway is configured", func() {
		Expect(cfg.Validate()).To(Succeed())
		amount, err := cfg.Checkout.AmountDecimal()
		Expect(err).ToNot(HaveOccurred())
		Expect(amount.StringFixed(2)).To(Equal("137.46"))
	})

	It("requires the gateway credentials", func() {
		cfg.Gateway.SecretKey = ""
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("secret_key is required")))
	})

	It("rejects a non-positive amount", func() {
		cfg.Checkout.Amount = "0"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("amount must be greater than 0")))
	})

	It("rejects a key URL template without placeholder", func() {
		cfg.Pix.KeyURLTemplate = "qrcode.example.com/pix/"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("placeholder")))
	})

	It("allows the disabled fallback without template", func() {
		cfg.Pix.FallbackStrategy = "disabled"
		cfg.Pix.KeyURLTemplate = ""
		Expect(cfg.Validate()).To(Succeed())
	})

	It("rejects unknown fallback strategies", func() {
		cfg.Pix.FallbackStrategy = "guess"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("unknown fallback_strategy")))
	})

	Describe("LoadConfigFromEnv", func() {
		set := func(key, value string) {
			Expect(os.Setenv(key, value)).To(Succeed())
			DeferCleanup(os.Unsetenv, key)
		}

		It("reads overrides and keeps defaults", func() {
			set("GATEWAY_BASE_URL", "https://api.gateway.example.com/v1")
			set("GATEWAY_SECRET_KEY", "sk_env")
			set("GATEWAY_POLL_DELAY", "500ms")
			set("SERVER_PORT", "8081")
			set("PIX_FALLBACK_STRATEGY", "disabled")

			loaded := internal.LoadConfigFromEnv()
			Expect(loaded.Gateway.SecretKey).To(Equal("sk_env"))
			Expect(loaded.Gateway.PollDelay).To(Equal(500 * time.Millisecond))
			Expect(loaded.Server.Port).To(Equal(8081))
			Expect(loaded.Pix.FallbackStrategy).To(Equal("disabled"))
			Expect(loaded.Checkout.Amount).To(Equal("137.46"))
			Expect(loaded.Validate()).To(Succeed())
		})
	})
})
