package pix_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/pix-checkout/internal/pix"
)

var _ = Describe("FallbackPolicy", func() {
	It("embeds the transaction id into the key URL", func() {
		policy, err := pix.NewFallbackPolicy(pix.StrategyKeyURLTemplate, "qrcode.example.com/pix/%s", "Pag Intermediações", "São Bernardo")
		Expect(err).ToNot(HaveOccurred())

		payload, err := policy.Payload("0b5c7d1e-1111-2222-3333-444455556666")
		Expect(err).ToNot(HaveOccurred())

		decoded, err := pix.Parse(payload)
		Expect(err).ToNot(HaveOccurred())
		Expect(decoded.KeyURL).To(Equal("qrcode.example.com/pix/0b5c7d1e-1111-2222-3333-444455556666"))
		Expect(decoded.MerchantName).To(Equal("PAG INTERMEDIACOES"))
		Expect(decoded.MerchantCity).To(Equal("SAO BERNARDO"))
	})

	It("defaults to the key URL template strategy", func() {
		policy, err := pix.NewFallbackPolicy("", "k/%s", "A", "B")
		Expect(err).ToNot(HaveOccurred())
		Expect(policy).To(BeAssignableToTypeOf(pix.KeyURLTemplatePolicy{}))
	})

	It("requires a placeholder in the template", func() {
		policy := pix.KeyURLTemplatePolicy{Template: "qrcode.example.com/pix/", MerchantName: "A", MerchantCity: "B"}
		_, err := policy.Payload("abc")
		Expect(err).To(HaveOccurred())
	})

	It("requires a transaction id", func() {
		policy := pix.KeyURLTemplatePolicy{Template: "k/%s", MerchantName: "A", MerchantCity: "B"}
		_, err := policy.Payload("")
		Expect(err).To(HaveOccurred())
	})

	It("can be disabled", func() {
		policy, err := pix.NewFallbackPolicy(pix.StrategyDisabled, "", "", "")
		Expect(err).ToNot(HaveOccurred())
		_, err = policy.Payload("abc")
		Expect(err).To(MatchError(pix.ErrFallbackDisabled))
	})

	It("rejects unknown strategies", func() {
		_, err := pix.NewFallbackPolicy("guess", "", "", "")
		Expect(err).To(HaveOccurred())
	})
})
