package pix_test

import (
	"fmt"
	"regexp"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/pix-checkout/internal/pix"
)

// Example payload published in the BCB "Manual de Padrões para Iniciação do Pix".
const bcbStaticExample = "00020126580014br.gov.bcb.pix0136123e4567-e12b-12d1-a456-4266554400005204000053039865802BR5913Fulano de Tal6008BRASILIA62070503***63041D3D"

var hexSuffix = regexp.MustCompile(`[0-9A-F]{4}$`)

var _ = Describe("Checksum", func() {
	It("returns FFFF for empty input", func() {
		Expect(pix.Checksum("")).To(Equal("FFFF"))
	})

	It("matches the CRC-16/CCITT-FALSE check value", func() {
		Expect(pix.Checksum("123456789")).To(Equal("29B1"))
		Expect(pix.CRC16([]byte("123456789"))).To(Equal(uint16(0x29B1)))
	})

	It("reproduces the checksum of the BCB reference payload", func() {
		prefix := bcbStaticExample[:len(bcbStaticExample)-4]
		Expect(pix.Checksum(prefix)).To(Equal("1D3D"))
	})

	It("is sensitive to whitespace", func() {
		Expect(pix.Checksum("000201")).ToNot(Equal(pix.Checksum("000201 ")))
	})

	It("always yields four uppercase hex digits", func() {
		for _, in := range []string{"a", "PIX", "0002010102", strings.Repeat("z", 500)} {
			Expect(pix.Checksum(in)).To(MatchRegexp(`^[0-9A-F]{4}$`))
		}
	})
})

var _ = Describe("TLV", func() {
	It("derives lengths from values", func() {
		out, err := pix.Encode(pix.Field{ID: "59", Value: "FULANO"}, pix.Field{ID: "60", Value: ""})
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(Equal("5906FULANO6000"))
	})

	It("counts bytes, not runes", func() {
		out, err := pix.Encode(pix.Field{ID: "60", Value: "SÃO"})
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(Equal("6004SÃO"))
	})

	It("rejects values longer than 99 bytes", func() {
		_, err := pix.Encode(pix.Field{ID: "25", Value: strings.Repeat("x", 100)})
		Expect(err).To(MatchError(pix.ErrFieldTooLong))

		_, err = pix.Encode(pix.Field{ID: "25", Value: strings.Repeat("x", 99)})
		Expect(err).ToNot(HaveOccurred())
	})

	It("rejects malformed ids", func() {
		_, err := pix.Encode(pix.Field{ID: "5", Value: "x"})
		Expect(err).To(MatchError(pix.ErrInvalidFieldID))
	})

	It("parses what it encodes", func() {
		in := []pix.Field{{ID: "00", Value: "01"}, {ID: "26", Value: "0014br.gov.bcb.pix"}, {ID: "62", Value: "0503***"}}
		out, err := pix.Encode(in...)
		Expect(err).ToNot(HaveOccurred())

		fields, err := pix.ParseFields(out)
		Expect(err).ToNot(HaveOccurred())
		Expect(fields).To(Equal(in))
	})

	It("reports truncated input", func() {
		_, err := pix.ParseFields("5910SHORT")
		Expect(err).To(MatchError(pix.ErrMalformedTLV))
	})
})

var _ = Describe("BuildPayload", func() {
	const (
		keyURL = "qrcode.example.com/pix/ABC123"
		name   = "PAG INTERMEDIACOES"
		city   = "SAO BERNARDO DO CAMPO"
	)

	It("ends with a checksum over everything before it", func() {
		payload, err := pix.BuildPayload(keyURL, name, city)
		Expect(err).ToNot(HaveOccurred())
		Expect(payload).To(MatchRegexp(`[0-9A-F]{4}$`))

		prefix, sum := payload[:len(payload)-4], payload[len(payload)-4:]
		Expect(prefix).To(HaveSuffix("6304"))
		Expect(pix.Checksum(prefix)).To(Equal(sum))
	})

	It("lays out fields in the fixed order", func() {
		payload, err := pix.BuildPayload(keyURL, name, city)
		Expect(err).ToNot(HaveOccurred())

		account := fmt.Sprintf("0014br.gov.bcb.pix25%02d%s", len(keyURL), keyURL)
		expected := "000201" + "010212" +
			fmt.Sprintf("26%02d%s", len(account), account) +
			"52040000" + "5303986" + "5802BR" +
			fmt.Sprintf("59%02d%s", len(name), name) +
			fmt.Sprintf("60%02d%s", len(city), city) +
			"62070503***" + "6304"
		Expect(payload[:len(payload)-4]).To(Equal(expected))
	})

	It("is deterministic", func() {
		a, err := pix.BuildPayload(keyURL, name, city)
		Expect(err).ToNot(HaveOccurred())
		b, err := pix.BuildPayload(keyURL, name, city)
		Expect(err).ToNot(HaveOccurred())
		Expect(a).To(Equal(b))
	})

	It("round-trips merchant name, city and key URL", func() {
		payload, err := pix.BuildPayload(keyURL, name, city)
		Expect(err).ToNot(HaveOccurred())

		decoded, err := pix.Parse(payload)
		Expect(err).ToNot(HaveOccurred())
		Expect(decoded.KeyURL).To(Equal(keyURL))
		Expect(decoded.MerchantName).To(Equal(name))
		Expect(decoded.MerchantCity).To(Equal(city))
		Expect(decoded.ReferenceLabel).To(Equal(pix.DefaultReferenceLabel))
	})

	It("recomputes lengths and checksum when the transaction id changes", func() {
		short, err := pix.BuildPayload("qrcode.example.com/pix/ABC", name, city)
		Expect(err).ToNot(HaveOccurred())
		long, err := pix.BuildPayload("qrcode.example.com/pix/ABC123456", name, city)
		Expect(err).ToNot(HaveOccurred())

		shortAccount, _ := pix.Lookup(mustFields(short), pix.IDMerchantAccount)
		longAccount, _ := pix.Lookup(mustFields(long), pix.IDMerchantAccount)
		Expect(len(longAccount) - len(shortAccount)).To(Equal(6))
		Expect(short).To(ContainSubstring(fmt.Sprintf("26%02d", len(shortAccount))))
		Expect(long).To(ContainSubstring(fmt.Sprintf("26%02d", len(longAccount))))

		Expect(hexSuffix.FindString(short)).ToNot(Equal(hexSuffix.FindString(long)))
		for _, p := range []string{short, long} {
			_, err := pix.Parse(p)
			Expect(err).ToNot(HaveOccurred())
		}
	})

	It("fails instead of truncating an over-long key URL", func() {
		_, err := pix.BuildPayload("qrcode.example.com/pix/"+strings.Repeat("9", 80), name, city)
		Expect(err).To(MatchError(pix.ErrFieldTooLong))
	})

	It("fails when the merchant name is over-long", func() {
		_, err := pix.BuildPayload(keyURL, strings.Repeat("N", 100), city)
		Expect(err).To(MatchError(pix.ErrFieldTooLong))
	})

	It("uses a custom reference label", func() {
		payload, err := pix.Payload{KeyURL: keyURL, MerchantName: name, MerchantCity: city, ReferenceLabel: "ORDER42"}.Build()
		Expect(err).ToNot(HaveOccurred())
		Expect(payload).To(ContainSubstring("62110507ORDER42"))
	})

	It("requires a key URL", func() {
		_, err := pix.BuildPayload("", name, city)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Parse", func() {
	It("decodes the BCB reference payload", func() {
		decoded, err := pix.Parse(bcbStaticExample)
		Expect(err).ToNot(HaveOccurred())
		Expect(decoded.MerchantName).To(Equal("Fulano de Tal"))
		Expect(decoded.MerchantCity).To(Equal("BRASILIA"))
		Expect(decoded.Checksum).To(Equal("1D3D"))
	})

	It("rejects a tampered payload", func() {
		tampered := strings.Replace(bcbStaticExample, "BRASILIA", "BRASILIO", 1)
		_, err := pix.Parse(tampered)
		Expect(err).To(MatchError(pix.ErrChecksumMismatch))
	})

	It("rejects a payload without CRC field", func() {
		_, err := pix.Parse("000201")
		Expect(err).To(MatchError(pix.ErrMalformedTLV))
	})
})

var _ = Describe("NormalizeText", func() {
	It("strips accents and upper-cases", func() {
		Expect(pix.NormalizeText(" São Bernardo do Campo ")).To(Equal("SAO BERNARDO DO CAMPO"))
		Expect(pix.NormalizeText("Intermediações")).To(Equal("INTERMEDIACOES"))
	})
})

func mustFields(payload string) []pix.Field {
	fields, err := pix.ParseFields(payload)
	Expect(err).ToNot(HaveOccurred())
	return fields
}
