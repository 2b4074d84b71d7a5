package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/pix-checkout/internal/pix"
)

func TestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cmd Suite")
}

func run(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

var _ = Describe("pix commands", func() {
	BeforeEach(func() {
		buildReference, buildNormalize, qrOutput, qrSize = "", false, "", 0
	})

	It("builds a payload that verifies", func() {
		out, err := run("pix", "build",
			"--key-url", "qrcode.example.com/pix/ABC123",
			"--name", "PAG INTERMEDIACOES",
			"--city", "SAO BERNARDO DO CAMPO")
		Expect(err).ToNot(HaveOccurred())

		payload := strings.TrimSpace(out)
		decoded, err := pix.Parse(payload)
		Expect(err).ToNot(HaveOccurred())
		Expect(decoded.KeyURL).To(Equal("qrcode.example.com/pix/ABC123"))

		out, err = run("pix", "verify", payload)
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(ContainSubstring("(ok)"))
		Expect(out).To(ContainSubstring("city:      SAO BERNARDO DO CAMPO"))
	})

	It("rejects a tampered payload", func() {
		payload, err := pix.BuildPayload("qrcode.example.com/pix/ABC123", "PAG", "SAO PAULO")
		Expect(err).ToNot(HaveOccurred())
		tampered := strings.Replace(payload, "SAO PAULO", "SAO PAULA", 1)

		_, err = run("pix", "verify", tampered)
		Expect(err).To(MatchError(pix.ErrChecksumMismatch))
	})

	It("writes a QR code PNG", func() {
		file := filepath.Join(GinkgoT().TempDir(), "pix.png")
		out, err := run("pix", "qr", "000201", "--output", file)
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(ContainSubstring("wrote"))

		png, err := os.ReadFile(file)
		Expect(err).ToNot(HaveOccurred())
		Expect(png[:4]).To(Equal([]byte{0x89, 'P', 'N', 'G'}))
	})
})

var _ = Describe("webhookURL", func() {
	It("appends the webhook path", func() {
		Expect(webhookURL("https://shop.example.com/")).To(Equal("https://shop.example.com/charge/webhook"))
		Expect(webhookURL("")).To(BeEmpty())
	})
})
