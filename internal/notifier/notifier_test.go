package notifier_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/pix-checkout/internal/core/events"
	"github.com/frahmantamala/pix-checkout/internal/notifier"
)

func TestNotifier(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notifier Suite")
}

var _ = Describe("Notifier", func() {
	var (
		server   *httptest.Server
		status   int
		received chan notifier.Message
		logger   *slog.Logger
		n        *notifier.Notifier
	)

	BeforeEach(func() {
		status = http.StatusOK
		received = make(chan notifier.Message, 4)
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))
			var msg notifier.Message
			Expect(json.NewDecoder(r.Body).Decode(&msg)).To(Succeed())
			received <- msg
			w.WriteHeader(status)
		}))
		n = notifier.New(notifier.Config{WebhookURL: server.URL, Timeout: time.Second}, logger)
	})

	AfterEach(func() {
		server.Close()
	})

	It("delivers the message", func() {
		res := n.Notify(context.Background(), notifier.Message{Title: "t", Text: "x", IsTimeSensitive: true})
		Expect(res.Delivered).To(BeTrue())
		Expect(res.Err).ToNot(HaveOccurred())
		Expect(res.StatusCode).To(Equal(http.StatusOK))

		var msg notifier.Message
		Expect(received).To(Receive(&msg))
		Expect(msg.Title).To(Equal("t"))
		Expect(msg.IsTimeSensitive).To(BeTrue())
	})

	It("reports non-2xx responses in the result", func() {
		status = http.StatusInternalServerError
		res := n.Notify(context.Background(), notifier.Message{Title: "t"})
		Expect(res.Delivered).To(BeFalse())
		Expect(res.StatusCode).To(Equal(http.StatusInternalServerError))
		Expect(res.Err).To(HaveOccurred())
	})

	It("reports unreachable endpoints in the result", func() {
		server.Close()
		res := n.Notify(context.Background(), notifier.Message{Title: "t"})
		Expect(res.Delivered).To(BeFalse())
		Expect(res.Err).To(HaveOccurred())
	})

	It("skips delivery when no webhook is configured", func() {
		disabled := notifier.New(notifier.Config{}, logger)
		Expect(disabled.Enabled()).To(BeFalse())
		res := disabled.Notify(context.Background(), notifier.Message{Title: "t"})
		Expect(res.Skipped).To(BeTrue())
		Expect(res.Delivered).To(BeFalse())
	})

	Describe("event subscriptions", func() {
		var bus *events.EventBus

		BeforeEach(func() {
			bus = events.NewEventBus(logger)
			n.Subscribe(bus)
		})

		It("announces new charges", func() {
			event := events.NewChargeCreatedEvent("tx-9", "order-9", "MARIA SOUZA", decimal.RequireFromString("137.46"))
			Expect(bus.Publish(context.Background(), event)).To(Succeed())

			var msg notifier.Message
			Eventually(received).Should(Receive(&msg))
			Expect(msg.Title).To(ContainSubstring("Nova Venda PIX"))
			Expect(msg.Text).To(Equal("Cliente: MARIA SOUZA\nValor: R$ 137.46\nID: tx-9"))
		})

		It("announces paid charges only", func() {
			Expect(bus.Publish(context.Background(), events.NewChargeStatusChangedEvent("order-9", "waiting_payment", "137.46"))).To(Succeed())
			Consistently(received, 200*time.Millisecond).ShouldNot(Receive())

			Expect(bus.Publish(context.Background(), events.NewChargeStatusChangedEvent("order-9", "paid", "137.46"))).To(Succeed())
			var msg notifier.Message
			Eventually(received).Should(Receive(&msg))
			Expect(msg.Title).To(ContainSubstring("Venda Aprovada"))
			Expect(msg.Text).To(ContainSubstring("order-9"))
		})
	})

	Describe("messages", func() {
		It("shows N/A when the paid notification has no amount", func() {
			msg := notifier.ChargePaidMessage(events.NewChargeStatusChangedEvent("order-9", "paid", ""))
			Expect(msg.Text).To(Equal("Pedido: order-9\nValor: R$ N/A"))
		})

		It("shows N/A for a charge without transaction id", func() {
			msg := notifier.ChargeCreatedMessage(events.NewChargeCreatedEvent("", "order-9", "", decimal.RequireFromString("10")))
			Expect(msg.Text).To(Equal("Cliente: Cliente\nValor: R$ 10.00\nID: N/A"))
		})
	})
})
