package storefront

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/pix-checkout/internal/core/common/validation"
	"github.com/frahmantamala/pix-checkout/internal/core/datamodel/identity"
	"github.com/frahmantamala/pix-checkout/internal/lookup"
	"github.com/frahmantamala/pix-checkout/pkg/logger"
)

// SMS campaign links carry the visitor's phone in utm_content.
const (
	campaignSource = "smsempresa"
	campaignMedium = "sms"
)

type SessionStore interface {
	SaveIdentity(ctx context.Context, id identity.Identity)
}

type Handler struct {
	views         *Views
	cpfLookup     lookup.CPFLookup
	contactLookup lookup.ContactLookup
	sessions      SessionStore
	amount        decimal.Decimal
	now           func() time.Time
}

func NewHandler(
	views *Views,
	cpfLookup lookup.CPFLookup,
	contactLookup lookup.ContactLookup,
	sessions SessionStore,
	amount decimal.Decimal,
) *Handler {
	return &Handler{
		views:         views,
		cpfLookup:     cpfLookup,
		contactLookup: contactLookup,
		sessions:      sessions,
		amount:        amount,
		now:           time.Now,
	}
}

type indexView struct {
	Customer         identity.Identity
	ShowConfirmation bool
	Amount           string
}

// Index handles GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customer := identity.Placeholder()

	q := r.URL.Query()
	phone := q.Get("utm_content")
	if q.Get("utm_source") == campaignSource && q.Get("utm_medium") == campaignMedium && phone != "" {
		id, err := h.contactLookup.LookupByPhone(ctx, phone)
		switch {
		case err == nil:
			id.Phone = phone
			customer = *id
			h.sessions.SaveIdentity(ctx, customer)
		case errors.Is(err, lookup.ErrNotFound):
			logger.From(ctx).Warn("no lead for campaign phone")
		default:
			logger.From(ctx).Error("contact lookup failed", "error", err)
		}
	}

	h.render(w, r, viewIndex, indexView{Customer: customer, Amount: h.formatAmount()})
}

// CPF handles GET /{cpf}. Anything that is not 11 digits after stripping
// punctuation gets the search view.
func (h *Handler) CPF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx)

	cpf := lookup.NormalizeCPF(chi.URLParam(r, "*"))
	if err := validation.ValidateCPF(cpf); err != nil {
		log.Warn("invalid cpf path", "path", r.URL.Path)
		h.render(w, r, viewSearchCPF, nil)
		return
	}

	id, err := h.cpfLookup.LookupByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, lookup.ErrNotFound) {
			log.Warn("no identity for cpf")
		} else {
			log.Error("cpf lookup failed", "error", err)
		}
		h.render(w, r, viewSearchCPF, nil)
		return
	}

	customer := *id
	customer.CPF = lookup.FormatCPF(cpf)
	customer.LookupToday = h.now().Format("02/01/2006")
	h.sessions.SaveIdentity(ctx, customer)

	log.Info("identity found for cpf")
	h.render(w, r, viewIndex, indexView{Customer: customer, ShowConfirmation: true, Amount: h.formatAmount()})
}

// VerifyCPF handles GET /verificar-cpf
func (h *Handler) VerifyCPF(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, viewVerifyCPF, nil)
}

// SearchCPF handles GET /buscar-cpf
func (h *Handler) SearchCPF(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, viewSearchCPF, nil)
}

func (h *Handler) formatAmount() string {
	return strings.Replace(h.amount.StringFixed(2), ".", ",", 1)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data interface{}) {
	var buf bytes.Buffer
	if err := h.views.Render(&buf, page, data); err != nil {
		logger.From(r.Context()).Error("failed to render view", "view", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
