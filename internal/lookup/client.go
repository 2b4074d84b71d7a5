package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/pix-checkout/internal"
	"github.com/frahmantamala/pix-checkout/internal/core/datamodel/identity"
)

// ErrNotFound is returned when a lookup service has no record for the key.
// Transport and decoding failures are LOOKUP_UNAVAILABLE errors instead.
var ErrNotFound = internal.ErrIdentityNotFound

type CPFLookup interface {
	LookupByCPF(ctx context.Context, cpf string) (*identity.Identity, error)
}

type ContactLookup interface {
	LookupByPhone(ctx context.Context, phone string) (*identity.Identity, error)
}

type Config struct {
	CPFURL     string
	CPFToken   string
	ContactURL string
	Timeout    time.Duration
}

// Client talks to the CPF data API and the people-search API.
type Client struct {
	cpfURL     string
	cpfToken   string
	contactURL string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cpfURL:     config.CPFURL,
		cpfToken:   config.CPFToken,
		contactURL: strings.TrimRight(config.ContactURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type cpfRecord struct {
	Name       string `json:"nome"`
	BirthDate  string `json:"data_nascimento"`
	MotherName string `json:"nome_mae"`
	Sex        string `json:"sexo"`
}

// LookupByCPF queries the CPF data API. cpf must already be normalized.
func (c *Client) LookupByCPF(ctx context.Context, cpf string) (*identity.Identity, error) {
	if !ValidCPFFormat(cpf) {
		return nil, internal.ErrInvalidCPF
	}
	if c.cpfURL == "" {
		return nil, errors.New("cpf lookup is not configured")
	}

	endpoint, err := url.Parse(c.cpfURL)
	if err != nil {
		return nil, fmt.Errorf("invalid cpf lookup url: %w", err)
	}
	q := endpoint.Query()
	q.Set("token", c.cpfToken)
	q.Set("cpf", cpf)
	endpoint.RawQuery = q.Encode()

	var body struct {
		Data json.RawMessage `json:"DADOS"`
	}
	if err := c.getJSON(ctx, endpoint.String(), &body); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.logger.Warn("cpf not found")
			return nil, ErrNotFound
		}
		c.logger.Error("cpf lookup failed", "error", err)
		return nil, internal.NewExternalError("cpf lookup failed", internal.ErrCodeLookupUnavailable, err)
	}

	var rec cpfRecord
	if len(body.Data) == 0 || json.Unmarshal(body.Data, &rec) != nil || rec.Name == "" {
		c.logger.Warn("cpf lookup returned no data")
		return nil, ErrNotFound
	}

	return &identity.Identity{
		Name:       rec.Name,
		CPF:        FormatCPF(cpf),
		BirthDate:  rec.BirthDate,
		MotherName: rec.MotherName,
		Sex:        rec.Sex,
	}, nil
}

type contactRecord struct {
	Name  string `json:"nome"`
	CPF   string `json:"cpf"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// LookupByPhone queries the people-search API for a lead by phone number.
func (c *Client) LookupByPhone(ctx context.Context, phone string) (*identity.Identity, error) {
	if phone == "" {
		return nil, errors.New("phone is required")
	}
	if c.contactURL == "" {
		return nil, errors.New("contact lookup is not configured")
	}

	endpoint := fmt.Sprintf("%s/api/search/%s", c.contactURL, url.PathEscape(phone))

	var body struct {
		Success bool           `json:"success"`
		Data    *contactRecord `json:"data"`
	}
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.logger.Warn("contact not found")
			return nil, ErrNotFound
		}
		c.logger.Error("contact lookup failed", "error", err)
		return nil, internal.NewExternalError("contact lookup failed", internal.ErrCodeLookupUnavailable, err)
	}
	if !body.Success || body.Data == nil || body.Data.Name == "" {
		c.logger.Warn("contact lookup returned no data")
		return nil, ErrNotFound
	}

	return &identity.Identity{
		Name:  body.Data.Name,
		CPF:   FormatCPF(NormalizeCPF(body.Data.CPF)),
		Phone: phone,
		Email: body.Data.Email,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lookup API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
