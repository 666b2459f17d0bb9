// Package payments wraps the external payment provider behind a small
// interface so the rest of the application never talks HTTP directly.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"townsquare/internal/models"
)

// Intent is a created payment awaiting completion on the provider side.
type Intent struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	// ClientSecret is handed to the frontend to complete the charge.
	ClientSecret string `json:"client_secret,omitempty"`
}

// CreateIntentInput describes the charge to set up.
type CreateIntentInput struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	// UserRef ties the charge back to the platform account.
	UserRef string `json:"user_ref"`
}

// Provider creates payment intents with an external processor.
type Provider interface {
	CreateIntent(ctx context.Context, in CreateIntentInput) (*Intent, error)
	Enabled() bool
}

// httpProvider posts intents to a JSON endpoint authenticated with a
// bearer key.
type httpProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPProvider returns a Provider backed by the configured endpoint.
func NewHTTPProvider(endpoint, apiKey string) Provider {
	return &httpProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *httpProvider) Enabled() bool {
	return p.endpoint != ""
}

func (p *httpProvider) CreateIntent(ctx context.Context, in CreateIntentInput) (*Intent, error) {
	if !p.Enabled() {
		return nil, models.NewUpstreamError("payment", fmt.Errorf("no payment endpoint configured"))
	}
	if in.Currency == "" {
		in.Currency = "usd"
	}

	body, err := json.Marshal(in)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, models.NewUpstreamError("payment", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, models.NewUpstreamError("payment", fmt.Errorf("provider returned status %d", resp.StatusCode))
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, models.NewUpstreamError("payment", err)
	}
	if intent.Reference == "" {
		return nil, models.NewUpstreamError("payment", fmt.Errorf("provider returned no reference"))
	}
	return &intent, nil
}

// Disabled is the no-payments fallback used when no endpoint is
// configured. Paid flows fail fast with an upstream error.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) CreateIntent(_ context.Context, _ CreateIntentInput) (*Intent, error) {
	return nil, models.NewUpstreamError("payment", fmt.Errorf("payments are not configured"))
}
