// Package checkout drives one payment attempt against the relay: submit a
// one-time token, walk the payer through 3-D Secure when the provider asks
// for it, and poll until the charge reaches a terminal status.
package checkout

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// ChargeRequest is the body sent to POST /api/charge.
type ChargeRequest struct {
	Token    string          `json:"token"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// Envelope is the relay's uniform response wrapper. Charge and Error are kept
// raw: the relay passes provider bodies through verbatim and so do we.
type Envelope struct {
	Success bool            `json:"success"`
	Charge  json.RawMessage `json:"charge,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// ErrorMessage extracts a human-readable reason from the error body.
func (e Envelope) ErrorMessage() string {
	var m struct {
		Message string `json:"message"`
	}
	if len(e.Error) > 0 && json.Unmarshal(e.Error, &m) == nil && m.Message != "" {
		return m.Message
	}
	if len(e.Error) > 0 {
		return string(e.Error)
	}
	return "payment failed"
}

// RelayAPI is the coordinator's view of the relay.
type RelayAPI interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (Envelope, error)
	GetCharge(ctx context.Context, chargeID string) (Envelope, error)
}

// Client talks to the relay over HTTP.
//
// The relay answers failures with HTTP 400 carrying the same envelope shape,
// so a non-2xx status is still a parsed Envelope, not an error; errors are
// reserved for transport problems.
type Client struct {
	http *resty.Client
}

var _ RelayAPI = (*Client)(nil)

func NewClient(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json"),
	}
}

func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (Envelope, error) {
	var env Envelope
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&env).
		SetError(&env).
		Post("/api/charge")
	if err != nil {
		return Envelope{}, err
	}
	return env, nil
}

func (c *Client) GetCharge(ctx context.Context, chargeID string) (Envelope, error) {
	var env Envelope
	_, err := c.http.R().
		SetContext(ctx).
		SetResult(&env).
		SetError(&env).
		Get("/api/charge/" + url.PathEscape(chargeID))
	if err != nil {
		return Envelope{}, err
	}
	return env, nil
}
