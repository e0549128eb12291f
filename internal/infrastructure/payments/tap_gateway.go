package payments

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"time"

	"taprelay/internal/usecase/interfaces"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

const (
	defaultAPIBaseURL  = "https://api.tap.company/v2"
	defaultHTTPTimeout = 30 * time.Second

	chargesPath = "/charges"
)

// Config holds the Tap API connection settings.
//
// The secret key is the credential boundary of the whole relay: it is read
// from the environment, attached server-side as a bearer token and must never
// appear in client traffic or logs.
type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL:   getenvDefault("TAP_API_URL", defaultAPIBaseURL),
		SecretKey: os.Getenv("TAP_SECRET_KEY"),
		Timeout:   defaultHTTPTimeout,
	}
}

// TapGateway talks to the Tap Payments charge API.
//
// Request and response bodies are raw JSON end to end; the gateway adds
// authentication and transport, nothing else.

type TapGateway struct {
	client *resty.Client
}

var _ interfaces.IChargeGateway = (*TapGateway)(nil)

// NewTapGateway builds the gateway. A missing secret key is logged loudly but
// is not fatal: the process stays up and provider calls fail with the
// provider's own auth error, which flows back to clients as a normal 400
// envelope.
func NewTapGateway(cfg Config) *TapGateway {
	if cfg.SecretKey == "" {
		log.Errorf("[charge][gateway] TAP_SECRET_KEY environment variable not set! Provider calls will fail with an auth error")
	} else {
		log.Infof("[charge][gateway] Tap client initialized base_url=%s", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.SecretKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &TapGateway{client: client}
}

func (g *TapGateway) CreateCharge(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	log.Infof("[charge][gateway] create start payload_len=%d", len(payload))

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody([]byte(payload)).
		Post(chargesPath)
	if err != nil {
		log.Warnf("[charge][gateway] create transport failed err=%v", err)
		return nil, err
	}
	if resp.IsError() {
		log.Warnf("[charge][gateway] create rejected status=%d body_len=%d", resp.StatusCode(), len(resp.Body()))
		return nil, providerError(resp)
	}

	log.Infof("[charge][gateway] create success status=%d body_len=%d", resp.StatusCode(), len(resp.Body()))
	return resp.Body(), nil
}

func (g *TapGateway) GetCharge(ctx context.Context, chargeID string) (json.RawMessage, error) {
	log.Infof("[charge][gateway] lookup start charge_id=%s", chargeID)

	resp, err := g.client.R().
		SetContext(ctx).
		Get(chargesPath + "/" + url.PathEscape(chargeID))
	if err != nil {
		log.Warnf("[charge][gateway] lookup transport failed charge_id=%s err=%v", chargeID, err)
		return nil, err
	}
	if resp.IsError() {
		log.Warnf("[charge][gateway] lookup rejected charge_id=%s status=%d", chargeID, resp.StatusCode())
		return nil, providerError(resp)
	}

	return resp.Body(), nil
}

func providerError(resp *resty.Response) *interfaces.ProviderError {
	e := &interfaces.ProviderError{StatusCode: resp.StatusCode()}
	if body := resp.Body(); json.Valid(body) {
		e.Body = append(json.RawMessage(nil), body...)
	}
	return e
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
