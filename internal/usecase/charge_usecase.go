package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"taprelay/internal/domain/entities"
	"taprelay/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var (
	ErrMissingToken         = errors.New("missing payment token")
	ErrInvalidAmount        = errors.New("invalid charge amount")
	ErrInvalidCurrency      = errors.New("invalid charge currency")
	ErrInvalidChargeID      = errors.New("invalid charge id")
	ErrGatewayNotConfigured = errors.New("charge gateway not configured")
)

// IChargeUseCase encapsulates the relay behavior: turn an untrusted client
// request into a provider charge call with server-held constants merged in,
// and read charge status back for polling clients.

type IChargeUseCase interface {
	Create(ctx context.Context, req entities.ChargeRequest) (entities.Charge, error)
	GetByID(ctx context.Context, id string) (entities.Charge, error)
}

// MerchantProfile holds the server-side constants merged into every provider
// payload. The values the legacy page hardcoded are kept as defaults; real
// deployments override them via environment.
type MerchantProfile struct {
	RedirectURL       string
	CustomerFirstName string
	CustomerEmail     string
	Description       string
	MetadataUDF1      string
}

func MerchantProfileFromEnv() MerchantProfile {
	return MerchantProfile{
		RedirectURL:       getenvDefault("MERCHANT_REDIRECT_URL", "https://www.bash.website"),
		CustomerFirstName: getenvDefault("MERCHANT_CUSTOMER_FIRST_NAME", "Test"),
		CustomerEmail:     getenvDefault("MERCHANT_CUSTOMER_EMAIL", "test@test.com"),
		Description:       getenvDefault("MERCHANT_CHARGE_DESCRIPTION", "Test charge from Card SDK"),
		MetadataUDF1:      getenvDefault("MERCHANT_METADATA_UDF1", "test payment"),
	}
}

type ChargeUseCase struct {
	gateway interfaces.IChargeGateway
	profile MerchantProfile
}

var _ IChargeUseCase = (*ChargeUseCase)(nil)

func NewChargeUseCase(gateway interfaces.IChargeGateway, profile MerchantProfile) *ChargeUseCase {
	return &ChargeUseCase{gateway: gateway, profile: profile}
}

// Create validates the request, builds the provider payload and forwards it.
//
// 3-D Secure is always forced on and the bearer credential never leaves the
// server; caller-supplied flags for either are ignored. The provider response
// comes back as an entities.Charge that still carries the raw body for
// verbatim pass-through.
func (u *ChargeUseCase) Create(ctx context.Context, req entities.ChargeRequest) (entities.Charge, error) {
	log.Infof("[charge][usecase] create start token=%s amount=%s currency=%s", req.Token, req.Amount, req.Currency)
	if u.gateway == nil {
		log.Errorf("[charge][usecase] gateway not configured")
		return entities.Charge{}, ErrGatewayNotConfigured
	}

	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		log.Warnf("[charge][usecase] missing token")
		return entities.Charge{}, ErrMissingToken
	}

	req, err := u.normalize(req)
	if err != nil {
		return entities.Charge{}, err
	}

	payload, err := json.Marshal(map[string]any{
		// Tap expects a bare JSON number for amount.
		"amount":       json.RawMessage(req.Amount.String()),
		"currency":     req.Currency,
		"threeDSecure": true,
		"source":       map[string]any{"id": req.Token},
		"redirect":     map[string]any{"url": u.profile.RedirectURL},
		"customer": map[string]any{
			"first_name": u.profile.CustomerFirstName,
			"email":      u.profile.CustomerEmail,
		},
		"description": u.profile.Description,
		"metadata":    map[string]any{"udf1": u.profile.MetadataUDF1},
	})
	if err != nil {
		return entities.Charge{}, err
	}

	raw, err := u.gateway.CreateCharge(ctx, payload)
	if err != nil {
		log.Warnf("[charge][usecase] gateway create failed err=%v", err)
		return entities.Charge{}, err
	}

	charge, err := entities.ParseCharge(raw)
	if err != nil {
		log.Errorf("[charge][usecase] provider response unmarshal failed err=%v", err)
		return entities.Charge{}, err
	}
	log.Infof("[charge][usecase] create success charge_id=%s status=%s auth_required=%v", charge.ID, charge.Status, charge.RequiresAuthentication())
	return charge, nil
}

// GetByID forwards a read-only status lookup. Safe to call repeatedly; this
// is what the polling loop depends on.
func (u *ChargeUseCase) GetByID(ctx context.Context, id string) (entities.Charge, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Charge{}, ErrInvalidChargeID
	}
	if u.gateway == nil {
		return entities.Charge{}, ErrGatewayNotConfigured
	}
	log.Infof("[charge][usecase] status lookup charge_id=%s", id)

	raw, err := u.gateway.GetCharge(ctx, id)
	if err != nil {
		log.Warnf("[charge][usecase] gateway lookup failed charge_id=%s err=%v", id, err)
		return entities.Charge{}, err
	}

	charge, err := entities.ParseCharge(raw)
	if err != nil {
		log.Errorf("[charge][usecase] provider response unmarshal failed charge_id=%s err=%v", id, err)
		return entities.Charge{}, err
	}
	log.Infof("[charge][usecase] status lookup success charge_id=%s status=%s", charge.ID, charge.Status)
	return charge, nil
}

// normalize enforces the required-amount/currency policy. The legacy page
// relied on the server filling amount=1 and currency=SAR; that behavior is
// opt-in now via RELAY_ALLOW_LEGACY_DEFAULTS.
func (u *ChargeUseCase) normalize(req entities.ChargeRequest) (entities.ChargeRequest, error) {
	legacy := isLegacyDefaultsEnabled()

	if !req.Amount.IsPositive() {
		if !legacy || !req.Amount.IsZero() {
			log.Warnf("[charge][usecase] invalid amount amount=%s", req.Amount)
			return entities.ChargeRequest{}, ErrInvalidAmount
		}
		req.Amount = decimal.NewFromInt(1)
		log.Warnf("[charge][usecase] legacy defaults: filled amount=1")
	}

	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Currency == "" && legacy {
		req.Currency = "SAR"
		log.Warnf("[charge][usecase] legacy defaults: filled currency=SAR")
	}
	if len(req.Currency) != 3 {
		log.Warnf("[charge][usecase] invalid currency currency=%q", req.Currency)
		return entities.ChargeRequest{}, ErrInvalidCurrency
	}
	return req, nil
}

func isLegacyDefaultsEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("RELAY_ALLOW_LEGACY_DEFAULTS")))
	switch v {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
