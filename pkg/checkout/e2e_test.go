package checkout_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"taprelay/internal/adapter/http/handlers"
	"taprelay/internal/infrastructure/payments"
	"taprelay/internal/usecase"
	"taprelay/pkg/checkout"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// Full stack: coordinator -> relay (real gin handlers + use case + gateway)
// -> provider stub.
func TestEndToEnd_CapturedWithoutStepUp(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("RELAY_ALLOW_LEGACY_DEFAULTS", "")

	var providerCalls int64
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&providerCalls, 1)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/charges", r.URL.Path)
		require.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, true, payload["threeDSecure"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chg_1","status":"CAPTURED","amount":10,"currency":"SAR","object":"charge"}`))
	}))
	defer provider.Close()

	gateway := payments.NewTapGateway(payments.Config{BaseURL: provider.URL, SecretKey: "sk_test_secret"})
	uc := usecase.NewChargeUseCase(gateway, usecase.MerchantProfile{
		RedirectURL:       "https://merchant.example/return",
		CustomerFirstName: "Test",
		CustomerEmail:     "test@test.com",
		Description:       "Test charge from Card SDK",
		MetadataUDF1:      "test payment",
	})
	h := handlers.NewChargeHandler(uc)

	router := gin.New()
	router.POST("/api/charge", h.CreateCharge)
	router.GET("/api/charge/:id", h.GetCharge)
	relay := httptest.NewServer(router)
	defer relay.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	results := make(chan checkout.Result, 1)

	c := checkout.NewCoordinator(checkout.NewClient(relay.URL), nil, checkout.Callbacks{
		OnSuccess: func(r checkout.Result) { results <- r },
		OnFailure: func(r checkout.Result) { t.Errorf("unexpected failure: %+v", r) },
	}, checkout.Config{PollInterval: 10 * time.Millisecond, Logger: logger})
	defer c.Close()

	c.Submit(context.Background(), checkout.ChargeRequest{
		Token:    "tok_abc",
		Amount:   decimal.NewFromInt(10),
		Currency: "SAR",
	})

	select {
	case res := <-results:
		require.Equal(t, "chg_1", res.ChargeID)
		require.Equal(t, "SAR", res.Currency)
		require.True(t, res.Amount.Equal(decimal.NewFromInt(10)))
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for success")
	}

	require.Equal(t, checkout.StateSucceeded, c.State())
	// Exactly one upstream charge call, no polling for a settled charge.
	require.EqualValues(t, 1, atomic.LoadInt64(&providerCalls))
}

func TestEndToEnd_StepUpThenCaptured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("RELAY_ALLOW_LEGACY_DEFAULTS", "")

	var statusCalls int64
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost:
			_, _ = w.Write([]byte(`{"id":"chg_9","status":"INITIATED","amount":10,"currency":"SAR","transaction":{"url":"https://auth.example/3ds"}}`))
		default:
			require.Equal(t, "/charges/chg_9", r.URL.Path)
			if atomic.AddInt64(&statusCalls, 1) < 3 {
				_, _ = w.Write([]byte(`{"id":"chg_9","status":"INITIATED"}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"chg_9","status":"CAPTURED","amount":10,"currency":"SAR"}`))
		}
	}))
	defer provider.Close()

	gateway := payments.NewTapGateway(payments.Config{BaseURL: provider.URL, SecretKey: "sk_test_secret"})
	uc := usecase.NewChargeUseCase(gateway, usecase.MerchantProfileFromEnv())
	h := handlers.NewChargeHandler(uc)

	router := gin.New()
	router.POST("/api/charge", h.CreateCharge)
	router.GET("/api/charge/:id", h.GetCharge)
	relay := httptest.NewServer(router)
	defer relay.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	results := make(chan checkout.Result, 1)
	authURLs := make(chan string, 1)

	c := checkout.NewCoordinator(checkout.NewClient(relay.URL), nil, checkout.Callbacks{
		OnAuthenticationRequired: func(url string) { authURLs <- url },
		OnSuccess:                func(r checkout.Result) { results <- r },
		OnFailure:                func(r checkout.Result) { t.Errorf("unexpected failure: %+v", r) },
	}, checkout.Config{PollInterval: 10 * time.Millisecond, Logger: logger})
	defer c.Close()

	c.Submit(context.Background(), checkout.ChargeRequest{
		Token:    "tok_abc",
		Amount:   decimal.NewFromInt(10),
		Currency: "SAR",
	})

	select {
	case url := <-authURLs:
		require.Equal(t, "https://auth.example/3ds", url)
	case <-time.After(time.Second):
		t.Fatal("authentication callback never fired")
	}

	select {
	case res := <-results:
		require.Equal(t, "chg_9", res.ChargeID)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for success")
	}
	require.GreaterOrEqual(t, atomic.LoadInt64(&statusCalls), int64(3))
}
