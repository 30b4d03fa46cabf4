package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Payphone-Digital/midas/pkg/circuit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProcessor(t *testing.T, handler http.HandlerFunc, threshold int) *StripeProcessor {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := circuit.DefaultConfig()
	cfg.Threshold = threshold
	cfg.CallTimeout = 5 * time.Second
	breaker := circuit.NewBreaker("stripe", cfg, zap.NewNop())

	return NewStripeProcessorWithBackend("sk_test_123", "usd", srv.URL, srv.Client(), breaker, zap.NewNop())
}

func writeIntent(w http.ResponseWriter, status string, amount int64) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":            "pi_123",
		"object":        "payment_intent",
		"client_secret": "pi_123_secret_abc",
		"status":        status,
		"amount":        amount,
		"currency":      "usd",
	})
}

func TestStripeProcessor_CreateIntent(t *testing.T) {
	var form map[string][]string
	p := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		writeIntent(w, "requires_payment_method", 1234)
	}, 5)

	intent, err := p.CreateIntent(context.Background(), 1234, map[string]string{"email": "a@b.com"})
	require.NoError(t, err)

	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, int64(1234), intent.Amount)
	assert.False(t, intent.Succeeded())
	assert.Equal(t, []string{"1234"}, form["amount"])
	assert.Equal(t, []string{"usd"}, form["currency"])
	assert.Equal(t, []string{"a@b.com"}, form["metadata[email]"])
}

func TestStripeProcessor_ConfirmAndCancel(t *testing.T) {
	p := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/payment_intents/pi_123/confirm":
			writeIntent(w, "succeeded", 500)
		case "/v1/payment_intents/pi_123/cancel":
			writeIntent(w, "canceled", 500)
		default:
			http.NotFound(w, r)
		}
	}, 5)

	intent, err := p.ConfirmIntent(context.Background(), "pi_123", "pm_card_visa")
	require.NoError(t, err)
	assert.True(t, intent.Succeeded())

	intent, err = p.CancelIntent(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.True(t, intent.Canceled())
}

func TestStripeProcessor_FailuresOpenBreaker(t *testing.T) {
	calls := 0
	p := newTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"boom"}}`))
	}, 2)

	ctx := context.Background()
	_, err := p.GetIntent(ctx, "pi_123")
	assert.Error(t, err)
	_, err = p.GetIntent(ctx, "pi_123")
	assert.Error(t, err)

	_, err = p.GetIntent(ctx, "pi_123")
	assert.True(t, errors.Is(err, circuit.ErrCircuitOpen))
	assert.Equal(t, 2, calls)
}
