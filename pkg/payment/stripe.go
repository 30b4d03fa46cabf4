package payment

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Payphone-Digital/midas/pkg/circuit"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// Intent is the subset of a Stripe PaymentIntent the service works with.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
}

func (i Intent) Succeeded() bool {
	return i.Status == string(stripe.PaymentIntentStatusSucceeded)
}

func (i Intent) Canceled() bool {
	return i.Status == string(stripe.PaymentIntentStatusCanceled)
}

// UpdateParams carries the mutable fields of an intent. Empty strings and a
// nil Amount are left unchanged.
type UpdateParams struct {
	Amount        *int64
	PaymentMethod string
	ReceiptEmail  string
	Description   string
}

// StripeProcessor drives payment intents through the Stripe API. Every call
// runs under the breaker, which also bounds it with the call timeout.
type StripeProcessor struct {
	api      *client.API
	currency string
	breaker  *circuit.Breaker
	logger   *zap.Logger
}

// NewStripeProcessor talks to the live Stripe API. A nil httpClient uses
// the library default. Network retries are disabled.
func NewStripeProcessor(secretKey, currency string, httpClient *http.Client, breaker *circuit.Breaker, logger *zap.Logger) *StripeProcessor {
	return NewStripeProcessorWithBackend(secretKey, currency, "", httpClient, breaker, logger)
}

// NewStripeProcessorWithBackend points the client at a custom API base URL.
func NewStripeProcessorWithBackend(secretKey, currency, baseURL string, httpClient *http.Client, breaker *circuit.Breaker, logger *zap.Logger) *StripeProcessor {
	cfg := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	}
	if baseURL != "" {
		cfg.URL = stripe.String(baseURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)

	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return newStripeProcessor(api, currency, breaker, logger)
}

func newStripeProcessor(api *client.API, currency string, breaker *circuit.Breaker, logger *zap.Logger) *StripeProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if breaker == nil {
		breaker = circuit.NewBreaker("stripe", circuit.DefaultConfig(), logger)
	}
	return &StripeProcessor{api: api, currency: currency, breaker: breaker, logger: logger}
}

func (p *StripeProcessor) CreateIntent(ctx context.Context, amount int64, metadata map[string]string) (Intent, error) {
	var out Intent
	err := p.breaker.Do(ctx, func(ctx context.Context) error {
		params := &stripe.PaymentIntentParams{
			Amount:             stripe.Int64(amount),
			Currency:           stripe.String(p.currency),
			PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		}
		params.Context = ctx
		for k, v := range metadata {
			params.AddMetadata(k, v)
		}

		pi, err := p.api.PaymentIntents.New(params)
		if err != nil {
			return err
		}
		out = toIntent(pi)
		return nil
	})
	if err != nil {
		return Intent{}, fmt.Errorf("create payment intent: %w", err)
	}

	p.logger.Debug("Payment intent created", zap.String("intent_id", out.ID), zap.Int64("amount", amount))
	return out, nil
}

func (p *StripeProcessor) GetIntent(ctx context.Context, id string) (Intent, error) {
	var out Intent
	err := p.breaker.Do(ctx, func(ctx context.Context) error {
		params := &stripe.PaymentIntentParams{}
		params.Context = ctx

		pi, err := p.api.PaymentIntents.Get(id, params)
		if err != nil {
			return err
		}
		out = toIntent(pi)
		return nil
	})
	if err != nil {
		return Intent{}, fmt.Errorf("get payment intent %s: %w", id, err)
	}
	return out, nil
}

func (p *StripeProcessor) UpdateIntent(ctx context.Context, id string, update UpdateParams) (Intent, error) {
	var out Intent
	err := p.breaker.Do(ctx, func(ctx context.Context) error {
		params := &stripe.PaymentIntentParams{}
		params.Context = ctx
		if update.Amount != nil {
			params.Amount = stripe.Int64(*update.Amount)
		}
		if update.PaymentMethod != "" {
			params.PaymentMethod = stripe.String(update.PaymentMethod)
		}
		if update.ReceiptEmail != "" {
			params.ReceiptEmail = stripe.String(update.ReceiptEmail)
		}
		if update.Description != "" {
			params.Description = stripe.String(update.Description)
		}

		pi, err := p.api.PaymentIntents.Update(id, params)
		if err != nil {
			return err
		}
		out = toIntent(pi)
		return nil
	})
	if err != nil {
		return Intent{}, fmt.Errorf("update payment intent %s: %w", id, err)
	}
	return out, nil
}

func (p *StripeProcessor) ConfirmIntent(ctx context.Context, id, paymentMethod string) (Intent, error) {
	var out Intent
	err := p.breaker.Do(ctx, func(ctx context.Context) error {
		params := &stripe.PaymentIntentConfirmParams{}
		params.Context = ctx
		if paymentMethod != "" {
			params.PaymentMethod = stripe.String(paymentMethod)
		}

		pi, err := p.api.PaymentIntents.Confirm(id, params)
		if err != nil {
			return err
		}
		out = toIntent(pi)
		return nil
	})
	if err != nil {
		return Intent{}, fmt.Errorf("confirm payment intent %s: %w", id, err)
	}
	return out, nil
}

func (p *StripeProcessor) CancelIntent(ctx context.Context, id string) (Intent, error) {
	var out Intent
	err := p.breaker.Do(ctx, func(ctx context.Context) error {
		params := &stripe.PaymentIntentCancelParams{}
		params.Context = ctx

		pi, err := p.api.PaymentIntents.Cancel(id, params)
		if err != nil {
			return err
		}
		out = toIntent(pi)
		return nil
	})
	if err != nil {
		return Intent{}, fmt.Errorf("cancel payment intent %s: %w", id, err)
	}

	p.logger.Debug("Payment intent canceled", zap.String("intent_id", id))
	return out, nil
}

func toIntent(pi *stripe.PaymentIntent) Intent {
	return Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}
}
