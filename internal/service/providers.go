package service

import (
	"context"

	"github.com/Payphone-Digital/midas/pkg/mailer"
	"github.com/Payphone-Digital/midas/pkg/payment"
	"github.com/Payphone-Digital/midas/pkg/unsplash"
)

// PaymentProcessor drives payment intents at the payment provider.
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, amount int64, metadata map[string]string) (payment.Intent, error)
	GetIntent(ctx context.Context, id string) (payment.Intent, error)
	UpdateIntent(ctx context.Context, id string, params payment.UpdateParams) (payment.Intent, error)
	ConfirmIntent(ctx context.Context, id, paymentMethod string) (payment.Intent, error)
	CancelIntent(ctx context.Context, id string) (payment.Intent, error)
}

type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type PhotoSearcher interface {
	SearchPhotos(ctx context.Context, query string, count int) ([]unsplash.Photo, error)
}
