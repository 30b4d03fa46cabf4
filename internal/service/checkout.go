package service

import (
	"context"
	"errors"
	"time"

	"github.com/Payphone-Digital/midas/internal/constants"
	"github.com/Payphone-Digital/midas/internal/dto"
	apperrors "github.com/Payphone-Digital/midas/internal/errors"
	"github.com/Payphone-Digital/midas/internal/model"
	"github.com/Payphone-Digital/midas/internal/repository"
	"github.com/Payphone-Digital/midas/pkg/circuit"
	ctxutil "github.com/Payphone-Digital/midas/pkg/context"
	"github.com/Payphone-Digital/midas/pkg/logger"
	"github.com/Payphone-Digital/midas/pkg/mailer"
	"github.com/Payphone-Digital/midas/pkg/payment"
	"github.com/Payphone-Digital/midas/pkg/store"
	"golang.org/x/sync/errgroup"
)

// CheckoutService moves a cart through its payment lifecycle: no intent,
// intent open, settled. Local state only changes after the provider call
// it depends on succeeded.
type CheckoutService struct {
	users    *repository.UserRepository
	payments PaymentProcessor
	mail     Mailer
	sender   string
	currency string
	now      func() time.Time
}

func NewCheckoutService(users *repository.UserRepository, payments PaymentProcessor, mail Mailer, sender, currency string) *CheckoutService {
	return &CheckoutService{
		users:    users,
		payments: payments,
		mail:     mail,
		sender:   sender,
		currency: currency,
		now:      time.Now,
	}
}

func cartEmptyResponse() *dto.CheckoutResponse {
	return &dto.CheckoutResponse{Message: constants.MsgCartIsEmpty, CartEmpty: true}
}

// CreateIntent opens a payment intent for the cart total. If the intent
// cannot be recorded on the cart it is canceled again.
func (s *CheckoutService) CreateIntent(ctx context.Context, email string) (*dto.CheckoutResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "CheckoutService.CreateIntent")

	user, err := s.loadUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.Cart.IsEmpty() {
		return cartEmptyResponse(), nil
	}
	if user.Cart.PaymentIntentID() != "" {
		return nil, apperrors.ErrIntentExists
	}

	intent, err := s.payments.CreateIntent(ctx, int64(user.Cart.TotalPrice), map[string]string{
		"integration_check": "accept_a_payment",
		"email":             email,
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to create payment intent").String("email", email).Err(err).Log()
		return nil, apperrors.WrapError(apperrors.ErrProviderFailure, err)
	}

	user.Cart.StripeMetaData = &model.StripeMetaData{PaymentIntentID: intent.ID}
	if err := s.users.Update(ctx, user); err != nil {
		logger.ErrorWithContext(ctx, "Failed to record payment intent, canceling it").
			String("email", email).
			String("intent_id", intent.ID).
			Err(err).
			Log()
		if _, cancelErr := s.payments.CancelIntent(context.WithoutCancel(ctx), intent.ID); cancelErr != nil {
			logger.ErrorWithContext(ctx, "Compensating cancel failed, intent is orphaned").
				String("intent_id", intent.ID).
				Err(cancelErr).
				Log()
		}
		return nil, apperrors.Internal(err)
	}

	logger.InfoWithContext(ctx, "Payment intent created").
		String("email", email).
		String("intent_id", intent.ID).
		Int64("amount", intent.Amount).
		Log()
	return &dto.CheckoutResponse{Message: constants.MsgIntentCreated, ClientSecret: intent.ClientSecret}, nil
}

func (s *CheckoutService) GetIntent(ctx context.Context, email string) (*dto.CheckoutResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "CheckoutService.GetIntent")

	user, intentID, err := s.openIntent(ctx, email)
	if err != nil || user == nil {
		return cartEmptyOr(err)
	}

	intent, err := s.payments.GetIntent(ctx, intentID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrProviderFailure, err)
	}

	amount := intent.Amount
	return &dto.CheckoutResponse{ClientSecret: intent.ClientSecret, CurrentAmount: &amount}, nil
}

// UpdateIntent forwards the requested changes. The amount sent is always
// the server side cart total.
func (s *CheckoutService) UpdateIntent(ctx context.Context, email string, update *dto.PaymentIntentUpdate) (*dto.CheckoutResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "CheckoutService.UpdateIntent")

	user, intentID, err := s.openIntent(ctx, email)
	if err != nil || user == nil {
		return cartEmptyOr(err)
	}
	if update.IsEmpty() {
		return nil, apperrors.ErrNoIntentData
	}

	amount := int64(user.Cart.TotalPrice)
	if update.Amount != nil && model.FromMajor(*update.Amount) != user.Cart.TotalPrice {
		logger.WarnWithContext(ctx, "Client amount differs from cart total, using cart total").
			String("email", email).
			String("cart_total", user.Cart.TotalPrice.String()).
			Log()
	}

	intent, err := s.payments.UpdateIntent(ctx, intentID, payment.UpdateParams{
		Amount:        &amount,
		PaymentMethod: update.PaymentMethod,
		ReceiptEmail:  update.ReceiptEmail,
		Description:   update.Description,
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to update payment intent").String("intent_id", intentID).Err(err).Log()
		return nil, apperrors.WrapError(apperrors.ErrProviderFailure, err)
	}

	return &dto.CheckoutResponse{Message: constants.MsgIntentUpdated, ClientSecret: intent.ClientSecret}, nil
}

// CancelIntent cancels the intent at the provider unless it already is, then
// detaches it from the cart.
func (s *CheckoutService) CancelIntent(ctx context.Context, email string) (*dto.CheckoutResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "CheckoutService.CancelIntent")

	user, intentID, err := s.openIntent(ctx, email)
	if err != nil || user == nil {
		return cartEmptyOr(err)
	}

	intent, err := s.payments.GetIntent(ctx, intentID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrProviderFailure, err)
	}
	if !intent.Canceled() {
		if _, err := s.payments.CancelIntent(ctx, intentID); err != nil {
			logger.ErrorWithContext(ctx, "Failed to cancel payment intent").String("intent_id", intentID).Err(err).Log()
			return nil, apperrors.WrapError(apperrors.ErrProviderFailure, err)
		}
	}

	user.Cart.StripeMetaData = nil
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.Internal(err)
	}

	logger.InfoWithContext(ctx, "Payment intent deleted").
		String("email", email).
		String("intent_id", intentID).
		Log()
	return &dto.CheckoutResponse{Message: constants.MsgIntentDeleted}, nil
}

// SendInvoice settles the cart: the intent amount is brought in line with
// the cart total, the intent is confirmed when needed and must have succeeded, then the cart is cleared and the receipt mailed. A mail
// failure is reported but the payment stands.
func (s *CheckoutService) SendInvoice(ctx context.Context, email, paymentMethod string) (*dto.CheckoutResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "CheckoutService.SendInvoice")

	user, intentID, err := s.openIntent(ctx, email)
	if err != nil || user == nil {
		return cartEmptyOr(err)
	}

	intent, err := s.payments.GetIntent(ctx, intentID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrProviderFailure, err)
	}
	total := int64(user.Cart.TotalPrice)
	if intent.Succeeded() && intent.Amount != total {
		logger.ErrorWithContext(ctx, "Settled amount differs from cart total").
			String("email", email).
			String("intent_id", intentID).
			Int64("charged", intent.Amount).
			Int64("cart_total", total).
			Log()
		return nil, apperrors.ErrAmountMismatch
	}
	if !intent.Succeeded() && intent.Amount != total {
		// the cart changed after the intent was opened
		intent, err = s.payments.UpdateIntent(ctx, intentID, payment.UpdateParams{Amount: &total})
		if err != nil {
			logger.ErrorWithContext(ctx, "Failed to resync payment intent amount").String("intent_id", intentID).Err(err).Log()
			return nil, apperrors.WrapError(apperrors.ErrProviderFailure, err)
		}
	}
	if !intent.Succeeded() {
		intent, err = s.payments.ConfirmIntent(ctx, intentID, paymentMethod)
		if err != nil {
			logger.WarnWithContext(ctx, "Payment confirmation failed").
				String("email", email).
				String("intent_id", intentID).
				Err(err).
				Log()
			if errors.Is(err, circuit.ErrCircuitOpen) || errors.Is(err, circuit.ErrTooManyRequests) {
				return nil, apperrors.WrapError(apperrors.ErrProviderFailure, err)
			}
			return nil, apperrors.WrapError(apperrors.ErrPaymentNotCompleted, err)
		}
	}
	if !intent.Succeeded() {
		return nil, apperrors.ErrPaymentNotCompleted
	}

	receipt := model.NewReceipt(*user, s.currency, s.now())
	msg, err := mailer.RenderReceipt(s.sender, receipt)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	cleared := *user
	cleared.Cart = model.EmptyCart()

	var g errgroup.Group
	g.Go(func() error {
		if err := s.users.Update(ctx, &cleared); err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.mail.Send(ctx, msg); err != nil {
			return apperrors.WrapError(apperrors.ErrProviderFailure, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.ErrorWithContext(ctx, "Settlement incomplete after successful payment").
			String("email", email).
			String("intent_id", intentID).
			Err(err).
			Log()
		return nil, err
	}

	logger.InfoWithContext(ctx, "Invoice sent").
		String("email", email).
		String("intent_id", intentID).
		String("total", receipt.Total.String()).
		Log()
	return &dto.CheckoutResponse{Message: constants.MsgInvoiceSent, Receipt: dto.NewReceiptResponse(receipt)}, nil
}

// openIntent loads the user and its intent ID. A nil user with a nil error
// means the cart is empty.
func (s *CheckoutService) openIntent(ctx context.Context, email string) (*model.User, string, error) {
	user, err := s.loadUser(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user.Cart.IsEmpty() {
		return nil, "", nil
	}
	intentID := user.Cart.PaymentIntentID()
	if intentID == "" {
		return nil, "", apperrors.ErrNoPaymentIntent
	}
	return user, intentID, nil
}

func cartEmptyOr(err error) (*dto.CheckoutResponse, error) {
	if err != nil {
		return nil, err
	}
	return cartEmptyResponse(), nil
}

func (s *CheckoutService) loadUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}
