package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Payphone-Digital/midas/internal/dto"
	apperrors "github.com/Payphone-Digital/midas/internal/errors"
	"github.com/Payphone-Digital/midas/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledCart() model.Cart {
	return model.Cart{
		Items: map[string]model.CartLine{
			"Pepperoni Pizza": {Type: "Pizza", Quantity: 2, Total: 2698},
		},
		OrderCount: 2,
		TotalPrice: 2698,
	}
}

func newCheckout(f *fixture) (*CheckoutService, *fakePayments, *fakeMailer) {
	payments := newFakePayments()
	mail := &fakeMailer{}
	return NewCheckoutService(f.users, payments, mail, "midas@pizza.com", "usd"), payments, mail
}

func TestCheckout_EmptyCartMakesNoProviderCall(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "a@b.com", model.EmptyCart())
	svc, payments, mail := newCheckout(f)

	calls := []func() (*dto.CheckoutResponse, error){
		func() (*dto.CheckoutResponse, error) { return svc.CreateIntent(ctx, "a@b.com") },
		func() (*dto.CheckoutResponse, error) { return svc.GetIntent(ctx, "a@b.com") },
		func() (*dto.CheckoutResponse, error) {
			return svc.UpdateIntent(ctx, "a@b.com", &dto.PaymentIntentUpdate{Description: "x"})
		},
		func() (*dto.CheckoutResponse, error) { return svc.CancelIntent(ctx, "a@b.com") },
		func() (*dto.CheckoutResponse, error) { return svc.SendInvoice(ctx, "a@b.com", "pm_card_visa") },
	}
	for _, call := range calls {
		resp, err := call()
		require.NoError(t, err)
		assert.True(t, resp.CartEmpty)
		assert.Equal(t, "Cart is empty", resp.Message)
	}

	assert.Empty(t, payments.calls)
	assert.Empty(t, mail.sent)
}

func TestCheckout_NoIntentYet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "a@b.com", filledCart())
	svc, _, _ := newCheckout(f)

	_, err := svc.GetIntent(ctx, "a@b.com")
	assert.ErrorIs(t, err, apperrors.ErrNoPaymentIntent)
	_, err = svc.CancelIntent(ctx, "a@b.com")
	assert.ErrorIs(t, err, apperrors.ErrNoPaymentIntent)
	_, err = svc.SendInvoice(ctx, "a@b.com", "")
	assert.ErrorIs(t, err, apperrors.ErrNoPaymentIntent)
}

func TestCheckout_FullSettlement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "a@b.com", filledCart())
	svc, payments, mail := newCheckout(f)

	created, err := svc.CreateIntent(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "Payment Intent created", created.Message)
	assert.Equal(t, "pi_1_secret", created.ClientSecret)
	assert.Equal(t, int64(2698), payments.intents["pi_1"].Amount)

	user, err := f.users.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "pi_1", user.Cart.PaymentIntentID())

	_, err = svc.CreateIntent(ctx, "a@b.com")
	assert.ErrorIs(t, err, apperrors.ErrIntentExists)

	got, err := svc.GetIntent(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, got.CurrentAmount)
	assert.Equal(t, int64(2698), *got.CurrentAmount)

	done, err := svc.SendInvoice(ctx, "a@b.com", "pm_card_visa")
	require.NoError(t, err)
	assert.Equal(t, "Invoice sent", done.Message)
	require.NotNil(t, done.Receipt)
	assert.Equal(t, "26.98", done.Receipt.Total)
	assert.Equal(t, 1, payments.countCalls("confirm"))

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "a@b.com", mail.sent[0].To)
	assert.Equal(t, "Thank you eating with Midas!", mail.sent[0].Subject)

	user, err = f.users.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, user.Cart.IsEmpty())
	assert.Empty(t, user.Cart.PaymentIntentID())
}

func TestCheckout_SendInvoiceRequiresSucceededPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "a@b.com", filledCart())
	svc, payments, mail := newCheckout(f)
	payments.confirmTo = "requires_action"

	_, err := svc.CreateIntent(ctx, "a@b.com")
	require.NoError(t, err)

	_, err = svc.SendInvoice(ctx, "a@b.com", "pm_card_threeDSecure2Required")
	assert.ErrorIs(t, err, apperrors.ErrPaymentNotCompleted)
	assert.Empty(t, mail.sent)

	user, err := f.users.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, user.Cart.IsEmpty(), "cart survives an unsettled payment")
}

func TestCheckout_MailFailureKeepsPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "a@b.com", filledCart())
	svc, payments, mail := newCheckout(f)
	mail.err = errors.New("smtp down")

	_, err := svc.CreateIntent(ctx, "a@b.com")
	require.NoError(t, err)

	_, err = svc.SendInvoice(ctx, "a@b.com", "pm_card_visa")
	assert.ErrorIs(t, err, apperrors.ErrProviderFailure)
	assert.Equal(t, 0, payments.countCalls("cancel"), "a paid intent is never rolled back")
	assert.Len(t, mail.sent, 1)
}

func TestCheckout_CompensatesFailedPersist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "a@b.com", filledCart())
	svc, payments, _ := newCheckout(f)
	f.store.armed = true

	_, err := svc.CreateIntent(ctx, "a@b.com")
	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.Equal(t, 1, payments.countCalls("cancel"))
	assert.Equal(t, "canceled", payments.intents["pi_1"].Status)
}

func TestCheckout_UpdateUsesServerTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "a@b.com", filledCart())
	svc, payments, _ := newCheckout(f)

	_, err := svc.CreateIntent(ctx, "a@b.com")
	require.NoError(t, err)

	_, err = svc.UpdateIntent(ctx, "a@b.com", &dto.PaymentIntentUpdate{})
	assert.ErrorIs(t, err, apperrors.ErrNoIntentData)

	cheap := 1.00
	resp, err := svc.UpdateIntent(ctx, "a@b.com", &dto.PaymentIntentUpdate{Amount: &cheap, ReceiptEmail: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "Payment Intent updated", resp.Message)
	require.Len(t, payments.updates, 1)
	assert.Equal(t, int64(2698), *payments.updates[0].Amount)
}

func TestCheckout_CancelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "a@b.com", filledCart())
	svc, payments, _ := newCheckout(f)

	_, err := svc.CreateIntent(ctx, "a@b.com")
	require.NoError(t, err)

	// canceled at the provider already, e.g. from its dashboard
	intent := payments.intents["pi_1"]
	intent.Status = "canceled"
	payments.intents["pi_1"] = intent

	resp, err := svc.CancelIntent(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "Payment Intent deleted", resp.Message)
	assert.Equal(t, 0, payments.countCalls("cancel"))

	user, err := f.users.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Empty(t, user.Cart.PaymentIntentID())
	assert.False(t, user.Cart.IsEmpty())
}

func TestCheckout_SendInvoiceChargesCurrentCartTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "a@b.com", filledCart())
	svc, payments, mail := newCheckout(f)
	orders, _, _ := newOrders(t, f)

	_, err := svc.CreateIntent(ctx, "a@b.com")
	require.NoError(t, err)

	_, err = orders.Merge(ctx, "a@b.com", dto.OrderLines{line("Pepperoni Pizza", 3, 13.49, "Pizza")})
	require.NoError(t, err)

	done, err := svc.SendInvoice(ctx, "a@b.com", "pm_card_visa")
	require.NoError(t, err)
	assert.Equal(t, "67.45", done.Receipt.Total)
	assert.Equal(t, int64(6745), payments.intents["pi_1"].Amount)
	assert.Equal(t, []string{"create", "get", "update", "confirm"}, payments.calls)
	require.Len(t, mail.sent, 1)
}

func TestCheckout_SendInvoiceRejectsSettledAmountMismatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "a@b.com", filledCart())
	svc, payments, mail := newCheckout(f)

	_, err := svc.CreateIntent(ctx, "a@b.com")
	require.NoError(t, err)

	intent := payments.intents["pi_1"]
	intent.Status = "succeeded"
	intent.Amount = 100
	payments.intents["pi_1"] = intent

	_, err = svc.SendInvoice(ctx, "a@b.com", "")
	assert.ErrorIs(t, err, apperrors.ErrAmountMismatch)
	assert.Empty(t, mail.sent)

	user, err := f.users.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, user.Cart.IsEmpty())
}
