package service

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/Payphone-Digital/midas/internal/dto"
	apperrors "github.com/Payphone-Digital/midas/internal/errors"
	"github.com/Payphone-Digital/midas/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMenu(t *testing.T) model.Menu {
	t.Helper()
	menu, err := model.NewMenu([]model.MenuItem{
		{Name: "Margherita Pizza", Price: 1199, Type: "Pizza"},
		{Name: "Pepperoni Pizza", Price: 1349, Type: "Pizza"},
		{Name: "Garlic Knots", Price: 499, Type: "Side"},
	})
	require.NoError(t, err)
	return menu
}

func line(name string, quantity int, price float64, foodType string) dto.OrderLine {
	return dto.OrderLine{Name: name, Quantity: &quantity, InitialPrice: &price, Type: &foodType}
}

func TestReconcile_NoOrders(t *testing.T) {
	r := NewCartReconciler(10)
	previous := model.Cart{
		Items:      map[string]model.CartLine{"Garlic Knots": {Type: "Side", Quantity: 1, Total: 499}},
		OrderCount: 1,
		TotalPrice: 499,
	}

	_, err := r.Reconcile(testMenu(t), nil, previous)
	assert.ErrorIs(t, err, apperrors.ErrNoOrders)
	_, err = r.Reconcile(testMenu(t), dto.OrderLines{}, model.EmptyCart())
	assert.ErrorIs(t, err, apperrors.ErrNoOrders)
}

func TestReconcile_IsAdditive(t *testing.T) {
	r := NewCartReconciler(10)
	menu := testMenu(t)
	delta := dto.OrderLines{line("Pepperoni Pizza", 2, 13.49, "Pizza")}

	once, err := r.Reconcile(menu, delta, model.EmptyCart())
	require.NoError(t, err)
	twice, err := r.Reconcile(menu, delta, once)
	require.NoError(t, err)

	assert.Equal(t, 4, twice.Items["Pepperoni Pizza"].Quantity)
	assert.Equal(t, model.Cents(4*1349), twice.Items["Pepperoni Pizza"].Total)
	assert.Equal(t, 4, twice.OrderCount)
	assert.Equal(t, model.Cents(4*1349), twice.TotalPrice)

	// the first cart is not modified by the second pass
	assert.Equal(t, 2, once.Items["Pepperoni Pizza"].Quantity)
}

func TestReconcile_AggregatesMatchLines(t *testing.T) {
	r := NewCartReconciler(20)
	menu := testMenu(t)

	cart, err := r.Reconcile(menu, dto.OrderLines{
		line("Margherita Pizza", 3, 11.99, "Pizza"),
		line("Garlic Knots", 5, 4.99, "side"),
	}, model.EmptyCart())
	require.NoError(t, err)

	cart, err = r.Reconcile(menu, dto.OrderLines{line("Garlic Knots", -2, 4.99, "Side")}, cart)
	require.NoError(t, err)

	count, total := 0, model.Cents(0)
	for _, l := range cart.Items {
		count += l.Quantity
		total += l.Total
	}
	assert.Equal(t, count, cart.OrderCount)
	assert.Equal(t, total, cart.TotalPrice)
	assert.Equal(t, "Side", cart.Items["Garlic Knots"].Type)
	assert.Equal(t, "50.94", cart.TotalPrice.String())
}

func TestReconcile_RemovingALineDropsIt(t *testing.T) {
	r := NewCartReconciler(10)
	menu := testMenu(t)

	cart, err := r.Reconcile(menu, dto.OrderLines{line("Garlic Knots", 2, 4.99, "Side")}, model.EmptyCart())
	require.NoError(t, err)
	cart, err = r.Reconcile(menu, dto.OrderLines{line("Garlic Knots", -2, 4.99, "Side")}, cart)
	require.NoError(t, err)

	assert.True(t, cart.IsEmpty())
	assert.Empty(t, cart.Items)
	assert.Equal(t, model.Cents(0), cart.TotalPrice)

	_, err = r.Reconcile(menu, dto.OrderLines{line("Garlic Knots", -1, 4.99, "Side")}, cart)
	assert.ErrorIs(t, err, apperrors.ErrNegativeQuantity)
}

func TestReconcile_FuzzyNameMatch(t *testing.T) {
	r := NewCartReconciler(10)

	cart, err := r.Reconcile(testMenu(t), dto.OrderLines{line("Knots", 1, 4.99, "Side")}, model.EmptyCart())
	require.NoError(t, err)
	assert.Contains(t, cart.Items, "Garlic Knots")
}

func TestReconcile_Capacity(t *testing.T) {
	r := NewCartReconciler(10)
	menu := testMenu(t)

	full, err := r.Reconcile(menu, dto.OrderLines{line("Garlic Knots", 10, 4.99, "Side")}, model.EmptyCart())
	require.NoError(t, err)
	assert.Equal(t, 10, full.OrderCount)

	_, err = r.Reconcile(menu, dto.OrderLines{line("Garlic Knots", 1, 4.99, "Side")}, full)
	assert.ErrorIs(t, err, apperrors.ErrCartAtCapacity)

	_, err = r.Reconcile(menu, dto.OrderLines{line("Garlic Knots", 4, 4.99, "Side")}, full)
	require.Error(t, err)
	assert.Equal(t, "Error, max capacity for cart will be exceeded, remove 4 item(s)", apperrors.GetErrorMessage(err))
	assert.Equal(t, 400, apperrors.ToHTTPStatus(err))

	// a net zero change at the limit is accepted
	_, err = r.Reconcile(menu, dto.OrderLines{
		line("Garlic Knots", -1, 4.99, "Side"),
		line("Margherita Pizza", 1, 11.99, "Pizza"),
	}, full)
	assert.NoError(t, err)
}

func TestReconcile_QuantityBounds(t *testing.T) {
	r := NewCartReconciler(10)
	menu := testMenu(t)

	_, err := r.Reconcile(menu, dto.OrderLines{
		line("Margherita Pizza", math.MaxInt, 11.99, "Pizza"),
		line("Garlic Knots", math.MaxInt, 4.99, "Side"),
	}, model.EmptyCart())
	assert.ErrorIs(t, err, apperrors.ErrQuantityTooLarge)

	_, err = r.Reconcile(menu, dto.OrderLines{line("Garlic Knots", math.MinInt, 4.99, "Side")}, model.EmptyCart())
	assert.ErrorIs(t, err, apperrors.ErrQuantityTooLarge)

	_, err = r.Reconcile(menu, dto.OrderLines{line("Garlic Knots", 11, 4.99, "Side")}, model.EmptyCart())
	assert.ErrorIs(t, err, apperrors.ErrQuantityTooLarge)

	// a stored line above the limit is never written back
	inconsistent := model.Cart{
		Items:      map[string]model.CartLine{"Garlic Knots": {Type: "Side", Quantity: 12, Total: 12 * 499}},
		OrderCount: 0,
	}
	_, err = r.Reconcile(menu, dto.OrderLines{line("Margherita Pizza", 1, 11.99, "Pizza")}, inconsistent)
	assert.ErrorIs(t, err, apperrors.ErrQuantityTooLarge)

	at, err := r.Reconcile(menu, dto.OrderLines{line("Garlic Knots", 10, 4.99, "Side")}, model.EmptyCart())
	require.NoError(t, err)
	assert.Equal(t, 10, at.OrderCount)
	assert.Equal(t, model.Cents(10*499), at.TotalPrice)
}

func TestReconcile_Rejections(t *testing.T) {
	r := NewCartReconciler(10)
	menu := testMenu(t)
	qty := 1

	tests := []struct {
		name    string
		line    dto.OrderLine
		wantMsg string
	}{
		{
			name:    "not on menu",
			line:    line("Sushi", 1, 9.99, "Pizza"),
			wantMsg: "Sushi is not available in our menu. Order wasn't saved",
		},
		{
			name:    "price mismatch",
			line:    line("Garlic Knots", 1, 0.99, "Side"),
			wantMsg: "Expected Garlic Knots to be have initialPrice as 4.99 not 0.99",
		},
		{
			name:    "type mismatch",
			line:    line("Garlic Knots", 1, 4.99, "Pizza"),
			wantMsg: "Expected Garlic Knots to be have type as Side not Pizza",
		},
		{
			name:    "unknown type",
			line:    line("Garlic Knots", 1, 4.99, "Soup"),
			wantMsg: apperrors.ErrIncompleteOrder.Message,
		},
		{
			name:    "missing price",
			line:    dto.OrderLine{Name: "Garlic Knots", Quantity: &qty},
			wantMsg: apperrors.ErrIncompleteOrder.Message,
		},
		{
			name: "extra field",
			line: func() dto.OrderLine {
				l := line("Garlic Knots", 1, 4.99, "Side")
				l.Extra = map[string]json.RawMessage{"discount": json.RawMessage(`5`)}
				return l
			}(),
			wantMsg: "Expected Garlic Knots to be have discount as undefined not 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Reconcile(menu, dto.OrderLines{tt.line}, model.EmptyCart())
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, apperrors.GetErrorMessage(err))
			assert.Equal(t, 400, apperrors.ToHTTPStatus(err))
		})
	}
}

func TestReconcile_KeepsPaymentMetadata(t *testing.T) {
	r := NewCartReconciler(10)
	previous := model.EmptyCart()
	previous.StripeMetaData = &model.StripeMetaData{PaymentIntentID: "pi_1"}

	cart, err := r.Reconcile(testMenu(t), dto.OrderLines{line("Garlic Knots", 1, 4.99, "Side")}, previous)
	require.NoError(t, err)
	assert.Equal(t, "pi_1", cart.PaymentIntentID())
}
