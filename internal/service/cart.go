package service

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"

	"github.com/Payphone-Digital/midas/internal/dto"
	apperrors "github.com/Payphone-Digital/midas/internal/errors"
	"github.com/Payphone-Digital/midas/internal/model"
)

// CartReconciler merges order deltas into a cart against the menu. It holds
// no state besides the order limit and never touches storage.
type CartReconciler struct {
	limit int
}

func NewCartReconciler(limit int) CartReconciler {
	return CartReconciler{limit: limit}
}

// Reconcile returns previous with every delta applied. Quantities are
// additive: a line's new quantity is its previous quantity plus the delta.
func (r CartReconciler) Reconcile(menu model.Menu, deltas dto.OrderLines, previous model.Cart) (model.Cart, error) {
	if len(deltas) == 0 {
		return model.Cart{}, apperrors.ErrNoOrders
	}

	cart := previous.Clone()
	if cart.Items == nil {
		cart.Items = make(map[string]model.CartLine)
	}

	for _, delta := range deltas {
		item, ok := menu.Match(delta.Name)
		if !ok {
			return model.Cart{}, apperrors.BadRequestf("%s is not available in our menu. Order wasn't saved", delta.Name)
		}
		if err := checkLine(menu, item, delta); err != nil {
			return model.Cart{}, err
		}

		// deltas are bounded by the order limit so the sums cannot wrap
		if *delta.Quantity > r.limit || *delta.Quantity < -r.limit {
			return model.Cart{}, apperrors.ErrQuantityTooLarge
		}

		line := cart.Items[item.Name]
		quantity := line.Quantity + *delta.Quantity
		if quantity < 0 {
			return model.Cart{}, apperrors.ErrNegativeQuantity
		}

		if quantity == 0 {
			delete(cart.Items, item.Name)
		} else {
			cart.Items[item.Name] = model.CartLine{
				Type:     item.Type,
				Quantity: quantity,
				Total:    item.Price.Mul(quantity),
			}
		}

		cart.OrderCount += *delta.Quantity
		cart.TotalPrice += item.Price.Mul(*delta.Quantity)
	}

	if err := r.checkCapacity(cart.OrderCount); err != nil {
		return model.Cart{}, err
	}
	for _, l := range cart.Items {
		if l.Quantity > r.limit {
			return model.Cart{}, apperrors.ErrQuantityTooLarge
		}
	}

	if len(cart.Items) == 0 {
		cart.Items = nil
	}
	return cart, nil
}

// checkLine requires quantity, initialPrice and type, and every field other
// than quantity to equal the menu's value.
func checkLine(menu model.Menu, item model.MenuItem, delta dto.OrderLine) error {
	if delta.Quantity == nil || delta.InitialPrice == nil || delta.Type == nil {
		return apperrors.ErrIncompleteOrder
	}

	foodType, ok := menu.NormalizeType(*delta.Type)
	if !ok {
		return apperrors.ErrIncompleteOrder
	}

	if model.FromMajor(*delta.InitialPrice) != item.Price {
		return mismatch(delta.Name, "initialPrice", formatPrice(item.Price), formatFloat(*delta.InitialPrice))
	}
	if foodType != item.Type {
		return mismatch(delta.Name, "type", item.Type, *delta.Type)
	}

	if len(delta.Extra) > 0 {
		key := slices.Sorted(maps.Keys(delta.Extra))[0]
		return mismatch(delta.Name, key, "undefined", rawString(delta.Extra[key]))
	}
	return nil
}

func (r CartReconciler) checkCapacity(count int) error {
	over := count - r.limit
	switch {
	case over == 1:
		return apperrors.ErrCartAtCapacity
	case over > 1:
		return apperrors.BadRequestf("Error, max capacity for cart will be exceeded, remove %d item(s)", over)
	}
	return nil
}

func mismatch(name, key, expected, got string) error {
	return apperrors.BadRequestf("Expected %s to be have %s as %s not %s", name, key, expected, got)
}

func formatPrice(c model.Cents) string {
	return formatFloat(c.Major())
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func rawString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}
