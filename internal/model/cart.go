package model

import (
	"maps"
	"slices"
)

// Cart is embedded in the user record. OrderCount is the sum of line
// quantities and TotalPrice the sum of line totals.
type Cart struct {
	Items          map[string]CartLine `json:"items,omitempty"`
	OrderCount     int                 `json:"orderCount"`
	TotalPrice     Cents               `json:"totalPrice"`
	StripeMetaData *StripeMetaData     `json:"stripeMetaData,omitempty"`
}

type CartLine struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
	Total    Cents  `json:"total"`
}

type StripeMetaData struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

func EmptyCart() Cart {
	return Cart{}
}

func (c Cart) IsEmpty() bool {
	return c.OrderCount <= 0
}

func (c Cart) PaymentIntentID() string {
	if c.StripeMetaData == nil {
		return ""
	}
	return c.StripeMetaData.PaymentIntentID
}

// Clone returns a deep copy so reconciliation never mutates the stored cart.
func (c Cart) Clone() Cart {
	out := c
	out.Items = maps.Clone(c.Items)
	if c.StripeMetaData != nil {
		meta := *c.StripeMetaData
		out.StripeMetaData = &meta
	}
	return out
}

// ItemNames returns line names in sorted order.
func (c Cart) ItemNames() []string {
	return slices.Sorted(maps.Keys(c.Items))
}
