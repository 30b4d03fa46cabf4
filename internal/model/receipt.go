package model

import "time"

type Receipt struct {
	Email           string        `json:"email"`
	Name            string        `json:"name"`
	Lines           []ReceiptLine `json:"lines"`
	OrderCount      int           `json:"orderCount"`
	Total           Cents         `json:"total"`
	Currency        string        `json:"currency"`
	PaymentIntentID string        `json:"paymentIntentId"`
	IssuedAt        time.Time     `json:"issuedAt"`
}

type ReceiptLine struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
	Total    Cents  `json:"total"`
}

// NewReceipt lists the cart lines in name order.
func NewReceipt(user User, currency string, issuedAt time.Time) Receipt {
	r := Receipt{
		Email:           user.Email,
		Name:            user.Name,
		OrderCount:      user.Cart.OrderCount,
		Total:           user.Cart.TotalPrice,
		Currency:        currency,
		PaymentIntentID: user.Cart.PaymentIntentID(),
		IssuedAt:        issuedAt,
	}
	for _, name := range user.Cart.ItemNames() {
		line := user.Cart.Items[name]
		r.Lines = append(r.Lines, ReceiptLine{
			Name:     name,
			Type:     line.Type,
			Quantity: line.Quantity,
			Total:    line.Total,
		})
	}
	return r
}
