package dto

import (
	"time"

	"github.com/Payphone-Digital/midas/internal/model"
)

type PaymentIntentUpdate struct {
	Amount        *float64 `json:"amount"`
	PaymentMethod string   `json:"paymentMethod"`
	ReceiptEmail  string   `json:"receiptEmail"`
	Description   string   `json:"description"`
}

func (u *PaymentIntentUpdate) IsEmpty() bool {
	return u == nil || (u.Amount == nil && u.PaymentMethod == "" && u.ReceiptEmail == "" && u.Description == "")
}

type UpdatePaymentIntentRequest struct {
	UpdatedPaymentIntentData *PaymentIntentUpdate `json:"updatedPaymentIntentData"`
}

type SendInvoiceRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// CheckoutResponse is the body of every checkout route. CartEmpty marks the
// short circuit taken when there is nothing to pay for.
type CheckoutResponse struct {
	Message       string           `json:"message,omitempty"`
	ClientSecret  string           `json:"clientSecret,omitempty"`
	CurrentAmount *int64           `json:"currentAmount,omitempty"`
	Receipt       *ReceiptResponse `json:"receipt,omitempty"`
	CartEmpty     bool             `json:"-"`
}

type ReceiptLineResponse struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
	Total    string `json:"total"`
}

type ReceiptResponse struct {
	Email           string                `json:"email"`
	Name            string                `json:"name"`
	Lines           []ReceiptLineResponse `json:"lines"`
	OrderCount      int                   `json:"orderCount"`
	Total           string                `json:"total"`
	Currency        string                `json:"currency"`
	PaymentIntentID string                `json:"paymentIntentId"`
	IssuedAt        time.Time             `json:"issuedAt"`
}

func NewReceiptResponse(r model.Receipt) *ReceiptResponse {
	resp := &ReceiptResponse{
		Email:           r.Email,
		Name:            r.Name,
		Lines:           make([]ReceiptLineResponse, 0, len(r.Lines)),
		OrderCount:      r.OrderCount,
		Total:           r.Total.String(),
		Currency:        r.Currency,
		PaymentIntentID: r.PaymentIntentID,
		IssuedAt:        r.IssuedAt.UTC(),
	}
	for _, line := range r.Lines {
		resp.Lines = append(resp.Lines, ReceiptLineResponse{
			Name:     line.Name,
			Type:     line.Type,
			Quantity: line.Quantity,
			Total:    line.Total.String(),
		})
	}
	return resp
}
