package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Payphone-Digital/midas/internal/model"
)

type OrderRequest struct {
	Orders OrderLines `json:"orders"`
}

// OrderLine is one requested delta. Pointer fields distinguish a missing
// value from a zero one.
type OrderLine struct {
	Name         string
	Quantity     *int
	InitialPrice *float64
	Type         *string
	// Extra holds fields the menu has no counterpart for.
	Extra map[string]json.RawMessage
}

// OrderLines keeps the request order of lines. It accepts either an object
// keyed by item name or an array of [name, line] pairs.
type OrderLines []OrderLine

func (o *OrderLines) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = nil
		return nil
	}

	switch data[0] {
	case '{':
		return o.decodeObject(data)
	case '[':
		return o.decodePairs(data)
	default:
		return fmt.Errorf("orders must be an object or an array of pairs")
	}
}

func (o *OrderLines) decodeObject(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}

	var lines OrderLines
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("orders: unexpected key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		line, err := decodeLine(name, raw)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = lines
	return nil
}

func (o *OrderLines) decodePairs(data []byte) error {
	var pairs [][2]json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("orders: %w", err)
	}

	lines := make(OrderLines, 0, len(pairs))
	for _, pair := range pairs {
		var name string
		if err := json.Unmarshal(pair[0], &name); err != nil {
			return fmt.Errorf("orders: item name: %w", err)
		}
		line, err := decodeLine(name, pair[1])
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}
	*o = lines
	return nil
}

func decodeLine(name string, raw json.RawMessage) (OrderLine, error) {
	line := OrderLine{Name: name}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return line, fmt.Errorf("orders: %s: %w", name, err)
	}

	for key, value := range fields {
		var err error
		switch key {
		case "quantity":
			err = json.Unmarshal(value, &line.Quantity)
		case "initialPrice":
			err = json.Unmarshal(value, &line.InitialPrice)
		case "type":
			err = json.Unmarshal(value, &line.Type)
		case "photoId":
			// ignored, the menu owns photos
		default:
			if line.Extra == nil {
				line.Extra = make(map[string]json.RawMessage)
			}
			line.Extra[key] = value
		}
		if err != nil {
			return line, fmt.Errorf("orders: %s.%s: %w", name, key, err)
		}
	}
	return line, nil
}

type CartLineResponse struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
	Total    string `json:"total"`
}

type CartResponse struct {
	Items           map[string]CartLineResponse `json:"items"`
	OrderCount      int                         `json:"orderCount"`
	TotalPrice      string                      `json:"totalPrice"`
	PaymentIntentID string                      `json:"paymentIntentId,omitempty"`
}

func NewCartResponse(c model.Cart) CartResponse {
	resp := CartResponse{
		Items:           make(map[string]CartLineResponse, len(c.Items)),
		OrderCount:      c.OrderCount,
		TotalPrice:      c.TotalPrice.String(),
		PaymentIntentID: c.PaymentIntentID(),
	}
	for name, line := range c.Items {
		resp.Items[name] = CartLineResponse{
			Type:     line.Type,
			Quantity: line.Quantity,
			Total:    line.Total.String(),
		}
	}
	return resp
}

type MenuEntryResponse struct {
	Type         string  `json:"type"`
	InitialPrice float64 `json:"initialPrice"`
	PhotoID      *string `json:"photoId"`
}

func NewMenuResponse(items []model.MenuItem) map[string]MenuEntryResponse {
	resp := make(map[string]MenuEntryResponse, len(items))
	for _, item := range items {
		entry := MenuEntryResponse{
			Type:         item.Type,
			InitialPrice: item.Price.Major(),
		}
		if item.PhotoID != "" {
			photoID := item.PhotoID
			entry.PhotoID = &photoID
		}
		resp[item.Name] = entry
	}
	return resp
}
