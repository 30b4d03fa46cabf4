package dto

import (
	"encoding/json"
	"testing"

	"github.com/Payphone-Digital/midas/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderLines_ObjectKeepsOrder(t *testing.T) {
	body := `{"orders": {
		"Pepperoni": {"quantity": 2, "initialPrice": 12.99, "type": "pizza", "photoId": "x"},
		"Knots": {"quantity": 1, "initialPrice": 4.99, "type": "Snack", "size": "large"}
	}}`

	var req OrderRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.Len(t, req.Orders, 2)

	first := req.Orders[0]
	assert.Equal(t, "Pepperoni", first.Name)
	assert.Equal(t, 2, *first.Quantity)
	assert.InDelta(t, 12.99, *first.InitialPrice, 1e-9)
	assert.Equal(t, "pizza", *first.Type)
	assert.Empty(t, first.Extra, "photoId is not an extra field")

	second := req.Orders[1]
	assert.Equal(t, "Knots", second.Name)
	assert.Contains(t, second.Extra, "size")
}

func TestOrderLines_PairsForm(t *testing.T) {
	body := `{"orders": [["Cola", {"quantity": 3, "initialPrice": 1.5, "type": "Drink"}]]}`

	var req OrderRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.Len(t, req.Orders, 1)
	assert.Equal(t, "Cola", req.Orders[0].Name)
	assert.Nil(t, req.Orders[0].Extra)
}

func TestOrderLines_MissingFieldsStayNil(t *testing.T) {
	var req OrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"orders": {"Cola": {"quantity": 1}}}`), &req))
	assert.Nil(t, req.Orders[0].InitialPrice)
	assert.Nil(t, req.Orders[0].Type)

	require.NoError(t, json.Unmarshal([]byte(`{}`), &req))
}

func TestOrderLines_Rejects(t *testing.T) {
	var req OrderRequest
	assert.Error(t, json.Unmarshal([]byte(`{"orders": "pizza"}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"orders": {"Cola": {"quantity": "one"}}}`), &req))
}

func TestNewCartResponse_FormatsMoney(t *testing.T) {
	cart := model.Cart{
		Items:      map[string]model.CartLine{"Cola": {Type: "Drink", Quantity: 3, Total: 450}},
		OrderCount: 3,
		TotalPrice: 450,
	}

	resp := NewCartResponse(cart)
	assert.Equal(t, "4.50", resp.TotalPrice)
	assert.Equal(t, "4.50", resp.Items["Cola"].Total)
}
