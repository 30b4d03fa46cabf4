package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Payphone-Digital/midas/internal/constants"
	"github.com/Payphone-Digital/midas/internal/dto"
	"github.com/Payphone-Digital/midas/internal/service"
	ctxutil "github.com/Payphone-Digital/midas/pkg/context"
	"github.com/Payphone-Digital/midas/pkg/logger"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Place replaces the cart with the requested lines
func (h *OrderHandler) Place(c *gin.Context) {
	h.save(c, "OrderHandler.Place", constants.MsgOrderSaved, h.orderService.Place)
}

// Merge adds the requested deltas to the current cart
func (h *OrderHandler) Merge(c *gin.Context) {
	h.save(c, "OrderHandler.Merge", constants.MsgCartUpdated, h.orderService.Merge)
}

type saveFunc func(ctx context.Context, email string, lines dto.OrderLines) (*dto.CartResponse, error)

func (h *OrderHandler) save(c *gin.Context, function, message string, save saveFunc) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", function)
	email := c.GetString(constants.GinKeyEmail)

	var req dto.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid order body").String("email", email).Err(err).Log()
		writeBindError(c, err)
		return
	}

	cart, err := save(ctx, email, req.Orders)
	if err != nil {
		logger.WarnWithContext(ctx, "Order rejected").String("email", email).Err(err).Log()
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusCreated, constants.BuildMessageResponse(message, map[string]any{
		"cart": cart,
	}))
}

func (h *OrderHandler) Get(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "OrderHandler.Get")

	cart, err := h.orderService.Get(ctx, c.GetString(constants.GinKeyEmail))
	if err != nil {
		writeError(c, err)
		return
	}
	if cart == nil {
		writeMessage(c, http.StatusOK, constants.MsgNothingInCart)
		return
	}

	writeJSON(c, http.StatusOK, cart)
}

func (h *OrderHandler) Clear(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "OrderHandler.Clear")

	cleared, err := h.orderService.Clear(ctx, c.GetString(constants.GinKeyEmail))
	if err != nil {
		writeError(c, err)
		return
	}
	if !cleared {
		writeMessage(c, http.StatusOK, constants.MsgCartAlreadyEmpty)
		return
	}

	writeMessage(c, http.StatusOK, constants.MsgCartEmptied)
}

// Menu lists the menu, filling missing photo IDs when getPhotoId=true.
func (h *OrderHandler) Menu(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "OrderHandler.Menu")

	withPhotos, _ := strconv.ParseBool(c.Query(constants.QueryParamGetPhotoID))

	menu, err := h.orderService.Menu(ctx, withPhotos)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to load menu").Bool("with_photos", withPhotos).Err(err).Log()
		writeError(c, err)
		return
	}

	body := make(map[string]any, len(menu))
	for name, entry := range menu {
		body[name] = entry
	}
	writeJSON(c, http.StatusOK, body)
}
