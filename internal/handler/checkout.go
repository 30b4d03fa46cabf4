package handler

import (
	"net/http"

	"github.com/Payphone-Digital/midas/internal/constants"
	"github.com/Payphone-Digital/midas/internal/dto"
	"github.com/Payphone-Digital/midas/internal/service"
	ctxutil "github.com/Payphone-Digital/midas/pkg/context"
	"github.com/Payphone-Digital/midas/pkg/logger"
	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

func (h *CheckoutHandler) Create(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "CheckoutHandler.Create")
	email := c.GetString(constants.GinKeyEmail)

	resp, err := h.checkoutService.CreateIntent(ctx, email)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to create payment intent").String("email", email).Err(err).Log()
		writeError(c, err)
		return
	}

	writeCheckout(c, http.StatusCreated, resp)
}

func (h *CheckoutHandler) Get(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "CheckoutHandler.Get")

	resp, err := h.checkoutService.GetIntent(ctx, c.GetString(constants.GinKeyEmail))
	if err != nil {
		writeError(c, err)
		return
	}

	writeCheckout(c, http.StatusOK, resp)
}

// Update forwards intent changes. A missing body reaches the service as no
// changes so an empty cart still answers first.
func (h *CheckoutHandler) Update(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "CheckoutHandler.Update")
	email := c.GetString(constants.GinKeyEmail)

	var req dto.UpdatePaymentIntentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}
	}

	resp, err := h.checkoutService.UpdateIntent(ctx, email, req.UpdatedPaymentIntentData)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to update payment intent").String("email", email).Err(err).Log()
		writeError(c, err)
		return
	}

	writeCheckout(c, http.StatusCreated, resp)
}

func (h *CheckoutHandler) Cancel(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "CheckoutHandler.Cancel")

	resp, err := h.checkoutService.CancelIntent(ctx, c.GetString(constants.GinKeyEmail))
	if err != nil {
		writeError(c, err)
		return
	}

	writeCheckout(c, http.StatusOK, resp)
}

// SendInvoice settles the payment and mails the receipt. The body is
// optional.
func (h *CheckoutHandler) SendInvoice(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "CheckoutHandler.SendInvoice")
	email := c.GetString(constants.GinKeyEmail)

	var req dto.SendInvoiceRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}
	}

	resp, err := h.checkoutService.SendInvoice(ctx, email, req.PaymentMethod)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to settle checkout").String("email", email).Err(err).Log()
		writeError(c, err)
		return
	}

	writeCheckout(c, http.StatusOK, resp)
}
