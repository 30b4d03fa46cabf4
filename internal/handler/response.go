package handler

import (
	"net/http"

	"github.com/Payphone-Digital/midas/internal/constants"
	"github.com/Payphone-Digital/midas/internal/dto"
	apperrors "github.com/Payphone-Digital/midas/internal/errors"
	"github.com/Payphone-Digital/midas/pkg/validation"
	"github.com/gin-gonic/gin"
)

// writeJSON sends body and attaches the rotated token, if any, so a client
// never loses a session that was replaced mid request.
func writeJSON(c *gin.Context, status int, body any) {
	c.JSON(status, constants.WithNewToken(body, c.GetString(constants.GinKeyNewToken)))
}

func writeMessage(c *gin.Context, status int, message string) {
	writeJSON(c, status, constants.BuildSuccessResponse(message))
}

func writeError(c *gin.Context, err error) {
	writeJSON(c, apperrors.ToHTTPStatus(err),
		constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
}

func writeBindError(c *gin.Context, err error) {
	writeJSON(c, http.StatusBadRequest,
		constants.BuildErrorResponse(apperrors.ErrInvalidInput.Message, validation.Messages(err)))
}

// writeCheckout renders a checkout result. The empty cart short circuit is
// always a 200 whatever the route would normally answer.
func writeCheckout(c *gin.Context, status int, resp *dto.CheckoutResponse) {
	if resp.CartEmpty {
		status = http.StatusOK
	}

	fields := make(map[string]any, 3)
	if resp.ClientSecret != "" {
		fields[constants.ResponseFieldClientSecret] = resp.ClientSecret
	}
	if resp.CurrentAmount != nil {
		fields[constants.ResponseFieldCurrentAmount] = *resp.CurrentAmount
	}
	if resp.Receipt != nil {
		fields[constants.ResponseFieldReceipt] = resp.Receipt
	}

	if resp.Message == "" {
		writeJSON(c, status, fields)
		return
	}
	writeJSON(c, status, constants.BuildMessageResponse(resp.Message, fields))
}

// NotFound answers unknown paths.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, constants.BuildErrorResponse(constants.MsgNotFound, nil))
}

// MethodNotAllowed answers known paths hit with an unsupported verb.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, constants.BuildErrorResponse(constants.MsgMethodNotAllowed, nil))
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{})
}
