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

type TokenHandler struct {
	tokenService *service.TokenService
}

func NewTokenHandler(tokenService *service.TokenService) *TokenHandler {
	return &TokenHandler{tokenService: tokenService}
}

// Create logs in with email and password
func (h *TokenHandler) Create(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "TokenHandler.Create")

	var req dto.CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	token, err := h.tokenService.Login(ctx, req)
	if err != nil {
		logger.LogAuth(req.Email, "login", false)
		writeError(c, err)
		return
	}

	logger.LogAuth(req.Email, "login", true)
	writeJSON(c, http.StatusCreated, constants.BuildMessageResponse(constants.MsgTokenCreated, map[string]any{
		constants.ResponseFieldToken: token,
	}))
}

func (h *TokenHandler) Get(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "TokenHandler.Get")

	token, err := h.tokenService.Get(ctx, c.GetString(constants.GinKeyToken))
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, map[string]any{constants.ResponseFieldToken: token})
}

// Extend pushes the access expiration of the current token forward
func (h *TokenHandler) Extend(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "TokenHandler.Extend")

	var req dto.ExtendTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	token, err := h.tokenService.Extend(ctx, c.GetString(constants.GinKeyToken), req.HoursToExtend)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to extend token").
			Int("hours", req.HoursToExtend).
			Err(err).
			Log()
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, constants.BuildMessageResponse(constants.MsgTokenExtended, map[string]any{
		constants.ResponseFieldToken: token,
	}))
}

func (h *TokenHandler) Delete(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "TokenHandler.Delete")
	email := c.GetString(constants.GinKeyEmail)

	if err := h.tokenService.Revoke(ctx, c.GetString(constants.GinKeyToken), email); err != nil {
		writeError(c, err)
		return
	}

	logger.LogAuth(email, "logout", true)
	// the revoked token is the rotated one, if any
	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgTokenDeleted))
}
