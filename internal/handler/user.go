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

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create registers an account and opens its first session
func (h *UserHandler) Create(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "UserHandler.Create")

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid request body for user creation").Err(err).Log()
		writeBindError(c, err)
		return
	}

	token, err := h.userService.Register(ctx, req)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to register user").
			String("email", req.Email).
			Err(err).
			Log()
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusCreated, constants.BuildMessageResponse(constants.MsgUserCreated, map[string]any{
		constants.ResponseFieldToken: token,
	}))
}

func (h *UserHandler) Get(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "UserHandler.Get")

	user, err := h.userService.Get(ctx, c.GetString(constants.GinKeyEmail))
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "UserHandler.Update")
	email := c.GetString(constants.GinKeyEmail)

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid request body for user update").String("email", email).Err(err).Log()
		writeBindError(c, err)
		return
	}

	user, err := h.userService.Update(ctx, email, req)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to update user").String("email", email).Err(err).Log()
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, constants.BuildMessageResponse(constants.MsgUserUpdated, map[string]any{
		"user": user,
	}))
}

func (h *UserHandler) Delete(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "UserHandler.Delete")

	if err := h.userService.Delete(ctx, c.GetString(constants.GinKeyEmail)); err != nil {
		writeError(c, err)
		return
	}

	// the rotated token, if any, was deleted with the account
	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgUserDeleted))
}
