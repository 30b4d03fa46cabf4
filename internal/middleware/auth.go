package middleware

import (
	"context"
	"strings"

	"github.com/Payphone-Digital/midas/internal/constants"
	apperrors "github.com/Payphone-Digital/midas/internal/errors"
	"github.com/Payphone-Digital/midas/internal/service"
	ctxutil "github.com/Payphone-Digital/midas/pkg/context"
	"github.com/Payphone-Digital/midas/pkg/logger"
	"github.com/gin-gonic/gin"
)

type TokenVerifier interface {
	Verify(ctx context.Context, tokenID, email string) (service.VerifyResult, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireToken authenticates the token against the email query parameter.
// The current token ID is stored under GinKeyToken; when the session was
// rotated the replacement is also stored under GinKeyNewToken.
func (m *AuthMiddleware) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "middleware", "RequireToken")

		email := c.Query(constants.QueryParamEmail)
		if email == "" {
			abortWithError(c, apperrors.ErrMissingEmail)
			return
		}

		tokenID := tokenFromRequest(c)
		if tokenID == "" {
			logger.WarnWithContext(ctx, "Missing token").String("email", email).Log()
			abortWithError(c, apperrors.ErrTokenMissing)
			return
		}

		result, err := m.verifier.Verify(ctx, tokenID, email)
		if err != nil {
			logger.WarnWithContext(ctx, "Token rejected").
				String("email", email).
				Token("token", tokenID).
				Err(err).
				Log()
			abortWithError(c, err)
			return
		}

		if result.Rotated != nil {
			tokenID = result.Rotated.ID
			c.Set(constants.GinKeyNewToken, tokenID)
		}
		c.Set(constants.GinKeyEmail, email)
		c.Set(constants.GinKeyToken, tokenID)
		c.Request = c.Request.WithContext(ctxutil.WithUserEmail(c.Request.Context(), email))

		c.Next()
	}
}

// tokenFromRequest reads "Authorization: Bearer <id>" and falls back to the
// token header.
func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader(constants.HeaderAuthorization); header != "" {
		if id, ok := strings.CutPrefix(header, constants.BearerPrefix); ok {
			return strings.TrimSpace(id)
		}
	}
	return strings.TrimSpace(c.GetHeader(constants.HeaderToken))
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperrors.ToHTTPStatus(err),
		constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
}
