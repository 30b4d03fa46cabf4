package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Payphone-Digital/midas/internal/constants"
	apperrors "github.com/Payphone-Digital/midas/internal/errors"
	"github.com/Payphone-Digital/midas/internal/model"
	"github.com/Payphone-Digital/midas/internal/service"
	ctxutil "github.com/Payphone-Digital/midas/pkg/context"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	result    service.VerifyResult
	err       error
	gotToken  string
	gotEmail  string
	callCount int
}

func (f *fakeVerifier) Verify(_ context.Context, tokenID, email string) (service.VerifyResult, error) {
	f.callCount++
	f.gotToken, f.gotEmail = tokenID, email
	return f.result, f.err
}

func newAuthEngine(v TokenVerifier) *gin.Engine {
	r := gin.New()
	r.GET("/order", NewAuthMiddleware(v).RequireToken(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"email":    c.GetString(constants.GinKeyEmail),
			"token":    c.GetString(constants.GinKeyToken),
			"newToken": c.GetString(constants.GinKeyNewToken),
			"ctxEmail": ctxutil.GetUserEmail(c.Request.Context()),
		})
	})
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequireToken_Bearer(t *testing.T) {
	v := &fakeVerifier{result: service.VerifyResult{Valid: true}}
	r := newAuthEngine(v)

	req := httptest.NewRequest(http.MethodGet, "/order?email=a@b.com", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc123", v.gotToken)
	assert.Equal(t, "a@b.com", v.gotEmail)

	body := decode(t, w)
	assert.Equal(t, "a@b.com", body["email"])
	assert.Equal(t, "abc123", body["token"])
	assert.Empty(t, body["newToken"])
	assert.Equal(t, "a@b.com", body["ctxEmail"])
}

func TestRequireToken_TokenHeaderAndRotation(t *testing.T) {
	v := &fakeVerifier{result: service.VerifyResult{Valid: true, Rotated: &model.Token{ID: "fresh"}}}
	r := newAuthEngine(v)

	req := httptest.NewRequest(http.MethodGet, "/order?email=a@b.com", nil)
	req.Header.Set("token", "stale")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stale", v.gotToken)

	body := decode(t, w)
	assert.Equal(t, "fresh", body["token"])
	assert.Equal(t, "fresh", body["newToken"])
}

func TestRequireToken_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		token      string
		verifyErr  error
		wantStatus int
		wantMsg    string
		wantCalled bool
	}{
		{"missing email", "/order", "abc", nil, http.StatusBadRequest, apperrors.ErrMissingEmail.Message, false},
		{"missing token", "/order?email=a@b.com", "", nil, http.StatusUnauthorized, apperrors.ErrTokenMissing.Message, false},
		{"unknown token", "/order?email=a@b.com", "abc", apperrors.ErrTokenNotFound, http.StatusUnauthorized, apperrors.ErrTokenNotFound.Message, true},
		{"other user", "/order?email=a@b.com", "abc", apperrors.ErrTokenNotForUser, http.StatusForbidden, apperrors.ErrTokenNotForUser.Message, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &fakeVerifier{err: tt.verifyErr}
			r := newAuthEngine(v)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.token != "" {
				req.Header.Set("token", tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, decode(t, w)["message"])
			assert.Equal(t, tt.wantCalled, v.callCount == 1)
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.POST("/users", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "token")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")

	req = httptest.NewRequest(http.MethodPost, "/users", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestContext_RequestID(t *testing.T) {
	var seen string
	r := gin.New()
	r.Use(RequestContext())
	r.GET("/ping", func(c *gin.Context) {
		seen = ctxutil.GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(constants.HeaderXRequestID))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderXRequestID, "req-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", w.Header().Get(constants.HeaderXRequestID))
}

func TestRequestTimeout_SetsDeadline(t *testing.T) {
	var hasDeadline bool
	r := gin.New()
	r.Use(RequestTimeout(time.Second))
	r.GET("/ping", func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.True(t, hasDeadline)
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	ok, remaining := rl.Allow("1.2.3.4")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)

	ok, remaining = rl.Allow("1.2.3.4")
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)

	ok, _ = rl.Allow("1.2.3.4")
	assert.False(t, ok)

	ok, _ = rl.Allow("5.6.7.8")
	assert.True(t, ok, "limits are per client")

	now = now.Add(61 * time.Second)
	ok, _ = rl.Allow("1.2.3.4")
	assert.True(t, ok, "window slides")
}

func TestRateLimiter_Handler429(t *testing.T) {
	r := gin.New()
	r.POST("/tokens", RateLimit(1, time.Minute), func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tokens", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tokens", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, constants.MsgTooManyRequests, decode(t, w)["message"])
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryMiddleware())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, constants.MsgInternalError, decode(t, w)["message"])
}
