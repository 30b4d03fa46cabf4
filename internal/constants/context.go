package constants

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// Context Keys for request tracking and metadata
const (
	CtxKeyRequestID ContextKey = "request_id"
	CtxKeyUserEmail ContextKey = "user_email"
	CtxKeyClientIP  ContextKey = "client_ip"
	CtxKeyUserAgent ContextKey = "user_agent"
	CtxKeyStartTime ContextKey = "start_time"
	CtxKeyModule    ContextKey = "module"
	CtxKeyFunction  ContextKey = "function"
)

// Keys stored on the gin context by middleware
const (
	GinKeyEmail     = "email"
	GinKeyToken     = "token"
	GinKeyNewToken  = "new_token"
	GinKeyRequestID = "request_id"
)
