package constants

// HTTP Header Names
const (
	HeaderContentType    = "Content-Type"
	HeaderAuthorization  = "Authorization"
	HeaderToken          = "token"
	HeaderUserAgent      = "User-Agent"
	HeaderXRequestID     = "X-Request-ID"
	HeaderXForwardedFor  = "X-Forwarded-For"
	HeaderXRealIP        = "X-Real-IP"
	HeaderCFConnectingIP = "CF-Connecting-IP"

	BearerPrefix = "Bearer "
)

// HTTP Content Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html"
)

// Query parameters
const (
	QueryParamEmail      = "email"
	QueryParamQuery      = "query"
	QueryParamCount      = "count"
	QueryParamGetPhotoID = "getPhotoId"
)

// Common HTTP Error Messages
const (
	MsgNotFound         = "Not Found"
	MsgMethodNotAllowed = "Method not allowed"
	MsgInternalError    = "Internal server error"
	MsgTooManyRequests  = "Too many requests"
)

// Success messages
const (
	MsgUserCreated   = "User created"
	MsgUserUpdated   = "User updated"
	MsgUserDeleted   = "User deleted"
	MsgTokenCreated  = "Token created"
	MsgTokenExtended = "Token extended"
	MsgTokenDeleted  = "Token deleted"

	MsgOrderSaved       = "Order saved!"
	MsgCartUpdated      = "Your cart has been updated!"
	MsgNothingInCart    = "Nothing in your cart"
	MsgCartEmptied      = "Cart emptied!"
	MsgCartAlreadyEmpty = "Cart is already empty"

	MsgCartIsEmpty   = "Cart is empty"
	MsgIntentCreated = "Payment Intent created"
	MsgIntentUpdated = "Payment Intent updated"
	MsgIntentDeleted = "Payment Intent deleted"
	MsgInvoiceSent   = "Invoice sent"
)
