package constants

import (
	"maps"
)

// Standard Response Field Keys
const (
	ResponseFieldMessage  = "message"
	ResponseFieldDetails  = "details"
	ResponseFieldNewToken = "newToken"

	ResponseFieldToken         = "token"
	ResponseFieldClientSecret  = "clientSecret"
	ResponseFieldCurrentAmount = "currentAmount"
	ResponseFieldReceipt       = "receipt"
)

func BuildErrorResponse(message string, details any) map[string]any {
	response := map[string]any{
		ResponseFieldMessage: message,
	}

	if details != nil {
		response[ResponseFieldDetails] = details
	}

	return response
}

func BuildSuccessResponse(message string) map[string]any {
	return map[string]any{
		ResponseFieldMessage: message,
	}
}

// BuildMessageResponse returns a message envelope carrying extra fields.
func BuildMessageResponse(message string, fields map[string]any) map[string]any {
	response := make(map[string]any, len(fields)+1)
	maps.Copy(response, fields)
	response[ResponseFieldMessage] = message
	return response
}

// WithNewToken attaches a rotated token to a response body. Map bodies get a
// newToken key; other bodies are nested under data.
func WithNewToken(body any, newToken string) any {
	if newToken == "" {
		return body
	}

	if m, ok := body.(map[string]any); ok {
		out := make(map[string]any, len(m)+1)
		maps.Copy(out, m)
		out[ResponseFieldNewToken] = newToken
		return out
	}

	return map[string]any{
		"data":                body,
		ResponseFieldNewToken: newToken,
	}
}
