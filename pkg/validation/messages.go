package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

func CustomMessage(field string) map[string]string {
	var customValidationMessages = map[string]map[string]string{
		"Email": {
			"required":   "email is required",
			"midasemail": "email is not a valid address",
		},
		"Password": {
			"required": "password is required",
			"password": "password must be at least 8 characters and contain a lower case letter, an upper case letter, a number and one of #$^+=!*()@%&",
		},
		"StreetAddress": {
			"required":      "streetAddress is required",
			"streetaddress": "streetAddress must look like \"123 Main St. Springfield, IL 62701\"",
		},
		"HoursToExtend": {
			"required": "hoursToExtend is required",
			"min":      "hoursToExtend must be at least 1",
		},
		"Query": {
			"required": "query must be a non empty string",
		},
	}
	return customValidationMessages[field]
}

func DefaultMessage(field, tag, param string) string {
	field = lowerFirst(field)

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "len":
		return fmt.Sprintf("%s must have length %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, param)
	case "tokenid":
		return fmt.Sprintf("%s is not a valid token", field)
	default:
		return fmt.Sprintf("%s is not valid", field)
	}
}

// Messages turns a binding error into readable messages. Errors that are not
// validation failures, such as malformed JSON, yield a single message.
func Messages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"request body is not valid JSON for this route"}
	}

	out := make([]string, 0, len(verrs))
	for _, e := range verrs {
		if fieldMessages := CustomMessage(e.Field()); fieldMessages != nil {
			if msg, ok := fieldMessages[e.Tag()]; ok {
				out = append(out, msg)
				continue
			}
		}
		out = append(out, DefaultMessage(e.Field(), e.Tag(), e.Param()))
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
