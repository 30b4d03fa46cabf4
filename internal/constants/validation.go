package constants

// Field Length Limits
const (
	MinPasswordLength = 8
	MaxPasswordLength = 100
	MaxNameLength     = 100
	MaxEmailLength    = 255
	TokenIDLength     = 24
)

// Validation Patterns
const (
	EmailPattern         = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
	StreetAddressPattern = `(\d{1,}) [a-zA-Z0-9\s]+(\.)? [a-zA-Z]+(\,)? [A-Z]{2} [0-9]{5,}`
	PasswordSymbols      = `#$^+=!*()@%&`
	TokenIDPattern       = `^[0-9a-f]{24}$`
)

// Image search defaults
const (
	DefaultImageCount = 1
	MaxImageCount     = 30
)
