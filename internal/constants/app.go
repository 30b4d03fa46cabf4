package constants

// Application Information
const (
	AppName    = "Midas"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Store collections
const (
	CollectionUsers  = "users"
	CollectionTokens = "tokens"
	CollectionMenu   = "menu"

	MenuDocumentKey = "menu"
)

// Store key prefix used by the redis backend
const StoreKeyPrefix = "midas:"

// Circuit breaker names, one per third-party provider
const (
	BreakerStripe   = "stripe"
	BreakerEmail    = "email"
	BreakerUnsplash = "unsplash"
)

// Log Levels
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
	LogLevelFatal = "fatal"
)
