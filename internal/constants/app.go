package constants

// Application Information
const (
	AppName    = "Authflow"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Default Application Settings
const (
	DefaultPort        = "8080"
	DefaultEnvironment = EnvDevelopment
	DefaultCountry     = "Tunisia"
	DefaultLanguage    = "fr"
)

// Redis Key Prefixes
const (
	CacheKeyPrefix     = "authflow:"
	CacheKeyRevokedJTI = CacheKeyPrefix + "revoked:"
	CacheKeyRateLimit  = CacheKeyPrefix + "rl:"
)

// Event names published on the events exchange
const (
	EventUserRegistered = "user.registered"
	EventUserVerified   = "user.verified"
	EventPasswordReset  = "user.password_reset"
)

// Log Levels
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
	LogLevelFatal = "fatal"
)
