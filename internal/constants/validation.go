package constants

import "time"

// Field Length Limits
const (
	MinPasswordLength = 6
	MaxPasswordLength = 100
	MaxNameLength     = 255
	MaxPhoneLength    = 20
	MaxEmailLength    = 255
	MaxAddressLength  = 500
	MaxCityLength     = 100
	MinAdultAge       = 18
)

// Token Settings
const (
	RefreshTokenBytes = 32
	ResetTokenBytes   = 32
	ResetTokenTTL     = 24 * time.Hour
)

// Enumerations accepted on registration and profile update
const (
	UserTypeBeginner  = "beginner"
	UserTypeTrader    = "trader"
	UserTypeRegulator = "regulator"

	RiskConservative = "conservative"
	RiskModerate     = "moderate"
	RiskAggressive   = "aggressive"
)
