package validation

import (
	"fmt"
	"strings"
)

// customMessages overrides the generic message for a field/tag pair.
var customMessages = map[string]map[string]string{
	"password": {
		"min": "The password must be at least 6 characters.",
	},
	"password_confirmation": {
		"eqfield": "The password confirmation does not match.",
	},
	"date_of_birth": {
		"adult":    "You must be at least 18 years old.",
		"datetime": "The date of birth is not a valid date (YYYY-MM-DD).",
	},
	"initial_capital": {
		"required": "The initial capital field is required when user type is beginner or trader.",
	},
}

func CustomMessage(field, tag string) (string, bool) {
	if byTag, ok := customMessages[field]; ok {
		msg, ok := byTag[tag]
		return msg, ok
	}
	return "", false
}

func DefaultMessage(field, tag, param string) string {
	label := strings.ReplaceAll(field, "_", " ")

	switch tag {
	case "required", "required_if", "required_unless":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", label)
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", label, param)
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", label, param)
	case "gte":
		return fmt.Sprintf("The %s must be at least %s.", label, param)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", label)
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", label)
	case "url":
		return fmt.Sprintf("The %s format is invalid.", label)
	case "datetime":
		return fmt.Sprintf("The %s is not a valid date.", label)
	case "numeric":
		return fmt.Sprintf("The %s must be a number.", label)
	default:
		return fmt.Sprintf("The %s is invalid.", label)
	}
}
