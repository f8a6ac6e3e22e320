package constants

// Standard Response Field Keys
const (
	ResponseFieldMessage = "message"
	ResponseFieldDetails = "details"
	ResponseFieldError   = "error"
	ResponseFieldErrors  = "errors"
	ResponseFieldSuccess = "success"
	ResponseFieldUser    = "user"
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

// BuildValidationResponse renders field errors as {message, errors:{field:[msg]}}.
func BuildValidationResponse(fieldErrors map[string][]string) map[string]any {
	return map[string]any{
		ResponseFieldMessage: MsgValidationFailed,
		ResponseFieldErrors:  fieldErrors,
	}
}

// BuildAuthErrorResponse is the bare {error: msg} body the SPA expects from login.
func BuildAuthErrorResponse(message string) map[string]any {
	return map[string]any{
		ResponseFieldError: message,
	}
}

func BuildSuccessResponse(message string) map[string]any {
	return map[string]any{
		ResponseFieldMessage: message,
	}
}

func BuildUserResponse(message string, user any) map[string]any {
	response := map[string]any{
		ResponseFieldUser: user,
	}
	if message != "" {
		response[ResponseFieldMessage] = message
	}
	return response
}
