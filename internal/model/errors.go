package model

import "errors"

// Error kinds produced by the weather pipeline. Components wrap one of these
// so callers can branch with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrTransport  = errors.New("transport error")
	ErrParse      = errors.New("parse error")
	ErrStorage    = errors.New("storage error")
)

// Stage returns the pipeline stage an error originated from
func Stage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrTransport):
		return "fetch"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrStorage):
		return "storage"
	default:
		return "unknown"
	}
}

// UserMessage returns the generic message shown to users for a failed stage
func UserMessage(err error) string {
	switch Stage(err) {
	case "":
		return ""
	case "validation":
		return "Invalid input parameters. Please correct them and try again."
	case "fetch":
		return "Failed to retrieve weather data. The city or country name might be incorrect, or the API is unreachable."
	case "parse":
		return "Failed to parse weather data. There might be an issue with the API response."
	case "storage":
		return "An error occurred while storing the data: " + err.Error()
	default:
		return "An unexpected error occurred."
	}
}
