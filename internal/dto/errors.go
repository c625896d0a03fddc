package dto

// BaseError is the single error body every endpoint returns.
// Code is machine oriented (snake_case), Message is short and human readable,
// Details carries an optional explanation, Fields lists validation failures.
type BaseError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details string       `json:"details,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

func NewValidationError(msg string, fields []FieldError) BaseError {
	return BaseError{Code: "validation_error", Message: msg, Fields: fields}
}

func NewUnauthorizedError(msg string) BaseError {
	return BaseError{Code: "unauthorized", Message: msg}
}

func NewNotFoundError(msg string) BaseError {
	return BaseError{Code: "not_found", Message: msg}
}

func NewConflictError(msg string) BaseError {
	return BaseError{Code: "conflict", Message: msg}
}

// NewCheckoutError is a 400 from the checkout gate. code names the failed
// precondition, e.g. "items_processing".
func NewCheckoutError(code, msg string) BaseError {
	return BaseError{Code: code, Message: msg}
}

func NewBadGatewayError(msg, details string) BaseError {
	return BaseError{Code: "bad_gateway", Message: msg, Details: details}
}

func NewUnavailableError(msg string) BaseError {
	return BaseError{Code: "unavailable", Message: msg}
}

func NewInternalError(details string) BaseError {
	return BaseError{Code: "internal_error", Message: "internal server error", Details: details}
}
