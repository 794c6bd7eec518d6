package engine

import "fmt"

type AppError struct {
	Code    string `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

type ErrorResponse struct {
	Error *AppError `json:"error"`
}

func NewAppError(code string, status int, msg string) *AppError {
	return &AppError{Code: code, Status: status, Message: msg}
}

func InvalidConfigError(err error) *AppError {
	return &AppError{
		Code:    "INVALID_CONFIG",
		Status:  400,
		Message: fmt.Sprintf("Invalid report configuration: %v", err),
	}
}

func UnauthorizedError(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Status: 401, Message: msg}
}

func UnknownSourceError(id string) *AppError {
	return &AppError{
		Code:    "UNKNOWN_SOURCE",
		Status:  404,
		Message: fmt.Sprintf("Unknown data source: %s", id),
	}
}

// QueryFailedError surfaces an upstream query failure to the caller instead
// of silently substituting synthetic data.
func QueryFailedError(err error) *AppError {
	return &AppError{
		Code:    "QUERY_FAILED",
		Status:  502,
		Message: fmt.Sprintf("Report query failed: %v", err),
	}
}

func DeriveFailedError(err error) *AppError {
	return &AppError{
		Code:    "DERIVE_FAILED",
		Status:  422,
		Message: fmt.Sprintf("Derived measure failed: %v", err),
	}
}
