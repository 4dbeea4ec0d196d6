package app

import "fmt"

// DomainError carries a fixed HTTP mapping: depth denials as 404,
// forbidden transitions as 403, stale status swaps as 409, tag
// validation as 422 with the per-group errors in Details. mapError
// surfaces it verbatim; anything unrecognized becomes a 500.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}
