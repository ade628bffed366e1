package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError is a caller mistake detected before any vendor call.
type ValidationError struct {
	Field   string
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Field != "" && msg == "" {
		msg = e.Field + " is required"
	}
	if len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, "; ")
	}
	return "validation error: " + msg
}

func missing(field string) *ValidationError {
	return &ValidationError{Field: field, Message: field + " is required"}
}

// VendorError is a non-2xx answer on a token or presentation call. The vendor
// status and message are passed through to the caller.
type VendorError struct {
	Vendor     string
	Operation  string
	StatusCode int
	Message    string
	Details    json.RawMessage
	Exchange   Exchange
}

func (e *VendorError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Vendor, e.Operation, e.StatusCode, e.Message)
}
