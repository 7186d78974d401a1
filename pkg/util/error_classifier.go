package util

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/url"
	"strings"
)

// ClassifyError labels an error as transient or permanent.
// Returns: (isTransient, errorType). Transient errors are expected to
// succeed on a later tick; permanent ones will not.
func ClassifyError(err error) (bool, string) {
	if err == nil {
		return false, ""
	}

	errStr := err.Error()

	// malformed payloads do not fix themselves
	if _, ok := err.(*json.SyntaxError); ok {
		return false, "json_decode_error"
	}
	if _, ok := err.(*json.UnmarshalTypeError); ok {
		return false, "json_decode_error"
	}
	if strings.Contains(errStr, "json:") {
		return false, "json_decode_error"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true, "network_timeout"
		}
		return true, "network_error"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true, "network_timeout"
		}
		return true, "network_error"
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true, "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return false, "context_canceled"
	}

	if strings.Contains(errStr, "records service returned error") {
		return true, "records_service_error"
	}
	if strings.Contains(errStr, "circuit breaker is open") {
		return true, "circuit_breaker_open"
	}
	if strings.Contains(errStr, "connection") || strings.Contains(errStr, "timeout") {
		return true, "connection_error"
	}

	// unknown errors are treated as permanent, conservatively
	return false, "unknown_error"
}
