package ai

import (
	"errors"
	"fmt"
)

// ProviderError is an enriched error from a model backend.
type ProviderError struct {
	OriginalErr    error  `json:"-"`
	ProviderName   string `json:"provider_name"`
	ModelName      string `json:"model_name"`
	HTTPStatusCode int    `json:"http_status_code"`
	ErrorCode      string `json:"error_code"`
	Message        string `json:"message"`
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" && e.OriginalErr != nil {
		msg = e.OriginalErr.Error()
	}
	if e.ProviderName != "" && e.ModelName != "" {
		msg = fmt.Sprintf("[%s:%s] %s", e.ProviderName, e.ModelName, msg)
	}
	if e.ErrorCode != "" {
		msg = fmt.Sprintf("%s (code: %s)", msg, e.ErrorCode)
	}
	if e.HTTPStatusCode != 0 {
		msg = fmt.Sprintf("%d %s", e.HTTPStatusCode, msg)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.OriginalErr
}

// IsRetryable reports whether a request can be safely repeated: network
// failures, rate limits and provider-side 5xx qualify, client mistakes
// do not.
func (e *ProviderError) IsRetryable() bool {
	switch {
	case e.HTTPStatusCode == 429:
		return true
	case e.HTTPStatusCode >= 500:
		return true
	case e.HTTPStatusCode == 0 && e.OriginalErr != nil:
		// Transport-level failure, no HTTP response at all.
		return true
	default:
		return false
	}
}

func IsRetryableError(err error) bool {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.IsRetryable()
	}
	return false
}
