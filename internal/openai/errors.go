package openai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx reply from the provider.
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
}

// Error returns the provider's message text unchanged.
func (e *APIError) Error() string {
	return e.Message
}

type errorEnvelope struct {
	Error *struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

// newAPIError builds an APIError from a reply body. The message comes from
// {"error":{"message":...}} when present, otherwise from the raw body, and
// finally from the HTTP status text.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Message = env.Error.Message
		apiErr.Type = env.Error.Type
		if env.Error.Code != nil {
			apiErr.Code = fmt.Sprint(env.Error.Code)
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("%d %s", status, http.StatusText(status))
	}
	return apiErr
}
