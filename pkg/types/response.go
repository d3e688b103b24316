// Package types holds the wire envelopes shared by every API response.
package types

// SuccessEnvelope wraps successful payloads as {"data": ...}. Handlers
// never return bare objects, so clients can rely on the shape.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error body. Code is one of the stable error
// codes from pkg/errors; Details is only populated for codes that allow
// field-level feedback, such as validation failures.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps failures as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
