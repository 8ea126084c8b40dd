package types

// APIError is the public shape of a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Created is the minimal body returned by create endpoints.
type Created struct {
	ID int64 `json:"id"`
}

// OK acknowledges a mutation that has no payload.
type OK struct {
	OK bool `json:"ok"`
}
