package client

import (
	"errors"
	"fmt"
)

// ErrNotLoggedIn is returned when no usable bearer token is stored.
var ErrNotLoggedIn = errors.New("sesi login tidak ditemukan, silakan login ulang")

// Fallback message when the backend gives no usable error body.
const fallbackErrorMessage = "Terjadi kesalahan pada server"

// APIError is a non-2xx response from the backend, with the message taken
// from the response body when present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// MalformedResponseError marks a 2xx response whose body does not match
// the expected shape. It is a client-side contract failure, not a backend
// rejection.
type MalformedResponseError struct {
	Endpoint string
	Reason   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("respons tidak valid dari %s: %s", e.Endpoint, e.Reason)
}
