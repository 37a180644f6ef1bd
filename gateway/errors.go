package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/jrsteele09/swiftchat-web/internal/errors"
)

// ConnectivityMessage is reported when a request was sent but no response arrived
const ConnectivityMessage = "Unable to connect to the server. Please check your internet connection or try again later."

type failureKind int

const (
	failureSetup failureKind = iota
	failureConnectivity
	failureStatus
	failureDecode
	failureNoToken
)

// APIError is the only error kind returned by Client. Message is meant for
// display; Status is the HTTP status when the backend answered.
type APIError struct {
	Message string
	Status  int
	Err     error
	kind    failureKind
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) outcome() string {
	switch e.kind {
	case failureConnectivity:
		return "network_error"
	case failureStatus:
		return "http_error"
	case failureDecode:
		return "decode_error"
	case failureNoToken:
		return "no_token"
	default:
		return "setup_error"
	}
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *APIError
	if apperrors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether the backend rejected the credential
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

func setupError(err error) *APIError {
	return &APIError{Message: err.Error(), Err: err, kind: failureSetup}
}

func connectivityError(err error) *APIError {
	return &APIError{Message: ConnectivityMessage, Err: err, kind: failureConnectivity}
}

// transportError classifies a failed round trip. Only failures on the wire
// count as connectivity; a request that never left the process, such as one
// with an unsupported scheme, reports its own text.
func transportError(err error) *APIError {
	var urlErr *url.Error
	if !apperrors.As(err, &urlErr) {
		return connectivityError(err)
	}
	if urlErr.Timeout() {
		return connectivityError(err)
	}

	cause := urlErr.Err
	var netErr net.Error
	switch {
	case apperrors.As(cause, &netErr),
		apperrors.Is(cause, context.DeadlineExceeded),
		apperrors.Is(cause, context.Canceled),
		apperrors.Is(cause, io.EOF),
		apperrors.Is(cause, io.ErrUnexpectedEOF):
		return connectivityError(err)
	}
	return setupError(err)
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// statusError prefers the backend's message, then its error field, then the status line
func statusError(status int, body []byte) *APIError {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if msg := strings.TrimSpace(parsed.Message); msg != "" {
			return &APIError{Message: msg, Status: status, kind: failureStatus}
		}
		if msg := strings.TrimSpace(parsed.Error); msg != "" {
			return &APIError{Message: msg, Status: status, kind: failureStatus}
		}
	}
	msg := strings.TrimSpace(fmt.Sprintf("Error %d: %s", status, http.StatusText(status)))
	return &APIError{Message: msg, Status: status, kind: failureStatus}
}
