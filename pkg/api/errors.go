package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/kaptinlin/jsonrepair"
)

// Sentinel errors for classifying API failures with errors.Is.
var (
	ErrAPIKeyMissing      = errors.New("api key missing")
	ErrInvalidAPIKey      = errors.New("invalid api key")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidModel       = errors.New("invalid model")
	ErrContentFiltered    = errors.New("content filtered")
	ErrTokenLimit         = errors.New("token limit exceeded")
	ErrInvalidContent     = errors.New("invalid content")
	ErrRateLimited        = errors.New("rate limited")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("request timed out")
	ErrConnection         = errors.New("connection failed")
	ErrServer             = errors.New("server error")
	ErrStreamDecode       = errors.New("stream decode error")
	ErrAPI                = errors.New("api error")
)

// APIError is the concrete error returned for any classified API failure.
// Its Err field holds one of the sentinel errors above, so callers can
// branch with errors.Is while still seeing the full context.
type APIError struct {
	// Status is the HTTP status code, zero for transport-level failures.
	Status int
	// Code and Type are taken from the server's error envelope when present.
	Code string
	Type string
	// Message is the server's message, or the transport error text.
	Message string
	// Model is set for invalid-model errors: the offending model ID, or
	// "unknown" when the server's message did not quote one.
	Model string
	// Param is the offending parameter for invalid-request errors.
	Param string
	// RetryAfter is set for rate-limit errors when the server sent a
	// parsable Retry-After header; zero means the header was absent.
	RetryAfter time.Duration
	// Retryable is meaningful for connection failures only.
	Retryable bool
	// Err is the taxonomy sentinel this error classifies as.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("helpingai: %s (status=%d, code=%s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("helpingai: %s", e.Message)
}

// Unwrap returns the taxonomy sentinel for error chaining.
func (e *APIError) Unwrap() error { return e.Err }

// errorEnvelope is the normalized form of the API's error body.
type errorEnvelope struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
	Param   string `json:"param"`
}

// parseErrorEnvelope extracts an error envelope from a response body on a
// best-effort basis. It never fails: an unparsable body degrades to a
// generic envelope.
func parseErrorEnvelope(body []byte) errorEnvelope {
	if env, ok := decodeErrorEnvelope(body); ok {
		return env
	}
	// Proxies occasionally mangle error bodies; try a repair pass before
	// giving up on the JSON.
	if repaired, err := jsonrepair.JSONRepair(string(body)); err == nil {
		if env, ok := decodeErrorEnvelope([]byte(repaired)); ok {
			return env
		}
	}
	return errorEnvelope{Message: "unknown error"}
}

// decodeErrorEnvelope accepts the three error body shapes the API and its
// proxies are known to produce:
//
//	{"error": {"message": ..., "type": ..., "code": ...}}
//	{"error": "a bare string"}
//	{"message": ..., "type": ..., "code": ...}
func decodeErrorEnvelope(body []byte) (errorEnvelope, bool) {
	var outer struct {
		Error json.RawMessage `json:"error"`
		errorEnvelope
	}
	if err := json.Unmarshal(body, &outer); err != nil {
		return errorEnvelope{}, false
	}

	if len(outer.Error) > 0 && string(outer.Error) != "null" {
		var message string
		if json.Unmarshal(outer.Error, &message) == nil {
			return errorEnvelope{Message: message}, true
		}
		var nested errorEnvelope
		if json.Unmarshal(outer.Error, &nested) == nil {
			return nested, true
		}
		return errorEnvelope{}, false
	}

	return outer.errorEnvelope, true
}

// classifyStatusError translates a non-success HTTP response into exactly
// one APIError. It is the single point of translation from transport-level
// failure to the error taxonomy; once classified, errors surface to the
// caller unmodified.
func classifyStatusError(status int, header http.Header, body []byte) error {
	env := parseErrorEnvelope(body)

	message := env.Message
	if message == "" {
		message = http.StatusText(status)
	}

	apiErr := &APIError{
		Status:  status,
		Code:    env.Code,
		Type:    env.Type,
		Message: message,
		Param:   env.Param,
	}

	switch {
	case status == http.StatusUnauthorized:
		apiErr.Err = ErrInvalidAPIKey
	case status == http.StatusBadRequest && mentionsModel(message):
		apiErr.Model = quotedModel(message)
		apiErr.Err = ErrInvalidModel
	case status == http.StatusBadRequest && mentionsTokenLimit(env):
		apiErr.Err = ErrTokenLimit
	case status == http.StatusBadRequest && env.Code == "invalid_content":
		apiErr.Err = ErrInvalidContent
	case status == http.StatusBadRequest:
		apiErr.Err = ErrInvalidRequest
	case status == http.StatusTooManyRequests:
		apiErr.RetryAfter = retryAfter(header)
		apiErr.Err = ErrRateLimited
	case status == http.StatusServiceUnavailable:
		apiErr.Err = ErrServiceUnavailable
	case status >= 500:
		apiErr.Err = ErrServer
	case mentionsContentFilter(env):
		apiErr.Err = ErrContentFiltered
	default:
		apiErr.Err = ErrAPI
	}

	return apiErr
}

// quotedPattern matches the single-quoted substring servers use to name the
// offending model, e.g. "Model 'gpt-x' not found".
var quotedPattern = regexp.MustCompile(`'([^']+)'`)

func mentionsModel(message string) bool {
	return strings.Contains(strings.ToLower(message), "model")
}

// quotedModel extracts the model ID from a 400 message. When no quoted
// substring exists, the model is reported as unknown rather than failing
// classification.
func quotedModel(message string) string {
	if match := quotedPattern.FindStringSubmatch(message); match != nil {
		return match[1]
	}
	return "unknown"
}

func mentionsTokenLimit(env errorEnvelope) bool {
	if env.Code == "context_length_exceeded" {
		return true
	}
	message := strings.ToLower(env.Message)
	return strings.Contains(message, "maximum context length") ||
		strings.Contains(message, "token limit")
}

func mentionsContentFilter(env errorEnvelope) bool {
	for _, field := range []string{env.Type, env.Code} {
		field = strings.ToLower(field)
		if strings.Contains(field, "content_filter") || strings.Contains(field, "content-filter") {
			return true
		}
	}
	return false
}

// retryAfter parses the Retry-After header as whole seconds.
// Returns zero when the header is missing or unparsable.
func retryAfter(header http.Header) time.Duration {
	value := header.Get("Retry-After")
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// wrapTransportError maps a transport-level failure (no HTTP response) to
// the taxonomy. Context cancellation passes through untouched so callers
// can still detect their own aborts.
func wrapTransportError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return err
	case isTimeout(err):
		return &APIError{Message: err.Error(), Err: ErrTimeout}
	default:
		return &APIError{Message: err.Error(), Retryable: isRetryableConn(err), Err: ErrConnection}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isRetryableConn(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
