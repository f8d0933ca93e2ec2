package httpx

import (
	"fmt"
	"net/http"
	"time"
)

// RetryClient is an extension of the standard HTTP client that re-executes a
// request when the transport itself fails (connection refused, reset, DNS).
// Non-2xx responses are NOT retried; they are returned to the caller as-is,
// since interpreting them is the caller's concern.
type RetryClient struct {
	*http.Client
}

// DoRetry executes the given request, retrying transport-level failures up
// to maxAttempts times with a fixed delay between attempts.
//
// The request must be rewindable: its GetBody field must be set so each
// attempt gets a fresh body. On success, the caller owns the response body.
func (rc *RetryClient) DoRetry(req *http.Request, maxAttempts int, delay time.Duration) (*http.Response, error) {
	if req.GetBody == nil {
		return nil, fmt.Errorf("request must have GetBody set for retrying")
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	// Holds the transport error of the most recent attempt.
	var errFinal error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		// Each attempt works on its own clone with a fresh body.
		reqClone := req.Clone(req.Context())
		reqClone.RequestURI = ""

		bodyReader, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("error in the GetBody call: %w", err)
		}
		reqClone.Body = bodyReader

		response, err := rc.Do(reqClone)
		if err == nil {
			return response, nil
		}

		errFinal = err
		if attempt == maxAttempts-1 {
			break
		}

		// Wait before the next attempt while respecting the request's context.
		timer := time.NewTimer(delay)
		select {
		case <-reqClone.Context().Done():
			timer.Stop()
			return nil, reqClone.Context().Err()
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("all %d attempts failed, last error: %w", maxAttempts, errFinal)
}
