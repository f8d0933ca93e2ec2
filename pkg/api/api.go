// Package api implements the HelpingAI chat-completion API client.
//
// The client supports both response modes of the /v1/chat/completions
// endpoint: a complete response via ChatCompletion, and an incremental
// Server-Sent-Events response via ChatCompletionStream. For models that
// emit <think>/<ser> reasoning markup, both paths strip the markup from
// visible content unless Config.KeepReasoning is set.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/HelpingAI/helpingai-go/pkg/filter"
	"github.com/HelpingAI/helpingai-go/pkg/httpx"
	"github.com/HelpingAI/helpingai-go/pkg/streams"
)

const (
	defaultBaseURL = "https://api.helpingai.co"
	defaultTimeout = 2 * time.Minute

	completionsPath = "v1/chat/completions"

	// retryDelay is the pause between transport-level retry attempts.
	retryDelay = 50 * time.Millisecond

	// maxErrorBody caps how much of an error response body is read.
	maxErrorBody = 1 << 20
)

// Config carries the resolved client configuration. It is copied into the
// Client at construction and never mutated afterwards; there is no
// process-wide client state.
type Config struct {
	// BaseURL of the API. Empty means the hosted HelpingAI endpoint.
	BaseURL string
	// APIKey authorizes requests. May be empty for self-hosted endpoints.
	APIKey string
	// Timeout bounds each request including streaming reads.
	// Zero means the default of two minutes.
	Timeout time.Duration
	// MaxRetries is the number of extra attempts for transport-level
	// failures. Zero means a single attempt; HTTP error statuses are
	// never retried.
	MaxRetries int
	// KeepReasoning leaves <think>/<ser> markup in the output.
	KeepReasoning bool
}

// Client is a HelpingAI REST API client.
type Client struct {
	config     Config
	httpClient *httpx.RetryClient
}

// NewClient returns a new Client for the given configuration.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	return &Client{
		config:     config,
		httpClient: &httpx.RetryClient{Client: &http.Client{Timeout: config.Timeout}},
	}
}

// ChatCompletionStream calls the chat-completions API with streaming enabled
// and returns a lazy, single-pass stream of chunks.
//
// The stream terminates on the server's [DONE] sentinel, on the first
// malformed payload (a chunk whose Err reports a stream-decode error), or
// when ctx ends. Abandoning the stream requires canceling ctx, which also
// releases the underlying connection.
func (c *Client) ChatCompletionStream(ctx context.Context, request ChatRequest) (*streams.Stream[ChatCompletionChunk], error) {
	request.Stream = true

	response, err := c.post(ctx, completionsPath, request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		defer func() { _ = response.Body.Close() }()
		body, readErr := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
		if readErr != nil {
			body = nil
		}
		return nil, classifyStatusError(response.StatusCode, response.Header, body)
	}

	// The SSE reader takes ownership of the response body and closes it on
	// every exit path. streamCtx lets the piping goroutine below release it
	// as soon as the stream ends for any reason.
	streamCtx, cancelStream := context.WithCancel(ctx)
	sseStream := httpx.ReadServerSentEvents(streamCtx, response.Body)

	chunkChan := make(chan ChatCompletionChunk, 100)
	go func() {
		defer close(chunkChan)
		defer cancelStream()

		for {
			sse, ok, err := sseStream.NextContext(ctx)
			if err != nil {
				chunkChan <- ChatCompletionChunk{received: time.Now(), err: wrapTransportError(err)}
				return
			}
			if !ok {
				return
			}

			chunk := convertSSE(sse)
			chunkChan <- chunk
			if chunk.err != nil {
				// Fatal for this stream only; other streams are unaffected.
				return
			}
		}
	}()

	chunkStream := streams.New(chunkChan)
	if c.config.KeepReasoning || !modelEmitsReasoning(request.Model) {
		return chunkStream, nil
	}
	return filterChunks(chunkStream), nil
}

// ChatCompletion calls the chat-completions API without streaming and
// returns the complete response.
func (c *Client) ChatCompletion(ctx context.Context, request ChatRequest) (*ChatCompletion, error) {
	request.Stream = false

	response, err := c.post(ctx, completionsPath, request)
	if err != nil {
		return nil, err
	}
	defer func() { _ = response.Body.Close() }()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, wrapTransportError(err)
	}

	if response.StatusCode != http.StatusOK {
		return nil, classifyStatusError(response.StatusCode, response.Header, body)
	}

	var completion ChatCompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, &APIError{Message: err.Error(), Err: ErrStreamDecode}
	}

	if !c.config.KeepReasoning && modelEmitsReasoning(request.Model) {
		for i := range completion.Choices {
			completion.Choices[i].Message.Content = filter.Clean(completion.Choices[i].Message.Content)
		}
	}

	return &completion, nil
}

// post executes one JSON POST request against the API.
func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	if c.config.APIKey == "" && c.config.BaseURL == defaultBaseURL {
		return nil, &APIError{
			Message: "an API key is required for the hosted endpoint",
			Err:     ErrAPIKeyMissing,
		}
	}

	endpoint, err := url.JoinPath(c.config.BaseURL, path)
	if err != nil {
		return nil, fmt.Errorf("failed to form API endpoint URL: %w", err)
	}

	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpRequest.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpRequest.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
	// Rewindable body, required by the retrying client.
	httpRequest.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(requestBody)), nil
	}

	response, err := c.httpClient.DoRetry(httpRequest, c.config.MaxRetries+1, retryDelay)
	if err != nil {
		return nil, wrapTransportError(err)
	}
	return response, nil
}

// convertSSE decodes one Server-Sent Event into a chunk. A malformed JSON
// payload yields a chunk whose Err reports a stream-decode error.
func convertSSE(sse httpx.ServerSentEvent) ChatCompletionChunk {
	chunk := ChatCompletionChunk{index: sse.Index, received: sse.Timestamp}

	if sse.Error != nil {
		chunk.err = wrapTransportError(sse.Error)
		return chunk
	}

	if err := json.Unmarshal([]byte(sse.Value), &chunk); err != nil {
		chunk.err = &APIError{
			Message: fmt.Sprintf("malformed event payload: %v", err),
			Err:     ErrStreamDecode,
		}
		return chunk
	}

	if chunk.Choices == nil {
		chunk.Choices = []ChunkChoice{}
	}
	return chunk
}

// filterChunks re-emits chunks with reasoning markup removed from their
// content. Filter state is tracked per choice index, since candidate
// completions interleave independently within one stream.
//
// A chunk is re-emitted if its filtered text is non-empty, if it carries a
// finish reason (the terminal signal is never dropped), or if its content
// was empty to begin with (role-only and tool-call-only chunks pass through
// unfiltered). All metadata fields are copied through unchanged.
func filterChunks(source *streams.Stream[ChatCompletionChunk]) *streams.Stream[ChatCompletionChunk] {
	contentFilter := filter.NewStreamFilter()

	return streams.FilterMap(source, func(chunk ChatCompletionChunk) (ChatCompletionChunk, bool) {
		if chunk.err != nil {
			return chunk, true
		}

		keep := len(chunk.Choices) == 0
		for i := range chunk.Choices {
			choice := &chunk.Choices[i]

			if choice.FinishReason != "" {
				keep = true
			}
			if choice.Delta.Content == "" {
				keep = true
				continue
			}

			cleaned := contentFilter.Feed(choice.Index, choice.Delta.Content)
			choice.Delta.Content = cleaned
			if cleaned != "" {
				keep = true
			}
		}

		return chunk, keep
	})
}
