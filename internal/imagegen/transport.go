package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

const defaultMaxBodyBytes = 64 << 20

// Response is the raw outcome of a transport call.
type Response struct {
	Status int
	Body   []byte
}

// Transport posts a JSON body and returns the raw response. The request
// deadline is carried by ctx.
type Transport interface {
	PostJSON(ctx context.Context, url string, headers map[string]string, body []byte) (Response, error)
}

// HTTPTransport implements Transport over net/http.
type HTTPTransport struct {
	Client       *http.Client
	MaxBodyBytes int64
}

// NewHTTPTransport returns a transport using a dedicated http.Client.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{Client: &http.Client{}, MaxBodyBytes: defaultMaxBodyBytes}
}

// PostJSON implements Transport.
func (t *HTTPTransport) PostJSON(ctx context.Context, url string, headers map[string]string, body []byte) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()

	limit := t.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return Response{Status: resp.StatusCode}, fmt.Errorf("failed to read response: %w", err)
	}
	return Response{Status: resp.StatusCode, Body: data}, nil
}
