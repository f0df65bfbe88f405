package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
)

type postCall struct {
	url     string
	headers map[string]string
	body    []byte
}

type fakeTransport struct {
	mu       sync.Mutex
	calls    []postCall
	response Response
	err      error
	block    bool
}

func (f *fakeTransport) PostJSON(ctx context.Context, url string, headers map[string]string, body []byte) (Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, postCall{url: url, headers: headers, body: body})
	block, resp, err := f.block, f.response, f.err
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return Response{}, ctx.Err()
	}
	return resp, err
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTransport) lastCall() postCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func artifactsBody(payloads ...string) []byte {
	parts := make([]string, 0, len(payloads))
	for i, p := range payloads {
		parts = append(parts, fmt.Sprintf(`{"base64": %q, "seed": %d, "finishReason": "SUCCESS"}`, p, i))
	}
	return []byte(`{"artifacts": [` + strings.Join(parts, ",") + `]}`)
}

func b64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
