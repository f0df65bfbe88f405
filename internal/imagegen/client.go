// Package imagegen requests illustrations from a text-to-image REST service.
package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/verte-zerg/pictoword/internal/safety"
)

// Defaults for Options.
const (
	DefaultEndpoint = "https://api.stability.ai/v1/generation/stable-diffusion-xl-1024-v1-0/text-to-image"
	DefaultTimeout  = 60 * time.Second
	DefaultWidth    = 1024
	DefaultHeight   = 1024
	DefaultSteps    = 30
	DefaultCfgScale = 7.0
)

// PromptPrefix and PromptStyle wrap the sanitized keywords.
const (
	PromptPrefix = "A cute illustration of "
	PromptStyle  = ", cute korean anime style, chibi style, pastel colors, sparkly eyes, clean lines, high quality, vibrant, manhwa style for kids, soft lighting, 3d render, child-friendly, wholesome, bright and cheerful"
)

// ErrInvalidImageCount is returned for a non-positive image count.
var ErrInvalidImageCount = errors.New("image count must be > 0")

// Outcome tags a Result.
type Outcome int

// Result outcomes.
const (
	OutcomeSuccess Outcome = iota
	OutcomeFallback
)

// String returns the outcome name used in logs.
func (o Outcome) String() string {
	if o == OutcomeSuccess {
		return "success"
	}
	return "fallback"
}

// Result holds exactly as many images as were requested.
type Result struct {
	Outcome   Outcome
	Images    []Image
	RequestID string
}

// Placeholders counts synthetic images in the result.
func (r Result) Placeholders() int {
	n := 0
	for _, img := range r.Images {
		if img.Placeholder {
			n++
		}
	}
	return n
}

// Options configures a Client.
type Options struct {
	Endpoint    string
	APIKey      string
	Timeout     time.Duration
	Width       int
	Height      int
	Steps       int
	CfgScale    float64
	CacheTTL    time.Duration
	MinInterval time.Duration
}

// DefaultOptions returns the reference generation parameters.
func DefaultOptions() Options {
	return Options{
		Endpoint: DefaultEndpoint,
		Timeout:  DefaultTimeout,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		Steps:    DefaultSteps,
		CfgScale: DefaultCfgScale,
	}
}

// Request is built fresh for every generation attempt.
type Request struct {
	Prompt         string
	NegativePrompt string
	Count          int
	Timeout        time.Duration
}

type textPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type requestBody struct {
	TextPrompts []textPrompt `json:"text_prompts"`
	CfgScale    float64      `json:"cfg_scale"`
	Height      int          `json:"height"`
	Width       int          `json:"width"`
	Samples     int          `json:"samples"`
	Steps       int          `json:"steps"`
}

// Client turns keywords into images. It never fails on remote errors; those
// produce a Fallback result.
type Client struct {
	opts      Options
	transport Transport
	filter    *safety.Filter
	cache     *cache.Cache
	limiter   *rate.Limiter
}

// New builds a client. A nil filter uses the default blocklist.
func New(opts Options, transport Transport, filter *safety.Filter) *Client {
	if filter == nil {
		filter = safety.New()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	c := &Client{opts: opts, transport: transport, filter: filter}
	if opts.CacheTTL > 0 {
		c.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	if opts.MinInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	}
	return c
}

// BuildRequest sanitizes keywords and wraps them in the illustration template.
func (c *Client) BuildRequest(keywords string, count int) Request {
	return Request{
		Prompt:         PromptPrefix + c.filter.Sanitize(keywords) + PromptStyle,
		NegativePrompt: c.filter.NegativePrompt(),
		Count:          count,
		Timeout:        c.opts.Timeout,
	}
}

func (c *Client) body(req Request) requestBody {
	prompts := []textPrompt{{Text: req.Prompt, Weight: 1}}
	if req.NegativePrompt != "" {
		prompts = append(prompts, textPrompt{Text: req.NegativePrompt, Weight: -1})
	}
	return requestBody{
		TextPrompts: prompts,
		CfgScale:    c.opts.CfgScale,
		Height:      c.opts.Height,
		Width:       c.opts.Width,
		Samples:     req.Count,
		Steps:       c.opts.Steps,
	}
}

// Generate makes one attempt to produce count images. The returned error is
// non-nil only for a non-positive count.
func (c *Client) Generate(ctx context.Context, keywords string, count int) (Result, error) {
	if count <= 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidImageCount, count)
	}
	requestID := uuid.NewString()
	logger := log.With().Str("request_id", requestID).Int("images", count).Logger()

	req := c.BuildRequest(keywords, count)
	key := req.Prompt + "\x00" + strconv.Itoa(count)
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			logger.Debug().Msg("Serving cached generation result")
			res := cached.(Result)
			res.Images = append([]Image(nil), res.Images...)
			res.RequestID = requestID
			return res, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	start := time.Now()
	res := c.do(ctx, logger, req, requestID)
	logger.Info().
		Str("outcome", res.Outcome.String()).
		Int("placeholders", res.Placeholders()).
		Dur("duration", time.Since(start)).
		Msg("Generation finished")

	if c.cache != nil && res.Outcome == OutcomeSuccess && res.Placeholders() == 0 {
		c.cache.SetDefault(key, res)
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, logger zerolog.Logger, req Request, requestID string) Result {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			logger.Warn().Err(err).Msg("Rate limiter wait failed")
			return fallback(req.Count, requestID)
		}
	}
	if c.transport == nil {
		logger.Warn().Msg("No transport configured")
		return fallback(req.Count, requestID)
	}

	payload, err := json.Marshal(c.body(req))
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to encode request")
		return fallback(req.Count, requestID)
	}
	headers := map[string]string{
		"Authorization": "Bearer " + c.opts.APIKey,
		"Content-Type":  "application/json",
		"Accept":        "application/json",
		"X-Request-ID":  requestID,
	}

	logger.Debug().Str("endpoint", c.opts.Endpoint).Int("body_bytes", len(payload)).Msg("Sending generation request")
	resp, err := c.transport.PostJSON(ctx, c.opts.Endpoint, headers, payload)
	if err != nil {
		logger.Warn().Err(err).Msg("Generation request failed")
		return fallback(req.Count, requestID)
	}
	if resp.Status < 200 || resp.Status > 299 {
		logger.Warn().Int("status", resp.Status).Str("body", snippet(resp.Body, 200)).Msg("Generation service returned error status")
		return fallback(req.Count, requestID)
	}

	res, err := parseResponse(resp.Body, req.Count)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to parse generation response")
		return fallback(req.Count, requestID)
	}
	res.RequestID = requestID
	return res
}

// parseResponse scans body for up to count images and pads the rest with
// placeholders. A panic while decoding fails the whole batch.
func parseResponse(body []byte, count int) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = fmt.Errorf("panic while parsing response: %v", r)
		}
	}()

	images := make([]Image, 0, count)
	for data := range decodedPayloads(string(body)) {
		img, derr := DecodeImage(data)
		if derr != nil {
			log.Debug().Err(derr).Msg("Skipping undecodable image payload")
			continue
		}
		images = append(images, img)
		if len(images) == count {
			break
		}
	}
	if missing := count - len(images); missing > 0 {
		images = append(images, Placeholders(missing)...)
	}
	return Result{Outcome: OutcomeSuccess, Images: images}, nil
}

// Fallback returns count placeholders under a fresh request id.
func Fallback(count int) Result {
	return fallback(count, uuid.NewString())
}

func fallback(count int, requestID string) Result {
	return Result{Outcome: OutcomeFallback, Images: Placeholders(count), RequestID: requestID}
}

func snippet(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
