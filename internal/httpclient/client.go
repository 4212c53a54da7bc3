package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unkn0wn-root/restpad/internal/request"
	"github.com/unkn0wn-root/restpad/internal/telemetry"
)

type Options struct {
	// Timeout bounds the whole exchange including reading the body. Zero
	// disables the limit.
	Timeout         time.Duration
	FollowRedirects bool
	ProxyURL        string
}

// DefaultOptions follows redirects and gives up after 30 seconds.
func DefaultOptions() Options {
	return Options{Timeout: 30 * time.Second, FollowRedirects: true}
}

type Client struct {
	opts        Options
	httpFactory func(Options) (*http.Client, error)
	httpMu      sync.Mutex
	httpClient  *http.Client
	telemetry   telemetry.Instrumenter
	log         zerolog.Logger
	newID       func() string
}

func (c *Client) resolveHTTPFactory() func(Options) (*http.Client, error) {
	if c == nil {
		return nil
	}
	if c.httpFactory != nil {
		return c.httpFactory
	}
	return c.buildHTTPClient
}

func NewClient(opts Options) *Client {
	c := &Client{
		opts:      opts,
		telemetry: telemetry.Noop(),
		log:       zerolog.Nop(),
		newID:     uuid.NewString,
	}
	c.httpFactory = c.buildHTTPClient
	return c
}

func (c *Client) Options() Options {
	return c.opts
}

// SetHTTPFactory allows callers to override how http.Client instances are created.
// Passing nil restores the default factory.
func (c *Client) SetHTTPFactory(factory func(Options) (*http.Client, error)) {
	c.httpMu.Lock()
	defer c.httpMu.Unlock()
	c.httpFactory = factory
	c.httpClient = nil
}

// sharedHTTPClient builds the http.Client on first use and keeps it so
// connections are pooled across dispatches.
func (c *Client) sharedHTTPClient() (*http.Client, error) {
	c.httpMu.Lock()
	defer c.httpMu.Unlock()
	if c.httpClient != nil {
		return c.httpClient, nil
	}
	factory := c.resolveHTTPFactory()
	if factory == nil {
		return nil, fmt.Errorf("http client factory unavailable")
	}
	client, err := factory(c.opts)
	if err != nil {
		return nil, err
	}
	c.httpClient = client
	return client, nil
}

// SetTelemetry configures the instrumenter used to emit OpenTelemetry spans. Passing nil restores the no-op implementation.
func (c *Client) SetTelemetry(instr telemetry.Instrumenter) {
	if instr == nil {
		instr = telemetry.Noop()
	}
	c.telemetry = instr
}

func (c *Client) SetLogger(logger zerolog.Logger) {
	c.log = logger
}

// Dispatch performs spec as a single exchange and always yields an Outcome.
// Nothing is retried; redirects follow Options.FollowRedirects.
func (c *Client) Dispatch(ctx context.Context, spec request.Spec) Outcome {
	id := c.newID()
	log := c.log.With().Str("request_id", id).Logger()
	start := time.Now()

	httpReq, err := newHTTPRequest(ctx, spec)
	if err != nil {
		log.Warn().Err(err).Str("method", spec.Method.String()).Str("url", spec.URL).
			Msg("request rejected")
		return newFailure(err, 0)
	}

	client, err := c.sharedHTTPClient()
	if err != nil {
		log.Warn().Err(err).Msg("build http client")
		return newFailure(err, 0)
	}

	instrumenter := c.telemetry
	if instrumenter == nil {
		instrumenter = telemetry.Noop()
	}
	spanCtx, span := instrumenter.Start(httpReq.Context(), telemetry.RequestStart{
		ID:          id,
		Spec:        &spec,
		HTTPRequest: httpReq,
	})
	httpReq = httpReq.WithContext(spanCtx)
	session := newTraceSession()
	httpReq = session.bind(httpReq)

	log.Debug().
		Str("method", httpReq.Method).
		Str("url", spec.URL).
		Int("headers", len(spec.Headers)).
		Bool("body", spec.SendsBody()).
		Int("body_len", len(spec.Body)).
		Msg("sending request")

	success, readErr, err := c.roundTrip(client, httpReq, start)
	dur := time.Since(start)
	if err == nil && readErr != nil {
		timeline := session.finish(readErr)
		success.Timeline = timeline
		span.End(telemetry.RequestResult{
			Err:        readErr,
			StatusCode: success.StatusCode,
			Duration:   dur,
			Timeline:   timeline,
		})
		log.Warn().Err(readErr).
			Int("status", success.StatusCode).
			Dur("duration", dur).
			Msg("response body unreadable, showing it empty")
		return success
	}
	timeline := session.finish(err)
	if err != nil {
		span.End(telemetry.RequestResult{Err: err, Duration: dur, Timeline: timeline})
		log.Warn().Err(err).Dur("duration", dur).Str("timing", timeline.Summary()).
			Msg("request failed")
		return newFailure(err, dur)
	}
	success.Timeline = timeline

	span.End(telemetry.RequestResult{
		StatusCode: success.StatusCode,
		Duration:   dur,
		BodyBytes:  len(success.Body),
		Timeline:   timeline,
	})
	log.Info().
		Int("status", success.StatusCode).
		Dur("duration", dur).
		Int("bytes", len(success.Body)).
		Str("effective_url", success.EffectiveURL).
		Str("timing", timeline.Summary()).
		Msg("request completed")
	return success
}

// roundTrip performs the exchange. A body that cannot be read still yields a
// Success with an empty Body; the read error comes back as readErr.
func (c *Client) roundTrip(client *http.Client, httpReq *http.Request, start time.Time) (*Success, error, error) {
	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	success := &Success{
		StatusCode:   httpResp.StatusCode,
		Reason:       http.StatusText(httpResp.StatusCode),
		Headers:      httpResp.Header.Clone(),
		EffectiveURL: effURL(httpReq, httpResp),
	}
	raw, err := io.ReadAll(httpResp.Body)
	success.Duration = time.Since(start)
	if err != nil {
		return success, fmt.Errorf("read response body: %w", err), nil
	}
	success.Body = decodeText(raw, httpResp.Header.Get("Content-Type"))
	return success, nil, nil
}

// newHTTPRequest maps a Spec onto an *http.Request. Header keys are stored
// exactly as typed so the user controls their spelling; invalid names surface
// as transport errors.
func newHTTPRequest(ctx context.Context, spec request.Spec) (*http.Request, error) {
	var body io.Reader
	if spec.SendsBody() {
		body = strings.NewReader(spec.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, spec.Method.String(), spec.URL, body)
	if err != nil {
		return nil, err
	}

	for key, value := range spec.Headers {
		if strings.EqualFold(key, "Host") {
			httpReq.Host = value
			continue
		}
		httpReq.Header[key] = []string{value}
	}
	return httpReq, nil
}

func effURL(req *http.Request, resp *http.Response) string {
	if resp != nil && resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	if req != nil && req.URL != nil {
		return req.URL.String()
	}
	return ""
}
