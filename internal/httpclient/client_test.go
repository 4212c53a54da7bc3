package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/unkn0wn-root/restpad/internal/nettrace"
	"github.com/unkn0wn-root/restpad/internal/request"
	"github.com/unkn0wn-root/restpad/internal/telemetry"
)

type echoPayload struct {
	Method        string              `json:"method"`
	Query         string              `json:"query"`
	Host          string              `json:"host"`
	Headers       map[string][]string `json:"headers"`
	Body          string              `json:"body"`
	ContentLength int64               `json:"contentLength"`
	Chunked       bool                `json:"chunked"`
}

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		payload := echoPayload{
			Method:        r.Method,
			Query:         r.URL.RawQuery,
			Host:          r.Host,
			Headers:       r.Header,
			Body:          string(body),
			ContentLength: r.ContentLength,
			Chunked:       len(r.TransferEncoding) > 0,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dispatchEcho(t *testing.T, client *Client, spec request.Spec) echoPayload {
	t.Helper()
	out := client.Dispatch(context.Background(), spec)
	success, ok := out.(*Success)
	if !ok {
		t.Fatalf("expected success, got %#v", out)
	}
	var payload echoPayload
	if err := json.Unmarshal([]byte(success.Body), &payload); err != nil {
		t.Fatalf("decode echo body %q: %v", success.Body, err)
	}
	return payload
}

func TestDispatchGetNeverSendsBody(t *testing.T) {
	srv := newEchoServer(t)
	client := NewClient(DefaultOptions())

	got := dispatchEcho(t, client, request.Spec{
		Method: request.MethodGet,
		URL:    srv.URL + "/items?a=1",
		Body:   "should not be sent",
	})
	if got.Method != http.MethodGet {
		t.Fatalf("unexpected method %q", got.Method)
	}
	if got.Body != "" || got.ContentLength != 0 || got.Chunked {
		t.Fatalf("expected no body on GET, got %+v", got)
	}
	if got.Query != "a=1" {
		t.Fatalf("unexpected query %q", got.Query)
	}
}

func TestDispatchPostEmptyBodySendsNothing(t *testing.T) {
	srv := newEchoServer(t)
	client := NewClient(DefaultOptions())

	got := dispatchEcho(t, client, request.Spec{Method: request.MethodPost, URL: srv.URL})
	if got.Method != http.MethodPost {
		t.Fatalf("unexpected method %q", got.Method)
	}
	if got.Body != "" || got.ContentLength != 0 || got.Chunked {
		t.Fatalf("expected no body, got %+v", got)
	}
}

func TestDispatchBodyVerbatimForNonGet(t *testing.T) {
	srv := newEchoServer(t)
	client := NewClient(DefaultOptions())

	for _, method := range []request.Method{
		request.MethodPost,
		request.MethodPut,
		request.MethodPatch,
		request.MethodDelete,
	} {
		body := "  {\"raw\": true}\n"
		got := dispatchEcho(t, client, request.Spec{Method: method, URL: srv.URL, Body: body})
		if got.Method != method.String() {
			t.Fatalf("expected method %s, got %s", method, got.Method)
		}
		if got.Body != body {
			t.Fatalf("%s: expected body %q, got %q", method, body, got.Body)
		}
	}
}

func TestDispatchAttachesHeaders(t *testing.T) {
	srv := newEchoServer(t)
	client := NewClient(DefaultOptions())

	got := dispatchEcho(t, client, request.Spec{
		Method: request.MethodGet,
		URL:    srv.URL,
		Headers: map[string]string{
			"X-Trace": "abc",
			"accept":  "application/json",
			"X-Empty": "",
			"Host":    "api.example.test",
		},
	})
	if v := got.Headers["X-Trace"]; len(v) != 1 || v[0] != "abc" {
		t.Fatalf("unexpected X-Trace %v", v)
	}
	if v := got.Headers["Accept"]; len(v) != 1 || v[0] != "application/json" {
		t.Fatalf("unexpected Accept %v", v)
	}
	if v, ok := got.Headers["X-Empty"]; !ok || len(v) != 1 || v[0] != "" {
		t.Fatalf("expected empty header to be sent, got %v (present=%v)", v, ok)
	}
	if got.Host != "api.example.test" {
		t.Fatalf("expected Host row to set request host, got %q", got.Host)
	}
}

func TestDispatchSuccessOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Reply", "yes")
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, "short and stout")
	}))
	t.Cleanup(srv.Close)

	out := NewClient(DefaultOptions()).Dispatch(
		context.Background(),
		request.Spec{Method: request.MethodGet, URL: srv.URL},
	)
	success, ok := out.(*Success)
	if !ok {
		t.Fatalf("expected success, got %#v", out)
	}
	if success.StatusCode != http.StatusTeapot || success.Reason != "I'm a teapot" {
		t.Fatalf("unexpected status %d %q", success.StatusCode, success.Reason)
	}
	if success.Headers.Get("X-Reply") != "yes" {
		t.Fatalf("expected response headers, got %v", success.Headers)
	}
	if success.Body != "short and stout" {
		t.Fatalf("unexpected body %q", success.Body)
	}
}

func TestDispatchRecordsTimeline(t *testing.T) {
	srv := newEchoServer(t)
	out := NewClient(DefaultOptions()).Dispatch(
		context.Background(),
		request.Spec{Method: request.MethodGet, URL: srv.URL},
	)
	success, ok := out.(*Success)
	if !ok {
		t.Fatalf("expected success, got %#v", out)
	}
	if success.Timeline == nil {
		t.Fatalf("expected a timeline")
	}
	if _, ok := success.Timeline.Phase(nettrace.PhaseConnect); !ok {
		t.Fatalf("expected connect phase, got %+v", success.Timeline.Phases)
	}
	if _, ok := success.Timeline.Phase(nettrace.PhaseTTFB); !ok {
		t.Fatalf("expected ttfb phase, got %+v", success.Timeline.Phases)
	}
	if !strings.Contains(success.Timeline.Summary(), "ttfb") {
		t.Fatalf("unexpected summary %q", success.Timeline.Summary())
	}
}

func TestDispatchReusesPooledConnections(t *testing.T) {
	srv := newEchoServer(t)
	client := NewClient(DefaultOptions())
	spec := request.Spec{Method: request.MethodGet, URL: srv.URL}

	reused := false
	for i := 0; i < 5 && !reused; i++ {
		out := client.Dispatch(context.Background(), spec)
		success, ok := out.(*Success)
		if !ok {
			t.Fatalf("dispatch %d: expected success, got %#v", i, out)
		}
		if phase, ok := success.Timeline.Phase(nettrace.PhaseConnect); ok && phase.Meta.Reused {
			reused = true
			if !strings.Contains(success.Timeline.Summary(), "connect reused") {
				t.Fatalf("unexpected summary %q", success.Timeline.Summary())
			}
		}
	}
	if !reused {
		t.Fatalf("expected a later dispatch to reuse the pooled connection")
	}
}

func TestDispatchShortBodyKeepsStatusAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.Header().Set("X-Partial", "yes")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial"))
	}))
	t.Cleanup(srv.Close)

	recorder := tracetest.NewSpanRecorder()
	inst, err := telemetry.New(telemetry.Config{ServiceName: "restpad-test"}, telemetry.WithSpanProcessor(recorder))
	if err != nil {
		t.Fatalf("telemetry: %v", err)
	}
	t.Cleanup(func() { _ = inst.Shutdown(context.Background()) })

	var buf bytes.Buffer
	client := NewClient(DefaultOptions())
	client.SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	client.SetTelemetry(inst)

	out := client.Dispatch(context.Background(), request.Spec{Method: request.MethodGet, URL: srv.URL})
	success, ok := out.(*Success)
	if !ok {
		t.Fatalf("expected success despite truncated body, got %#v", out)
	}
	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error || len(spans[0].Events()) == 0 {
		t.Fatalf("expected body read error on span, got status %+v", spans[0].Status())
	}
	if success.StatusCode != http.StatusOK || success.Reason != "OK" {
		t.Fatalf("unexpected status %d %q", success.StatusCode, success.Reason)
	}
	if success.Headers.Get("X-Partial") != "yes" {
		t.Fatalf("expected headers to be kept, got %v", success.Headers)
	}
	if success.Body != "" {
		t.Fatalf("expected empty body, got %q", success.Body)
	}
	if !strings.Contains(buf.String(), "response body unreadable") {
		t.Fatalf("expected warn log for body read error, got %s", buf.String())
	}
}

func TestDispatchUnknownStatusHasEmptyReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(599)
	}))
	t.Cleanup(srv.Close)

	out := NewClient(DefaultOptions()).Dispatch(
		context.Background(),
		request.Spec{Method: request.MethodGet, URL: srv.URL},
	)
	success, ok := out.(*Success)
	if !ok {
		t.Fatalf("expected success, got %#v", out)
	}
	if success.StatusCode != 599 || success.Reason != "" {
		t.Fatalf("expected 599 with empty reason, got %d %q", success.StatusCode, success.Reason)
	}
}

func TestDispatchFollowsRedirectsByDefault(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "landed")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	spec := request.Spec{Method: request.MethodGet, URL: srv.URL + "/old"}

	out := NewClient(DefaultOptions()).Dispatch(context.Background(), spec)
	success, ok := out.(*Success)
	if !ok || success.StatusCode != http.StatusOK || success.Body != "landed" {
		t.Fatalf("expected redirect to be followed, got %#v", out)
	}
	if !strings.HasSuffix(success.EffectiveURL, "/new") {
		t.Fatalf("unexpected effective url %q", success.EffectiveURL)
	}

	noFollow := DefaultOptions()
	noFollow.FollowRedirects = false
	out = NewClient(noFollow).Dispatch(context.Background(), spec)
	success, ok = out.(*Success)
	if !ok || success.StatusCode != http.StatusFound {
		t.Fatalf("expected raw 302 when redirects disabled, got %#v", out)
	}
}

func TestDispatchTransportFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	out := NewClient(DefaultOptions()).Dispatch(
		context.Background(),
		request.Spec{Method: request.MethodGet, URL: "http://" + addr},
	)
	failure, ok := out.(*Failure)
	if !ok {
		t.Fatalf("expected failure, got %#v", out)
	}
	if strings.TrimSpace(failure.Description) == "" {
		t.Fatalf("expected non-empty description")
	}
}

func TestDispatchMalformedInputsFail(t *testing.T) {
	srv := newEchoServer(t)
	client := NewClient(DefaultOptions())

	cases := map[string]request.Spec{
		"empty host":          {Method: request.MethodGet, URL: "https://"},
		"invalid header name": {Method: request.MethodGet, URL: srv.URL, Headers: map[string]string{"bad header": "x"}},
		"invalid header value": {
			Method:  request.MethodGet,
			URL:     srv.URL,
			Headers: map[string]string{"X-Split": "a\r\nb"},
		},
		"invalid url": {Method: request.MethodGet, URL: "https://exa mple.com"},
	}
	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			out := client.Dispatch(context.Background(), spec)
			failure, ok := out.(*Failure)
			if !ok {
				t.Fatalf("expected failure, got %#v", out)
			}
			if failure.Description == "" {
				t.Fatalf("expected description")
			}
		})
	}
}

func TestDispatchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	client := NewClient(Options{Timeout: 50 * time.Millisecond, FollowRedirects: true})
	out := client.Dispatch(context.Background(), request.Spec{Method: request.MethodGet, URL: srv.URL})
	failure, ok := out.(*Failure)
	if !ok {
		t.Fatalf("expected timeout failure, got %#v", out)
	}
	if !strings.Contains(failure.Description, "Timeout") && !strings.Contains(failure.Description, "deadline") {
		t.Fatalf("expected timeout description, got %q", failure.Description)
	}
}

func TestDispatchCanceledContext(t *testing.T) {
	srv := newEchoServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := NewClient(DefaultOptions()).Dispatch(ctx, request.Spec{Method: request.MethodGet, URL: srv.URL})
	failure, ok := out.(*Failure)
	if !ok || !strings.Contains(failure.Description, "context canceled") {
		t.Fatalf("expected canceled failure, got %#v", out)
	}
}

func TestDispatchUsesFactoryAndLogs(t *testing.T) {
	srv := newEchoServer(t)
	var buf bytes.Buffer

	client := NewClient(DefaultOptions())
	client.SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	client.newID = func() string { return "fixed-id" }
	calls := 0
	client.SetHTTPFactory(func(opts Options) (*http.Client, error) {
		calls++
		return srv.Client(), nil
	})

	dispatchEcho(t, client, request.Spec{Method: request.MethodGet, URL: srv.URL})
	dispatchEcho(t, client, request.Spec{Method: request.MethodGet, URL: srv.URL})
	if calls != 1 {
		t.Fatalf("expected factory to be used once across dispatches, got %d", calls)
	}
	logs := buf.String()
	if !strings.Contains(logs, `"request_id":"fixed-id"`) ||
		!strings.Contains(logs, "request completed") {
		t.Fatalf("expected request logs, got %s", logs)
	}
}

func TestDecodeText(t *testing.T) {
	latin1 := []byte{'c', 'a', 'f', 0xe9}
	if got := decodeText(latin1, "text/plain; charset=ISO-8859-1"); got != "café" {
		t.Fatalf("expected latin1 decode, got %q", got)
	}
	if got := decodeText(latin1, "text/plain"); got != "caf�" {
		t.Fatalf("expected lossy utf-8 decode, got %q", got)
	}
	if got := decodeText([]byte("héllo"), "application/json; charset=utf-8"); got != "héllo" {
		t.Fatalf("unexpected utf-8 decode %q", got)
	}
	if got := decodeText(nil, "text/plain"); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}
