package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/unkn0wn-root/restpad/internal/nettrace"
	"github.com/unkn0wn-root/restpad/internal/request"
)

var (
	tracerName  = "github.com/unkn0wn-root/restpad/internal/telemetry"
	httpHostKey = attribute.Key("http.host")
)

type Instrumenter interface {
	Start(ctx context.Context, info RequestStart) (context.Context, RequestSpan)
	Shutdown(ctx context.Context) error
}

type RequestStart struct {
	ID          string
	Spec        *request.Spec
	HTTPRequest *http.Request
}

type RequestResult struct {
	Err        error
	StatusCode int
	Duration   time.Duration
	BodyBytes  int
	Timeline   *nettrace.Timeline
}

type RequestSpan interface {
	End(result RequestResult)
}

type providerOptions struct {
	exporter       sdktrace.SpanExporter
	spanProcessors []sdktrace.SpanProcessor
}

type Option func(*providerOptions)

func WithSpanProcessor(proc sdktrace.SpanProcessor) Option {
	return func(opts *providerOptions) {
		if proc != nil {
			opts.spanProcessors = append(opts.spanProcessors, proc)
		}
	}
}

func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(opts *providerOptions) {
		if exp != nil {
			opts.exporter = exp
		}
	}
}

type manager struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	shutdown sync.Once
}

func New(cfg Config, opts ...Option) (Instrumenter, error) {
	builder := providerOptions{}
	for _, opt := range opts {
		opt(&builder)
	}

	if !cfg.Enabled() && builder.exporter == nil && len(builder.spanProcessors) == 0 {
		return Noop(), nil
	}

	res, err := resource.New(
		context.Background(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(buildResourceAttributes(cfg)...),
	)
	if err != nil {
		return nil, err
	}

	exporter := builder.exporter
	if exporter == nil && cfg.Enabled() {
		exporter, err = newExporter(cfg)
		if err != nil {
			return nil, err
		}
	}

	var tpOpts []sdktrace.TracerProviderOption
	tpOpts = append(tpOpts, sdktrace.WithResource(res))
	if exporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}
	for _, proc := range builder.spanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(proc))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	return &manager{tracer: tp.Tracer(tracerName), provider: tp}, nil
}

func (m *manager) Start(ctx context.Context, info RequestStart) (context.Context, RequestSpan) {
	if info.HTTPRequest == nil && info.Spec == nil {
		return ctx, noopSpan{}
	}

	ctx, span := m.tracer.Start(
		ctx,
		spanNameFor(info),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(buildSpanAttributes(info)...),
	)
	return ctx, &requestSpan{span: span}
}

func (m *manager) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	var shutdownErr error
	m.shutdown.Do(func() {
		shutdownErr = m.provider.Shutdown(ctx)
	})
	return shutdownErr
}

type requestSpan struct {
	span trace.Span
}

func (rs *requestSpan) End(result RequestResult) {
	if rs == nil || rs.span == nil {
		return
	}

	if result.StatusCode > 0 {
		rs.span.SetAttributes(semconv.HTTPStatusCodeKey.Int(result.StatusCode))
	}
	if result.Duration > 0 {
		rs.span.SetAttributes(
			attribute.Int64("restpad.request.duration_ms", result.Duration.Milliseconds()),
		)
	}
	if result.BodyBytes > 0 {
		rs.span.SetAttributes(attribute.Int("restpad.response.body_bytes", result.BodyBytes))
	}

	if result.Timeline != nil {
		for _, phase := range result.Timeline.Phases {
			attrs := []attribute.KeyValue{
				attribute.Int64("restpad.phase.duration_us", phase.Duration.Microseconds()),
			}
			if phase.Meta.Addr != "" {
				attrs = append(attrs, attribute.String("restpad.phase.addr", phase.Meta.Addr))
			}
			if phase.Meta.Reused {
				attrs = append(attrs, attribute.Bool("restpad.phase.reused", true))
			}
			if phase.Err != "" {
				attrs = append(attrs, attribute.String("restpad.phase.error", phase.Err))
			}
			rs.span.AddEvent(
				"restpad.phase."+string(phase.Kind),
				trace.WithTimestamp(phase.End),
				trace.WithAttributes(attrs...),
			)
		}
	}

	statusCode := codes.Ok
	statusMsg := "OK"
	switch {
	case result.Err != nil:
		rs.span.RecordError(result.Err)
		statusCode = codes.Error
		statusMsg = result.Err.Error()
	case result.StatusCode >= 400:
		statusCode = codes.Error
		statusMsg = fmt.Sprintf("HTTP %d", result.StatusCode)
	}

	rs.span.SetStatus(statusCode, statusMsg)
	rs.span.End()
}

func Noop() Instrumenter {
	return noopInstrumenter{}
}

type noopInstrumenter struct{}

type noopSpan struct{}

func (noopInstrumenter) Start(ctx context.Context, _ RequestStart) (context.Context, RequestSpan) {
	return ctx, noopSpan{}
}

func (noopInstrumenter) Shutdown(context.Context) error { return nil }

func (noopSpan) End(RequestResult) {}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("telemetry endpoint is required")
	}

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		clientOpts = append(clientOpts, otlptracegrpc.WithHeaders(cfg.Headers))
	}

	client := otlptracegrpc.NewClient(clientOpts...)
	return otlptrace.New(ctx, client)
}

func buildResourceAttributes(cfg Config) []attribute.KeyValue {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = defaultServiceName
	}
	attrs := []attribute.KeyValue{semconv.ServiceName(name)}
	if strings.TrimSpace(cfg.Version) != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.Version))
	}
	return attrs
}

func buildSpanAttributes(info RequestStart) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if info.ID != "" {
		attrs = append(attrs, attribute.String("restpad.request.id", info.ID))
	}

	if req := info.HTTPRequest; req != nil {
		if req.Method != "" {
			attrs = append(attrs, semconv.HTTPMethodKey.String(req.Method))
		}
		if req.URL != nil {
			if scheme := req.URL.Scheme; scheme != "" {
				attrs = append(attrs, semconv.HTTPSchemeKey.String(scheme))
			}
			if host := req.URL.Host; host != "" {
				attrs = append(attrs, httpHostKey.String(host))
			}
			if target := req.URL.RequestURI(); target != "" {
				attrs = append(attrs, semconv.HTTPTargetKey.String(target))
			}
			attrs = append(attrs, semconv.HTTPURLKey.String(req.URL.String()))
		}
	}

	if spec := info.Spec; spec != nil {
		if info.HTTPRequest == nil {
			attrs = append(attrs, semconv.HTTPMethodKey.String(spec.Method.String()))
			attrs = append(attrs, semconv.HTTPURLKey.String(spec.URL))
		}
		attrs = append(attrs,
			attribute.Int("restpad.request.params", len(spec.Params)),
			attribute.Int("restpad.request.headers", len(spec.Headers)),
			attribute.Bool("restpad.request.body", spec.SendsBody()),
		)
	}
	return attrs
}

func spanNameFor(info RequestStart) string {
	if req := info.HTTPRequest; req != nil && req.Method != "" {
		if req.URL != nil && req.URL.Host != "" {
			return fmt.Sprintf("%s %s", req.Method, req.URL.Host)
		}
		return req.Method
	}
	if info.Spec != nil {
		return info.Spec.Method.String()
	}
	return "http.request"
}
