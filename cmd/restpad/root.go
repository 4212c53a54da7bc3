package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/unkn0wn-root/restpad/internal/bindings"
	"github.com/unkn0wn-root/restpad/internal/config"
	"github.com/unkn0wn-root/restpad/internal/httpclient"
	"github.com/unkn0wn-root/restpad/internal/logging"
	"github.com/unkn0wn-root/restpad/internal/telemetry"
	"github.com/unkn0wn-root/restpad/internal/theme"
	"github.com/unkn0wn-root/restpad/internal/ui"
)

type rootOptions struct {
	method       string
	headers      []string
	params       []string
	data         string
	timeout      time.Duration
	follow       bool
	proxy        string
	encodeQuery  bool
	logLevel     string
	logFile      string
	otelEndpoint string
	otelInsecure bool
	otelService  string
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&rootOptions{})
}

func newRootCmdWith(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restpad [url]",
		Short: "Interactive terminal HTTP client",
		Long: heredoc.Doc(`
			restpad is a single-screen HTTP client for the terminal. Pick a method,
			type a URL, fill in query parameters, headers and a body, then send the
			request and read the status, headers and pretty-printed body.

			Settings, key bindings and the theme live in the config directory
			(see "restpad config path").
		`),
		Example: heredoc.Doc(`
			restpad
			restpad httpbin.org/get -q page=2
			restpad -X POST api.example.com/items -H "Content-Type: application/json" -d '{"name":"x"}'
		`),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.method, "method", "X", "GET", "Initial request method (GET, POST, PUT, DELETE, PATCH)")
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, `Header row as "Key: Value" (repeatable)`)
	flags.StringArrayVarP(&opts.params, "param", "q", nil, `Query parameter row as "key=value" (repeatable)`)
	flags.StringVarP(&opts.data, "data", "d", "", "Initial request body")
	flags.DurationVar(&opts.timeout, "timeout", config.DefaultTimeout, "Request timeout (0 disables)")
	flags.BoolVar(&opts.follow, "follow", true, "Follow redirects")
	flags.StringVar(&opts.proxy, "proxy", "", "HTTP proxy URL")
	flags.BoolVar(&opts.encodeQuery, "encode-query", false, "Percent-encode query parameter keys and values")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFile, "log-file", "", "Log file path")
	flags.StringVar(&opts.otelEndpoint, "trace-otel-endpoint", "", "OTLP collector endpoint for request spans")
	flags.BoolVar(&opts.otelInsecure, "trace-otel-insecure", false, "Disable TLS for OTLP trace export")
	flags.StringVar(&opts.otelService, "trace-otel-service", "", "Service name reported with request spans")

	cmd.AddCommand(newVersionCmd(), newConfigCmd())
	return cmd
}

// applySettings layers explicitly set flags over the loaded settings.
func (o *rootOptions) applySettings(flags *pflag.FlagSet, settings *config.Settings) {
	if flags.Changed("timeout") {
		settings.Request.Timeout = config.Duration(o.timeout)
	}
	if flags.Changed("follow") {
		settings.Request.FollowRedirects = o.follow
	}
	if flags.Changed("proxy") {
		settings.Request.Proxy = strings.TrimSpace(o.proxy)
	}
	if flags.Changed("encode-query") {
		settings.Request.EncodeQuery = o.encodeQuery
	}
	if flags.Changed("method") {
		settings.Request.DefaultMethod = o.method
	}
	if flags.Changed("log-level") {
		settings.Log.Level = o.logLevel
	}
	if flags.Changed("log-file") {
		settings.Log.File = o.logFile
	}
}

func (o *rootOptions) telemetryConfig(flags *pflag.FlagSet) telemetry.Config {
	cfg := telemetry.ConfigFromEnv(os.Getenv)
	if flags.Changed("trace-otel-endpoint") {
		cfg.Endpoint = strings.TrimSpace(o.otelEndpoint)
	}
	if flags.Changed("trace-otel-insecure") {
		cfg.Insecure = o.otelInsecure
	}
	if flags.Changed("trace-otel-service") {
		cfg.ServiceName = strings.TrimSpace(o.otelService)
	}
	cfg.Version = version
	return cfg
}

func runTUI(cmd *cobra.Command, args []string, opts *rootOptions) error {
	if opts.timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	settings, handle, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	opts.applySettings(cmd.Flags(), &settings)

	logger, closer, err := logging.New(settings.Log)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() {
		_ = closer.Close()
	}()
	logger.Info().
		Str("version", version).
		Str("settings", handle.Path).
		Msg("starting restpad")

	var url string
	if len(args) > 0 {
		url = args[0]
	}
	f, err := buildForm(prefill{
		method:  settings.Request.DefaultMethod,
		url:     url,
		headers: opts.headers,
		params:  opts.params,
		body:    opts.data,
	})
	if err != nil {
		return err
	}

	dir := config.Dir()
	bindingMap, bindingSrc, err := bindings.Load(dir)
	if err != nil {
		return fmt.Errorf("load bindings: %w", err)
	}
	logger.Debug().Str("path", bindingSrc.Path).Msg("bindings loaded")

	th, themeSrc, err := theme.Load(dir)
	if err != nil {
		logger.Warn().Err(err).Msg("theme load failed, using default")
	} else if themeSrc.Path != "" {
		logger.Debug().Str("path", themeSrc.Path).Msg("theme loaded")
	}

	client := httpclient.NewClient(httpclient.Options{
		Timeout:         settings.Request.Timeout.Std(),
		FollowRedirects: settings.Request.FollowRedirects,
		ProxyURL:        settings.Request.Proxy,
	})
	client.SetLogger(logger)

	shutdown := setupTelemetry(client, opts.telemetryConfig(cmd.Flags()), logger)
	defer shutdown()

	model := ui.New(ui.Config{
		Form:     f,
		Client:   client,
		Theme:    &th,
		Bindings: bindingMap,
		Settings: settings,
		Logger:   logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Error().Err(err).Msg("ui exited with error")
		return fmt.Errorf("run ui: %w", err)
	}
	logger.Info().Msg("restpad exited")
	return nil
}

func setupTelemetry(client *httpclient.Client, cfg telemetry.Config, logger zerolog.Logger) func() {
	provider, err := telemetry.New(cfg)
	if err != nil {
		if cfg.Enabled() {
			logger.Warn().Err(err).Str("endpoint", cfg.Endpoint).Msg("telemetry init failed")
		}
		return func() {}
	}
	client.SetTelemetry(provider)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown")
		}
	}
}
