package telemetry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	envEndpoint    = "RESTPAD_OTEL_ENDPOINT"
	envInsecure    = "RESTPAD_OTEL_INSECURE"
	envService     = "RESTPAD_OTEL_SERVICE"
	envDialTimeout = "RESTPAD_OTEL_DIAL_TIMEOUT"
	envHeaders     = "RESTPAD_OTEL_HEADERS"

	defaultServiceName = "restpad"
)

// Config controls span export. Export is disabled while Endpoint is empty.
type Config struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
	Version     string
	DialTimeout time.Duration
	Headers     map[string]string
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// ConfigFromEnv reads the RESTPAD_OTEL_* variables through getenv. Malformed
// values are ignored so a bad environment never prevents startup.
func ConfigFromEnv(getenv func(string) string) Config {
	cfg := Config{ServiceName: defaultServiceName}
	if getenv == nil {
		return cfg
	}
	cfg.Endpoint = strings.TrimSpace(getenv(envEndpoint))
	if raw := strings.TrimSpace(getenv(envInsecure)); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			cfg.Insecure = b
		}
	}
	if svc := strings.TrimSpace(getenv(envService)); svc != "" {
		cfg.ServiceName = svc
	}
	if raw := strings.TrimSpace(getenv(envDialTimeout)); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.DialTimeout = d
		}
	}
	if headers, err := ParseHeaders(getenv(envHeaders)); err == nil {
		cfg.Headers = headers
	}
	return cfg
}

// ParseHeaders parses "k=v, k2=v2" into a map. Blank input yields nil.
func ParseHeaders(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header pair %q", part)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}
