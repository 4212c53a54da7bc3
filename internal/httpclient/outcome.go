package httpclient

import (
	"net/http"
	"time"

	"github.com/unkn0wn-root/restpad/internal/nettrace"
)

// Outcome is the result of one dispatch: either *Success or *Failure.
type Outcome interface {
	outcome()
}

type Success struct {
	StatusCode int
	// Reason is the canonical reason phrase for StatusCode, empty when none
	// is defined.
	Reason   string
	Headers  http.Header
	Body     string
	Duration time.Duration
	// EffectiveURL is the URL of the final request after redirects.
	EffectiveURL string
	// Timeline holds connection phase timings; nil when none were observed.
	Timeline *nettrace.Timeline
}

type Failure struct {
	Description string
	Duration    time.Duration
}

func (*Success) outcome() {}
func (*Failure) outcome() {}

func newFailure(err error, dur time.Duration) *Failure {
	desc := "request failed"
	if err != nil && err.Error() != "" {
		desc = err.Error()
	}
	return &Failure{Description: desc, Duration: dur}
}
