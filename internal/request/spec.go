package request

import (
	"github.com/unkn0wn-root/restpad/internal/form"
)

// Spec is the fully assembled description of one outgoing request.
type Spec struct {
	Method  Method
	URL     string
	Params  []form.Pair
	Headers map[string]string
	Body    string
}

type BuildOptions struct {
	// EscapeQuery percent-encodes param keys and values. Off by default so
	// values are sent exactly as typed.
	EscapeQuery bool
}

// Build assembles a Spec from the form state read at send time.
func Build(snap form.Snapshot, opts BuildOptions) Spec {
	params := form.Effective(snap.Params)
	return Spec{
		Method:  ParseMethod(snap.Method),
		URL:     AppendQuery(NormalizeURL(snap.URL), params, opts.EscapeQuery),
		Params:  params,
		Headers: HeaderMap(form.Effective(snap.Headers)),
		Body:    snap.Body,
	}
}

// SendsBody reports whether the body is transmitted: never for GET, and only
// when non-empty otherwise.
func (s Spec) SendsBody() bool {
	return s.Method.AllowsBody() && s.Body != ""
}
