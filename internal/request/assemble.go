package request

import (
	"net/url"
	"strings"

	"github.com/unkn0wn-root/restpad/internal/form"
)

const defaultScheme = "https://"

// NormalizeURL prepends https:// unless raw already starts with http:// or
// https://. The check is case-sensitive and nothing else is validated or trimmed.
func NormalizeURL(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return defaultScheme + raw
}

// EncodeQuery joins params as key=value segments separated by '&'. With
// escape false keys and values are concatenated verbatim.
func EncodeQuery(params []form.Pair, escape bool) string {
	if len(params) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		if escape {
			b.WriteString(url.QueryEscape(p.Key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(p.Value))
			continue
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

// AppendQuery attaches the encoded params to target, using '&' when target
// already has a query. An empty param list leaves target untouched.
func AppendQuery(target string, params []form.Pair, escape bool) string {
	query := EncodeQuery(params, escape)
	if query == "" {
		return target
	}
	if strings.Contains(target, "?") {
		return target + "&" + query
	}
	return target + "?" + query
}

// HeaderMap builds the header mapping from effective header rows. Later rows
// overwrite earlier ones with the same key; keys are kept exactly as typed.
func HeaderMap(headers []form.Pair) map[string]string {
	out := make(map[string]string, len(headers))
	for _, h := range headers {
		out[h.Key] = h.Value
	}
	return out
}
