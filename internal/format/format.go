// Package format turns a dispatch outcome into the three read-only display
// strings: status line, headers block and body block.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/unkn0wn-root/restpad/internal/httpclient"
)

const (
	errorStatus = "Error"
	indent      = "  "
)

type Display struct {
	Status  string
	Headers string
	Body    string
	// JSON reports whether Body holds re-indented JSON.
	JSON bool
	// Failed is set when the display came from a transport failure.
	Failed bool
}

// Render builds the display for outcome. A failure keeps prev.Headers, since
// a failed exchange produces no headers to show.
func Render(outcome httpclient.Outcome, prev Display) Display {
	switch o := outcome.(type) {
	case *httpclient.Success:
		body, isJSON := PrettyBody(o.Body)
		return Display{
			Status:  StatusLine(o.StatusCode, o.Reason),
			Headers: HeaderLines(o.Headers),
			Body:    body,
			JSON:    isJSON,
		}
	case *httpclient.Failure:
		return Display{
			Status:  errorStatus,
			Headers: prev.Headers,
			Body:    "Error: " + o.Description,
			Failed:  true,
		}
	default:
		return Display{
			Status:  errorStatus,
			Headers: prev.Headers,
			Body:    "Error: unknown outcome",
			Failed:  true,
		}
	}
}

func StatusLine(code int, reason string) string {
	return fmt.Sprintf("Status: %d %s", code, reason)
}

// HeaderLines renders one "key: value" line per header value, ordered by
// header name. Values that are not printable text render as empty strings.
func HeaderLines(h http.Header) string {
	if len(h) == 0 {
		return ""
	}
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range h[k] {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(displayValue(v))
		}
	}
	return b.String()
}

func displayValue(v string) string {
	if !utf8.ValidString(v) {
		return ""
	}
	for _, r := range v {
		if r != '\t' && unicode.IsControl(r) {
			return ""
		}
	}
	return v
}

// PrettyBody re-indents body when it parses as a single JSON value and
// returns it unchanged otherwise. Object keys come out sorted and numbers
// keep their original text.
func PrettyBody(body string) (string, bool) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return body, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return body, false
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(value); err != nil {
		return body, false
	}
	return strings.TrimSuffix(buf.String(), "\n"), true
}
