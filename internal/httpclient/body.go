package httpclient

import (
	"bytes"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// decodeText turns a response body into display text. A charset declared in
// contentType is honoured; otherwise the body is treated as UTF-8. Invalid
// sequences become U+FFFD rather than failing the request.
func decodeText(raw []byte, contentType string) string {
	if len(raw) == 0 {
		return ""
	}
	label := declaredCharset(contentType)
	if label == "" || isUTF8Label(label) {
		return toValidUTF8(raw)
	}

	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return toValidUTF8(raw)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return toValidUTF8(raw)
	}
	return toValidUTF8(decoded)
}

func declaredCharset(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(params["charset"]))
}

func isUTF8Label(label string) bool {
	return label == "utf-8" || label == "utf8"
}

func toValidUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "�")
}
