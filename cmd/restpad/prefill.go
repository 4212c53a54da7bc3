package main

import (
	"fmt"
	"strings"

	"github.com/unkn0wn-root/restpad/internal/form"
	"github.com/unkn0wn-root/restpad/internal/request"
)

type prefill struct {
	method  string
	url     string
	headers []string
	params  []string
	body    string
}

// buildForm seeds a form from command line input. Every collection keeps a
// trailing blank row for the user to type into.
func buildForm(p prefill) (*form.Form, error) {
	f := form.New(request.ParseMethod(p.method).String())
	f.SetURL(strings.TrimSpace(p.url))
	f.SetBody(p.body)

	headerRows := make([]form.Row, 0, len(p.headers)+1)
	for _, raw := range p.headers {
		key, value, err := parseHeaderFlag(raw)
		if err != nil {
			return nil, err
		}
		headerRows = append(headerRows, form.Row{Included: true, Key: key, Value: value})
	}
	f.Headers = form.RowsFrom(append(headerRows, form.NewRow()))

	paramRows := make([]form.Row, 0, len(p.params)+1)
	for _, raw := range p.params {
		key, value := parseParamFlag(raw)
		paramRows = append(paramRows, form.Row{Included: true, Key: key, Value: value})
	}
	f.Params = form.RowsFrom(append(paramRows, form.NewRow()))
	return f, nil
}

func parseHeaderFlag(raw string) (string, string, error) {
	key, value, ok := strings.Cut(raw, ":")
	if !ok {
		return "", "", fmt.Errorf("header %q: expected \"Key: Value\"", raw)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", fmt.Errorf("header %q: empty name", raw)
	}
	return key, strings.TrimLeft(value, " \t"), nil
}

// parseParamFlag splits key=value. A missing '=' yields an empty value.
func parseParamFlag(raw string) (string, string) {
	key, value, _ := strings.Cut(raw, "=")
	return key, value
}
