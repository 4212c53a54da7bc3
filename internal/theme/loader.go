package theme

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	toml "github.com/pelletier/go-toml/v2"
)

type Format string

const (
	FormatBuiltin Format = "builtin"
	FormatJSON    Format = "json"
	FormatTOML    Format = "toml"
)

// Source records which file, if any, produced the active theme.
type Source struct {
	Path   string
	Format Format
}

// Palette is the user-editable subset of the theme. Empty fields keep the
// built-in colour.
type Palette struct {
	Accent  string            `json:"accent"  toml:"accent"`
	Border  string            `json:"border"  toml:"border"`
	Text    string            `json:"text"    toml:"text"`
	Muted   string            `json:"muted"   toml:"muted"`
	Success string            `json:"success" toml:"success"`
	Error   string            `json:"error"   toml:"error"`
	Methods map[string]string `json:"methods" toml:"methods"`
}

// Load reads theme.toml or theme.json from dir and layers it over the
// default theme. A missing file is not an error.
func Load(dir string) (Theme, Source, error) {
	base := DefaultTheme()
	if strings.TrimSpace(dir) == "" {
		return base, Source{Format: FormatBuiltin}, nil
	}
	candidates := []Source{
		{Path: filepath.Join(dir, "theme.toml"), Format: FormatTOML},
		{Path: filepath.Join(dir, "theme.json"), Format: FormatJSON},
	}
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return base, Source{}, fmt.Errorf("theme: read %q: %w", candidate.Path, err)
		}
		palette, err := decodePalette(data, candidate.Format)
		if err != nil {
			return base, Source{}, fmt.Errorf("theme: decode %q: %w", candidate.Path, err)
		}
		themed, err := ApplyPalette(base, palette)
		if err != nil {
			return base, Source{}, fmt.Errorf("theme: apply %q: %w", candidate.Path, err)
		}
		return themed, candidate, nil
	}
	return base, Source{Format: FormatBuiltin}, nil
}

func decodePalette(data []byte, format Format) (Palette, error) {
	var p Palette
	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&p); err != nil {
			return Palette{}, err
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &p); err != nil {
			return Palette{}, err
		}
	default:
		return Palette{}, fmt.Errorf("unsupported format %q", format)
	}
	return p, nil
}

// ApplyPalette returns base with the non-empty palette colours applied.
func ApplyPalette(base Theme, p Palette) (Theme, error) {
	t := base
	var errs error
	set := func(name, raw string, apply func(lipgloss.Color)) {
		if strings.TrimSpace(raw) == "" {
			return
		}
		c, err := parseColor(raw)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		apply(c)
	}

	set("accent", p.Accent, func(c lipgloss.Color) {
		t.PaneBorderFocus = t.PaneBorderFocus.BorderForeground(c)
		t.TabActive = t.TabActive.Background(c)
		t.Spinner = t.Spinner.Foreground(c)
	})
	set("border", p.Border, func(c lipgloss.Color) {
		t.PaneBorder = t.PaneBorder.BorderForeground(c)
	})
	set("text", p.Text, func(c lipgloss.Color) {
		t.ResponseBody = t.ResponseBody.Foreground(c)
		t.StatusBarValue = t.StatusBarValue.Foreground(c)
	})
	set("muted", p.Muted, func(c lipgloss.Color) {
		t.Muted = t.Muted.Foreground(c)
		t.RowExcluded = t.RowExcluded.Foreground(c)
		t.TabInactive = t.TabInactive.Foreground(c)
	})
	set("success", p.Success, func(c lipgloss.Color) {
		t.StatusSuccess = t.StatusSuccess.Foreground(c)
		t.RowIncluded = t.RowIncluded.Foreground(c)
	})
	set("error", p.Error, func(c lipgloss.Color) {
		t.StatusError = t.StatusError.Foreground(c)
		t.Error = t.Error.Foreground(c)
	})
	for method, raw := range p.Methods {
		name := "methods." + method
		switch strings.ToUpper(strings.TrimSpace(method)) {
		case "GET":
			set(name, raw, func(c lipgloss.Color) { t.MethodColors.GET = c })
		case "POST":
			set(name, raw, func(c lipgloss.Color) { t.MethodColors.POST = c })
		case "PUT":
			set(name, raw, func(c lipgloss.Color) { t.MethodColors.PUT = c })
		case "PATCH":
			set(name, raw, func(c lipgloss.Color) { t.MethodColors.PATCH = c })
		case "DELETE":
			set(name, raw, func(c lipgloss.Color) { t.MethodColors.DELETE = c })
		case "DEFAULT":
			set(name, raw, func(c lipgloss.Color) { t.MethodColors.Default = c })
		default:
			errs = errors.Join(errs, fmt.Errorf("%s: unknown method", name))
		}
	}
	if errs != nil {
		return base, errs
	}
	return t, nil
}

// parseColor accepts #rgb, #rrggbb or an ANSI palette index.
func parseColor(raw string) (lipgloss.Color, error) {
	v := strings.TrimSpace(raw)
	if strings.HasPrefix(v, "#") {
		hex := v[1:]
		if len(hex) != 3 && len(hex) != 6 {
			return "", fmt.Errorf("invalid hex colour %q", raw)
		}
		for _, r := range hex {
			if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
				return "", fmt.Errorf("invalid hex colour %q", raw)
			}
		}
		return lipgloss.Color(v), nil
	}
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid colour %q", raw)
		}
		n = n*10 + int(r-'0')
		if n > 255 {
			return "", fmt.Errorf("ansi colour %q out of range", raw)
		}
	}
	return lipgloss.Color(v), nil
}
