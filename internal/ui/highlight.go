package ui

import (
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/muesli/termenv"
)

const highlightStyle = "monokai"

// formatterFor maps the terminal colour profile to a chroma formatter name.
// An empty name means the terminal cannot show colour.
func formatterFor(profile termenv.Profile) string {
	switch profile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal"
	default:
		return ""
	}
}

// highlightJSON colours an already indented JSON document for the terminal.
// Any lexer or formatter failure returns the input unchanged.
func highlightJSON(src string, profile termenv.Profile) string {
	name := formatterFor(profile)
	if name == "" {
		return src
	}
	lexer := lexers.Get("json")
	if lexer == nil {
		return src
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get(name)
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		return src
	}
	var out strings.Builder
	if err := formatter.Format(&out, style, iterator); err != nil {
		return src
	}
	return out.String()
}
