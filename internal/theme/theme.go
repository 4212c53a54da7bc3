package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type MethodColors struct {
	GET     lipgloss.Color
	POST    lipgloss.Color
	PUT     lipgloss.Color
	PATCH   lipgloss.Color
	DELETE  lipgloss.Color
	Default lipgloss.Color
}

type Theme struct {
	AppTitle        lipgloss.Style
	PaneBorder      lipgloss.Style
	PaneBorderFocus lipgloss.Style
	PaneTitle       lipgloss.Style
	MethodBadge     lipgloss.Style
	Tabs            lipgloss.Style
	TabActive       lipgloss.Style
	TabInactive     lipgloss.Style
	RowIncluded     lipgloss.Style
	RowExcluded     lipgloss.Style
	StatusSuccess   lipgloss.Style
	StatusRedirect  lipgloss.Style
	StatusClientErr lipgloss.Style
	StatusError     lipgloss.Style
	ResponseHeaders lipgloss.Style
	ResponseBody    lipgloss.Style
	StatusBar       lipgloss.Style
	StatusBarKey    lipgloss.Style
	StatusBarValue  lipgloss.Style
	Notification    lipgloss.Style
	Error           lipgloss.Style
	Muted           lipgloss.Style
	Spinner         lipgloss.Style
	MethodColors    MethodColors
}

func DefaultTheme() Theme {
	accent := lipgloss.Color("#7D56F4")
	base := lipgloss.NewStyle().Foreground(lipgloss.Color("#dcd7ff"))

	return Theme{
		AppTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1020")).
			Background(lipgloss.Color("#FBC859")).
			Bold(true).
			Padding(0, 1),
		PaneBorder: base.BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#403B59")),
		PaneBorderFocus: base.BorderStyle(lipgloss.RoundedBorder()).BorderForeground(accent),
		PaneTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6A1BB")).
			Bold(true),
		MethodBadge: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Tabs:        lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")).Padding(0, 1),
		TabActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FDFBFF")).
			Background(accent).
			Bold(true).
			Padding(0, 2),
		TabInactive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5E5A72")).
			Padding(0, 1),
		RowIncluded:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6EF17E")),
		RowExcluded:     lipgloss.NewStyle().Foreground(lipgloss.Color("#5E5A72")),
		StatusSuccess:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6EF17E")).Bold(true),
		StatusRedirect:  lipgloss.NewStyle().Foreground(lipgloss.Color("#56A9DD")).Bold(true),
		StatusClientErr: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB61E")).Bold(true),
		StatusError:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6E6E")).Bold(true),
		ResponseHeaders: lipgloss.NewStyle().Foreground(lipgloss.Color("#C7C4E0")),
		ResponseBody:    lipgloss.NewStyle().Foreground(lipgloss.Color("#E6E1FF")),
		StatusBar:       lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")).Padding(0, 1),
		StatusBarKey:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8B39")).Bold(true),
		StatusBarValue:  lipgloss.NewStyle().Foreground(lipgloss.Color("#EAEAEA")),
		Notification: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E0DEF4")).
			Background(lipgloss.Color("#433C59")).
			Padding(0, 1),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6E6E")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6A86")),
		Spinner: lipgloss.NewStyle().Foreground(accent),
		MethodColors: MethodColors{
			GET:     lipgloss.Color("#34d399"),
			POST:    lipgloss.Color("#60a5fa"),
			PUT:     lipgloss.Color("#f59e0b"),
			PATCH:   lipgloss.Color("#14b8a6"),
			DELETE:  lipgloss.Color("#f87171"),
			Default: lipgloss.Color("#9ca3af"),
		},
	}
}

// MethodColor picks the badge colour for an HTTP method name.
func (t Theme) MethodColor(method string) lipgloss.Color {
	switch strings.ToUpper(method) {
	case "GET":
		return t.MethodColors.GET
	case "POST":
		return t.MethodColors.POST
	case "PUT":
		return t.MethodColors.PUT
	case "PATCH":
		return t.MethodColors.PATCH
	case "DELETE":
		return t.MethodColors.DELETE
	default:
		return t.MethodColors.Default
	}
}

// StatusStyle selects the status-line style for a response code. Zero means
// the exchange failed before a status arrived.
func (t Theme) StatusStyle(code int) lipgloss.Style {
	switch {
	case code <= 0 || code >= 500:
		return t.StatusError
	case code >= 400:
		return t.StatusClientErr
	case code >= 300:
		return t.StatusRedirect
	default:
		return t.StatusSuccess
	}
}
