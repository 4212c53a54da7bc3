package ui

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"github.com/unkn0wn-root/restpad/internal/bindings"
	"github.com/unkn0wn-root/restpad/internal/config"
	"github.com/unkn0wn-root/restpad/internal/form"
	"github.com/unkn0wn-root/restpad/internal/format"
	"github.com/unkn0wn-root/restpad/internal/httpclient"
	"github.com/unkn0wn-root/restpad/internal/theme"
)

var _ tea.Model = (*Model)(nil)

const (
	appTitle              = "HTTP Client"
	urlPlaceholder        = "Enter URL"
	paramKeyPlaceholder   = "Parameter name"
	headerKeyPlaceholder  = "Header name"
	valuePlaceholder      = "Value"
	noResponsePlaceholder = "No response yet"
)

type focusArea int

const (
	focusURL focusArea = iota
	focusRows
	focusBody
	focusRespHeaders
	focusRespBody
)

type requestTab int

const (
	tabParams requestTab = iota
	tabHeaders
	tabBody
)

var requestTabs = []requestTab{tabParams, tabHeaders, tabBody}

func (t requestTab) label() string {
	switch t {
	case tabParams:
		return "Params"
	case tabHeaders:
		return "Headers"
	default:
		return "Body"
	}
}

type Config struct {
	Form     *form.Form
	Client   *httpclient.Client
	Theme    *theme.Theme
	Bindings *bindings.Map
	Settings config.Settings
	Logger   zerolog.Logger
	// Clipboard overrides the system clipboard writer.
	Clipboard func(string) error
	// ColorProfile overrides terminal colour detection for body highlighting.
	ColorProfile *termenv.Profile
}

type rowEditor struct {
	key   textinput.Model
	value textinput.Model
}

type Model struct {
	cfg         Config
	form        *form.Form
	client      *httpclient.Client
	theme       theme.Theme
	bindingsMap *bindings.Map
	settings    config.Settings
	log         zerolog.Logger
	clipWrite   func(string) error
	profile     termenv.Profile

	urlInput    textinput.Model
	paramRows   []rowEditor
	headerRows  []rowEditor
	body        textarea.Model
	headersView viewport.Model
	bodyView    viewport.Model
	spinner     spinner.Model

	activeTab requestTab
	focus     focusArea
	rowIdx    int
	rowCol    int

	display    format.Display
	statusCode int
	elapsed    string
	timing     string

	sending    bool
	sendCancel context.CancelFunc

	statusMessage statusMsg

	width      int
	height     int
	leftWidth  int
	rightWidth int
	paneHeight int
	ready      bool
}

func New(cfg Config) Model {
	th := theme.DefaultTheme()
	if cfg.Theme != nil {
		th = *cfg.Theme
	}
	bm := cfg.Bindings
	if bm == nil {
		bm = bindings.DefaultMap()
	}
	f := cfg.Form
	if f == nil {
		f = form.New(cfg.Settings.Request.DefaultMethod)
	}
	client := cfg.Client
	if client == nil {
		client = httpclient.NewClient(httpclient.DefaultOptions())
	}
	clip := cfg.Clipboard
	if clip == nil {
		clip = clipboard.WriteAll
	}

	urlInput := textinput.New()
	urlInput.Prompt = ""
	urlInput.Placeholder = urlPlaceholder
	urlInput.SetValue(f.URL())
	urlInput.CursorEnd()

	body := textarea.New()
	body.ShowLineNumbers = false
	body.Prompt = ""
	body.CharLimit = 0
	body.MaxHeight = 0
	body.SetValue(f.Body())

	profile := lipgloss.ColorProfile()
	if cfg.ColorProfile != nil {
		profile = *cfg.ColorProfile
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = th.Spinner

	m := Model{
		cfg:         cfg,
		form:        f,
		client:      client,
		theme:       th,
		bindingsMap: bm,
		settings:    cfg.Settings,
		log:         cfg.Logger,
		clipWrite:   clip,
		profile:     profile,
		urlInput:    urlInput,
		body:        body,
		headersView: viewport.New(0, 0),
		bodyView:    viewport.New(0, 0),
		spinner:     spin,
		activeTab:   tabParams,
		focus:       focusURL,
	}
	m.paramRows = buildRowEditors(f.Params.Snapshot(), paramKeyPlaceholder)
	m.headerRows = buildRowEditors(f.Headers.Snapshot(), headerKeyPlaceholder)
	m.applyFocus()
	m.refreshResponseViews()
	return m
}

func buildRowEditors(rows []form.Row, keyPlaceholder string) []rowEditor {
	out := make([]rowEditor, 0, len(rows))
	for _, row := range rows {
		out = append(out, newRowEditor(row, keyPlaceholder))
	}
	return out
}

func newRowEditor(row form.Row, keyPlaceholder string) rowEditor {
	key := textinput.New()
	key.Prompt = ""
	key.Placeholder = keyPlaceholder
	key.SetValue(row.Key)

	value := textinput.New()
	value.Prompt = ""
	value.Placeholder = valuePlaceholder
	value.SetValue(row.Value)
	return rowEditor{key: key, value: value}
}

// Form exposes the backing form for callers that seed or inspect it.
func (m Model) Form() *form.Form {
	return m.form
}

func (m Model) Display() format.Display {
	return m.display
}

func (m Model) Sending() bool {
	return m.sending
}
