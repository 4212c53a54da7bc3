package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/unkn0wn-root/restpad/internal/bindings"
	"github.com/unkn0wn-root/restpad/internal/config"
	"github.com/unkn0wn-root/restpad/internal/form"
)

const (
	chromeRows      = 2
	minPaneWidth    = 24
	minPaneHeight   = 8
	methodBadgeCols = 8
	rowMarkerCols   = 4
	minSectionRows  = 3
)

var hintActions = []bindings.ActionID{
	bindings.ActionSendRequest,
	bindings.ActionCycleMethod,
	bindings.ActionNextTab,
	bindings.ActionAddRow,
	bindings.ActionToggleRow,
	bindings.ActionCopyBody,
	bindings.ActionCancelRequest,
	bindings.ActionQuit,
}

func (m *Model) applyLayout() {
	if !m.ready {
		return
	}
	layout := config.NormaliseLayoutSettings(m.settings.Layout)

	m.paneHeight = maxInt(m.height-chromeRows, minPaneHeight)
	left := int(float64(m.width) * layout.RequestSplit)
	if m.width >= 2*minPaneWidth {
		left = clampInt(left, minPaneWidth, m.width-minPaneWidth)
	}
	m.leftWidth = maxInt(left, 1)
	m.rightWidth = maxInt(m.width-m.leftWidth, 1)

	titleCols := runewidth.StringWidth(appTitle) + 2
	sendCols := runewidth.StringWidth(m.sendHint()) + 4
	m.urlInput.Width = maxInt(m.width-titleCols-methodBadgeCols-sendCols, 10)

	innerLeft := maxInt(m.leftWidth-2, 1)
	half := maxInt((innerLeft-rowMarkerCols-1)/2, 4)
	for _, editors := range []*[]rowEditor{&m.paramRows, &m.headerRows} {
		for i := range *editors {
			(*editors)[i].key.Width = half - 1
			(*editors)[i].value.Width = half - 1
		}
	}
	m.body.SetWidth(innerLeft)
	m.body.SetHeight(maxInt(m.paneHeight-3, 1))

	innerRight := maxInt(m.rightWidth-2, 1)
	avail := m.paneHeight - 1
	headersRows := maxInt(int(float64(avail)*layout.HeadersHeight), minSectionRows)
	bodyRows := maxInt(avail-headersRows, minSectionRows)
	m.headersView.Width = innerRight
	m.headersView.Height = maxInt(headersRows-2, 1)
	m.bodyView.Width = innerRight
	m.bodyView.Height = maxInt(bodyRows-2, 1)
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	top := m.renderTopBar()
	panes := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderRequestPane(),
		m.renderResponsePane(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, top, panes, m.renderStatusBar())
}

func (m Model) renderTopBar() string {
	method := m.form.Method()
	badge := m.theme.MethodBadge.
		Foreground(lipgloss.Color("#0F111A")).
		Background(m.theme.MethodColor(method)).
		Width(methodBadgeCols - 1).
		Render(method)
	title := m.theme.AppTitle.Render(appTitle)

	right := m.theme.Muted.Render(m.sendHint())
	if m.sending {
		right = m.spinner.View() + " " + m.theme.Muted.Render("sending")
	}
	line := lipgloss.JoinHorizontal(lipgloss.Center, title, " ", badge, " ", m.urlInput.View(), "  ", right)
	return ansi.Truncate(line, m.width, "…")
}

func (m Model) sendHint() string {
	key := m.bindingsMap.Primary(bindings.ActionSendRequest)
	if key == "" {
		return ""
	}
	return key + " " + bindings.Label(bindings.ActionSendRequest)
}

func (m Model) renderRequestPane() string {
	inner := maxInt(m.leftWidth-2, 1)
	height := maxInt(m.paneHeight-2, 1)

	var content string
	switch m.activeTab {
	case tabBody:
		content = m.body.View()
	case tabHeaders:
		content = m.renderRows(m.form.Headers, m.headerRows, inner, height-1)
	default:
		content = m.renderRows(m.form.Params, m.paramRows, inner, height-1)
	}

	style := m.theme.PaneBorder
	if m.focus == focusRows || m.focus == focusBody {
		style = m.theme.PaneBorderFocus
	}
	return style.Width(inner).Height(height).Render(m.renderTabs(inner) + "\n" + content)
}

func (m Model) renderTabs(width int) string {
	parts := make([]string, 0, len(requestTabs))
	for _, tab := range requestTabs {
		label := tab.label()
		if tab == m.activeTab {
			parts = append(parts, m.theme.TabActive.Render(label))
			continue
		}
		parts = append(parts, m.theme.TabInactive.Render(label))
	}
	return ansi.Truncate(m.theme.Tabs.Render(strings.Join(parts, " ")), width, "")
}

func (m Model) renderRows(rows *form.Rows, editors []rowEditor, width, height int) string {
	visible := maxInt(height, 1)
	start := 0
	if m.focus == focusRows && m.rowIdx >= visible {
		start = m.rowIdx - visible + 1
	}

	lines := make([]string, 0, visible)
	for i := start; i < len(editors) && len(lines) < visible; i++ {
		row, ok := rows.At(i)
		if !ok {
			break
		}
		marker := m.theme.RowIncluded.Render("[x]")
		if !row.Included {
			marker = m.theme.RowExcluded.Render("[ ]")
		}
		line := marker + " " + editors[i].key.View() + " " + editors[i].value.View()
		lines = append(lines, ansi.Truncate(line, width, ""))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderResponsePane() string {
	inner := maxInt(m.rightWidth-2, 1)

	status := m.theme.Muted.Render(noResponsePlaceholder)
	if m.display.Status != "" {
		status = m.theme.StatusStyle(m.statusCode).Render(m.display.Status)
		if m.elapsed != "" {
			status += " " + m.theme.Muted.Render(m.elapsed)
		}
		if m.timing != "" {
			status += " " + m.theme.Muted.Render("("+m.timing+")")
		}
	}
	status = ansi.Truncate(status, m.rightWidth, "…")

	headersStyle := m.theme.PaneBorder
	if m.focus == focusRespHeaders {
		headersStyle = m.theme.PaneBorderFocus
	}
	bodyStyle := m.theme.PaneBorder
	if m.focus == focusRespBody {
		bodyStyle = m.theme.PaneBorderFocus
	}
	headers := headersStyle.Width(inner).Height(m.headersView.Height).Render(m.headersView.View())
	body := bodyStyle.Width(inner).Height(m.bodyView.Height).Render(m.bodyView.View())
	return lipgloss.JoinVertical(lipgloss.Left, status, headers, body)
}

func (m Model) renderStatusBar() string {
	text := m.statusMessage.text
	var left string
	switch m.statusMessage.level {
	case statusError:
		left = m.theme.Error.Render(text)
	case statusSuccess:
		left = m.theme.StatusSuccess.Render(text)
	case statusWarn:
		left = m.theme.StatusClientErr.Render(text)
	default:
		left = m.theme.StatusBarValue.Render(text)
	}

	hints := make([]string, 0, len(hintActions))
	for _, action := range hintActions {
		key := m.bindingsMap.Primary(action)
		if key == "" {
			continue
		}
		hints = append(hints, fmt.Sprintf("%s %s",
			m.theme.StatusBarKey.Render(key),
			m.theme.Muted.Render(bindings.Label(action)),
		))
	}
	right := strings.Join(hints, "  ")

	gap := m.width - ansi.StringWidth(left) - ansi.StringWidth(right) - 2
	if gap < 1 {
		return m.theme.StatusBar.Render(ansi.Truncate(left, maxInt(m.width-2, 0), "…"))
	}
	return m.theme.StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
