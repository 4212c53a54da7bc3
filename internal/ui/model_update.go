package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/restpad/internal/bindings"
	"github.com/unkn0wn-root/restpad/internal/form"
	"github.com/unkn0wn-root/restpad/internal/request"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.SetWindowTitle(appTitle))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.ready = true
		m.applyLayout()
	case tea.KeyMsg:
		if cmd := m.handleKey(typed); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case responseMsg:
		m.handleResponse(typed)
	case statusMsg:
		m.setStatusMessage(typed)
	case spinner.TickMsg:
		if m.sending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(typed)
			cmds = append(cmds, cmd)
		}
	default:
		if cmd := m.updateFocused(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return m, batchCmds(cmds)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := bindings.NormalizeKeyString(msg.String())
	if binding, ok := m.bindingsMap.Match(key); ok {
		return m.runAction(binding.Action)
	}
	return m.updateFocused(msg)
}

func (m *Model) runAction(action bindings.ActionID) tea.Cmd {
	switch action {
	case bindings.ActionSendRequest:
		return m.startSend()
	case bindings.ActionCancelRequest:
		if m.sending {
			m.cancelInFlightSend("Canceling request...")
		}
		return nil
	case bindings.ActionQuit:
		m.cancelInFlightSend("")
		return tea.Quit
	case bindings.ActionCycleMethod:
		next := request.ParseMethod(m.form.Method()).Next()
		m.form.SetMethod(next.String())
		return nil
	case bindings.ActionNextTab:
		return m.switchTab(1)
	case bindings.ActionPrevTab:
		return m.switchTab(-1)
	case bindings.ActionAddRow:
		return m.addRow()
	case bindings.ActionToggleRow:
		m.toggleRow()
		return nil
	case bindings.ActionFocusNext:
		return m.moveFocus(1)
	case bindings.ActionFocusPrev:
		return m.moveFocus(-1)
	case bindings.ActionCopyBody:
		return m.copyToClipboard("body", m.display.Body)
	case bindings.ActionCopyHeaders:
		return m.copyToClipboard("headers", m.display.Headers)
	default:
		return nil
	}
}

// updateFocused forwards msg to the focused widget and writes any edit back
// into the form.
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusURL:
		m.urlInput, cmd = m.urlInput.Update(msg)
		m.form.SetURL(m.urlInput.Value())
	case focusRows:
		editors := m.activeEditors()
		rows := m.activeRows()
		if editors == nil || rows == nil || m.rowIdx >= len(*editors) {
			return nil
		}
		ed := &(*editors)[m.rowIdx]
		if m.rowCol == 0 {
			ed.key, cmd = ed.key.Update(msg)
			m.writeRow(rows.SetKey(m.rowIdx, ed.key.Value()))
		} else {
			ed.value, cmd = ed.value.Update(msg)
			m.writeRow(rows.SetValue(m.rowIdx, ed.value.Value()))
		}
	case focusBody:
		m.body, cmd = m.body.Update(msg)
		m.form.SetBody(m.body.Value())
	case focusRespHeaders:
		m.headersView, cmd = m.headersView.Update(msg)
	case focusRespBody:
		m.bodyView, cmd = m.bodyView.Update(msg)
	}
	return cmd
}

func (m *Model) writeRow(err error) {
	if err != nil {
		m.log.Warn().Err(err).Int("row", m.rowIdx).Msg("row edit rejected")
		m.setStatusMessage(statusMsg{text: err.Error(), level: statusError})
	}
}

func (m *Model) activeRows() *form.Rows {
	switch m.activeTab {
	case tabParams:
		return m.form.Params
	case tabHeaders:
		return m.form.Headers
	default:
		return nil
	}
}

func (m *Model) activeEditors() *[]rowEditor {
	switch m.activeTab {
	case tabParams:
		return &m.paramRows
	case tabHeaders:
		return &m.headerRows
	default:
		return nil
	}
}

func (m *Model) switchTab(delta int) tea.Cmd {
	n := len(requestTabs)
	m.activeTab = requestTabs[(int(m.activeTab)+delta%n+n)%n]
	if m.focus == focusRows || m.focus == focusBody {
		m.rowIdx, m.rowCol = 0, 0
		m.focus = m.tabFocus()
		return m.applyFocus()
	}
	return nil
}

func (m *Model) tabFocus() focusArea {
	if m.activeTab == tabBody {
		return focusBody
	}
	return focusRows
}

func (m *Model) addRow() tea.Cmd {
	rows := m.activeRows()
	editors := m.activeEditors()
	if rows == nil || editors == nil {
		m.setStatusMessage(statusMsg{text: "Rows can be added on the Params or Headers tab", level: statusInfo})
		return nil
	}
	row := form.NewRow()
	idx := rows.Append(row)
	placeholder := paramKeyPlaceholder
	if m.activeTab == tabHeaders {
		placeholder = headerKeyPlaceholder
	}
	*editors = append(*editors, newRowEditor(row, placeholder))
	m.focus = focusRows
	m.rowIdx, m.rowCol = idx, 0
	m.applyLayout()
	return m.applyFocus()
}

func (m *Model) toggleRow() {
	rows := m.activeRows()
	if m.focus != focusRows || rows == nil {
		m.setStatusMessage(statusMsg{text: "Focus a row to toggle it", level: statusInfo})
		return
	}
	included, err := rows.Toggle(m.rowIdx)
	if err != nil {
		m.setStatusMessage(statusMsg{text: err.Error(), level: statusError})
		return
	}
	state := "excluded"
	if included {
		state = "included"
	}
	m.setStatusMessage(statusMsg{text: fmt.Sprintf("Row %d %s", m.rowIdx+1, state), level: statusInfo})
}

// moveFocus walks URL, the active tab's fields, response headers and
// response body, wrapping at both ends.
func (m *Model) moveFocus(delta int) tea.Cmd {
	type stop struct {
		area focusArea
		row  int
		col  int
	}
	stops := []stop{{area: focusURL}}
	if editors := m.activeEditors(); editors != nil {
		for i := range *editors {
			stops = append(stops, stop{area: focusRows, row: i}, stop{area: focusRows, row: i, col: 1})
		}
	} else {
		stops = append(stops, stop{area: focusBody})
	}
	stops = append(stops, stop{area: focusRespHeaders}, stop{area: focusRespBody})

	cur := 0
	for i, s := range stops {
		if s.area != m.focus {
			continue
		}
		if s.area != focusRows || (s.row == m.rowIdx && s.col == m.rowCol) {
			cur = i
			break
		}
	}
	next := stops[(cur+delta%len(stops)+len(stops))%len(stops)]
	m.focus, m.rowIdx, m.rowCol = next.area, next.row, next.col
	return m.applyFocus()
}

func (m *Model) applyFocus() tea.Cmd {
	var cmds []tea.Cmd
	m.urlInput.Blur()
	m.body.Blur()
	for _, editors := range []*[]rowEditor{&m.paramRows, &m.headerRows} {
		for i := range *editors {
			(*editors)[i].key.Blur()
			(*editors)[i].value.Blur()
		}
	}

	switch m.focus {
	case focusURL:
		cmds = append(cmds, m.urlInput.Focus())
	case focusRows:
		editors := m.activeEditors()
		if editors == nil || len(*editors) == 0 {
			m.focus = focusURL
			cmds = append(cmds, m.urlInput.Focus())
			break
		}
		if m.rowIdx >= len(*editors) {
			m.rowIdx = len(*editors) - 1
		}
		ed := &(*editors)[m.rowIdx]
		if m.rowCol == 0 {
			cmds = append(cmds, ed.key.Focus())
		} else {
			cmds = append(cmds, ed.value.Focus())
		}
	case focusBody:
		cmds = append(cmds, m.body.Focus())
	}
	return batchCmds(cmds)
}

func (m *Model) setStatusMessage(msg statusMsg) {
	m.statusMessage = msg
}

func batchCmds(cmds []tea.Cmd) tea.Cmd {
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	default:
		return tea.Batch(cmds...)
	}
}
