package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) copyToClipboard(label, text string) tea.Cmd {
	if text == "" {
		m.setStatusMessage(statusMsg{text: fmt.Sprintf("No response %s to copy", label), level: statusWarn})
		return nil
	}
	write := m.clipWrite
	log := m.log
	return func() tea.Msg {
		if err := write(text); err != nil {
			log.Warn().Err(err).Str("target", label).Msg("clipboard write failed")
			return statusMsg{text: fmt.Sprintf("Copy failed: %v", err), level: statusError}
		}
		return statusMsg{
			text:  fmt.Sprintf("Copied %s (%s)", label, formatByteSize(int64(len(text)))),
			level: statusSuccess,
		}
	}
}
