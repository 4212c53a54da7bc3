package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/restpad/internal/format"
	"github.com/unkn0wn-root/restpad/internal/httpclient"
	"github.com/unkn0wn-root/restpad/internal/request"
)

// startSend snapshots the form and dispatches it off the update loop. Only
// one request may be in flight.
func (m *Model) startSend() tea.Cmd {
	if m.sending {
		m.setStatusMessage(statusMsg{text: "Request already in progress", level: statusWarn})
		return nil
	}

	spec := request.Build(m.form.Snapshot(), request.BuildOptions{
		EscapeQuery: m.settings.Request.EncodeQuery,
	})
	client := m.client
	sendCtx, sendCancel := context.WithCancel(context.Background())
	m.sending = true
	m.sendCancel = sendCancel
	m.setStatusMessage(statusMsg{
		text:  fmt.Sprintf("Sending %s %s", spec.Method, spec.URL),
		level: statusInfo,
	})

	dispatch := func() tea.Msg {
		defer sendCancel()
		return responseMsg{outcome: client.Dispatch(sendCtx, spec)}
	}
	return tea.Batch(m.spinner.Tick, dispatch)
}

func (m *Model) cancelInFlightSend(status string) {
	if m.sendCancel != nil {
		m.sendCancel()
	}
	if strings.TrimSpace(status) != "" {
		m.setStatusMessage(statusMsg{text: status, level: statusInfo})
	}
}

func (m *Model) handleResponse(msg responseMsg) {
	m.sending = false
	m.sendCancel = nil
	m.display = format.Render(msg.outcome, m.display)

	switch o := msg.outcome.(type) {
	case *httpclient.Success:
		m.statusCode = o.StatusCode
		m.elapsed = formatDuration(o.Duration)
		m.timing = o.Timeline.Summary()
		m.setStatusMessage(statusMsg{
			text:  fmt.Sprintf("%d %s in %s (%s)", o.StatusCode, o.Reason, m.elapsed, formatByteSize(int64(len(o.Body)))),
			level: statusSuccess,
		})
	case *httpclient.Failure:
		m.statusCode = 0
		m.elapsed = formatDuration(o.Duration)
		m.timing = ""
		m.setStatusMessage(statusMsg{text: "Request failed", level: statusError})
	}
	m.refreshResponseViews()
}

func (m *Model) refreshResponseViews() {
	headers := m.display.Headers
	body := m.display.Body
	if m.display.Status == "" {
		body = noResponsePlaceholder
	}
	if m.display.JSON {
		body = highlightJSON(body, m.profile)
	}
	m.headersView.SetContent(m.theme.ResponseHeaders.Render(headers))
	if m.display.JSON {
		m.bodyView.SetContent(body)
	} else {
		m.bodyView.SetContent(m.theme.ResponseBody.Render(body))
	}
	m.headersView.GotoTop()
	m.bodyView.GotoTop()
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0ms"
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}

func formatByteSize(n int64) string {
	if n < 0 {
		n = 0
	}

	units := []string{"B", "KiB", "MiB", "GiB"}
	f := float64(n)
	i := 0
	for i < len(units)-1 && f >= 1024 {
		f /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d %s", n, units[i])
	}

	s := fmt.Sprintf("%.1f", f)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + " " + units[i]
}
