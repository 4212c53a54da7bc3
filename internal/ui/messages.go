package ui

import "github.com/unkn0wn-root/restpad/internal/httpclient"

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusWarn
	statusError
	statusSuccess
)

type responseMsg struct {
	outcome httpclient.Outcome
}

type statusMsg struct {
	text  string
	level statusLevel
}
