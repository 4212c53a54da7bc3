package httpclient

import (
	"crypto/tls"
	"net/http"
	"net/http/httptrace"
	"sync"
	"time"

	"github.com/unkn0wn-root/restpad/internal/nettrace"
)

type traceSession struct {
	collector      *nettrace.Collector
	trace          *httptrace.ClientTrace
	mu             sync.Mutex
	ttfbActive     bool
	transferActive bool
}

func newTraceSession() *traceSession {
	s := &traceSession{collector: nettrace.NewCollector()}
	s.trace = &httptrace.ClientTrace{
		DNSStart:             s.onDNSStart,
		DNSDone:              s.onDNSDone,
		ConnectStart:         s.onConnectStart,
		ConnectDone:          s.onConnectDone,
		GotConn:              s.onGotConn,
		TLSHandshakeStart:    s.onTLSHandshakeStart,
		TLSHandshakeDone:     s.onTLSHandshakeDone,
		WroteRequest:         s.onWroteRequest,
		GotFirstResponseByte: s.onGotFirstResponseByte,
	}
	return s
}

func (s *traceSession) bind(req *http.Request) *http.Request {
	ctx := httptrace.WithClientTrace(req.Context(), s.trace)
	return req.WithContext(ctx)
}

func (s *traceSession) onDNSStart(info httptrace.DNSStartInfo) {
	s.collector.Begin(nettrace.PhaseDNS, time.Now())
	if info.Host != "" {
		s.collector.UpdateMeta(nettrace.PhaseDNS, func(meta *nettrace.PhaseMeta) {
			meta.Addr = info.Host
		})
	}
}

func (s *traceSession) onDNSDone(info httptrace.DNSDoneInfo) {
	now := time.Now()
	if len(info.Addrs) > 0 {
		s.collector.UpdateMeta(nettrace.PhaseDNS, func(meta *nettrace.PhaseMeta) {
			meta.Addr = info.Addrs[0].String()
		})
	}
	s.collector.End(nettrace.PhaseDNS, now, info.Err)
	s.collector.Fail(info.Err)
}

func (s *traceSession) onConnectStart(_, addr string) {
	s.collector.Begin(nettrace.PhaseConnect, time.Now())
	if addr != "" {
		s.collector.UpdateMeta(nettrace.PhaseConnect, func(meta *nettrace.PhaseMeta) {
			meta.Addr = addr
		})
	}
}

func (s *traceSession) onConnectDone(_, _ string, err error) {
	s.collector.End(nettrace.PhaseConnect, time.Now(), err)
	s.collector.Fail(err)
}

func (s *traceSession) onGotConn(info httptrace.GotConnInfo) {
	if !info.Reused {
		return
	}
	now := time.Now()
	s.collector.Begin(nettrace.PhaseConnect, now)
	s.collector.UpdateMeta(nettrace.PhaseConnect, func(meta *nettrace.PhaseMeta) {
		meta.Reused = true
		if info.Conn != nil && info.Conn.RemoteAddr() != nil {
			meta.Addr = info.Conn.RemoteAddr().String()
		}
	})
	s.collector.End(nettrace.PhaseConnect, now, nil)
}

func (s *traceSession) onTLSHandshakeStart() {
	s.collector.Begin(nettrace.PhaseTLS, time.Now())
}

func (s *traceSession) onTLSHandshakeDone(_ tls.ConnectionState, err error) {
	s.collector.End(nettrace.PhaseTLS, time.Now(), err)
	s.collector.Fail(err)
}

func (s *traceSession) onWroteRequest(info httptrace.WroteRequestInfo) {
	if info.Err != nil {
		s.collector.Fail(info.Err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ttfbActive {
		s.ttfbActive = true
		s.collector.Begin(nettrace.PhaseTTFB, time.Now())
	}
}

func (s *traceSession) onGotFirstResponseByte() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ttfbActive {
		s.collector.End(nettrace.PhaseTTFB, now, nil)
		s.ttfbActive = false
	}
	if !s.transferActive {
		s.transferActive = true
		s.collector.Begin(nettrace.PhaseTransfer, now)
	}
}

// finish closes the transfer phase once the body has been read and returns
// the collected timeline.
func (s *traceSession) finish(err error) *nettrace.Timeline {
	now := time.Now()
	s.mu.Lock()
	if s.transferActive {
		s.collector.End(nettrace.PhaseTransfer, now, err)
		s.transferActive = false
	}
	s.mu.Unlock()
	s.collector.Fail(err)
	s.collector.Complete(now)
	return s.collector.Timeline()
}
