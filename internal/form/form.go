package form

import "sync"

// Form holds the editable request state behind the UI.
type Form struct {
	mu      sync.RWMutex
	method  string
	url     string
	body    string
	Params  *Rows
	Headers *Rows
}

// Snapshot is the state read at the moment a request is sent.
type Snapshot struct {
	Method  string
	URL     string
	Params  []Row
	Headers []Row
	Body    string
}

// New returns a form with one blank row per table.
func New(method string) *Form {
	return &Form{
		method:  method,
		Params:  NewRows(),
		Headers: NewRows(),
	}
}

func (f *Form) Method() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.method
}

func (f *Form) SetMethod(method string) {
	f.mu.Lock()
	f.method = method
	f.mu.Unlock()
}

func (f *Form) URL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.url
}

func (f *Form) SetURL(url string) {
	f.mu.Lock()
	f.url = url
	f.mu.Unlock()
}

func (f *Form) Body() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.body
}

func (f *Form) SetBody(body string) {
	f.mu.Lock()
	f.body = body
	f.mu.Unlock()
}

func (f *Form) Snapshot() Snapshot {
	f.mu.RLock()
	snap := Snapshot{Method: f.method, URL: f.url, Body: f.body}
	f.mu.RUnlock()
	snap.Params = f.Params.Snapshot()
	snap.Headers = f.Headers.Snapshot()
	return snap
}
