package request

import "net/http"

type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
	MethodPatch  Method = http.MethodPatch
)

// Methods lists the selectable methods in selector order.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch}

// ParseMethod maps a selector value to a Method. Anything outside the five
// supported names falls back to GET.
func ParseMethod(raw string) Method {
	for _, m := range Methods {
		if string(m) == raw {
			return m
		}
	}
	return MethodGet
}

// AllowsBody reports whether a body may be attached. GET never carries one.
func (m Method) AllowsBody() bool {
	return m != MethodGet
}

// Next returns the method following m in selector order, wrapping around.
func (m Method) Next() Method {
	for i, candidate := range Methods {
		if candidate == m {
			return Methods[(i+1)%len(Methods)]
		}
	}
	return MethodGet
}

func (m Method) String() string {
	return string(m)
}
