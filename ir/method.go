package ir

import "strings"

// Method is the HTTP method an endpoint file is registered for.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
)

// Methods lists the recognized methods in marker priority order.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete}

// Marker returns the file name marker for the method, e.g. ".get".
func (m Method) Marker() string {
	return "." + strings.ToLower(string(m))
}

// Lower returns the lower-cased method name.
func (m Method) Lower() string {
	return strings.ToLower(string(m))
}

// Verb returns the accessor verb used in generated names.
func (m Method) Verb() string {
	switch m {
	case MethodGet:
		return "Get"
	case MethodPost:
		return "Create"
	case MethodPut:
		return "Update"
	case MethodDelete:
		return "Remove"
	default:
		return ""
	}
}

// HasBody reports whether the payload travels in the request body.
// GET and DELETE send it as query parameters instead.
func (m Method) HasBody() bool {
	return m == MethodPost || m == MethodPut
}

// Valid reports whether m is one of the recognized methods.
func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// ParseMethod parses a method name case-insensitively.
func ParseMethod(s string) (Method, bool) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", false
	}
	return m, true
}
