// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// It reduces code duplication by providing reusable functions for common
// form parsing, filter extraction, and input sanitization patterns.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kwanghifi/kwanghifi/internal/core"
)

// ParseMonthParam reads the month query parameter. An absent or "all" value
// means no month filter.
func ParseMonthParam(r *http.Request) core.Month {
	raw := strings.TrimSpace(r.URL.Query().Get("month"))
	if raw == "" || raw == string(core.MonthAll) {
		return core.MonthAll
	}
	return core.Month(raw)
}

// RequestBodyParser handles both JSON and form-encoded request bodies,
// which matters for PUT and DELETE requests where htmx sends form data
// but API clients may send JSON.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the request body once and prepares it for
// parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	body, err := io.ReadAll(r.Body)
	return &RequestBodyParser{
		body:        body,
		contentType: r.Header.Get("Content-Type"),
		err:         err,
	}
}

// Parse decodes the body as JSON when it looks like JSON, as a URL-encoded
// form otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' || trimmed[0] == '[' {
		p.err = json.Unmarshal(p.body, &p.jsonData)
		return p.err
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns the sanitized value for key from whichever representation the
// body was parsed into.
func (p *RequestBodyParser) Get(key string) string {
	if !p.parsed {
		if err := p.Parse(); err != nil {
			return ""
		}
	}

	if p.jsonData != nil {
		if value, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(value)))
		}
		return ""
	}

	return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
}

// GetRaw returns the raw request body.
func (p *RequestBodyParser) GetRaw() []byte {
	return p.body
}

// ContentType returns the request's Content-Type header.
func (p *RequestBodyParser) ContentType() string {
	return p.contentType
}

// IsJSON reports whether the body was parsed as JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// RequireMethod returns an error response when the request method is not one
// of the allowed methods, nil otherwise.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, method := range methods {
		if r.Method == method {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST returns an error response unless the request is a POST.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireDeleteOrPOST accepts DELETE and POST, covering htmx delete buttons
// and plain form fallbacks.
func RequireDeleteOrPOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodDelete, http.MethodPost)
}

// ParseFormOrFail parses the request form, returning an error response on
// malformed input.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
