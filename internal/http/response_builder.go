// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing HTMX responses.
// It provides a type-safe, fluent API for building HX-Trigger headers and
// consistent response formatting.

package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
type HTMXResponseBuilder struct {
	triggers   map[string]interface{}
	statusCode int
	body       string
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with sensible defaults.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]interface{}),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code.
func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds an HX-Trigger event with optional data.
func (b *HTMXResponseBuilder) Trigger(event string, data interface{}) *HTMXResponseBuilder {
	b.triggers[event] = data
	return b
}

// Header sets a custom response header.
func (b *HTMXResponseBuilder) Header(key, value string) *HTMXResponseBuilder {
	b.headers[key] = value
	return b
}

// Body sets the response body.
func (b *HTMXResponseBuilder) Body(body string) *HTMXResponseBuilder {
	b.body = body
	return b
}

// BodyHTML sets an HTML response body and the matching Content-Type.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = html
	return b
}

// TriggerRecordCreated notifies listeners that a sale record was created in
// the given month.
func (b *HTMXResponseBuilder) TriggerRecordCreated(month string) *HTMXResponseBuilder {
	return b.Trigger("record:created", map[string]string{"month": month})
}

// TriggerRecordUpdated notifies listeners that a sale record changed.
func (b *HTMXResponseBuilder) TriggerRecordUpdated(month string) *HTMXResponseBuilder {
	return b.Trigger("record:updated", map[string]string{"month": month})
}

// TriggerRecordDeleted notifies listeners that a sale record was removed.
func (b *HTMXResponseBuilder) TriggerRecordDeleted(month string) *HTMXResponseBuilder {
	return b.Trigger("record:deleted", map[string]string{"month": month})
}

// TriggerFormReset asks the client to reset the entry form.
func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger("form:reset", struct{}{})
}

// NotificationType selects the visual style of a client notification.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// TriggerNotification asks the client to show a toast notification.
func (b *HTMXResponseBuilder) TriggerNotification(notificationType NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger("show-notification", map[string]interface{}{
		"type":     string(notificationType),
		"message":  message,
		"duration": durationMs,
	})
}

// TriggerSuccessNotification shows a short success toast.
func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 3000)
}

// TriggerErrorNotification shows a longer-lived error toast.
func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

// Write sends the built response.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) error {
	for key, value := range b.headers {
		w.Header().Set(key, value)
	}

	if len(b.triggers) > 0 {
		triggerJSON, err := json.Marshal(b.triggers)
		if err != nil {
			return err
		}
		w.Header().Set("HX-Trigger", string(triggerJSON))
	}

	w.WriteHeader(b.statusCode)

	if b.body != "" {
		_, err := w.Write([]byte(b.body))
		return err
	}
	return nil
}

// ErrorResponse builds an HTML error fragment with the given status. The
// message is escaped before being embedded.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	escaped := template.HTMLEscapeString(message)
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML(`<div class="error">` + escaped + `</div>`)
}

// BadRequestError builds a 400 error response.
func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError builds a 422 error response.
func UnprocessableEntityError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// InternalServerError builds a 500 error response.
func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// NotFoundError builds a 404 error response.
func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// MethodNotAllowedError builds a 405 response with the Allow header set.
func MethodNotAllowedError(allowed string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed").
		Header("Allow", allowed)
}
