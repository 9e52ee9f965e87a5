package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldReferer    = "referer"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	// Domain fields
	FieldRecordID     = "record_id"
	FieldBrand        = "brand"
	FieldModel        = "model"
	FieldCategory     = "category"
	FieldMonth        = "month"
	FieldCostCents    = "cost_cents"
	FieldSellingCents = "selling_cents"
	FieldRecordCount  = "record_count"
	FieldEventKind    = "event_kind"
	FieldSheetRow     = "sheet_row"
	FieldStore        = "store"
)

// Component names used across the application
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentSales     = "sales"
	ComponentStore     = "store"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTemplate  = "template"
)

// Operation names for the FieldOperation field
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpLoad     = "load"
	OpSave     = "save"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpMirror   = "mirror"
	OpRender   = "render"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields builder
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithClientIP adds client IP field
func (f LogFields) WithClientIP(clientIP string) LogFields {
	f[FieldClientIP] = clientIP
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(operation string) LogFields {
	f[FieldOperation] = operation
	return f
}

// WithRecord adds sale record identity fields
func (f LogFields) WithRecord(recordID, brand, model string) LogFields {
	f[FieldRecordID] = recordID
	f[FieldBrand] = brand
	f[FieldModel] = model
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if query != "" {
		f[FieldQuery] = query
	}
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	if referer != "" {
		f[FieldReferer] = referer
	}
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice of alternating key-value pairs
// suitable for slog calls
func (f LogFields) ToSlice() []any {
	result := make([]any, 0, len(f)*2)
	for key, value := range f {
		result = append(result, key, value)
	}
	return result
}
