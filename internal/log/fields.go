package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldSelection  = "selection"
	FieldGeneration = "generation"
	FieldKind       = "kind"
	FieldRecords    = "records"
	FieldInvalid    = "invalid_records"
	FieldTotal      = "total"
	FieldURL        = "url"
	FieldMethod     = "method"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldAttempt    = "attempt"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldOperation  = "operation"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentCatalog     = "catalog"
	ComponentScope       = "scope"
	ComponentAggregation = "aggregation"
	ComponentUpstream    = "upstream"
	ComponentGRPC        = "grpc"
	ComponentFixture     = "fixture"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpSelect   = "select"
	OpFetch    = "fetch"
	OpApply    = "apply"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
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
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithFetch adds the fields identifying one fetch of a selection
func (f LogFields) WithFetch(selection string, generation uint64, kind string) LogFields {
	f[FieldSelection] = selection
	f[FieldGeneration] = generation
	if kind != "" {
		f[FieldKind] = kind
	}
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
