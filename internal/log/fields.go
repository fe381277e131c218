package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldTxID        = "transaction_id"
	FieldTxType      = "transaction_type"
	FieldCategoryKey = "category_key"
	FieldPartyKey    = "party_key"
	FieldAmountCents = "amount_cents"
	FieldForecast    = "is_forecast"
	FieldDocumentID  = "document_id"
	FieldConfidence  = "confidence"
	FieldSheetsRef   = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentExtract   = "extract"
	ComponentSheets    = "sheets"
	ComponentExport    = "export"
	ComponentRateLimit = "rate_limit"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpImport   = "import"
	OpExport   = "export"
	OpReset    = "reset"
	OpExtract  = "extract"
	OpBackup   = "backup"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(id int64, txType, categoryKey string, amountCents int64) LogFields {
	f[FieldTxID] = id
	f[FieldTxType] = txType
	f[FieldCategoryKey] = categoryKey
	f[FieldAmountCents] = amountCents
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
