package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldAction        = "action"
	FieldTransactionID = "transaction_id"
	FieldType          = "type"
	FieldCategory      = "category"
	FieldAmountCents   = "amount_cents"
	FieldCurrency      = "currency"
	FieldCount         = "count"
	FieldBackend       = "backend"
	FieldPath          = "path"
	FieldSequence      = "sequence"
	FieldTipSource     = "tip_source"
	FieldDuration      = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentStore   = "store"
	ComponentStorage = "storage"
	ComponentLedger  = "ledger"
	ComponentAdvisor = "advisor"
	ComponentBackend = "backend"
	ComponentCLI     = "cli"
)

// Operations defines standard operation names
const (
	OpHydrate  = "hydrate"
	OpDispatch = "dispatch"
	OpPersist  = "persist"
	OpReset    = "reset"
	OpExport   = "export"
	OpTips     = "tips"
	OpValidate = "validate"
)
