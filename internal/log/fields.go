package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldShopID     = "shop_id"
	FieldShopName   = "shop_name"
	FieldProduct    = "product"
	FieldAmount     = "amount"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentTemplate = "template"
)

// Operations defines standard operation names
const (
	OpCreateShop    = "create_shop"
	OpDeleteShop    = "delete_shop"
	OpRecordExpense = "record_expense"
	OpRecordPayment = "record_payment"
	OpListLedger    = "list_ledger"
	OpShutdown      = "shutdown"
	OpStartup       = "startup"
)
