package logger

// Log level names accepted in Config.Level
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarn    = "warn"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// Log format names accepted in Config.Format
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Service defaults
const (
	DefaultServiceName = "spinvault"
	DefaultVersion     = "dev"
	ProductionVersion  = "1.0.0"
)

// Environment names
const (
	EnvironmentDev        = "dev"
	EnvironmentProduction = "prod"
)

// Attribute keys added to every record or derived from the context
const (
	AttrKeyService     = "service"
	AttrKeyVersion     = "version"
	AttrKeyEnvironment = "environment"
	AttrKeyRequestID   = "request_id"
	AttrKeyOperationID = "operation_id"
)
