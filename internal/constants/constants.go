package constants

import "time"

// Service identity
const (
	ServiceName = "print-bridge"
	Version     = "1.0.0"
)

// Network defaults
const (
	DefaultHost       = "127.0.0.1"
	DefaultPort       = 8765
	MinPort           = 1
	MaxPort           = 65535
	ReadHeaderTimeout = 10 * time.Second
	IdleTimeout       = 120 * time.Second
	ShutdownTimeout   = 5 * time.Second
	MaxHeaderBytes    = 1 << 20
)

// Request limits
const (
	// MaxRequestBodySize is the transport-layer ceiling, enforced before the
	// content-level size check against Config.MaxFileSizeMB.
	MaxRequestBodySize = 50 * 1024 * 1024
	DefaultMaxFileMB   = 50
)

// Rate limiting
const (
	DefaultRateLimit = 60
	RateLimitWindow  = time.Minute
)

// External processes
const (
	ProcessTimeout = 30 * time.Second
)

// API endpoints
const (
	EndpointHealth   = "/health"
	EndpointPrinters = "/api/printers"
	EndpointPrint    = "/api/print"
)

// Headers
const (
	HeaderAPIToken  = "X-Api-Token"
	HeaderRequestID = "X-Request-Id"
)

// Config file
const (
	ConfigFileName = "print-bridge"
	ConfigFileType = "toml"
	ConfigFile     = "print-bridge.toml"
	EnvPrefix      = "PRINTBRIDGE"
)

// Messages
const (
	MsgInvalidJSON       = "Invalid JSON body"
	MsgMethodNotAllowed  = "Method not allowed"
	MsgUnauthorized      = "Invalid or missing API token"
	MsgRateLimitExceeded = "Rate limit exceeded"
	MsgFileTooLarge      = "File exceeds the configured size limit"
	MsgBodyTooLarge      = "Request body too large"
)
