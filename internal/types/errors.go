package types

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies bridge failures so handlers can map them to HTTP
// statuses without inspecting message text.
type ErrorKind string

const (
	KindPrinterError      ErrorKind = "printer_error"
	KindPrintError        ErrorKind = "print_error"
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	KindIoError           ErrorKind = "io_error"
	KindDecodeError       ErrorKind = "decode_error"
	KindConfigError       ErrorKind = "config_error"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindRateLimitExceeded ErrorKind = "rate_limit_exceeded"
	KindFileTooLarge      ErrorKind = "file_too_large"
	KindTimedOut          ErrorKind = "timed_out"
)

// BridgeError is the error currency of the whole service. Detail carries
// captured process stderr or wrapped lower-level errors; it never reaches the
// wire, only Message does.
type BridgeError struct {
	Kind    ErrorKind
	Message string
	Detail  error
}

func (e *BridgeError) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *BridgeError) Unwrap() error {
	return e.Detail
}

// HTTPStatus maps the error kind to its wire status code.
func (e *BridgeError) HTTPStatus() int {
	switch e.Kind {
	case KindUnsupportedFormat, KindDecodeError:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindRateLimitExceeded:
		return http.StatusTooManyRequests
	case KindTimedOut:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func NewBridgeError(kind ErrorKind, message string, detail error) *BridgeError {
	return &BridgeError{Kind: kind, Message: message, Detail: detail}
}

func PrinterError(message string, detail error) *BridgeError {
	return NewBridgeError(KindPrinterError, message, detail)
}

func PrintError(message string, detail error) *BridgeError {
	return NewBridgeError(KindPrintError, message, detail)
}

func UnsupportedFormat(contentType string) *BridgeError {
	return NewBridgeError(KindUnsupportedFormat, "Unsupported format: "+contentType, nil)
}

func IoError(message string, detail error) *BridgeError {
	return NewBridgeError(KindIoError, message, detail)
}

func DecodeError(detail error) *BridgeError {
	return NewBridgeError(KindDecodeError, "Malformed base64 payload", detail)
}

func ConfigError(message string, detail error) *BridgeError {
	return NewBridgeError(KindConfigError, message, detail)
}

func Unauthorized() *BridgeError {
	return NewBridgeError(KindUnauthorized, "Unauthorized", nil)
}

func RateLimitExceeded() *BridgeError {
	return NewBridgeError(KindRateLimitExceeded, "Rate limit exceeded", nil)
}

func FileTooLarge() *BridgeError {
	return NewBridgeError(KindFileTooLarge, "File too large", nil)
}

func TimedOut(message string, detail error) *BridgeError {
	return NewBridgeError(KindTimedOut, message, detail)
}
