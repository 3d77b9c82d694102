package scan

import (
	"errors"
	"strings"
)

// ErrorCode represents a specific type of scan error for programmatic handling.
type ErrorCode int

const (
	// Collaborator errors (100-199)
	ErrCodeWifiScan ErrorCode = iota + 100
	ErrCodeBluetoothDiscovery
	ErrCodeServiceLookup
	ErrCodeTagRead
	ErrCodeDisplay
	ErrCodeIndicator
)

// ScanError provides structured error information for scan collaborators.
type ScanError struct {
	Code    ErrorCode
	Op      string // Operation that failed (e.g., "iwlist wlan0", "discover")
	Message string // Human-readable message
	Cause   error  // Underlying error
}

func (e *ScanError) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *ScanError) Unwrap() error {
	return e.Cause
}

func (e *ScanError) Is(target error) bool {
	if t, ok := target.(*ScanError); ok {
		return e.Code == t.Code
	}
	return false
}

// NewWifiScanError creates an error for a failed Wi-Fi scan.
func NewWifiScanError(op string, cause error) *ScanError {
	return &ScanError{
		Code:    ErrCodeWifiScan,
		Op:      op,
		Message: "wifi scan failed",
		Cause:   cause,
	}
}

// NewBluetoothDiscoveryError creates an error for a failed Bluetooth discovery pass.
func NewBluetoothDiscoveryError(op string, cause error) *ScanError {
	return &ScanError{
		Code:    ErrCodeBluetoothDiscovery,
		Op:      op,
		Message: "bluetooth discovery failed",
		Cause:   cause,
	}
}

// NewServiceLookupError creates an error for a failed per-device service lookup.
func NewServiceLookupError(address string, cause error) *ScanError {
	return &ScanError{
		Code:    ErrCodeServiceLookup,
		Op:      "services " + address,
		Message: "service lookup failed",
		Cause:   cause,
	}
}

// NewTagReadError creates an error for a failed NFC read attempt.
func NewTagReadError(op string, cause error) *ScanError {
	return &ScanError{
		Code:    ErrCodeTagRead,
		Op:      op,
		Message: "tag read failed",
		Cause:   cause,
	}
}

// IsCode reports whether err is (or wraps) a ScanError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *ScanError
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
