package errors

import (
	errs "errors"
	"fmt"
	"runtime"
	"strings"
)

type ErrorLevel string

func (e ErrorLevel) String() string {
	return string(e)
}

const (
	ERR_INFRASTRUCTURE ErrorLevel = "infrastructure"
	ERR_APPLICATION    ErrorLevel = "application"
	ERR_DOMAIN         ErrorLevel = "domain"
	ERR_VALIDATION     ErrorLevel = "validation"
	ERR_CONFIGURATION  ErrorLevel = "configuration"
	ERR_UNKNOWN        ErrorLevel = "unknown"
	ERR_PERMISSION     ErrorLevel = "permission"
)

// Sentinels for the failure kinds the task core can produce. They are
// wrapped into an ExtendError at the call site, so callers can match with
// errors.Is regardless of the added level/metadata.
var (
	// ErrJobDetached is returned when a flag mutation is attempted on a job
	// record that has no storage backend attached. This is a programming
	// error, not a transient fault.
	ErrJobDetached = errs.New("job is not attached to a storage backend")

	// ErrUnknownPriority is returned when an enqueue targets a priority
	// label that has no queue in the injected queue map.
	ErrUnknownPriority = errs.New("no queue registered for priority")

	// ErrDuplicateTask is returned when two registrations claim the same
	// task name.
	ErrDuplicateTask = errs.New("task name already registered")

	// ErrJobNotFound is returned by storage lookups for unknown job IDs.
	ErrJobNotFound = errs.New("job not found")
)

type ExtendError struct {
	Level      ErrorLevel     `json:"level"`
	Err        error          `json:"error"`
	Code       string         `json:"code,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	StackTrace string         `json:"-"`
}

func (e *ExtendError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	msg := e.Err.Error()
	if e.Code != "" {
		msg = fmt.Sprintf("[%s] %s", e.Code, msg)
	}
	return msg
}

func (e *ExtendError) Unwrap() error {
	return e.Err
}

func (e *ExtendError) WithCode(code string) *ExtendError {
	e.Code = code
	return e
}

func (e *ExtendError) WithMetadata(key string, value any) *ExtendError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

func New(message string) error {
	return errs.New(message)
}

func Is(target, err error) bool {
	return errs.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errs.As(err, target)
}

func IsExtendError(err error) bool {
	var extendErr *ExtendError
	return errs.As(err, &extendErr)
}

func captureStackTrace() string {
	var sb strings.Builder
	// Skip 3 frames: captureStackTrace, wrap, and the caller of wrap
	for i := 3; i < 15; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fmt.Fprintf(&sb, "%s:%d\n", file, line)
	}
	return sb.String()
}

func wrap(err error, level ErrorLevel) *ExtendError {
	var extendErr *ExtendError
	if errs.As(err, &extendErr) {
		// Already leveled; keep the original metadata and code.
		return extendErr
	}
	return &ExtendError{
		Level:      level,
		Err:        err,
		StackTrace: captureStackTrace(),
	}
}

func InfraError(err error) *ExtendError {
	return wrap(err, ERR_INFRASTRUCTURE)
}

func AppError(err error) *ExtendError {
	return wrap(err, ERR_APPLICATION)
}

func DomainError(err error) *ExtendError {
	return wrap(err, ERR_DOMAIN)
}

func ValidationError(err error) *ExtendError {
	return wrap(err, ERR_VALIDATION)
}

func ConfigError(err error) *ExtendError {
	return wrap(err, ERR_CONFIGURATION)
}

func UnknownError(err error) *ExtendError {
	return wrap(err, ERR_UNKNOWN)
}

func PermissionError(err error) *ExtendError {
	return wrap(err, ERR_PERMISSION)
}

func getErrorLevel(err *ExtendError) ErrorLevel {
	if err == nil {
		return ERR_UNKNOWN
	}
	return err.Level
}

func GetLevel(err error) ErrorLevel {
	var extendErr *ExtendError
	if errs.As(err, &extendErr) {
		return getErrorLevel(extendErr)
	}
	return ERR_UNKNOWN
}

func IsInfraError(err *ExtendError) bool {
	return getErrorLevel(err) == ERR_INFRASTRUCTURE
}

func IsAppError(err *ExtendError) bool {
	return getErrorLevel(err) == ERR_APPLICATION
}

func IsDomainError(err *ExtendError) bool {
	return getErrorLevel(err) == ERR_DOMAIN
}

func IsValidationError(err *ExtendError) bool {
	return getErrorLevel(err) == ERR_VALIDATION
}

func IsConfigError(err *ExtendError) bool {
	return getErrorLevel(err) == ERR_CONFIGURATION
}

func IsPermissionError(err *ExtendError) bool {
	return getErrorLevel(err) == ERR_PERMISSION
}
