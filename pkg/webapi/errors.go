package webapi

import (
	"errors"
	"fmt"
)

// Sentinel errors for each failure kind. A *Failure matches its kind's
// sentinel with errors.Is.
var (
	// ErrConfig indicates missing or invalid configuration, detected before any
	// remote call.
	ErrConfig = errors.New("configuration error")

	// ErrTransport indicates a connection, DNS or TLS failure.
	ErrTransport = errors.New("transport error")

	// ErrRemoteStatus indicates the remote answered with an unexpected HTTP
	// status.
	ErrRemoteStatus = errors.New("unexpected remote status")

	// ErrDecode indicates a response body that could not be decoded as JSON.
	ErrDecode = errors.New("decode error")
)

// Kind categorizes a Failure.
type Kind string

const (
	KindConfig       Kind = "ConfigError"
	KindTransport    Kind = "TransportError"
	KindRemoteStatus Kind = "RemoteStatusError"
	KindDecode       Kind = "DecodeError"
)

// Configuration error codes reported to the host.
const (
	CodeAuthMethodMissing  = "authentication-method-missing"
	CodeWriteMethodMissing = "write-method-missing"
	CodeQueryMethodMissing = "query-method-missing"
	CodePathElementMissing = "path-element-missing"
	CodeWebIDMissing       = "webid-missing"
	CodeCheckMsgFormat     = "check-msg-format"
	CodeClientUndefined    = "client-undefined"
)

var codeMessages = map[string]string{
	CodeAuthMethodMissing:  "authentication method is missing or not supported",
	CodeWriteMethodMissing: "write method is missing",
	CodeQueryMethodMissing: "query method is missing",
	CodePathElementMissing: "path requires both a database and a tag",
	CodeWebIDMissing:       "WebId is missing",
	CodeCheckMsgFormat:     "message has no payload",
	CodeClientUndefined:    "web API client is not configured",
}

// Failure is the structured error returned by every remote operation.
type Failure struct {
	// Kind is the failure category.
	Kind Kind `json:"kind"`

	// Op is the operation that failed, e.g. "QueryByCustomURL".
	Op string `json:"op,omitempty"`

	// StatusCode is set for RemoteStatusError.
	StatusCode int `json:"statusCode,omitempty"`

	// Payload is the response body of a RemoteStatusError: decoded JSON when
	// possible, the raw text otherwise.
	Payload any `json:"payload,omitempty"`

	// Code is the named configuration error code for ConfigError.
	Code string `json:"code,omitempty"`

	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

func (f *Failure) Error() string {
	var msg string
	switch f.Kind {
	case KindConfig:
		msg = f.Code
		if text, ok := codeMessages[f.Code]; ok {
			msg = fmt.Sprintf("%s: %s", f.Code, text)
		}
	case KindRemoteStatus:
		msg = fmt.Sprintf("remote returned status %d", f.StatusCode)
	default:
		msg = string(f.Kind)
	}
	if f.Op != "" {
		msg = f.Op + ": " + msg
	}
	if f.Err != nil {
		msg = msg + ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is reports whether target is the sentinel for this failure's kind.
func (f *Failure) Is(target error) bool {
	switch f.Kind {
	case KindConfig:
		return target == ErrConfig
	case KindTransport:
		return target == ErrTransport
	case KindRemoteStatus:
		return target == ErrRemoteStatus
	case KindDecode:
		return target == ErrDecode
	}
	return false
}

// NewConfigError returns a ConfigError for the given code.
func NewConfigError(op, code string) *Failure {
	return &Failure{Kind: KindConfig, Op: op, Code: code}
}

// NewConfigErrorf returns a ConfigError carrying a formatted cause.
func NewConfigErrorf(op, code, format string, args ...any) *Failure {
	return &Failure{Kind: KindConfig, Op: op, Code: code, Err: fmt.Errorf(format, args...)}
}

func newTransportError(op string, err error) *Failure {
	return &Failure{Kind: KindTransport, Op: op, Err: err}
}

func newStatusError(op string, statusCode int, payload any) *Failure {
	return &Failure{Kind: KindRemoteStatus, Op: op, StatusCode: statusCode, Payload: payload}
}

func newDecodeError(op string, err error) *Failure {
	return &Failure{Kind: KindDecode, Op: op, Err: err}
}

// AsFailure extracts a *Failure from err's chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// ConfigCode returns the configuration error code carried by err, or "".
func ConfigCode(err error) string {
	if f, ok := AsFailure(err); ok && f.Kind == KindConfig {
		return f.Code
	}
	return ""
}
