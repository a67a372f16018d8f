package result

// ErrorKind classifies why an engine failed to contribute to a search.
type ErrorKind string

const (
	ErrTimeout         ErrorKind = "timeout"
	ErrNetwork         ErrorKind = "network_error"
	ErrHTTP            ErrorKind = "http_error"
	ErrParse           ErrorKind = "parse_error"
	ErrAccessDenied    ErrorKind = "access_denied"
	ErrCaptcha         ErrorKind = "captcha"
	ErrTooManyRequests ErrorKind = "too_many_requests"
	ErrServer          ErrorKind = "server_error"
	ErrSuspended       ErrorKind = "suspended"
	ErrUnknown         ErrorKind = "unknown"
)

// UnresponsiveEngine names an engine whose task ended without contributing
// results, with the classified reason.
type UnresponsiveEngine struct {
	Name string    `json:"name"`
	Err  ErrorKind `json:"error"`
	// Code is the HTTP status for ErrHTTP, 0 otherwise.
	Code int `json:"code,omitempty"`
}
