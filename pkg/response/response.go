package response

// Error codes shared by handlers and middleware
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// Response is the JSON envelope for every API reply
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo describes a failed request
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries list metadata
type Meta struct {
	Total int `json:"total"`
}

// Success wraps data in a successful envelope
func Success(data any) Response {
	return Response{Success: true, Data: data}
}

// List wraps a slice and reports its length
func List[T any](items []T) Response {
	if items == nil {
		items = []T{}
	}
	return Response{Success: true, Data: items, Meta: &Meta{Total: len(items)}}
}

// Error builds a failed envelope
func Error(code, message string) Response {
	return Response{Success: false, Error: &ErrorInfo{Code: code, Message: message}}
}

func BadRequest(message string) Response {
	return Error(ErrCodeBadRequest, message)
}

func ValidationError(message string) Response {
	return Error(ErrCodeValidation, message)
}

func Unauthorized(message string) Response {
	return Error(ErrCodeUnauthorized, message)
}

func Forbidden(message string) Response {
	return Error(ErrCodeForbidden, message)
}

func NotFound(message string) Response {
	return Error(ErrCodeNotFound, message)
}

func Conflict(message string) Response {
	return Error(ErrCodeConflict, message)
}

func TooManyRequests(message string) Response {
	return Error(ErrCodeTooManyRequests, message)
}

func InternalError(message string) Response {
	return Error(ErrCodeInternal, message)
}
