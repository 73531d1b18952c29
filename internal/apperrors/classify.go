package apperrors

import (
	"errors"
	"net/http"
)

// Details is the classified view of a failure
type Details struct {
	Message       string
	StatusCode    int
	IsOperational bool
	Context       Context
}

// Classify maps any error onto the taxonomy. It never panics.
//
// An AppError anywhere in the chain is reported verbatim. Any other error is
// treated as an unexpected fault: 500, non-operational, message from the error.
func Classify(err error) Details {
	if err == nil {
		return unknown()
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return Details{
			Message:       appErr.Message,
			StatusCode:    appErr.Status,
			IsOperational: appErr.Operational,
			Context:       copyContext(appErr.Context),
		}
	}

	return Details{
		Message:       safeMessage(err),
		StatusCode:    http.StatusInternalServerError,
		IsOperational: false,
		Context:       Context{},
	}
}

// ClassifyValue classifies a value recovered from a panic
func ClassifyValue(v interface{}) Details {
	if err, ok := v.(error); ok {
		return Classify(err)
	}
	return unknown()
}

// StatusCode returns the HTTP status an error maps to
func StatusCode(err error) int {
	return Classify(err).StatusCode
}

func unknown() Details {
	return Details{
		Message:       UnknownErrorMessage,
		StatusCode:    http.StatusInternalServerError,
		IsOperational: false,
		Context:       Context{},
	}
}

func safeMessage(err error) (msg string) {
	defer func() {
		if recover() != nil {
			msg = UnknownErrorMessage
		}
	}()
	msg = err.Error()
	if msg == "" {
		msg = UnknownErrorMessage
	}
	return msg
}

func copyContext(ctx Context) Context {
	out := make(Context, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
