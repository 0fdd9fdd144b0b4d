package engine

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tartampluch/go-jyoti/internal/config"
	"github.com/tartampluch/go-jyoti/internal/datecalc"
)

// InputError is a rejected user value. Code is one of the config.Code*
// values and is what clients branch on; the message shown to the user is
// resolved from it by the caller.
type InputError struct {
	Code  string
	Field string
	Err   error
}

func (e *InputError) Error() string {
	msg := e.Code
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the input error code carried by err, or "".
func ErrorCode(err error) string {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

func inputErr(code, field string, err error) error {
	return &InputError{Code: code, Field: field, Err: err}
}

// ParseDate reads a YYYY-MM-DD value submitted for field.
func ParseDate(field, value string) (datecalc.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return datecalc.Date{}, inputErr(config.CodeMissingInput, field, nil)
	}
	d, err := datecalc.Parse(value)
	if err != nil {
		return datecalc.Date{}, inputErr(config.CodeInvalidDate, field, err)
	}
	return d, nil
}

// ParseInt is the lenient reading used by the offset tool: blank or
// non-numeric text counts as 0.
func ParseInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

// ParseCount reads a required non-negative integer.
func ParseCount(field, value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, inputErr(config.CodeMissingInput, field, nil)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, inputErr(config.CodeInvalidNumber, field, err)
	}
	if n < 0 {
		return 0, inputErr(config.CodeInvalidNumber, field, nil)
	}
	return n, nil
}
