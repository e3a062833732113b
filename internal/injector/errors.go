package injector

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration   = errors.New("injector: configuration error")
	ErrUnsupportedType = errors.New("injector: unsupported type")
	ErrShapeMismatch   = errors.New("injector: shape mismatch")
)

// ConfigurationError reports a bad injector config: a missing field, an
// unknown type or an unknown model. It is raised at construction and is
// never retried.
type ConfigurationError struct {
	Type  string
	Field string
	Msg   string
	Err   error
}

func (e *ConfigurationError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	if e.Field != "" {
		return fmt.Sprintf("injector %q: field %q: %s", e.Type, e.Field, msg)
	}
	return fmt.Sprintf("injector %q: %s", e.Type, msg)
}

func (e *ConfigurationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfiguration, e.Err}
	}
	return []error{ErrConfiguration}
}

func configErr(typ, field, format string, args ...any) error {
	return &ConfigurationError{Type: typ, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// ShapeMismatchError reports a result whose arity or shape does not fit
// what the injector was configured to produce.
type ShapeMismatchError struct {
	Type string
	Key  string
	Msg  string
	Err  error
}

func (e *ShapeMismatchError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	if e.Key != "" {
		return fmt.Sprintf("injector %q: %s: %s", e.Type, e.Key, msg)
	}
	return fmt.Sprintf("injector %q: %s", e.Type, msg)
}

func (e *ShapeMismatchError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrShapeMismatch, e.Err}
	}
	return []error{ErrShapeMismatch}
}
