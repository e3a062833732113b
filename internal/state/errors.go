package state

import (
	"errors"
	"fmt"
)

var (
	ErrMissingKey = errors.New("state: missing key")
	ErrKind       = errors.New("state: wrong value kind")
)

// MissingKeyError reports a lookup of a key no earlier step wrote.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("state: missing key %q", e.Key)
}

func (e *MissingKeyError) Unwrap() error {
	return ErrMissingKey
}

// KindError reports a value whose payload is not the kind a caller needs.
type KindError struct {
	Key  string
	Want Kind
	Got  Kind
}

func (e *KindError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("state: key %q holds %s, want %s", e.Key, e.Got, e.Want)
	}
	return fmt.Sprintf("state: value is %s, want %s", e.Got, e.Want)
}

func (e *KindError) Unwrap() error {
	return ErrKind
}
