package tag

import (
	"errors"
	"fmt"
)

var (
	ErrNotStructPointer = errors.New("tag: target must be a non-nil pointer to a struct")
	ErrUnsupportedType  = errors.New("tag: unsupported field type")
)

// FieldError reports the field whose default could not be applied.
type FieldError struct {
	Path  string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("tag: field %s default %q: %v", e.Path, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
