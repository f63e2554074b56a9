// Package patch implements partial updates where only present fields are applied.
package patch

import "fmt"

// Fields maps column names to new values. Columns missing from the map are left untouched.
type Fields map[string]any

// Set records column = *v when v is non-nil.
func Set[T any](f Fields, column string, v *T) {
	if v != nil {
		f[column] = *v
	}
}

// SetFunc records column = convert(*v) when v is non-nil.
func SetFunc[T any](f Fields, column string, v *T, convert func(T) any) {
	if v != nil {
		f[column] = convert(*v)
	}
}

// Document is a typed patch with optional fields.
type Document interface {
	Validate() error
	Fields() Fields
}

// Prepare validates doc and returns its present fields.
func Prepare(doc Document) (Fields, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	fields := doc.Fields()
	if fields == nil {
		fields = Fields{}
	}
	return fields, nil
}

// Empty reports whether the patch would change nothing.
func (f Fields) Empty() bool {
	return len(f) == 0
}

// Has reports whether column is present in the patch.
func (f Fields) Has(column string) bool {
	_, ok := f[column]
	return ok
}

func (f Fields) String() string {
	return fmt.Sprintf("patch%v", map[string]any(f))
}
