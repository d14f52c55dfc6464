package document

import "fmt"

// KeyNotFoundError is returned when an accessor is called with a key
// that is not present in the document.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found: %s", e.Key)
}

// TypeMismatchError is returned when a stored value cannot be coerced
// to the requested shape (for example, requesting a list from a scalar).
type TypeMismatchError struct {
	Key      string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for key %q: expected %s, got %s", e.Key, e.Expected, e.Actual)
}

// FormatError is returned when a stored value has the right shape but
// cannot be parsed as the requested scalar type (for example, non-numeric
// text passed to GetInt). It wraps the underlying parse error.
type FormatError struct {
	Key   string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed value %q for key %q: %v", e.Value, e.Key, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// ConstructionError is returned when a typed accessor has no compatible
// constructor for the stored shape of a value. Failures raised by a
// constructor itself are propagated unchanged, not wrapped in this type.
type ConstructionError struct {
	Key    string
	Type   string
	Reason string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("cannot construct %s for key %q: %s", e.Type, e.Key, e.Reason)
}
