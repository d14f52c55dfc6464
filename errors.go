package mapfile

import "fmt"

// UnsupportedTypeError is returned by the writer when a value is not one
// of the writable shapes: string, []byte, bool, integer and float kinds,
// fmt.Stringer, Document and other maps, slices and arrays, sets, or
// Storable values.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("cannot encode value of type %s", e.Type)
}

// UnterminatedBlockError is returned by the parser in strict mode when
// the input ends inside a nested block before its closing line.
type UnterminatedBlockError struct {
	Key string
}

func (e *UnterminatedBlockError) Error() string {
	return fmt.Sprintf("block %q is not terminated", e.Key)
}
