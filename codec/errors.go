package codec

import "fmt"

// DecodeError reports a payload that is not valid codec output.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErr(format string, args ...any) error {
	return &DecodeError{Err: fmt.Errorf(format, args...)}
}
