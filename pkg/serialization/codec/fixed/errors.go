package fixed

import "errors"

var (
	ErrInvalidPointer  = errors.New("invalid pointer")
	ErrDecodingBool    = errors.New("error decoding boolean")
	ErrTrailingBytes   = errors.New("trailing bytes after decoding")
	ErrSliceTooLong    = errors.New("slice length exceeds max value of uint32")
	ErrUnexpectedInput = errors.New("unexpected end of input")

	ErrUnsupportedType     = "unsupported type: %v"
	ErrEncodingStructField = "encoding struct field '%s': %w"
	ErrDecodingStructField = "decoding struct field '%s': %w"
)
