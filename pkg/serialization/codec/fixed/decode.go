package fixed

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"reflect"
)

// Unmarshaler is implemented by types that decode themselves. The reader
// is positioned at the start of the value.
type Unmarshaler interface {
	UnmarshalFixed(r io.Reader) error
}

// Unmarshal decodes data into dst, which must be a non-nil pointer.
// Every byte of data must be consumed.
func Unmarshal(data []byte, dst interface{}) error {
	buf := bytes.NewReader(data)
	if err := NewDecoder(buf).Decode(dst); err != nil {
		return err
	}
	if buf.Len() != 0 {
		return fmt.Errorf("%w: %d", ErrTrailingBytes, buf.Len())
	}
	return nil
}

type Decoder struct {
	byteReader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{byteReader{r}}
}

func (d *Decoder) Decode(dst any) error {
	dstv := reflect.ValueOf(dst)
	if dstv.Kind() != reflect.Ptr || dstv.IsNil() {
		return ErrInvalidPointer
	}
	return d.unmarshal(dstv.Elem())
}

type byteReader struct {
	io.Reader
}

func (br *byteReader) unmarshal(value reflect.Value) error {
	if value.CanAddr() {
		if u, ok := value.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalFixed(br.Reader)
		}
	}

	switch value.Kind() {
	case reflect.Bool:
		return br.decodeBool(value)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		x, err := br.readFixedWidth(value.Type().Size())
		if err != nil {
			return err
		}
		value.SetUint(x)
		return nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		size := value.Type().Size()
		x, err := br.readFixedWidth(size)
		if err != nil {
			return err
		}
		// sign extend
		shift := 64 - 8*size
		value.SetInt(int64(x<<shift) >> shift)
		return nil
	case reflect.Array:
		return br.decodeArray(value)
	case reflect.Slice:
		return br.decodeSlice(value)
	case reflect.Struct:
		return br.decodeStruct(value)
	default:
		return fmt.Errorf(ErrUnsupportedType, value.Type())
	}
}

func (br *byteReader) read(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(br.Reader, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrUnexpectedInput
		}
		return nil, err
	}
	return b, nil
}

func (br *byteReader) readFixedWidth(l uintptr) (uint64, error) {
	b, err := br.read(int(l))
	if err != nil {
		return 0, err
	}
	var buf [8]byte
	copy(buf[:], b)
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (br *byteReader) decodeBool(value reflect.Value) error {
	b, err := br.read(1)
	if err != nil {
		return err
	}
	switch b[0] {
	case 0x00:
		value.SetBool(false)
	case 0x01:
		value.SetBool(true)
	default:
		return ErrDecodingBool
	}
	return nil
}

func (br *byteReader) decodeArray(value reflect.Value) error {
	if value.Type().Elem().Kind() == reflect.Uint8 {
		b, err := br.read(value.Len())
		if err != nil {
			return err
		}
		reflect.Copy(value, reflect.ValueOf(b))
		return nil
	}
	for i := 0; i < value.Len(); i++ {
		if err := br.unmarshal(value.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (br *byteReader) decodeSlice(value reflect.Value) error {
	l, err := br.readFixedWidth(4)
	if err != nil {
		return err
	}
	if value.Type().Elem().Kind() == reflect.Uint8 {
		b, err := br.read(int(l))
		if err != nil {
			return err
		}
		value.SetBytes(b)
		return nil
	}
	s := reflect.MakeSlice(value.Type(), 0, 0)
	for i := uint64(0); i < l; i++ {
		elem := reflect.New(value.Type().Elem()).Elem()
		if err := br.unmarshal(elem); err != nil {
			return err
		}
		s = reflect.Append(s, elem)
	}
	value.Set(s)
	return nil
}

func (br *byteReader) decodeStruct(value reflect.Value) error {
	t := value.Type()
	for i := 0; i < t.NumField(); i++ {
		fieldType := t.Field(i)
		if !fieldType.IsExported() || fieldType.Tag.Get("fixed") == "-" {
			continue
		}
		if err := br.unmarshal(value.Field(i)); err != nil {
			return fmt.Errorf(ErrDecodingStructField, fieldType.Name, err)
		}
	}
	return nil
}
