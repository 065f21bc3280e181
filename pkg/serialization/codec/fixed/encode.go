// Package fixed implements the fixed-width binary layout used for ledger
// records: little-endian fixed-size integers, one byte booleans, arrays
// without a length prefix and struct fields in declaration order. Slices
// are prefixed with their length as a little-endian uint32.
package fixed

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"reflect"
)

// Marshaler is implemented by types that encode themselves.
type Marshaler interface {
	MarshalFixed() ([]byte, error)
}

func Marshal(v interface{}) ([]byte, error) {
	buffer := bytes.NewBuffer(nil)
	bw := byteWriter{Writer: buffer}
	if err := bw.marshal(reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Size returns the encoded length of v.
func Size(v interface{}) (int, error) {
	b, err := Marshal(v)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// MustSize is Size for record types whose layout is known to be encodable.
func MustSize(v interface{}) int {
	n, err := Size(v)
	if err != nil {
		panic(err)
	}
	return n
}

type byteWriter struct {
	io.Writer
}

func (bw *byteWriter) marshal(val reflect.Value) error {
	if !val.IsValid() {
		return fmt.Errorf(ErrUnsupportedType, nil)
	}
	if val.CanInterface() {
		if m, ok := val.Interface().(Marshaler); ok {
			b, err := m.MarshalFixed()
			if err != nil {
				return err
			}
			_, err = bw.Write(b)
			return err
		}
	}

	switch val.Kind() {
	case reflect.Bool:
		return bw.encodeBool(val.Bool())
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return bw.encodeFixedWidth(val.Uint(), val.Type().Size())
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return bw.encodeFixedWidth(uint64(val.Int()), val.Type().Size())
	case reflect.Array:
		return bw.encodeArray(val)
	case reflect.Slice:
		return bw.encodeSlice(val)
	case reflect.Struct:
		return bw.encodeStruct(val)
	default:
		return fmt.Errorf(ErrUnsupportedType, val.Type())
	}
}

func (bw *byteWriter) encodeBool(b bool) error {
	var err error
	if b {
		_, err = bw.Write([]byte{0x01})
	} else {
		_, err = bw.Write([]byte{0x00})
	}
	return err
}

func (bw *byteWriter) encodeFixedWidth(x uint64, l uintptr) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], x)
	_, err := bw.Write(buf[:l])
	return err
}

func (bw *byteWriter) encodeArray(val reflect.Value) error {
	// [N]byte is written in one go
	if val.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, val.Len())
		reflect.Copy(reflect.ValueOf(b), val)
		_, err := bw.Write(b)
		return err
	}
	for i := 0; i < val.Len(); i++ {
		if err := bw.marshal(val.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (bw *byteWriter) encodeSlice(val reflect.Value) error {
	if val.Len() > math.MaxUint32 {
		return ErrSliceTooLong
	}
	if err := bw.encodeFixedWidth(uint64(val.Len()), 4); err != nil {
		return err
	}
	if b, ok := val.Interface().([]byte); ok {
		_, err := bw.Write(b)
		return err
	}
	for i := 0; i < val.Len(); i++ {
		if err := bw.marshal(val.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (bw *byteWriter) encodeStruct(val reflect.Value) error {
	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		fieldType := t.Field(i)
		if !fieldType.IsExported() || fieldType.Tag.Get("fixed") == "-" {
			continue
		}
		if err := bw.marshal(val.Field(i)); err != nil {
			return fmt.Errorf(ErrEncodingStructField, fieldType.Name, err)
		}
	}
	return nil
}
