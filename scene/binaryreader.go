package scene

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf16"
)

type reader interface {
	io.ByteReader
	io.Reader
}

// BinaryDeserializer reads the big-endian primitives of a PSD stream and keeps
// track of its position for error reporting.
type BinaryDeserializer struct {
	_r       reader
	position int
	max      int
}

func NewDeserializer(buffer []byte) *BinaryDeserializer {
	limit := len(buffer)
	reader := bytes.NewBuffer(buffer)
	decoder := &BinaryDeserializer{
		_r:  reader,
		max: limit,
	}
	return decoder
}

// Pos current position in the stream
func (d *BinaryDeserializer) Pos() int {
	return d.position
}

func (d *BinaryDeserializer) Limit() int {
	return d.max
}

func (d *BinaryDeserializer) Remaining() int {
	return d.max - d.position
}

func (d *BinaryDeserializer) Read(b []byte) (n int, err error) {
	n, err = d._r.Read(b)
	d.position += n
	return
}

func (d *BinaryDeserializer) ReadByte() (b byte, err error) {
	b, err = d._r.ReadByte()
	if err != nil {
		return b, err
	}
	d.position += 1
	return
}

func (d *BinaryDeserializer) GetBytes(size int) (result []byte, err error) {
	if size < 0 || size > d.Remaining() {
		return nil, fmt.Errorf("%w: want %d bytes at %d, limit %d", ErrCorrupt, size, d.position, d.max)
	}
	result = make([]byte, size)
	_, err = io.ReadFull(d, result)
	return
}

func (d *BinaryDeserializer) Skip(size int) error {
	if size < 0 || size > d.Remaining() {
		return fmt.Errorf("%w: skip %d bytes at %d, limit %d", ErrCorrupt, size, d.position, d.max)
	}
	n, err := io.CopyN(io.Discard, d, int64(size))
	if err != nil {
		return fmt.Errorf("skip %d bytes, got %d: %w", size, n, err)
	}
	return nil
}

func (d *BinaryDeserializer) GetUInt16() (result uint16, err error) {
	err = binary.Read(d, binary.BigEndian, &result)
	return
}

func (d *BinaryDeserializer) GetInt16() (result int16, err error) {
	err = binary.Read(d, binary.BigEndian, &result)
	return
}

func (d *BinaryDeserializer) GetUInt32() (val uint32, err error) {
	err = binary.Read(d, binary.BigEndian, &val)
	return
}

func (d *BinaryDeserializer) GetInt32() (val int32, err error) {
	err = binary.Read(d, binary.BigEndian, &val)
	return
}

// GetSignature reads a four character code such as "8BIM".
func (d *BinaryDeserializer) GetSignature() (string, error) {
	b, err := d.GetBytes(4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// GetPascalString reads a length prefixed string whose total size, length
// byte included, is padded to a multiple of pad.
func (d *BinaryDeserializer) GetPascalString(pad int) (string, error) {
	length, err := d.ReadByte()
	if err != nil {
		return "", err
	}
	b, err := d.GetBytes(int(length))
	if err != nil {
		return "", err
	}
	total := int(length) + 1
	if rem := total % pad; rem != 0 {
		if err := d.Skip(pad - rem); err != nil {
			return "", err
		}
	}
	return string(b), nil
}

// GetUnicodeString reads a uint32 count followed by UTF-16BE code units.
func (d *BinaryDeserializer) GetUnicodeString() (string, error) {
	count, err := d.GetUInt32()
	if err != nil {
		return "", err
	}
	if int(count)*2 > d.Remaining() {
		return "", fmt.Errorf("%w: unicode string of %d units at %d", ErrCorrupt, count, d.position)
	}
	units := make([]uint16, count)
	if err := binary.Read(d, binary.BigEndian, units); err != nil {
		return "", err
	}
	// names are often stored with a trailing NUL
	for len(units) > 0 && units[len(units)-1] == 0 {
		units = units[:len(units)-1]
	}
	return string(utf16.Decode(units)), nil
}
