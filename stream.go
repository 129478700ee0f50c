package gopublisher

import (
	"encoding/binary"
	"fmt"
)

// stream is a little-endian cursor over an in-memory stream. Every read that
// would go past the end fails with ErrEndOfStream and leaves the cursor alone.
type stream struct {
	data []byte
	pos  int64
}

func newStream(data []byte) *stream {
	return &stream{data: data}
}

// Len returns the total length of the stream.
func (s *stream) Len() int64 { return int64(len(s.data)) }

// Tell returns the cursor position.
func (s *stream) Tell() int64 { return s.pos }

// AtEOS reports whether the cursor is at (or past) the end of the stream.
func (s *stream) AtEOS() bool { return s.pos >= int64(len(s.data)) }

// SeekTo moves the cursor to an absolute offset.
func (s *stream) SeekTo(off int64) error {
	if off < 0 || off > int64(len(s.data)) {
		return fmt.Errorf("seek to %d of %d: %w", off, len(s.data), ErrEndOfStream)
	}
	s.pos = off
	return nil
}

// Skip moves the cursor n bytes forward.
func (s *stream) Skip(n int64) error {
	return s.SeekTo(s.pos + n)
}

// StillReading is the bounded-loop guard used by every record walker.
func (s *stream) StillReading(until int64) bool {
	if s.AtEOS() || s.pos < 0 {
		return false
	}
	return s.pos < until
}

func (s *stream) take(n int64) ([]byte, error) {
	if n < 0 || s.pos < 0 || s.pos+n > int64(len(s.data)) {
		return nil, fmt.Errorf("read %d bytes at %d of %d: %w", n, s.pos, len(s.data), ErrEndOfStream)
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

// ReadBytes returns the next n bytes. The slice aliases the stream.
func (s *stream) ReadBytes(n int64) ([]byte, error) {
	return s.take(n)
}

func (s *stream) ReadU8() (uint8, error) {
	b, err := s.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *stream) ReadU16() (uint16, error) {
	b, err := s.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (s *stream) ReadU32() (uint32, error) {
	b, err := s.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (s *stream) ReadU64() (uint64, error) {
	b, err := s.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (s *stream) ReadI8() (int8, error) {
	v, err := s.ReadU8()
	return int8(v), err
}

func (s *stream) ReadI16() (int16, error) {
	v, err := s.ReadU16()
	return int16(v), err
}

func (s *stream) ReadI32() (int32, error) {
	v, err := s.ReadU32()
	return int32(v), err
}

func (s *stream) ReadI64() (int64, error) {
	v, err := s.ReadU64()
	return int64(v), err
}

// ReadFixed16 reads a signed 16.16 fixed-point value.
func (s *stream) ReadFixed16() (float64, error) {
	v, err := s.ReadU32()
	if err != nil {
		return 0, err
	}
	return fixed16ToFloat(v), nil
}

// Section returns a new stream over [off, off+n) of this one.
func (s *stream) Section(off, n int64) (*stream, error) {
	if off < 0 || n < 0 || off+n > int64(len(s.data)) {
		return nil, fmt.Errorf("section [%d,%d) of %d: %w", off, off+n, len(s.data), ErrEndOfStream)
	}
	return newStream(s.data[off : off+n]), nil
}

// u16At and u32At read at an absolute offset without moving the cursor.
func (s *stream) u16At(off int64) (uint16, error) {
	if off < 0 || off+2 > int64(len(s.data)) {
		return 0, fmt.Errorf("u16 at %d of %d: %w", off, len(s.data), ErrEndOfStream)
	}
	return binary.LittleEndian.Uint16(s.data[off:]), nil
}

func (s *stream) u32At(off int64) (uint32, error) {
	if off < 0 || off+4 > int64(len(s.data)) {
		return 0, fmt.Errorf("u32 at %d of %d: %w", off, len(s.data), ErrEndOfStream)
	}
	return binary.LittleEndian.Uint32(s.data[off:]), nil
}

func (s *stream) u8At(off int64) (uint8, error) {
	if off < 0 || off+1 > int64(len(s.data)) {
		return 0, fmt.Errorf("u8 at %d of %d: %w", off, len(s.data), ErrEndOfStream)
	}
	return s.data[off], nil
}
