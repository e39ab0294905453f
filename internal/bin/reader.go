package bin

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader is a positioned cursor over an in-memory byte buffer. All
// reads are little-endian. The whole file is loaded up front — the
// format's backward-reference pattern (pointers to earlier and later
// sections alike) makes a streaming reader impractical.
type Reader struct {
	data []byte
	pos  int
	arch Architecture
}

// NewReader wraps data for positioned reading under the given
// architecture's pointer/count width.
func NewReader(data []byte, arch Architecture) *Reader {
	return &Reader{data: data, arch: arch}
}

// Tell returns the current absolute cursor position.
func (r *Reader) Tell() int {
	return r.pos
}

// Seek moves the cursor to an absolute position.
func (r *Reader) Seek(pos int) {
	r.pos = pos
}

// Peek returns up to n bytes at the cursor without advancing it. If
// fewer than n bytes remain, the short slice is returned.
func (r *Reader) Peek(n int) []byte {
	end := r.pos + n
	if end > len(r.data) {
		end = len(r.data)
	}
	if r.pos > end {
		return nil
	}
	return r.data[r.pos:end]
}

func (r *Reader) read(n int) ([]byte, error) {
	end := r.pos + n
	if end > len(r.data) {
		return nil, fmt.Errorf("read past end of file at offset %d (%d bytes requested, %d remaining)", r.pos, n, len(r.data)-r.pos)
	}
	b := r.data[r.pos:end]
	r.pos = end
	return b, nil
}

// ReadU8 reads one unsigned byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian unsigned 16-bit integer.
func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian unsigned 32-bit integer.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadF32 reads a little-endian IEEE-754 32-bit float.
func (r *Reader) ReadF32() (float32, error) {
	b, err := r.read(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// ReadPointer reads an integer whose width equals the architecture's
// pointer size (4 bytes for x86, 8 bytes for x64).
func (r *Reader) ReadPointer() (int, error) {
	b, err := r.read(PointerSize[r.arch])
	if err != nil {
		return 0, err
	}
	return int(readUintLE(b)), nil
}

// ReadCount reads an integer whose width equals the architecture's
// count size. Pointers and counts are always the same width in this
// format, but the two are kept as distinct operations to match the
// wire format's own naming.
func (r *Reader) ReadCount() (int, error) {
	return r.ReadPointer()
}

// ReadString reads a pointer, follows it to a NUL-terminated ASCII
// string, and restores the cursor to just after the pointer.
func (r *Reader) ReadString() (string, error) {
	pointer, err := r.ReadPointer()
	if err != nil {
		return "", err
	}

	returnCursor := r.pos
	r.Seek(pointer)

	var sb []byte
	for {
		b, err := r.ReadU8()
		if err != nil {
			return "", fmt.Errorf("unterminated string at offset %d: %w", pointer, err)
		}
		if b == 0 {
			break
		}
		sb = append(sb, b)
	}

	r.Seek(returnCursor)
	return string(sb), nil
}

func readUintLE(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = (v << 8) | uint64(b[i])
	}
	return v
}
