package util

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// escapable number layout: 4 bit prefix, prefix value 15 means the real value follows in escapeBits bits.
	ESCAPE_PREFIX_BITS = 4
	ESCAPE_MARKER      = 15

	MAX_READ_BITS = 32
)

var (
	ErrBitOverflow    = errors.New("bit reader: read past end of buffer")
	ErrBitWidthTooBig = errors.New("bit reader: field wider than 32 bits")
)

// BitReader reads MSB-first bit fields from a byte slice.
// Errors are sticky: after the first failure every read returns zero and Err reports the cause.
type BitReader struct {
	buf []byte
	pos uint64
	err error
}

func NewBitReader(buf []byte) *BitReader {
	return &BitReader{buf: buf}
}

func (r *BitReader) Err() error {
	return r.err
}

// Position is the current offset in bits from the start of the buffer.
func (r *BitReader) Position() uint64 {
	return r.pos
}

func (r *BitReader) Seek(bitPos uint64) {
	r.pos = bitPos
}

func (r *BitReader) SeekByte(bytePos uint64) {
	r.pos = bytePos * 8
}

// AlignToByte moves the cursor to the next byte boundary, if not already on one.
func (r *BitReader) AlignToByte() {
	r.pos = (r.pos + 7) &^ 7
}

func (r *BitReader) ReadBit() bool {
	return r.ReadUInt(1) == 1
}

// ReadUInt reads an unsigned big-endian field of nBits (0..32) bits.
func (r *BitReader) ReadUInt(nBits uint8) uint32 {
	if r.err != nil {
		return 0
	}
	if nBits == 0 {
		return 0
	}
	if nBits > MAX_READ_BITS {
		r.err = errors.Wrapf(ErrBitWidthTooBig, "width %d at bit %d", nBits, r.pos)
		return 0
	}

	byteIdx := r.pos >> 3
	shift := r.pos & 7

	var window uint64
	if byteIdx+8 <= uint64(len(r.buf)) {
		// blocks are padded with an overhang so the common case is a single 8 byte load.
		window = binary.BigEndian.Uint64(r.buf[byteIdx:])
	} else {
		needed := (shift + uint64(nBits) + 7) / 8
		if byteIdx+needed > uint64(len(r.buf)) {
			r.err = errors.Wrapf(ErrBitOverflow, "reading %d bits at bit %d of %d", nBits, r.pos, len(r.buf)*8)
			return 0
		}
		for i := uint64(0); i < 8; i++ {
			window <<= 8
			if byteIdx+i < uint64(len(r.buf)) {
				window |= uint64(r.buf[byteIdx+i])
			}
		}
	}

	r.pos += uint64(nBits)
	return uint32((window << shift) >> (64 - uint64(nBits)))
}

// ReadEscapableNumber reads a 4 bit value, and when it equals 15 reads the real value from the next escapeBits bits.
func (r *BitReader) ReadEscapableNumber(escapeBits uint8) uint32 {
	v := r.ReadUInt(ESCAPE_PREFIX_BITS)
	if v != ESCAPE_MARKER {
		return v
	}
	return r.ReadUInt(escapeBits)
}
