package util

import "github.com/pkg/errors"

var ErrValueTooWide = errors.New("bit writer: value does not fit in field")

// BitWriter is the encoding counterpart of BitReader.
type BitWriter struct {
	buf []byte
	pos uint64
}

func NewBitWriter() *BitWriter {
	return &BitWriter{}
}

func (w *BitWriter) Position() uint64 {
	return w.pos
}

// Bytes returns the written bytes. A trailing partial byte is zero padded.
func (w *BitWriter) Bytes() []byte {
	return w.buf
}

func (w *BitWriter) grow(bitEnd uint64) {
	need := int((bitEnd + 7) / 8)
	if need > len(w.buf) {
		w.buf = append(w.buf, make([]byte, need-len(w.buf))...)
	}
}

func (w *BitWriter) WriteBit(b bool) {
	if b {
		w.putBits(w.pos, 1, 1)
	} else {
		w.putBits(w.pos, 0, 1)
	}
	w.pos++
}

// WriteUInt appends v as an nBits wide MSB-first field.
func (w *BitWriter) WriteUInt(v uint64, nBits uint8) error {
	if nBits < 64 && v>>nBits != 0 {
		return errors.Wrapf(ErrValueTooWide, "value %d in %d bits", v, nBits)
	}
	w.putBits(w.pos, v, nBits)
	w.pos += uint64(nBits)
	return nil
}

// PutUIntAt overwrites an already reserved field at bitPos.
func (w *BitWriter) PutUIntAt(bitPos uint64, v uint64, nBits uint8) error {
	if nBits < 64 && v>>nBits != 0 {
		return errors.Wrapf(ErrValueTooWide, "value %d in %d bits", v, nBits)
	}
	w.putBits(bitPos, v, nBits)
	return nil
}

func (w *BitWriter) WriteEscapableNumber(v uint32, escapeBits uint8) error {
	if v < ESCAPE_MARKER {
		return w.WriteUInt(uint64(v), ESCAPE_PREFIX_BITS)
	}
	if err := w.WriteUInt(ESCAPE_MARKER, ESCAPE_PREFIX_BITS); err != nil {
		return err
	}
	return w.WriteUInt(uint64(v), escapeBits)
}

func (w *BitWriter) WriteBytes(b []byte) {
	w.AlignToByte()
	w.grow(w.pos)
	w.buf = append(w.buf[:w.pos/8], b...)
	w.pos += uint64(len(b)) * 8
}

func (w *BitWriter) AlignToByte() {
	w.pos = (w.pos + 7) &^ 7
	w.grow(w.pos)
}

func (w *BitWriter) putBits(bitPos uint64, v uint64, nBits uint8) {
	w.grow(bitPos + uint64(nBits))
	for i := uint8(0); i < nBits; i++ {
		bit := (v >> (nBits - 1 - i)) & 1
		p := bitPos + uint64(i)
		mask := byte(0x80 >> (p & 7))
		if bit == 1 {
			w.buf[p>>3] |= mask
		} else {
			w.buf[p>>3] &^= mask
		}
	}
}
