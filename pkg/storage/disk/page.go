package disk

import (
	"bytes"
	"encoding/binary"
)

// Page is a fixed layout byte region (file header, graph header, block header) with big-endian accessors.
// Getters past the end return zero; callers validate lengths up front.
type Page struct {
	b []byte
}

func NewPage(size int) *Page {
	return &Page{b: make([]byte, size)}
}

func NewPageFromByteSlice(b []byte) *Page {
	return &Page{b: b}
}

func (p *Page) Contents() []byte {
	return p.b
}

func (p *Page) Len() int {
	return len(p.b)
}

func (p *Page) inRange(offset, n int) bool {
	return offset >= 0 && offset+n <= len(p.b)
}

func (p *Page) GetUint8(offset int) uint8 {
	if !p.inRange(offset, 1) {
		return 0
	}
	return p.b[offset]
}

func (p *Page) GetUint16(offset int) uint16 {
	if !p.inRange(offset, 2) {
		return 0
	}
	return binary.BigEndian.Uint16(p.b[offset:])
}

// GetUint24 reads the 3 byte big-endian field used for the street names offset.
func (p *Page) GetUint24(offset int) uint32 {
	if !p.inRange(offset, 3) {
		return 0
	}
	return uint32(p.b[offset])<<16 | uint32(p.b[offset+1])<<8 | uint32(p.b[offset+2])
}

func (p *Page) GetUint32(offset int) uint32 {
	if !p.inRange(offset, 4) {
		return 0
	}
	return binary.BigEndian.Uint32(p.b[offset:])
}

func (p *Page) GetInt32(offset int) int32 {
	return int32(p.GetUint32(offset))
}

func (p *Page) GetUint64(offset int) uint64 {
	if !p.inRange(offset, 8) {
		return 0
	}
	return binary.BigEndian.Uint64(p.b[offset:])
}

// GetCString returns the zero terminated string at offset and the offset just past its terminator.
// ok is false when no terminator exists before the end of the page.
func (p *Page) GetCString(offset int) (string, int, bool) {
	if offset < 0 || offset >= len(p.b) {
		return "", offset, false
	}
	end := bytes.IndexByte(p.b[offset:], 0)
	if end < 0 {
		return "", offset, false
	}
	return string(p.b[offset : offset+end]), offset + end + 1, true
}

func (p *Page) PutUint8(offset int, v uint8) {
	p.b[offset] = v
}

func (p *Page) PutUint16(offset int, v uint16) {
	binary.BigEndian.PutUint16(p.b[offset:], v)
}

func (p *Page) PutUint24(offset int, v uint32) {
	p.b[offset] = byte(v >> 16)
	p.b[offset+1] = byte(v >> 8)
	p.b[offset+2] = byte(v)
}

func (p *Page) PutUint32(offset int, v uint32) {
	binary.BigEndian.PutUint32(p.b[offset:], v)
}

func (p *Page) PutInt32(offset int, v int32) {
	p.PutUint32(offset, uint32(v))
}

func (p *Page) PutUint64(offset int, v uint64) {
	binary.BigEndian.PutUint64(p.b[offset:], v)
}

// PutCString writes s followed by a zero byte and returns the offset past the terminator.
func (p *Page) PutCString(offset int, s string) int {
	n := copy(p.b[offset:], s)
	p.b[offset+n] = 0
	return offset + n + 1
}
