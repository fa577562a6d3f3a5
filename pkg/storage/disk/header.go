package disk

import (
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage"
)

// FileHeader holds the absolute offsets of the three file sections.
type FileHeader struct {
	GraphStart        uint64
	AddressTableStart uint64
	SpatialIndexStart uint64
}

// file header layout:
// [0:8] magic | [8:16] graph start | [16:24] address table start | [24:32] spatial index start | zero padding
func (h FileHeader) Encode() []byte {
	p := NewPage(storage.FILE_HEADER_LENGTH)
	copy(p.Contents(), storage.FILE_MAGIC)
	p.PutUint64(8, h.GraphStart)
	p.PutUint64(16, h.AddressTableStart)
	p.PutUint64(24, h.SpatialIndexStart)
	return p.Contents()
}

func ReadFileHeader(f GraphFile) (FileHeader, error) {
	if f.Size() < storage.FILE_HEADER_LENGTH {
		return FileHeader{}, storage.MalformedHeaderf("file of %d bytes is shorter than the %d byte header", f.Size(), storage.FILE_HEADER_LENGTH)
	}
	b, err := ReadBytes(f, 0, storage.FILE_HEADER_LENGTH)
	if err != nil {
		return FileHeader{}, err
	}
	p := NewPageFromByteSlice(b)
	if string(p.Contents()[:len(storage.FILE_MAGIC)]) != storage.FILE_MAGIC {
		return FileHeader{}, storage.MalformedHeaderf("bad magic %q", p.Contents()[:len(storage.FILE_MAGIC)])
	}

	h := FileHeader{
		GraphStart:        p.GetUint64(8),
		AddressTableStart: p.GetUint64(16),
		SpatialIndexStart: p.GetUint64(24),
	}
	size := uint64(f.Size())
	if h.GraphStart+storage.GRAPH_HEADER_LENGTH > size {
		return FileHeader{}, storage.MalformedHeaderf("graph section at %d exceeds file size %d", h.GraphStart, size)
	}
	if h.AddressTableStart >= size || h.SpatialIndexStart >= size {
		return FileHeader{}, storage.MalformedHeaderf("section offsets (%d, %d) exceed file size %d", h.AddressTableStart, h.SpatialIndexStart, size)
	}
	return h, nil
}

// GraphParams are the graph wide field widths and the street type name table.
type GraphParams struct {
	Debug               bool
	BitsPerBlockID      uint8
	BitsPerVertexOffset uint8
	BitsPerEdgeWeight   uint8
	BitsPerStreetType   uint8
	StreetTypes         []string
}

func (g GraphParams) Validate() error {
	if g.BitsPerBlockID == 0 || g.BitsPerVertexOffset == 0 {
		return storage.MalformedHeaderf("zero vertex id width (block %d, offset %d)", g.BitsPerBlockID, g.BitsPerVertexOffset)
	}
	if int(g.BitsPerBlockID)+int(g.BitsPerVertexOffset) > storage.MAX_FIELD_BITS {
		return storage.MalformedHeaderf("vertex id needs %d bits, at most %d supported", int(g.BitsPerBlockID)+int(g.BitsPerVertexOffset), storage.MAX_FIELD_BITS)
	}
	if g.BitsPerVertexOffset > 16 {
		return storage.MalformedHeaderf("bitsPerVertexOffset %d exceeds the 16 bit vertex count", g.BitsPerVertexOffset)
	}
	if g.BitsPerEdgeWeight == 0 || g.BitsPerEdgeWeight > storage.MAX_FIELD_BITS {
		return storage.MalformedHeaderf("bitsPerEdgeWeight %d out of range", g.BitsPerEdgeWeight)
	}
	if g.BitsPerStreetType > 8 {
		return storage.MalformedHeaderf("bitsPerStreetType %d out of range", g.BitsPerStreetType)
	}
	if len(g.StreetTypes) > 255 {
		return storage.MalformedHeaderf("%d street types, at most 255", len(g.StreetTypes))
	}
	return nil
}

// graph header layout:
// [0] debug | [1] bitsPerBlockId | [2] bitsPerVertexOffset | [3] bitsPerEdgeWeight | [4] bitsPerStreetType |
// [5] street type count | zero terminated names... | zero padding
func (g GraphParams) Encode() ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	p := NewPage(storage.GRAPH_HEADER_LENGTH)
	if g.Debug {
		p.PutUint8(0, 1)
	}
	p.PutUint8(1, g.BitsPerBlockID)
	p.PutUint8(2, g.BitsPerVertexOffset)
	p.PutUint8(3, g.BitsPerEdgeWeight)
	p.PutUint8(4, g.BitsPerStreetType)
	p.PutUint8(5, uint8(len(g.StreetTypes)))

	offset := 6
	for _, name := range g.StreetTypes {
		if offset+len(name)+1 > storage.GRAPH_HEADER_LENGTH {
			return nil, storage.MalformedHeaderf("street type names do not fit in the graph header")
		}
		offset = p.PutCString(offset, name)
	}
	return p.Contents(), nil
}

func ReadGraphParams(f GraphFile, offset uint64) (GraphParams, error) {
	b, err := ReadBytes(f, int64(offset), storage.GRAPH_HEADER_LENGTH)
	if err != nil {
		return GraphParams{}, err
	}
	p := NewPageFromByteSlice(b)

	g := GraphParams{
		Debug:               p.GetUint8(0) != 0,
		BitsPerBlockID:      p.GetUint8(1),
		BitsPerVertexOffset: p.GetUint8(2),
		BitsPerEdgeWeight:   p.GetUint8(3),
		BitsPerStreetType:   p.GetUint8(4),
	}
	count := int(p.GetUint8(5))
	g.StreetTypes = make([]string, 0, count)
	pos := 6
	for i := 0; i < count; i++ {
		name, next, ok := p.GetCString(pos)
		if !ok {
			return GraphParams{}, storage.MalformedHeaderf("street type %d of %d is not terminated", i, count)
		}
		g.StreetTypes = append(g.StreetTypes, name)
		pos = next
	}

	if err := g.Validate(); err != nil {
		return GraphParams{}, err
	}
	return g, nil
}
