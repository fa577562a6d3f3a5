package block

import (
	"unsafe"

	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/disk"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/util"
)

/*
block header layout (19 bytes, big endian):
[0:2]   vertex count
[2:6]   min latitude  (microdegrees)
[6:10]  min longitude (microdegrees)
[10]    bitsPerCoordinate
[11]    bitsPerVertexEdgeOffset
[12]    bitsPerStreetNameOffset
[13]    bitsPerShortcutPathOffset
[14]    bitsPerShortcutPathLength
[15]    bitsPerEdgeOffset
[16:19] street names offset (bytes from block start)

followed by the bit packed vertex records, the per vertex edge lists, the external edges,
the shortcut path section and the string table.
*/
type Header struct {
	VertexCount               uint16
	MinLat                    int32
	MinLon                    int32
	BitsPerCoordinate         uint8
	BitsPerVertexEdgeOffset   uint8
	BitsPerStreetNameOffset   uint8
	BitsPerShortcutPathOffset uint8
	BitsPerShortcutPathLength uint8
	BitsPerEdgeOffset         uint8
	StreetNamesOffset         uint32
}

func (h Header) Encode() []byte {
	p := disk.NewPage(storage.BLOCK_HEADER_LENGTH)
	p.PutUint16(0, h.VertexCount)
	p.PutInt32(2, h.MinLat)
	p.PutInt32(6, h.MinLon)
	p.PutUint8(10, h.BitsPerCoordinate)
	p.PutUint8(11, h.BitsPerVertexEdgeOffset)
	p.PutUint8(12, h.BitsPerStreetNameOffset)
	p.PutUint8(13, h.BitsPerShortcutPathOffset)
	p.PutUint8(14, h.BitsPerShortcutPathLength)
	p.PutUint8(15, h.BitsPerEdgeOffset)
	p.PutUint24(16, h.StreetNamesOffset)
	return p.Contents()
}

func decodeHeader(b []byte) Header {
	p := disk.NewPageFromByteSlice(b)
	return Header{
		VertexCount:               p.GetUint16(0),
		MinLat:                    p.GetInt32(2),
		MinLon:                    p.GetInt32(6),
		BitsPerCoordinate:         p.GetUint8(10),
		BitsPerVertexEdgeOffset:   p.GetUint8(11),
		BitsPerStreetNameOffset:   p.GetUint8(12),
		BitsPerShortcutPathOffset: p.GetUint8(13),
		BitsPerShortcutPathLength: p.GetUint8(14),
		BitsPerEdgeOffset:         p.GetUint8(15),
		StreetNamesOffset:         p.GetUint24(16),
	}
}

func (h Header) validate() error {
	for _, w := range []uint8{h.BitsPerCoordinate, h.BitsPerVertexEdgeOffset, h.BitsPerStreetNameOffset,
		h.BitsPerShortcutPathOffset, h.BitsPerShortcutPathLength, h.BitsPerEdgeOffset} {
		if w > storage.MAX_FIELD_BITS {
			return storage.DecodeInconsistencyf("block field width %d exceeds %d bits", w, storage.MAX_FIELD_BITS)
		}
	}
	return nil
}

// Block is a fully decoded, immutable graph partition.
type Block struct {
	id     datastructure.BlockID
	header Header
	ids    datastructure.IDCodec

	vertices []datastructure.Vertex
	// edges holds every stored edge. Vertex i owns edges[firstEdge[i]:firstEdge[i+1]],
	// external edges follow from firstEdge[len(vertices)].
	edges     []datastructure.Edge
	firstEdge []int
	// edgeAt maps an edge's bit offset inside the block to its index in edges.
	edgeAt   map[uint32]int
	pathRefs []uint32

	footprint int64
}

func (b *Block) ID() datastructure.BlockID {
	return b.id
}

func (b *Block) Header() Header {
	return b.header
}

func (b *Block) VertexCount() int {
	return len(b.vertices)
}

// Footprint is the estimated number of bytes the decoded block keeps alive.
func (b *Block) Footprint() int64 {
	return b.footprint
}

func (b *Block) Vertex(offset uint32) (datastructure.Vertex, bool) {
	if int(offset) >= len(b.vertices) {
		return datastructure.Vertex{}, false
	}
	return b.vertices[offset], true
}

func (b *Block) Vertices() []datastructure.Vertex {
	out := make([]datastructure.Vertex, len(b.vertices))
	copy(out, b.vertices)
	return out
}

// Edges returns every up edge stored at the vertex regardless of direction flags.
func (b *Block) Edges(offset uint32) []datastructure.Edge {
	if int(offset) >= len(b.vertices) {
		return nil
	}
	return b.edges[b.firstEdge[offset]:b.firstEdge[offset+1]:b.firstEdge[offset+1]]
}

// OutgoingEdgesToHigherVertices are the stored edges traversable from the vertex upward.
func (b *Block) OutgoingEdgesToHigherVertices(offset uint32) []datastructure.Edge {
	return b.filter(offset, func(e datastructure.Edge) bool { return e.Forward })
}

// IngoingEdgesFromHigherVertices are the stored edges traversable from the higher vertex down to this one.
func (b *Block) IngoingEdgesFromHigherVertices(offset uint32) []datastructure.Edge {
	return b.filter(offset, func(e datastructure.Edge) bool { return e.Backward })
}

func (b *Block) filter(offset uint32, keep func(datastructure.Edge) bool) []datastructure.Edge {
	stored := b.Edges(offset)
	out := make([]datastructure.Edge, 0, len(stored))
	for _, e := range stored {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (b *Block) estimateFootprint() int64 {
	const mapEntry = 16
	size := int64(unsafe.Sizeof(Block{}))
	size += int64(len(b.vertices)) * int64(unsafe.Sizeof(datastructure.Vertex{}))
	size += int64(len(b.edges)) * int64(unsafe.Sizeof(datastructure.Edge{}))
	size += int64(len(b.firstEdge)) * int64(unsafe.Sizeof(int(0)))
	size += int64(len(b.edgeAt)) * mapEntry
	size += int64(len(b.pathRefs)) * 4
	for _, e := range b.edges {
		size += int64(len(e.Waypoints)) * int64(unsafe.Sizeof(datastructure.Coordinate{}))
		size += int64(len(e.Name) + len(e.Ref))
	}
	return size
}

// blockDecoder carries the state for decoding one block.
type blockDecoder struct {
	id      datastructure.BlockID
	params  disk.GraphParams
	ids     datastructure.IDCodec
	header  Header
	data    []byte
	logical int
	r       *util.BitReader
	strings map[uint32]string
}

// Decode parses a block. data holds the block's length logical bytes followed by the read overhang.
func Decode(id datastructure.BlockID, data []byte, length int, params disk.GraphParams) (*Block, error) {
	if length < storage.BLOCK_HEADER_LENGTH || len(data) < length {
		return nil, storage.DecodeInconsistencyf("block %d: %d bytes is shorter than its header", id, length)
	}

	d := &blockDecoder{
		id:      id,
		params:  params,
		ids:     datastructure.NewIDCodec(params.BitsPerVertexOffset),
		header:  decodeHeader(data[:storage.BLOCK_HEADER_LENGTH]),
		data:    data,
		logical: length,
		r:       util.NewBitReader(data[:length+min(len(data)-length, storage.BLOCK_READ_OVERHANG)]),
		strings: make(map[uint32]string),
	}
	if err := d.header.validate(); err != nil {
		return nil, err
	}
	if int(d.header.StreetNamesOffset) > length {
		return nil, storage.DecodeInconsistencyf("block %d: street names offset %d beyond block length %d", id, d.header.StreetNamesOffset, length)
	}
	if int(d.header.VertexCount) > 1<<params.BitsPerVertexOffset {
		return nil, storage.DecodeInconsistencyf("block %d: %d vertices do not fit %d offset bits", id, d.header.VertexCount, params.BitsPerVertexOffset)
	}

	blk := &Block{
		id:     id,
		header: d.header,
		ids:    d.ids,
		edgeAt: make(map[uint32]int),
	}
	if err := d.decode(blk); err != nil {
		return nil, err
	}
	blk.footprint = blk.estimateFootprint()
	return blk, nil
}

func (d *blockDecoder) decode(blk *Block) error {
	n := int(d.header.VertexCount)
	edgeOffsets := make([]uint64, n)
	blk.vertices = make([]datastructure.Vertex, n)

	d.r.SeekByte(storage.BLOCK_HEADER_LENGTH)
	for i := 0; i < n; i++ {
		latDelta := d.r.ReadUInt(d.header.BitsPerCoordinate)
		lonDelta := d.r.ReadUInt(d.header.BitsPerCoordinate)
		edgeOffsets[i] = uint64(d.r.ReadUInt(d.header.BitsPerVertexEdgeOffset))

		v := datastructure.NewVertex(d.ids.VertexID(d.id, uint32(i)), d.coordinate(latDelta, lonDelta))
		if d.params.Debug {
			v.OriginalID = int64(d.r.ReadUInt(storage.DEBUG_ID_BITS))
		}
		blk.vertices[i] = v
	}
	if err := d.r.Err(); err != nil {
		return storage.DecodeInconsistencyf("block %d: vertex records: %v", d.id, err)
	}

	recordsEnd := d.r.Position()
	listsEnd := (recordsEnd + 7) &^ 7
	blk.firstEdge = make([]int, n+1)
	for i := 0; i < n; i++ {
		blk.firstEdge[i] = len(blk.edges)
		if edgeOffsets[i]*8 < recordsEnd || edgeOffsets[i] >= uint64(d.logical) {
			return storage.DecodeInconsistencyf("block %d: vertex %d edge list at byte %d outside the edge section", d.id, i, edgeOffsets[i])
		}
		d.r.SeekByte(edgeOffsets[i])
		owner := blk.vertices[i].ID
		count := d.r.ReadEscapableNumber(storage.EDGE_COUNT_ESCAPE_BITS)
		for j := uint32(0); j < count; j++ {
			e, err := d.readEdge(blk)
			if err != nil {
				return err
			}
			if e.Low != owner {
				return storage.DecodeInconsistencyf("block %d: edge %d-%d stored at vertex %d", d.id, e.Low, e.High, owner)
			}
		}
		listsEnd = max(listsEnd, d.r.Position())
	}
	blk.firstEdge[n] = len(blk.edges)

	d.r.Seek(listsEnd)
	d.r.AlignToByte()
	externalCount := d.r.ReadEscapableNumber(storage.EDGE_COUNT_ESCAPE_BITS)
	for j := uint32(0); j < externalCount; j++ {
		if _, err := d.readEdge(blk); err != nil {
			return err
		}
	}

	d.r.AlignToByte()
	pathsStart := d.r.Position()
	pathsEnd := uint64(d.header.StreetNamesOffset) * 8
	if pathsStart > pathsEnd {
		return storage.DecodeInconsistencyf("block %d: edge data ends at bit %d past the string table at bit %d", d.id, pathsStart, pathsEnd)
	}
	if w := uint64(d.header.BitsPerEdgeOffset); w > 0 {
		count := (pathsEnd - pathsStart) / w
		blk.pathRefs = make([]uint32, count)
		for i := range blk.pathRefs {
			blk.pathRefs[i] = d.r.ReadUInt(d.header.BitsPerEdgeOffset)
		}
	}
	if err := d.r.Err(); err != nil {
		return storage.DecodeInconsistencyf("block %d: %v", d.id, err)
	}
	return nil
}

func (d *blockDecoder) coordinate(latDelta, lonDelta uint32) datastructure.Coordinate {
	return datastructure.Coordinate{
		Lat: d.header.MinLat + int32(latDelta),
		Lon: d.header.MinLon + int32(lonDelta),
	}
}

func (d *blockDecoder) readVertexID() datastructure.VertexID {
	block := d.r.ReadUInt(d.params.BitsPerBlockID)
	offset := d.r.ReadUInt(d.params.BitsPerVertexOffset)
	return d.ids.VertexID(datastructure.BlockID(block), offset)
}

// readEdge decodes the edge at the cursor and records it in blk.
func (d *blockDecoder) readEdge(blk *Block) (datastructure.Edge, error) {
	bitOffset := d.r.Position()
	e := datastructure.Edge{OriginalID: datastructure.NO_ORIGINAL_ID}

	if d.params.Debug {
		e.OriginalID = int64(d.r.ReadUInt(storage.DEBUG_ID_BITS))
	}
	e.Forward = d.r.ReadBit()
	e.Backward = d.r.ReadBit()
	e.Low = d.readVertexID()
	e.High = d.readVertexID()
	e.Weight = d.r.ReadUInt(d.params.BitsPerEdgeWeight)

	if d.r.ReadBit() {
		if d.r.ReadBit() {
			e.Kind = datastructure.ExternalShortcut
			e.PathOffset = d.r.ReadUInt(d.header.BitsPerShortcutPathOffset)
			e.PathLength = d.r.ReadEscapableNumber(d.header.BitsPerShortcutPathLength)
		} else {
			e.Kind = datastructure.InternalShortcut
			e.Bypassed = d.readVertexID()
		}
	} else {
		e.Kind = datastructure.NormalEdge
		e.StreetType = uint8(d.r.ReadUInt(d.params.BitsPerStreetType))
		e.Roundabout = d.r.ReadBit()
		hasName := d.r.ReadBit()
		hasRef := d.r.ReadBit()
		var err error
		if hasName {
			if e.Name, err = d.readString(d.r.ReadUInt(d.header.BitsPerStreetNameOffset)); err != nil {
				return e, err
			}
		}
		if hasRef {
			if e.Ref, err = d.readString(d.r.ReadUInt(d.header.BitsPerStreetNameOffset)); err != nil {
				return e, err
			}
		}
		count := d.r.ReadEscapableNumber(storage.WAYPOINT_COUNT_ESCAPE_BITS)
		if count > 0 {
			e.Waypoints = make([]datastructure.Coordinate, 0, min(count, 1024))
			for i := uint32(0); i < count && d.r.Err() == nil; i++ {
				lat := d.r.ReadUInt(d.header.BitsPerCoordinate)
				lon := d.r.ReadUInt(d.header.BitsPerCoordinate)
				e.Waypoints = append(e.Waypoints, d.coordinate(lat, lon))
			}
		}
	}

	if err := d.r.Err(); err != nil {
		return e, storage.DecodeInconsistencyf("block %d: edge at bit %d: %v", d.id, bitOffset, err)
	}
	if d.r.Position() > uint64(d.logical)*8 {
		return e, storage.DecodeInconsistencyf("block %d: edge at bit %d runs past the block end", d.id, bitOffset)
	}

	blk.edgeAt[uint32(bitOffset)] = len(blk.edges)
	blk.edges = append(blk.edges, e)
	return e, nil
}

func (d *blockDecoder) readString(offset uint32) (string, error) {
	if s, ok := d.strings[offset]; ok {
		return s, nil
	}
	table := disk.NewPageFromByteSlice(d.data[d.header.StreetNamesOffset:d.logical])
	s, _, ok := table.GetCString(int(offset))
	if !ok {
		return "", storage.DecodeInconsistencyf("block %d: string at %d is not terminated inside the block", d.id, offset)
	}
	d.strings[offset] = s
	return s, nil
}
