package writer

import (
	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/block"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/disk"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/util"
	"github.com/pkg/errors"
)

const maxLayoutPasses = 16

// fieldWidths are the block local bit widths stored in the block header.
type fieldWidths struct {
	coordinate       uint8
	vertexEdgeOffset uint8
	streetNameOffset uint8
	pathOffset       uint8
	pathLength       uint8
	edgeOffset       uint8
}

func (w fieldWidths) covers(need fieldWidths) bool {
	return need.coordinate <= w.coordinate && need.vertexEdgeOffset <= w.vertexEdgeOffset &&
		need.streetNameOffset <= w.streetNameOffset && need.pathOffset <= w.pathOffset &&
		need.pathLength <= w.pathLength && need.edgeOffset <= w.edgeOffset
}

func (w fieldWidths) grow(need fieldWidths) fieldWidths {
	return fieldWidths{
		coordinate:       max(w.coordinate, need.coordinate),
		vertexEdgeOffset: max(w.vertexEdgeOffset, need.vertexEdgeOffset),
		streetNameOffset: max(w.streetNameOffset, need.streetNameOffset),
		pathOffset:       max(w.pathOffset, need.pathOffset),
		pathLength:       max(w.pathLength, need.pathLength),
		edgeOffset:       max(w.edgeOffset, need.edgeOffset),
	}
}

func (w fieldWidths) widest() uint8 {
	return max(w.coordinate, w.vertexEdgeOffset, w.streetNameOffset, w.pathOffset, w.pathLength, w.edgeOffset)
}

// edgeKey identifies a real edge so shortcut paths can point at its encoded position.
type edgeKey struct {
	low, high  datastructure.VertexID
	weight     uint32
	fwd, bwd   bool
	streetType uint8
	name, ref  string
}

func keyOf(e datastructure.Edge) edgeKey {
	return edgeKey{low: e.Low, high: e.High, weight: e.Weight, fwd: e.Forward, bwd: e.Backward,
		streetType: e.StreetType, name: e.Name, ref: e.Ref}
}

// blockEncoder lays out one block. Widths that depend on the layout itself (offsets) are found by
// re-encoding until every field fits.
type blockEncoder struct {
	id     datastructure.BlockID
	params disk.GraphParams
	ids    datastructure.IDCodec
	blk    Block

	minLat, minLon int32
	strings        []byte
	stringOffsets  map[string]uint32
	externals      []datastructure.Edge
	// pathStart is the index of a shortcut's first path entry, keyed by (vertex, edge) position.
	pathStart map[[2]int]uint32

	// per pass
	w    fieldWidths
	need fieldWidths
	bw   *util.BitWriter
}

// EncodeBlock returns the bytes of one block. Vertex i of blk gets id (id << bitsPerVertexOffset) | i.
func EncodeBlock(id datastructure.BlockID, blk Block, params disk.GraphParams) ([]byte, error) {
	if len(blk.Vertices) > storage.MAX_VERTICES_PER_BLOCK || len(blk.Vertices) > 1<<params.BitsPerVertexOffset {
		return nil, errors.Errorf("block %d: %d vertices do not fit", id, len(blk.Vertices))
	}
	e := &blockEncoder{
		id:            id,
		params:        params,
		ids:           datastructure.NewIDCodec(params.BitsPerVertexOffset),
		blk:           blk,
		stringOffsets: make(map[string]uint32),
		pathStart:     make(map[[2]int]uint32),
	}
	if err := e.prepare(); err != nil {
		return nil, err
	}

	e.w = fieldWidths{1, 1, 1, 1, 1, 1}
	for pass := 0; pass < maxLayoutPasses; pass++ {
		data, err := e.layout()
		if err != nil {
			return nil, err
		}
		if e.w.covers(e.need) {
			return data, nil
		}
		e.w = e.w.grow(e.need)
		if e.w.widest() > storage.MAX_FIELD_BITS {
			return nil, errors.Errorf("block %d: a field needs more than %d bits", id, storage.MAX_FIELD_BITS)
		}
	}
	return nil, errors.Errorf("block %d: layout did not converge", id)
}

func (e *blockEncoder) prepare() error {
	first := true
	visit := func(c datastructure.Coordinate) {
		if first {
			e.minLat, e.minLon = c.Lat, c.Lon
			first = false
			return
		}
		e.minLat = min(e.minLat, c.Lat)
		e.minLon = min(e.minLon, c.Lon)
	}
	addString := func(s string) {
		if _, ok := e.stringOffsets[s]; ok {
			return
		}
		e.stringOffsets[s] = uint32(len(e.strings))
		e.strings = append(append(e.strings, s...), 0)
	}
	visitEdge := func(edge datastructure.Edge) {
		for _, c := range edge.Waypoints {
			visit(c)
		}
		if edge.Name != "" {
			addString(edge.Name)
		}
		if edge.Ref != "" {
			addString(edge.Ref)
		}
	}

	owned := make(map[edgeKey]bool)
	for i, v := range e.blk.Vertices {
		visit(v.Coordinate)
		vid := e.ids.VertexID(e.id, uint32(i))
		for _, edge := range v.Edges {
			if edge.Low != vid {
				return errors.Errorf("block %d: edge %d-%d listed at vertex %d, edges are stored at their Low vertex", e.id, edge.Low, edge.High, vid)
			}
			if edge.Kind == datastructure.NormalEdge {
				owned[keyOf(edge.Edge)] = true
				visitEdge(edge.Edge)
			}
		}
	}

	external := make(map[edgeKey]bool)
	var entries uint32
	for i, v := range e.blk.Vertices {
		for j, edge := range v.Edges {
			if edge.Kind != datastructure.ExternalShortcut {
				continue
			}
			if len(edge.Path) == 0 {
				return errors.Errorf("block %d: external shortcut %d-%d has no path", e.id, edge.Low, edge.High)
			}
			e.pathStart[[2]int{i, j}] = entries
			entries += uint32(len(edge.Path))
			for _, p := range edge.Path {
				if p.Kind != datastructure.NormalEdge {
					return errors.Errorf("block %d: shortcut %d-%d path contains a shortcut", e.id, edge.Low, edge.High)
				}
				k := keyOf(p)
				if owned[k] || external[k] {
					continue
				}
				external[k] = true
				e.externals = append(e.externals, p)
				visitEdge(p)
			}
		}
	}
	return nil
}

// put writes v in a layout dependent field, recording the width it needs. Values that do not fit
// are written as zero; the pass is discarded and redone with wider fields.
func (e *blockEncoder) put(v uint64, width uint8, need *uint8) {
	*need = max(*need, util.BitsNeeded(v))
	if util.BitsNeeded(v) > width {
		v = 0
	}
	e.bw.WriteUInt(v, width)
}

func (e *blockEncoder) putVertexID(id datastructure.VertexID) error {
	blockID := uint32(e.ids.BlockID(id))
	if err := e.bw.WriteUInt(uint64(blockID), e.params.BitsPerBlockID); err != nil {
		return errors.Wrapf(err, "vertex %d block id", id)
	}
	return e.bw.WriteUInt(uint64(e.ids.VertexOffset(id)), e.params.BitsPerVertexOffset)
}

func (e *blockEncoder) putCoordinate(c datastructure.Coordinate) {
	e.put(uint64(c.Lat-e.minLat), e.w.coordinate, &e.need.coordinate)
	e.put(uint64(c.Lon-e.minLon), e.w.coordinate, &e.need.coordinate)
}

func (e *blockEncoder) layout() ([]byte, error) {
	e.bw = util.NewBitWriter()
	e.need = fieldWidths{}

	e.bw.WriteBytes(make([]byte, storage.BLOCK_HEADER_LENGTH))

	recordPos := make([]uint64, len(e.blk.Vertices))
	for i, v := range e.blk.Vertices {
		e.putCoordinate(v.Coordinate)
		recordPos[i] = e.bw.Position()
		e.bw.WriteUInt(0, e.w.vertexEdgeOffset)
		if e.params.Debug {
			if err := e.bw.WriteUInt(uint64(uint32(v.OriginalID)), storage.DEBUG_ID_BITS); err != nil {
				return nil, err
			}
		}
	}

	edgeAt := make(map[edgeKey]uint64)
	for i, v := range e.blk.Vertices {
		e.bw.AlignToByte()
		byteOffset := e.bw.Position() / 8
		e.need.vertexEdgeOffset = max(e.need.vertexEdgeOffset, util.BitsNeeded(byteOffset))
		if util.BitsNeeded(byteOffset) <= e.w.vertexEdgeOffset {
			e.bw.PutUIntAt(recordPos[i], byteOffset, e.w.vertexEdgeOffset)
		}

		if err := e.bw.WriteEscapableNumber(uint32(len(v.Edges)), storage.EDGE_COUNT_ESCAPE_BITS); err != nil {
			return nil, errors.Wrapf(err, "block %d vertex %d edge count", e.id, i)
		}
		for j, edge := range v.Edges {
			pos := e.bw.Position()
			if err := e.writeEdge(edge.Edge, e.pathStart[[2]int{i, j}], uint32(len(edge.Path))); err != nil {
				return nil, err
			}
			if edge.Kind == datastructure.NormalEdge {
				if _, ok := edgeAt[keyOf(edge.Edge)]; !ok {
					edgeAt[keyOf(edge.Edge)] = pos
				}
			}
		}
	}

	e.bw.AlignToByte()
	if err := e.bw.WriteEscapableNumber(uint32(len(e.externals)), storage.EDGE_COUNT_ESCAPE_BITS); err != nil {
		return nil, errors.Wrapf(err, "block %d external edge count", e.id)
	}
	for _, edge := range e.externals {
		edgeAt[keyOf(edge)] = e.bw.Position()
		if err := e.writeEdge(edge, 0, 0); err != nil {
			return nil, err
		}
	}

	e.bw.AlignToByte()
	for _, v := range e.blk.Vertices {
		for _, edge := range v.Edges {
			for _, p := range edge.Path {
				e.put(edgeAt[keyOf(p)], e.w.edgeOffset, &e.need.edgeOffset)
			}
		}
	}

	e.bw.AlignToByte()
	streetNamesOffset := e.bw.Position() / 8
	if streetNamesOffset > storage.MAX_STREET_NAMES_OFFSET {
		return nil, errors.Errorf("block %d: string table offset %d does not fit 24 bits", e.id, streetNamesOffset)
	}
	e.bw.WriteBytes(e.strings)

	data := e.bw.Bytes()
	header := block.Header{
		VertexCount:               uint16(len(e.blk.Vertices)),
		MinLat:                    e.minLat,
		MinLon:                    e.minLon,
		BitsPerCoordinate:         e.w.coordinate,
		BitsPerVertexEdgeOffset:   e.w.vertexEdgeOffset,
		BitsPerStreetNameOffset:   e.w.streetNameOffset,
		BitsPerShortcutPathOffset: e.w.pathOffset,
		BitsPerShortcutPathLength: e.w.pathLength,
		BitsPerEdgeOffset:         e.w.edgeOffset,
		StreetNamesOffset:         uint32(streetNamesOffset),
	}
	copy(data, header.Encode())
	return data, nil
}

func (e *blockEncoder) writeEdge(edge datastructure.Edge, pathEntry uint32, pathLength uint32) error {
	if e.params.Debug {
		if err := e.bw.WriteUInt(uint64(uint32(edge.OriginalID)), storage.DEBUG_ID_BITS); err != nil {
			return err
		}
	}
	e.bw.WriteBit(edge.Forward)
	e.bw.WriteBit(edge.Backward)
	if err := e.putVertexID(edge.Low); err != nil {
		return err
	}
	if err := e.putVertexID(edge.High); err != nil {
		return err
	}
	if err := e.bw.WriteUInt(uint64(edge.Weight), e.params.BitsPerEdgeWeight); err != nil {
		return errors.Wrapf(err, "edge %d-%d weight", edge.Low, edge.High)
	}

	switch edge.Kind {
	case datastructure.ExternalShortcut:
		e.bw.WriteBit(true)
		e.bw.WriteBit(true)
		e.put(uint64(pathEntry)*uint64(e.w.edgeOffset), e.w.pathOffset, &e.need.pathOffset)
		if pathLength >= util.ESCAPE_MARKER {
			e.need.pathLength = max(e.need.pathLength, util.BitsNeeded(uint64(pathLength)))
			if util.BitsNeeded(uint64(pathLength)) > e.w.pathLength {
				pathLength = 0
			}
		}
		if err := e.bw.WriteEscapableNumber(pathLength, e.w.pathLength); err != nil {
			return err
		}
	case datastructure.InternalShortcut:
		e.bw.WriteBit(true)
		e.bw.WriteBit(false)
		return e.putVertexID(edge.Bypassed)
	default:
		e.bw.WriteBit(false)
		if err := e.bw.WriteUInt(uint64(edge.StreetType), e.params.BitsPerStreetType); err != nil {
			return errors.Wrapf(err, "edge %d-%d street type", edge.Low, edge.High)
		}
		e.bw.WriteBit(edge.Roundabout)
		e.bw.WriteBit(edge.Name != "")
		e.bw.WriteBit(edge.Ref != "")
		if edge.Name != "" {
			e.put(uint64(e.stringOffsets[edge.Name]), e.w.streetNameOffset, &e.need.streetNameOffset)
		}
		if edge.Ref != "" {
			e.put(uint64(e.stringOffsets[edge.Ref]), e.w.streetNameOffset, &e.need.streetNameOffset)
		}
		if err := e.bw.WriteEscapableNumber(uint32(len(edge.Waypoints)), storage.WAYPOINT_COUNT_ESCAPE_BITS); err != nil {
			return errors.Wrapf(err, "edge %d-%d waypoint count", edge.Low, edge.High)
		}
		for _, c := range edge.Waypoints {
			e.putCoordinate(c)
		}
	}
	return nil
}
