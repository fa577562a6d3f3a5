package datastructure

// VertexID packs the owning block and the position inside it: (blockID << bitsPerVertexOffset) | offset.
type VertexID uint32

type BlockID uint32

// IDCodec converts between vertex ids and (block, offset) pairs for a given graph.
type IDCodec struct {
	BitsPerVertexOffset uint8
}

func NewIDCodec(bitsPerVertexOffset uint8) IDCodec {
	return IDCodec{BitsPerVertexOffset: bitsPerVertexOffset}
}

func (c IDCodec) VertexID(block BlockID, offset uint32) VertexID {
	return VertexID(uint32(block)<<c.BitsPerVertexOffset | offset)
}

func (c IDCodec) BlockID(id VertexID) BlockID {
	return BlockID(uint32(id) >> c.BitsPerVertexOffset)
}

func (c IDCodec) VertexOffset(id VertexID) uint32 {
	return uint32(id) & (1<<c.BitsPerVertexOffset - 1)
}

const NO_ORIGINAL_ID = -1

type Vertex struct {
	ID         VertexID
	Coordinate Coordinate
	// OriginalID is only present in debug builds of the graph file.
	OriginalID int64
}

func NewVertex(id VertexID, coord Coordinate) Vertex {
	return Vertex{ID: id, Coordinate: coord, OriginalID: NO_ORIGINAL_ID}
}

type EdgeKind uint8

const (
	NormalEdge EdgeKind = iota
	InternalShortcut
	ExternalShortcut
)

func (k EdgeKind) String() string {
	switch k {
	case NormalEdge:
		return "normal"
	case InternalShortcut:
		return "internal-shortcut"
	case ExternalShortcut:
		return "external-shortcut"
	}
	return "unknown"
}

// Edge connects Low (lower level) and High (higher level) vertex.
// Forward means traversable Low->High, Backward means High->Low.
// Which payload fields are meaningful depends on Kind.
type Edge struct {
	Kind     EdgeKind
	Forward  bool
	Backward bool
	Low      VertexID
	High     VertexID
	Weight   uint32

	// reversed is set on oriented edges walked High->Low.
	reversed bool

	// InternalShortcut
	Bypassed VertexID

	// ExternalShortcut, bit offset into the owning block's shortcut path section.
	PathOffset uint32
	PathLength uint32

	// NormalEdge
	StreetType uint8
	Roundabout bool
	Name       string
	Ref        string
	Waypoints  []Coordinate

	OriginalID int64
}

func (e Edge) IsShortcut() bool {
	return e.Kind != NormalEdge
}

func (e Edge) Reversed() bool {
	return e.reversed
}

func (e Edge) Source() VertexID {
	if e.reversed {
		return e.High
	}
	return e.Low
}

func (e Edge) Target() VertexID {
	if e.reversed {
		return e.Low
	}
	return e.High
}

// Other returns the endpoint opposite v. v is assumed to be an endpoint.
func (e Edge) Other(v VertexID) VertexID {
	if v == e.Low {
		return e.High
	}
	return e.Low
}

// TraversableFrom reports whether the edge may be walked starting at from.
func (e Edge) TraversableFrom(from VertexID) bool {
	switch from {
	case e.Low:
		return e.Forward
	case e.High:
		return e.Backward
	}
	return false
}

// OrientFrom returns a copy of e walked from start. ok is false if start is not an endpoint.
func (e Edge) OrientFrom(start VertexID) (Edge, bool) {
	switch start {
	case e.Low:
		e.reversed = false
	case e.High:
		e.reversed = true
	default:
		return e, false
	}
	return e, true
}

// OrientedWaypoints lists the intermediate points in travel order.
func (e Edge) OrientedWaypoints() []Coordinate {
	if !e.reversed {
		return e.Waypoints
	}
	out := make([]Coordinate, len(e.Waypoints))
	for i, c := range e.Waypoints {
		out[len(out)-1-i] = c
	}
	return out
}
