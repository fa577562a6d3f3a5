package writer

import (
	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/disk"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/util"
)

// Road is the street metadata of a normal edge. Waypoints are given in from -> to order.
type Road struct {
	StreetType uint8
	Roundabout bool
	Name       string
	Ref        string
	Waypoints  []datastructure.Coordinate
}

type builderVertex struct {
	level int
	block datastructure.BlockID
	index int
}

// Builder assembles a Graph from vertices with known contraction levels and edges given as from -> to.
// It picks each edge's Low/High endpoint from the levels and stores the edge at its Low vertex.
type Builder struct {
	params   disk.GraphParams
	ids      datastructure.IDCodec
	blocks   []Block
	vertices map[datastructure.VertexID]builderVertex
}

func NewBuilder(params disk.GraphParams) *Builder {
	return &Builder{
		params:   params,
		ids:      datastructure.NewIDCodec(params.BitsPerVertexOffset),
		vertices: make(map[datastructure.VertexID]builderVertex),
	}
}

// AddVertex appends a vertex to block and returns its id.
func (b *Builder) AddVertex(block datastructure.BlockID, coord datastructure.Coordinate, level int) datastructure.VertexID {
	for int(block) >= len(b.blocks) {
		b.blocks = append(b.blocks, Block{})
	}
	blk := &b.blocks[block]
	offset := len(blk.Vertices)
	blk.Vertices = append(blk.Vertices, Vertex{Coordinate: coord, OriginalID: int64(len(b.vertices))})
	id := b.ids.VertexID(block, uint32(offset))
	b.vertices[id] = builderVertex{level: level, block: block, index: offset}
	return id
}

// orient returns (low, high, forward, backward) for a from -> to edge.
func (b *Builder) orient(from, to datastructure.VertexID, bidirectional bool) (datastructure.VertexID, datastructure.VertexID, bool, bool) {
	lf, lt := b.vertices[from].level, b.vertices[to].level
	if lf < lt || (lf == lt && from < to) {
		return from, to, true, bidirectional
	}
	return to, from, bidirectional, true
}

func (b *Builder) store(e Edge) {
	v := b.vertices[e.Low]
	blk := &b.blocks[v.block]
	blk.Vertices[v.index].Edges = append(blk.Vertices[v.index].Edges, e)
}

// AddRoad adds a normal edge and returns it as stored.
func (b *Builder) AddRoad(from, to datastructure.VertexID, weight uint32, bidirectional bool, road Road) datastructure.Edge {
	low, high, fwd, bwd := b.orient(from, to, bidirectional)
	waypoints := road.Waypoints
	if low != from {
		waypoints = util.ReverseG(waypoints)
	}
	e := datastructure.Edge{
		Kind:       datastructure.NormalEdge,
		Forward:    fwd,
		Backward:   bwd,
		Low:        low,
		High:       high,
		Weight:     weight,
		StreetType: road.StreetType,
		Roundabout: road.Roundabout,
		Name:       road.Name,
		Ref:        road.Ref,
		Waypoints:  waypoints,
		OriginalID: datastructure.NO_ORIGINAL_ID,
	}
	b.store(Edge{Edge: e})
	return e
}

func (b *Builder) AddEdge(from, to datastructure.VertexID, weight uint32, bidirectional bool) datastructure.Edge {
	return b.AddRoad(from, to, weight, bidirectional, Road{})
}

// AddInternalShortcut adds a shortcut from -> to that bypasses via.
func (b *Builder) AddInternalShortcut(from, to, via datastructure.VertexID, weight uint32, bidirectional bool) datastructure.Edge {
	low, high, fwd, bwd := b.orient(from, to, bidirectional)
	e := datastructure.Edge{
		Kind:       datastructure.InternalShortcut,
		Forward:    fwd,
		Backward:   bwd,
		Low:        low,
		High:       high,
		Weight:     weight,
		Bypassed:   via,
		OriginalID: datastructure.NO_ORIGINAL_ID,
	}
	b.store(Edge{Edge: e})
	return e
}

// AddExternalShortcut adds a shortcut whose real edges are listed in path, in from -> to order.
func (b *Builder) AddExternalShortcut(from, to datastructure.VertexID, weight uint32, bidirectional bool, path []datastructure.Edge) datastructure.Edge {
	low, high, fwd, bwd := b.orient(from, to, bidirectional)
	if low != from {
		path = util.ReverseG(path)
	}
	e := datastructure.Edge{
		Kind:       datastructure.ExternalShortcut,
		Forward:    fwd,
		Backward:   bwd,
		Low:        low,
		High:       high,
		Weight:     weight,
		PathLength: uint32(len(path)),
		OriginalID: datastructure.NO_ORIGINAL_ID,
	}
	b.store(Edge{Edge: e, Path: path})
	return e
}

func (b *Builder) Build() Graph {
	return Graph{Params: b.params, Blocks: b.blocks}
}

func (b *Builder) WriteFile(path string) error {
	return WriteFile(path, b.Build())
}

// DefaultParams suits small test and demo graphs.
func DefaultParams() disk.GraphParams {
	return disk.GraphParams{
		BitsPerBlockID:      12,
		BitsPerVertexOffset: 10,
		BitsPerEdgeWeight:   24,
		BitsPerStreetType:   4,
		StreetTypes:         []string{"motorway", "trunk", "primary", "secondary", "tertiary", "residential", "service"},
	}
}
