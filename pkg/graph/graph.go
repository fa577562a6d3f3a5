package graph

import (
	"math"

	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/geo"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/block"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/buffer"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/disk"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/index"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type Options struct {
	CacheByteBudget int64
	UseMmap         bool
	Logger          logrus.FieldLogger
	// Registerer receives the block cache metrics when set.
	Registerer prometheus.Registerer
}

// Graph is read only access to a block graph file. It is safe for concurrent use.
type Graph struct {
	path      string
	file      disk.GraphFile
	header    disk.FileHeader
	params    disk.GraphParams
	ids       datastructure.IDCodec
	addresses *index.AddressTable
	spatial   *index.SpatialIndex
	cache     *buffer.BlockCache
	log       logrus.FieldLogger
}

// Open reads the headers, the address table and the spatial index. Blocks are loaded lazily.
func Open(path string, opts Options) (*Graph, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("path", path)
	if opts.CacheByteBudget <= 0 {
		opts.CacheByteBudget = storage.DEFAULT_CACHE_BYTE_BUDGET
	}

	f, err := disk.OpenGraphFile(path, opts.UseMmap)
	if err != nil {
		return nil, err
	}
	g := &Graph{path: path, file: f, log: log}
	if err := g.load(); err != nil {
		f.Close()
		log.WithError(err).Error("failed to open graph")
		return nil, err
	}

	cacheOpts := []buffer.Option{buffer.WithLogger(log)}
	if opts.Registerer != nil {
		cacheOpts = append(cacheOpts, buffer.WithMetrics(buffer.NewMetrics(opts.Registerer)))
	}
	g.cache = buffer.NewBlockCache(opts.CacheByteBudget, g.loadBlock, cacheOpts...)

	log.WithFields(logrus.Fields{
		"blocks":       g.addresses.Len(),
		"cache_budget": opts.CacheByteBudget,
		"mmap":         opts.UseMmap,
	}).Info("graph opened")
	return g, nil
}

func (g *Graph) load() error {
	var err error
	if g.header, err = disk.ReadFileHeader(g.file); err != nil {
		return err
	}
	if g.params, err = disk.ReadGraphParams(g.file, g.header.GraphStart); err != nil {
		return err
	}
	g.ids = datastructure.NewIDCodec(g.params.BitsPerVertexOffset)
	if g.addresses, err = index.LoadAddressTable(g.file, g.header.AddressTableStart); err != nil {
		return err
	}
	if g.spatial, err = index.LoadSpatialIndex(g.file, g.header.SpatialIndexStart); err != nil {
		return err
	}
	return nil
}

func (g *Graph) Close() error {
	g.cache.Purge()
	if err := g.file.Close(); err != nil {
		return storage.IOFailuref(err, "close %s", g.path)
	}
	g.log.Info("graph closed")
	return nil
}

func (g *Graph) loadBlock(id datastructure.BlockID) (*block.Block, error) {
	addr, ok := g.addresses.Lookup(id)
	if !ok {
		return nil, storage.DecodeInconsistencyf("block %d has no address", id)
	}
	data, err := disk.ReadBlock(g.file, int64(addr.Offset), int(addr.Length))
	if err != nil {
		return nil, err
	}
	blk, err := block.Decode(id, data, int(addr.Length), g.params)
	if err != nil {
		g.log.WithError(err).WithField("block_id", id).Error("failed to decode block")
		return nil, err
	}
	return blk, nil
}

// block returns the decoded block, or ok=false when the id has no data.
func (g *Graph) block(id datastructure.BlockID) (*block.Block, bool, error) {
	if _, ok := g.addresses.Lookup(id); !ok {
		return nil, false, nil
	}
	blk, err := g.cache.Get(id)
	if err != nil {
		return nil, false, err
	}
	return blk, true, nil
}

func (g *Graph) blockOf(id datastructure.VertexID) (*block.Block, uint32, bool, error) {
	blk, ok, err := g.block(g.ids.BlockID(id))
	if err != nil || !ok {
		return nil, 0, false, err
	}
	return blk, g.ids.VertexOffset(id), true, nil
}

func (g *Graph) Params() disk.GraphParams {
	return g.params
}

func (g *Graph) IDCodec() datastructure.IDCodec {
	return g.ids
}

func (g *Graph) Vertex(id datastructure.VertexID) (datastructure.Vertex, bool, error) {
	blk, offset, ok, err := g.blockOf(id)
	if err != nil || !ok {
		return datastructure.Vertex{}, false, err
	}
	v, ok := blk.Vertex(offset)
	return v, ok, nil
}

func (g *Graph) OutgoingEdgesToHigherVertices(id datastructure.VertexID) ([]datastructure.Edge, error) {
	blk, offset, ok, err := g.blockOf(id)
	if err != nil || !ok {
		return nil, err
	}
	return blk.OutgoingEdgesToHigherVertices(offset), nil
}

func (g *Graph) IngoingEdgesFromHigherVertices(id datastructure.VertexID) ([]datastructure.Edge, error) {
	blk, offset, ok, err := g.blockOf(id)
	if err != nil || !ok {
		return nil, err
	}
	return blk.IngoingEdgesFromHigherVertices(offset), nil
}

// StoredEdges are all edges kept at id's vertex record, whatever their direction flags. Every edge is kept at its lower level endpoint.
func (g *Graph) StoredEdges(id datastructure.VertexID) ([]datastructure.Edge, error) {
	blk, offset, ok, err := g.blockOf(id)
	if err != nil || !ok {
		return nil, err
	}
	return blk.Edges(offset), nil
}

// NearestVertex returns the vertex closest to point within radius meters. ok is false when none is in range.
// The search area wraps around the antimeridian.
func (g *Graph) NearestVertex(point datastructure.Coordinate, radius float64) (datastructure.Vertex, bool, error) {
	var (
		best     datastructure.Vertex
		bestDist = math.Inf(1)
		found    bool
	)
	for _, id := range g.blocksNear(point, radius) {
		blk, ok, err := g.block(id)
		if err != nil {
			return datastructure.Vertex{}, false, err
		}
		if !ok {
			continue
		}
		for _, v := range blk.Vertices() {
			d := geo.GreatCircleDistance(point, v.Coordinate)
			if d <= radius && d < bestDist {
				best, bestDist, found = v, d, true
			}
		}
	}
	return best, found, nil
}

// blocksNear lists the blocks overlapping any of the boxes around point, each once.
func (g *Graph) blocksNear(point datastructure.Coordinate, radius float64) []datastructure.BlockID {
	var ids []datastructure.BlockID
	seen := make(map[datastructure.BlockID]struct{})
	for _, box := range geo.BoundingBoxesAround(point, radius) {
		for _, id := range g.spatial.BlocksOverlapping(box) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// VerticesInBoundingBox returns the vertices strictly inside box, ordered by id.
func (g *Graph) VerticesInBoundingBox(box datastructure.BoundingBox) ([]datastructure.Vertex, error) {
	out := make([]datastructure.Vertex, 0)
	for _, id := range g.spatial.BlocksOverlapping(box) {
		blk, ok, err := g.block(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, v := range blk.Vertices() {
			if box.Contains(v.Coordinate) {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

func (g *Graph) BoundingBox() (datastructure.BoundingBox, bool) {
	return g.spatial.BoundingBox()
}

// StreetTypeName resolves a street type id against the graph's name table.
func (g *Graph) StreetTypeName(streetType uint8) string {
	if int(streetType) >= len(g.params.StreetTypes) {
		return ""
	}
	return g.params.StreetTypes[streetType]
}

func (g *Graph) CacheStats() buffer.CacheStats {
	return g.cache.Stats()
}
