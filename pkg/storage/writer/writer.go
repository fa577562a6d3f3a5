// Package writer encodes an already contracted graph into the block file format read by pkg/graph.
// It does not contract anything; levels, shortcuts and block assignment come from the caller.
package writer

import (
	"os"

	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/disk"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/index"
	"github.com/pkg/errors"
)

// Edge is a stored up edge. Path lists the real edges of an external shortcut from Low to High.
type Edge struct {
	datastructure.Edge
	Path []datastructure.Edge
}

type Vertex struct {
	Coordinate datastructure.Coordinate
	OriginalID int64
	// Edges stored at this vertex. Each edge's Low must be this vertex.
	Edges []Edge
}

// Block is one partition. A block without vertices is written as an empty address table entry.
type Block struct {
	Vertices []Vertex
}

type Graph struct {
	Params disk.GraphParams
	// Blocks is indexed by block id.
	Blocks []Block
}

// Encode returns the complete graph file.
func Encode(g Graph) ([]byte, error) {
	if err := g.Params.Validate(); err != nil {
		return nil, err
	}
	if len(g.Blocks) > 1<<g.Params.BitsPerBlockID {
		return nil, errors.Errorf("%d blocks do not fit %d block id bits", len(g.Blocks), g.Params.BitsPerBlockID)
	}
	graphHeader, err := g.Params.Encode()
	if err != nil {
		return nil, err
	}

	out := make([]byte, storage.FILE_HEADER_LENGTH, storage.FILE_HEADER_LENGTH+storage.GRAPH_HEADER_LENGTH)
	fh := disk.FileHeader{GraphStart: uint64(len(out))}
	out = append(out, graphHeader...)

	addresses := make([]index.BlockAddress, len(g.Blocks))
	bounds := make([]index.BlockBounds, 0, len(g.Blocks))
	for i, blk := range g.Blocks {
		if len(blk.Vertices) == 0 {
			continue
		}
		id := datastructure.BlockID(i)
		data, err := EncodeBlock(id, blk, g.Params)
		if err != nil {
			return nil, err
		}
		addresses[i] = index.BlockAddress{Offset: uint64(len(out)), Length: uint32(len(data))}
		out = append(out, data...)

		coords := make([]datastructure.Coordinate, len(blk.Vertices))
		for j, v := range blk.Vertices {
			coords[j] = v.Coordinate
		}
		box := datastructure.BoundingBoxOf(coords...)
		bounds = append(bounds, index.BlockBounds{
			BlockID: uint32(id),
			MinLat:  box.MinLat,
			MinLon:  box.MinLon,
			MaxLat:  box.MaxLat,
			MaxLon:  box.MaxLon,
		})
	}

	alt, err := index.NewAddressTable(addresses).Encode()
	if err != nil {
		return nil, err
	}
	fh.AddressTableStart = uint64(len(out))
	out = append(out, alt...)

	spatial, err := index.EncodeSpatialIndex(bounds)
	if err != nil {
		return nil, err
	}
	fh.SpatialIndexStart = uint64(len(out))
	out = append(out, spatial...)

	copy(out, fh.Encode())
	return out, nil
}

func WriteFile(path string, g Graph) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write graph file %s", path)
}
