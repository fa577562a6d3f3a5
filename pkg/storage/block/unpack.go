package block

import (
	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage"
	"github.com/pkg/errors"
)

var ErrNeedsGraph = errors.New("internal shortcut unpacking needs the graph access layer")

// ExternalPath resolves an external shortcut's stored path to its real edges, in Low->High order.
func (b *Block) ExternalPath(shortcut datastructure.Edge) ([]datastructure.Edge, error) {
	if shortcut.Kind != datastructure.ExternalShortcut {
		return nil, errors.Errorf("edge %d-%d is a %s, not an external shortcut", shortcut.Low, shortcut.High, shortcut.Kind)
	}
	w := uint32(b.header.BitsPerEdgeOffset)
	if w == 0 || shortcut.PathOffset%w != 0 {
		return nil, storage.DecodeInconsistencyf("block %d: shortcut path offset %d is not a multiple of the %d bit entry width",
			b.id, shortcut.PathOffset, w)
	}
	first := int(shortcut.PathOffset / w)
	if shortcut.PathLength == 0 || first+int(shortcut.PathLength) > len(b.pathRefs) {
		return nil, storage.DecodeInconsistencyf("block %d: shortcut path [%d, +%d) outside %d stored references",
			b.id, first, shortcut.PathLength, len(b.pathRefs))
	}

	path := make([]datastructure.Edge, 0, shortcut.PathLength)
	for _, ref := range b.pathRefs[first : first+int(shortcut.PathLength)] {
		idx, ok := b.edgeAt[ref]
		if !ok {
			return nil, storage.DecodeInconsistencyf("block %d: shortcut path references bit %d where no edge starts", b.id, ref)
		}
		e := b.edges[idx]
		if e.IsShortcut() {
			return nil, storage.DecodeInconsistencyf("block %d: shortcut path references shortcut %d-%d", b.id, e.Low, e.High)
		}
		path = append(path, e)
	}
	return path, nil
}

// UnpackShortcut expands normal edges and external shortcuts owned by this block into real edges walked from start.
// Internal shortcuts reference edges of other blocks and return ErrNeedsGraph.
func (b *Block) UnpackShortcut(edge datastructure.Edge, start datastructure.VertexID) ([]datastructure.Edge, error) {
	switch edge.Kind {
	case datastructure.NormalEdge:
		oriented, ok := edge.OrientFrom(start)
		if !ok {
			return nil, storage.DecodeInconsistencyf("vertex %d is not an endpoint of edge %d-%d", start, edge.Low, edge.High)
		}
		return []datastructure.Edge{oriented}, nil
	case datastructure.InternalShortcut:
		return nil, ErrNeedsGraph
	}

	if start != edge.Low && start != edge.High {
		return nil, storage.DecodeInconsistencyf("vertex %d is not an endpoint of shortcut %d-%d", start, edge.Low, edge.High)
	}
	path, err := b.ExternalPath(edge)
	if err != nil {
		return nil, err
	}
	if start == edge.High {
		for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
			path[i], path[j] = path[j], path[i]
		}
	}

	cur := start
	for i, e := range path {
		oriented, ok := e.OrientFrom(cur)
		if !ok {
			return nil, storage.DecodeInconsistencyf("block %d: shortcut %d-%d path breaks at step %d, vertex %d not on edge %d-%d",
				b.id, edge.Low, edge.High, i, cur, e.Low, e.High)
		}
		path[i] = oriented
		cur = oriented.Target()
	}
	if cur != edge.Other(start) {
		return nil, storage.DecodeInconsistencyf("block %d: shortcut %d-%d path ends at %d", b.id, edge.Low, edge.High, cur)
	}
	return path, nil
}
