package graph

import (
	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage"
)

// shortcuts nest at most once per contraction level, far below this on road graphs.
const maxUnpackDepth = 64

// UnpackShortcut expands edge into the real edges it represents, walked from start.
func (g *Graph) UnpackShortcut(edge datastructure.Edge, start datastructure.VertexID) ([]datastructure.Edge, error) {
	return g.unpack(edge, start, 0)
}

func (g *Graph) unpack(edge datastructure.Edge, start datastructure.VertexID, depth int) ([]datastructure.Edge, error) {
	if depth > maxUnpackDepth {
		return nil, storage.DecodeInconsistencyf("shortcut %d-%d nests deeper than %d levels", edge.Low, edge.High, maxUnpackDepth)
	}
	if start != edge.Low && start != edge.High {
		return nil, storage.DecodeInconsistencyf("vertex %d is not an endpoint of edge %d-%d", start, edge.Low, edge.High)
	}

	switch edge.Kind {
	case datastructure.NormalEdge:
		oriented, _ := edge.OrientFrom(start)
		return []datastructure.Edge{oriented}, nil

	case datastructure.ExternalShortcut:
		// the path lives in the block that stores the shortcut
		blk, _, ok, err := g.blockOf(edge.Low)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, storage.DecodeInconsistencyf("shortcut %d-%d owner block is missing", edge.Low, edge.High)
		}
		return blk.UnpackShortcut(edge, start)
	}

	end := edge.Other(start)
	via := edge.Bypassed
	first, err := g.findEdge(start, via)
	if err != nil {
		return nil, err
	}
	second, err := g.findEdge(via, end)
	if err != nil {
		return nil, err
	}
	head, err := g.unpack(first, start, depth+1)
	if err != nil {
		return nil, err
	}
	tail, err := g.unpack(second, via, depth+1)
	if err != nil {
		return nil, err
	}
	return append(head, tail...), nil
}

// findEdge returns the cheapest stored edge traversable from -> to. Every edge is stored at its lower
// endpoint, so both endpoints' lists are searched.
func (g *Graph) findEdge(from, to datastructure.VertexID) (datastructure.Edge, error) {
	var candidates []datastructure.Edge
	for _, owner := range [2]datastructure.VertexID{from, to} {
		edges, err := g.StoredEdges(owner)
		if err != nil {
			return datastructure.Edge{}, err
		}
		for _, e := range edges {
			if e.TraversableFrom(from) {
				candidates = append(candidates, e)
			}
		}
	}
	best, ok := SelectBestCandidate(candidates, from, to)
	if !ok {
		return datastructure.Edge{}, storage.DecodeInconsistencyf("no edge %d -> %d to unpack a shortcut", from, to)
	}
	return best, nil
}

// SelectBestCandidate picks the minimum weight edge connecting from and to. The first one seen wins ties.
func SelectBestCandidate(candidates []datastructure.Edge, from, to datastructure.VertexID) (datastructure.Edge, bool) {
	var (
		best  datastructure.Edge
		found bool
	)
	for _, e := range candidates {
		if !((e.Low == from && e.High == to) || (e.Low == to && e.High == from)) {
			continue
		}
		if !found || e.Weight < best.Weight {
			best, found = e, true
		}
	}
	return best, found
}
