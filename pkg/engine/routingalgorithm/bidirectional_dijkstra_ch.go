package routingalgorithm

import (
	"context"
	"math"

	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/pkg/errors"
)

type RouteAlgorithm struct {
	ch ContractedGraph
}

func NewRouteAlgorithm(ch ContractedGraph) *RouteAlgorithm {
	return &RouteAlgorithm{ch: ch}
}

// searchItem is the best known discovery of a vertex in one direction.
type searchItem struct {
	dist    int64
	stalled bool
	settled bool
	// parent is the neighbor one step closer to the direction's root, reached through edge.
	parent datastructure.VertexID
	edge   datastructure.Edge
	root   bool
}

type searchDirection struct {
	forward bool
	pq      *datastructure.MinHeap[datastructure.VertexID]
	items   map[datastructure.VertexID]*searchItem
}

func newSearchDirection(root datastructure.VertexID, forward bool) *searchDirection {
	d := &searchDirection{
		forward: forward,
		pq:      datastructure.NewMinHeap[datastructure.VertexID](),
		items:   make(map[datastructure.VertexID]*searchItem),
	}
	d.items[root] = &searchItem{dist: 0, root: true}
	d.pq.Insert(datastructure.PriorityQueueNode[datastructure.VertexID]{Rank: 0, Item: root})
	return d
}

// upEdges are the edges this direction relaxes: forward walks outgoing edges up,
// backward walks ingoing edges up (against their travel direction).
func (d *searchDirection) upEdges(ch ContractedGraph, v datastructure.VertexID) ([]datastructure.Edge, error) {
	if d.forward {
		return ch.OutgoingEdgesToHigherVertices(v)
	}
	return ch.IngoingEdgesFromHigherVertices(v)
}

// stallEdges are the opposite direction's edge set. A higher neighbor reached through one of them
// proves a shorter path down to v.
func (d *searchDirection) stallEdges(ch ContractedGraph, v datastructure.VertexID) ([]datastructure.Edge, error) {
	if d.forward {
		return ch.IngoingEdgesFromHigherVertices(v)
	}
	return ch.OutgoingEdgesToHigherVertices(v)
}

func (d *searchDirection) enqueue(v datastructure.VertexID, dist int64) {
	node := datastructure.PriorityQueueNode[datastructure.VertexID]{Rank: dist, Item: v}
	if err := d.pq.DecreaseKey(node); err != nil {
		d.pq.Insert(node)
	}
}

/*
ShortestPathBiDijkstraCH finds the shortest path from -> to with a bidirectional upward search over the
contraction hierarchy. Both directions only follow edges to higher level vertices; the best meeting vertex
gives the shortest up-down path. Stall-on-demand skips vertices whose tentative distance is beaten by a
path coming down from an already discovered higher vertex.

The returned edges are fully unpacked and oriented from -> to. An empty path with weight 0 and nil error
means from and to are not connected (or from == to). stats may be nil.
*/
func (rt *RouteAlgorithm) ShortestPathBiDijkstraCH(ctx context.Context, from, to datastructure.VertexID,
	stats *datastructure.QueryStats) ([]datastructure.Edge, uint64, error) {

	forward := newSearchDirection(from, true)
	backward := newSearchDirection(to, false)
	directions := [2]*searchDirection{forward, backward}

	estimate := int64(math.MaxInt64)
	var bestCommonVertex datastructure.VertexID
	found := false

	turn := 0
	for forward.pq.Size() > 0 || backward.pq.Size() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		d, other := directions[turn], directions[1-turn]
		turn = 1 - turn
		if d.pq.Size() == 0 {
			continue
		}

		node, _ := d.pq.ExtractMin()
		v := node.Item
		item := d.items[v]
		item.settled = true
		if stats != nil {
			stats.SettledVertices++
		}
		if item.stalled {
			continue
		}
		if item.dist >= estimate {
			// nothing popped later from this direction can improve the estimate
			d.pq.Clear()
			continue
		}

		if o, ok := other.items[v]; ok && !o.stalled && item.dist+o.dist < estimate {
			estimate = item.dist + o.dist
			bestCommonVertex = v
			found = true
			if stats != nil {
				stats.MeetingUpdates++
			}
		}

		stalled, err := rt.stallOnDemand(d, v, item, stats)
		if err != nil {
			return nil, 0, err
		}
		if stalled {
			continue
		}

		edges, err := d.upEdges(rt.ch, v)
		if err != nil {
			return nil, 0, err
		}
		for _, e := range edges {
			w := e.Other(v)
			newDist := item.dist + int64(e.Weight)
			if stats != nil {
				stats.RelaxedEdges++
			}
			wi, ok := d.items[w]
			if !ok {
				d.items[w] = &searchItem{dist: newDist, parent: v, edge: e}
				d.enqueue(w, newDist)
				continue
			}
			if wi.settled || wi.dist < newDist {
				continue
			}
			// an upward path as short as the stall distance lifts the stall
			if wi.dist == newDist && !wi.stalled {
				continue
			}
			wi.dist = newDist
			wi.parent = v
			wi.edge = e
			wi.stalled = false
			d.enqueue(w, newDist)
		}
	}

	if !found {
		return []datastructure.Edge{}, 0, nil
	}
	return rt.unpackPath(forward, backward, from, bestCommonVertex, stats)
}

// stallOnDemand marks item stalled when a higher vertex already discovered in d reaches v cheaper,
// then floods the stall upward to discovered, unsettled vertices it improves.
func (rt *RouteAlgorithm) stallOnDemand(d *searchDirection, v datastructure.VertexID, item *searchItem,
	stats *datastructure.QueryStats) (bool, error) {
	edges, err := d.stallEdges(rt.ch, v)
	if err != nil {
		return false, err
	}

	stallDist := item.dist
	for _, e := range edges {
		u, ok := d.items[e.Other(v)]
		if ok && u.dist+int64(e.Weight) < stallDist {
			stallDist = u.dist + int64(e.Weight)
		}
	}
	if stallDist >= item.dist {
		return false, nil
	}

	item.stalled = true
	item.dist = stallDist
	if stats != nil {
		stats.StalledVertices++
	}

	worklist := []datastructure.VertexID{v}
	for len(worklist) > 0 {
		u := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		ui := d.items[u]

		up, err := d.upEdges(rt.ch, u)
		if err != nil {
			return false, err
		}
		for _, e := range up {
			x := e.Other(u)
			xi, ok := d.items[x]
			if !ok || xi.settled {
				continue
			}
			if propagated := ui.dist + int64(e.Weight); propagated < xi.dist {
				xi.dist = propagated
				xi.stalled = true
				d.enqueue(x, propagated)
				worklist = append(worklist, x)
				if stats != nil {
					stats.StallPropagations++
				}
			}
		}
	}
	return true, nil
}

// unpackPath joins the forward path from -> meet with the backward path meet -> to and expands every shortcut.
func (rt *RouteAlgorithm) unpackPath(forward, backward *searchDirection, from, meet datastructure.VertexID,
	stats *datastructure.QueryStats) ([]datastructure.Edge, uint64, error) {

	var forwardEdges []datastructure.Edge
	for v := meet; !forward.items[v].root; v = forward.items[v].parent {
		forwardEdges = append(forwardEdges, forward.items[v].edge)
	}
	// walked meet -> from, flip to from -> meet
	for i, j := 0, len(forwardEdges)-1; i < j; i, j = i+1, j-1 {
		forwardEdges[i], forwardEdges[j] = forwardEdges[j], forwardEdges[i]
	}

	// backward parents point toward the target, so this walk is already meet -> to
	path := forwardEdges
	for v := meet; !backward.items[v].root; v = backward.items[v].parent {
		path = append(path, backward.items[v].edge)
	}

	unpacked := make([]datastructure.Edge, 0, len(path))
	var weight uint64
	cur := from
	for _, e := range path {
		seq, err := rt.ch.UnpackShortcut(e, cur)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "unpack edge %d-%d", e.Low, e.High)
		}
		for _, s := range seq {
			weight += uint64(s.Weight)
		}
		if len(seq) > 0 {
			cur = seq[len(seq)-1].Target()
		}
		unpacked = append(unpacked, seq...)
	}
	if stats != nil {
		stats.UnpackedEdges += len(unpacked)
	}
	return unpacked, weight, nil
}
