package snap

import (
	"math"

	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/geo"
)

type Graph interface {
	Vertex(id datastructure.VertexID) (datastructure.Vertex, bool, error)
	VerticesInBoundingBox(box datastructure.BoundingBox) ([]datastructure.Vertex, error)
	StoredEdges(id datastructure.VertexID) ([]datastructure.Edge, error)
}

// Snap is a query point projected onto a road.
type Snap struct {
	Edge       datastructure.Edge
	Projection datastructure.Coordinate
	// Distance is meters from the query point to Projection.
	Distance float64
	// Vertex is the endpoint of Edge closer to Projection along the road.
	Vertex datastructure.VertexID
}

type RoadSnapper struct {
	graph Graph
}

func NewRoadSnapper(g Graph) *RoadSnapper {
	return &RoadSnapper{graph: g}
}

/*
SnapToRoad projects p onto the closest road geometry within radius meters. Only edges stored at a vertex
inside a box of twice the radius are considered; every edge is stored at its lower level endpoint, so a
long road whose stored endpoint is far away can be missed. Shortcuts carry no geometry and are skipped.
ok is false when no road is in range.
*/
func (rs *RoadSnapper) SnapToRoad(p datastructure.Coordinate, radius float64) (Snap, bool, error) {
	var vertices []datastructure.Vertex
	for _, box := range geo.BoundingBoxesAround(p, 2*radius) {
		vs, err := rs.graph.VerticesInBoundingBox(box)
		if err != nil {
			return Snap{}, false, err
		}
		vertices = append(vertices, vs...)
	}

	var (
		best  Snap
		found bool
	)
	best.Distance = math.Inf(1)
	for _, v := range vertices {
		edges, err := rs.graph.StoredEdges(v.ID)
		if err != nil {
			return Snap{}, false, err
		}
		for _, e := range edges {
			if e.IsShortcut() || e.Low != v.ID {
				continue
			}
			high, ok, err := rs.graph.Vertex(e.High)
			if err != nil {
				return Snap{}, false, err
			}
			if !ok {
				continue
			}
			s, ok := snapToEdge(e, v.Coordinate, high.Coordinate, p)
			if ok && s.Distance <= radius && s.Distance < best.Distance {
				best, found = s, true
			}
		}
	}
	return best, found, nil
}

func snapToEdge(e datastructure.Edge, low, high, p datastructure.Coordinate) (Snap, bool) {
	line := make([]datastructure.Coordinate, 0, len(e.Waypoints)+2)
	line = append(line, low)
	line = append(line, e.Waypoints...)
	line = append(line, high)

	var (
		s       = Snap{Edge: e, Distance: math.Inf(1)}
		along   float64 // meters from low to the projection
		covered float64
	)
	for i := 0; i+1 < len(line); i++ {
		proj := geo.ProjectPointToLineCoord(line[i], line[i+1], p)
		if d := geo.GreatCircleDistance(p, proj); d < s.Distance {
			s.Distance = d
			s.Projection = proj
			along = covered + geo.GreatCircleDistance(line[i], proj)
		}
		covered += geo.GreatCircleDistance(line[i], line[i+1])
	}
	if math.IsInf(s.Distance, 1) {
		return Snap{}, false
	}

	s.Vertex = e.Low
	if along > covered-along {
		s.Vertex = e.High
	}
	return s, true
}
