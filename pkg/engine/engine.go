package engine

import (
	"context"

	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/geo"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/graph"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/snap"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/buffer"
	"github.com/sirupsen/logrus"
)

// Route is an unpacked shortest path. Found is false when the endpoints are not connected.
type Route struct {
	Found          bool
	Edges          []datastructure.Edge
	Weight         uint64
	DistanceMeters float64
	// Geometry runs from the source vertex through every edge's waypoints to the target vertex.
	Geometry []datastructure.Coordinate
	Polyline string
	Stats    datastructure.QueryStats
}

type Option func(*Engine)

// WithSimplification runs Douglas-Peucker over the route geometry with the given tolerance in meters.
func WithSimplification(threshold float64) Option {
	return func(e *Engine) {
		e.simplifyThreshold = threshold
	}
}

// Engine answers route and proximity queries against one graph file. Safe for concurrent use.
type Engine struct {
	graph             *graph.Graph
	router            *routingalgorithm.RouteAlgorithm
	snapper           *snap.RoadSnapper
	simplifyThreshold float64
	log               logrus.FieldLogger
}

func Open(path string, gopts graph.Options, opts ...Option) (*Engine, error) {
	g, err := graph.Open(path, gopts)
	if err != nil {
		return nil, err
	}
	log := gopts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	e := &Engine{
		graph:   g,
		router:  routingalgorithm.NewRouteAlgorithm(g),
		snapper: snap.NewRoadSnapper(g),
		log:     log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Close() error {
	return e.graph.Close()
}

func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// ShortestPath runs the CH query from -> to and assembles the route geometry.
func (e *Engine) ShortestPath(ctx context.Context, from, to datastructure.VertexID) (Route, error) {
	var route Route
	edges, weight, err := e.router.ShortestPathBiDijkstraCH(ctx, from, to, &route.Stats)
	if err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{"from": from, "to": to}).Warn("shortest path query failed")
		return Route{}, err
	}
	route.Edges = edges
	route.Weight = weight

	if len(edges) == 0 {
		if from != to {
			return route, nil
		}
		// a vertex is trivially connected to itself, when it exists
		v, ok, err := e.graph.Vertex(from)
		if err != nil || !ok {
			return route, err
		}
		route.Found = true
		route.Geometry = []datastructure.Coordinate{v.Coordinate}
		route.Polyline = datastructure.CreatePolyline(route.Geometry)
		return route, nil
	}
	route.Found = true
	route.Geometry, err = e.geometry(from, edges)
	if err != nil {
		return Route{}, err
	}
	route.DistanceMeters = geo.PolylineLength(route.Geometry)
	if e.simplifyThreshold > 0 {
		route.Geometry = geo.RamerDouglasPeucker(route.Geometry, e.simplifyThreshold)
	}
	route.Polyline = datastructure.CreatePolyline(route.Geometry)

	e.log.WithFields(logrus.Fields{
		"from":     from,
		"to":       to,
		"edges":    len(edges),
		"weight":   weight,
		"settled":  route.Stats.SettledVertices,
		"stalled":  route.Stats.StalledVertices,
		"unpacked": route.Stats.UnpackedEdges,
	}).Debug("shortest path found")
	return route, nil
}

func (e *Engine) geometry(from datastructure.VertexID, edges []datastructure.Edge) ([]datastructure.Coordinate, error) {
	src, err := e.vertex(from)
	if err != nil {
		return nil, err
	}
	coords := []datastructure.Coordinate{src.Coordinate}
	for _, edge := range edges {
		coords = append(coords, edge.OrientedWaypoints()...)
		v, err := e.vertex(edge.Target())
		if err != nil {
			return nil, err
		}
		coords = append(coords, v.Coordinate)
	}
	return coords, nil
}

// vertex treats a vertex referenced by an edge but missing from its block as a corrupt file.
func (e *Engine) vertex(id datastructure.VertexID) (datastructure.Vertex, error) {
	v, ok, err := e.graph.Vertex(id)
	if err != nil {
		return datastructure.Vertex{}, err
	}
	if !ok {
		return datastructure.Vertex{}, storage.DecodeInconsistencyf("route references missing vertex %d", id)
	}
	return v, nil
}

func (e *Engine) Vertex(id datastructure.VertexID) (datastructure.Vertex, bool, error) {
	return e.graph.Vertex(id)
}

// NearestVertex snaps lat, lon to the closest vertex within radius meters.
func (e *Engine) NearestVertex(lat, lon, radius float64) (datastructure.Vertex, bool, error) {
	return e.graph.NearestVertex(datastructure.NewCoordinate(lat, lon), radius)
}

// SnapToRoad projects lat, lon onto the closest road within radius meters.
func (e *Engine) SnapToRoad(lat, lon, radius float64) (snap.Snap, bool, error) {
	return e.snapper.SnapToRoad(datastructure.NewCoordinate(lat, lon), radius)
}

func (e *Engine) VerticesInBoundingBox(box datastructure.BoundingBox) ([]datastructure.Vertex, error) {
	return e.graph.VerticesInBoundingBox(box)
}

func (e *Engine) BoundingBox() (datastructure.BoundingBox, bool) {
	return e.graph.BoundingBox()
}

func (e *Engine) StreetTypeName(streetType uint8) string {
	return e.graph.StreetTypeName(streetType)
}

func (e *Engine) CacheStats() buffer.CacheStats {
	return e.graph.CacheStats()
}
