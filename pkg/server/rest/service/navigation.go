package service

import (
	"context"
	"time"

	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/engine"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/guidance"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/server"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/snap"
	"github.com/pkg/errors"
)

type Engine interface {
	ShortestPath(ctx context.Context, from, to datastructure.VertexID) (engine.Route, error)
	Vertex(id datastructure.VertexID) (datastructure.Vertex, bool, error)
	NearestVertex(lat, lon, radius float64) (datastructure.Vertex, bool, error)
	SnapToRoad(lat, lon, radius float64) (snap.Snap, bool, error)
	VerticesInBoundingBox(box datastructure.BoundingBox) ([]datastructure.Vertex, error)
	BoundingBox() (datastructure.BoundingBox, bool)
}

type RouteResult struct {
	Source       datastructure.Vertex
	Destination  datastructure.Vertex
	Route        engine.Route
	Instructions []guidance.Instruction
}

type NavigationService struct {
	engine        Engine
	timeout       time.Duration
	nearestRadius float64
}

func NewNavigationService(e Engine, timeout time.Duration, nearestRadius float64) *NavigationService {
	return &NavigationService{engine: e, timeout: timeout, nearestRadius: nearestRadius}
}

func (uc *NavigationService) ShortestPath(ctx context.Context, srcLat, srcLon, dstLat, dstLon float64) (RouteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	src, err := uc.snap(srcLat, srcLon)
	if err != nil {
		return RouteResult{}, err
	}
	dst, err := uc.snap(dstLat, dstLon)
	if err != nil {
		return RouteResult{}, err
	}

	route, err := uc.engine.ShortestPath(ctx, src.ID, dst.ID)
	if err != nil {
		return RouteResult{}, queryError(err)
	}
	if !route.Found {
		return RouteResult{}, server.NewErrorf(server.ErrNotFound, "no route between the two locations")
	}

	legs, err := uc.legs(route.Edges)
	if err != nil {
		return RouteResult{}, queryError(err)
	}
	return RouteResult{
		Source:       src,
		Destination:  dst,
		Route:        route,
		Instructions: guidance.GetDrivingInstructions(src.Coordinate, legs),
	}, nil
}

func (uc *NavigationService) snap(lat, lon float64) (datastructure.Vertex, error) {
	v, ok, err := uc.engine.NearestVertex(lat, lon, uc.nearestRadius)
	if err != nil {
		return datastructure.Vertex{}, queryError(err)
	}
	if !ok {
		return datastructure.Vertex{}, server.NewErrorf(server.ErrNotFound,
			"sorry!! the location (%f, %f) is not covered on my map :(", lat, lon)
	}
	return v, nil
}

func (uc *NavigationService) legs(edges []datastructure.Edge) ([]guidance.Leg, error) {
	legs := make([]guidance.Leg, 0, len(edges))
	for _, e := range edges {
		coords := make([]datastructure.Coordinate, 0, len(e.Waypoints)+2)
		for i, id := range [2]datastructure.VertexID{e.Source(), e.Target()} {
			v, ok, err := uc.engine.Vertex(id)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errors.Errorf("route edge references missing vertex %d", id)
			}
			coords = append(coords, v.Coordinate)
			if i == 0 {
				coords = append(coords, e.OrientedWaypoints()...)
			}
		}
		legs = append(legs, guidance.Leg{Edge: e, Geometry: coords})
	}
	return legs, nil
}

func (uc *NavigationService) NearestVertex(ctx context.Context, lat, lon, radius float64) (datastructure.Vertex, error) {
	if radius <= 0 {
		radius = uc.nearestRadius
	}
	v, ok, err := uc.engine.NearestVertex(lat, lon, radius)
	if err != nil {
		return datastructure.Vertex{}, queryError(err)
	}
	if !ok {
		return datastructure.Vertex{}, server.NewErrorf(server.ErrNotFound, "no vertex within %.0f meters", radius)
	}
	return v, nil
}

func (uc *NavigationService) SnapToRoad(ctx context.Context, lat, lon, radius float64) (snap.Snap, error) {
	if radius <= 0 {
		radius = uc.nearestRadius
	}
	s, ok, err := uc.engine.SnapToRoad(lat, lon, radius)
	if err != nil {
		return snap.Snap{}, queryError(err)
	}
	if !ok {
		return snap.Snap{}, server.NewErrorf(server.ErrNotFound, "no road within %.0f meters", radius)
	}
	return s, nil
}

func (uc *NavigationService) VerticesInBoundingBox(ctx context.Context, box datastructure.BoundingBox) ([]datastructure.Vertex, error) {
	if !box.Valid() {
		return nil, server.NewErrorf(server.ErrBadParamInput, "bounding box min must not exceed max")
	}
	vs, err := uc.engine.VerticesInBoundingBox(box)
	if err != nil {
		return nil, queryError(err)
	}
	return vs, nil
}

func (uc *NavigationService) BoundingBox(ctx context.Context) (datastructure.BoundingBox, error) {
	box, ok := uc.engine.BoundingBox()
	if !ok {
		return datastructure.BoundingBox{}, server.NewErrorf(server.ErrNotFound, "graph has no blocks")
	}
	return box, nil
}

func queryError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return server.WrapErrorf(err, server.ErrTimeout, "query took too long")
	}
	return server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
}
