package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/geo"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/graph"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/writer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type solo struct {
	path          string
	gladag, pasar datastructure.VertexID
	keraton       datastructure.VertexID
	island        datastructure.VertexID
	bend          datastructure.Coordinate
}

/*
gladag(0) --Jalan Slamet Riyadi, bend--> pasar(2) --> keraton(1)
shortcut gladag -> keraton via pasar (w 11)
island(0) tidak punya edge
*/
func newSolo(t *testing.T) solo {
	t.Helper()
	bld := writer.NewBuilder(writer.DefaultParams())
	var s solo
	s.gladag = bld.AddVertex(0, datastructure.NewCoordinate(-7.5755, 110.8243), 0)
	s.keraton = bld.AddVertex(0, datastructure.NewCoordinate(-7.5775, 110.8275), 1)
	s.pasar = bld.AddVertex(1, datastructure.NewCoordinate(-7.5742, 110.8300), 2)
	s.island = bld.AddVertex(1, datastructure.NewCoordinate(-7.5600, 110.8500), 0)
	s.bend = datastructure.NewCoordinate(-7.5740, 110.8270)

	bld.AddRoad(s.gladag, s.pasar, 7, false, writer.Road{
		StreetType: 2,
		Name:       "Jalan Slamet Riyadi",
		Waypoints:  []datastructure.Coordinate{s.bend},
	})
	bld.AddEdge(s.pasar, s.keraton, 4, false)
	bld.AddInternalShortcut(s.gladag, s.keraton, s.pasar, 11, false)

	s.path = filepath.Join(t.TempDir(), "solo.ch")
	require.NoError(t, bld.WriteFile(s.path))
	return s
}

func openSolo(t *testing.T, s solo, opts ...Option) *Engine {
	t.Helper()
	e, err := Open(s.path, graph.Options{}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestShortestPathRoute(t *testing.T) {
	s := newSolo(t)
	e := openSolo(t, s)

	route, err := e.ShortestPath(context.Background(), s.gladag, s.keraton)
	require.NoError(t, err)
	require.True(t, route.Found)
	require.Len(t, route.Edges, 2)
	assert.Equal(t, uint64(11), route.Weight)
	assert.Equal(t, "Jalan Slamet Riyadi", route.Edges[0].Name)
	assert.Equal(t, "primary", e.StreetTypeName(route.Edges[0].StreetType))

	want := []datastructure.Coordinate{
		datastructure.NewCoordinate(-7.5755, 110.8243),
		s.bend,
		datastructure.NewCoordinate(-7.5742, 110.8300),
		datastructure.NewCoordinate(-7.5775, 110.8275),
	}
	assert.Equal(t, want, route.Geometry)
	assert.InDelta(t, geo.PolylineLength(want), route.DistanceMeters, 1e-6)
	assert.Greater(t, route.DistanceMeters, 0.0)

	decoded, err := datastructure.DecodePolyline(route.Polyline)
	require.NoError(t, err)
	assert.Equal(t, want, decoded)

	assert.Equal(t, 2, route.Stats.UnpackedEdges)
	assert.Greater(t, route.Stats.SettledVertices, 0)
}

func TestShortestPathNotFound(t *testing.T) {
	s := newSolo(t)
	e := openSolo(t, s)

	route, err := e.ShortestPath(context.Background(), s.gladag, s.island)
	require.NoError(t, err)
	assert.False(t, route.Found)
	assert.Empty(t, route.Edges)
	assert.Empty(t, route.Polyline)

	route, err = e.ShortestPath(context.Background(), s.island, s.island)
	require.NoError(t, err)
	assert.True(t, route.Found)
	assert.Equal(t, []datastructure.Coordinate{datastructure.NewCoordinate(-7.5600, 110.8500)}, route.Geometry)
	assert.Equal(t, 0.0, route.DistanceMeters)
}

func TestShortestPathSimplified(t *testing.T) {
	s := newSolo(t)
	// the bend sits about 100 m off the straight line
	e := openSolo(t, s, WithSimplification(5000))

	route, err := e.ShortestPath(context.Background(), s.gladag, s.pasar)
	require.NoError(t, err)
	require.True(t, route.Found)
	assert.Len(t, route.Geometry, 2)
	// distance is measured before simplification
	assert.InDelta(t, geo.PolylineLength([]datastructure.Coordinate{
		datastructure.NewCoordinate(-7.5755, 110.8243), s.bend, datastructure.NewCoordinate(-7.5742, 110.8300),
	}), route.DistanceMeters, 1e-6)
}

func TestShortestPathCancelled(t *testing.T) {
	s := newSolo(t)
	e := openSolo(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.ShortestPath(ctx, s.gladag, s.keraton)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNearestAndBox(t *testing.T) {
	s := newSolo(t)
	e := openSolo(t, s)

	v, ok, err := e.NearestVertex(-7.5743, 110.8299, 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, s.pasar, v.ID)

	_, ok, err = e.NearestVertex(-7.7956, 110.3695, 100)
	require.NoError(t, err)
	assert.False(t, ok)

	box, ok := e.BoundingBox()
	require.True(t, ok)
	vs, err := e.VerticesInBoundingBox(datastructure.BoundingBox{
		MinLat: box.MinLat - 1, MinLon: box.MinLon - 1, MaxLat: box.MaxLat + 1, MaxLon: box.MaxLon + 1,
	})
	require.NoError(t, err)
	assert.Len(t, vs, 4)
}

func TestSnapToRoad(t *testing.T) {
	s := newSolo(t)
	e := openSolo(t, s)

	sn, ok, err := e.SnapToRoad(-7.5745, 110.8250, 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Jalan Slamet Riyadi", sn.Edge.Name)
	assert.Equal(t, s.gladag, sn.Vertex)
	assert.Less(t, sn.Distance, 100.0)
}
