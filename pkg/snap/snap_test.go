package snap

import (
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/geo"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/graph"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/writer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSnapper(t *testing.T) (*RoadSnapper, datastructure.VertexID, datastructure.VertexID) {
	t.Helper()
	bld := writer.NewBuilder(writer.DefaultParams())
	gladag := bld.AddVertex(0, datastructure.NewCoordinate(-7.5755, 110.8243), 0)
	keraton := bld.AddVertex(0, datastructure.NewCoordinate(-7.5775, 110.8275), 1)
	pasar := bld.AddVertex(1, datastructure.NewCoordinate(-7.5742, 110.8300), 2)
	bld.AddRoad(gladag, pasar, 7, true, writer.Road{
		Name:      "Jalan Slamet Riyadi",
		Waypoints: []datastructure.Coordinate{datastructure.NewCoordinate(-7.5740, 110.8270)},
	})
	bld.AddEdge(pasar, keraton, 4, false)
	bld.AddInternalShortcut(gladag, keraton, pasar, 11, false)

	path := filepath.Join(t.TempDir(), "snap.ch")
	require.NoError(t, bld.WriteFile(path))
	g, err := graph.Open(path, graph.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })
	return NewRoadSnapper(g), gladag, pasar
}

func TestSnapToRoad(t *testing.T) {
	rs, gladag, pasar := openSnapper(t)
	p := datastructure.NewCoordinate(-7.5745, 110.8250)

	s, ok, err := rs.SnapToRoad(p, 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Jalan Slamet Riyadi", s.Edge.Name)
	assert.Equal(t, gladag, s.Vertex)
	assert.InDelta(t, 58, s.Distance, 10)
	assert.InDelta(t, s.Distance, geo.GreatCircleDistance(p, s.Projection), 0.5)
	assert.NotEqual(t, pasar, s.Vertex)
}

func TestSnapToRoadOutOfRange(t *testing.T) {
	rs, _, _ := openSnapper(t)

	_, ok, err := rs.SnapToRoad(datastructure.NewCoordinate(-7.5745, 110.8250), 20)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = rs.SnapToRoad(datastructure.NewCoordinate(-7.0, 110.4), 500)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapToEdgePicksCloserEndpoint(t *testing.T) {
	low := datastructure.NewCoordinate(-7.5700, 110.8200)
	high := datastructure.NewCoordinate(-7.5700, 110.8300)
	e := datastructure.Edge{Low: 1, High: 2}

	s, ok := snapToEdge(e, low, high, datastructure.NewCoordinate(-7.5690, 110.8280))
	require.True(t, ok)
	assert.Equal(t, datastructure.VertexID(2), s.Vertex)
	assert.InDelta(t, 110.8280, s.Projection.LonDegrees(), 1e-5)

	s, ok = snapToEdge(e, low, high, datastructure.NewCoordinate(-7.5710, 110.8210))
	require.True(t, ok)
	assert.Equal(t, datastructure.VertexID(1), s.Vertex)
	assert.InDelta(t, 111, s.Distance, 2)
}
