package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/writer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testGraph struct {
	path       string
	a, b, c, d datastructure.VertexID
	e, far     datastructure.VertexID
	ab, bc, cd datastructure.Edge
	ce         datastructure.Edge
	cheapAB    datastructure.Edge
	scAC, scAD datastructure.Edge
	scBE       datastructure.Edge
}

/*
block 0: a(0) b(1) c(2)
block 1: d(3) e(4)
block 2: far(0), jauh di Semarang

a -> b -> c -> d, c -> e, two parallel a -> b edges (w 4 and 9)
shortcut a -> c via b, a -> d via c (nested), external b -> e over [bc, ce]
*/
func newTestGraph(t *testing.T) testGraph {
	t.Helper()
	params := writer.DefaultParams()
	params.Debug = true
	bld := writer.NewBuilder(params)
	var tg testGraph
	tg.a = bld.AddVertex(0, datastructure.NewCoordinate(-7.5500, 110.8300), 0)
	tg.b = bld.AddVertex(0, datastructure.NewCoordinate(-7.5510, 110.8310), 1)
	tg.c = bld.AddVertex(0, datastructure.NewCoordinate(-7.5520, 110.8320), 2)
	tg.d = bld.AddVertex(1, datastructure.NewCoordinate(-7.5600, 110.8400), 3)
	tg.e = bld.AddVertex(1, datastructure.NewCoordinate(-7.5610, 110.8420), 4)
	tg.far = bld.AddVertex(2, datastructure.NewCoordinate(-6.9667, 110.4167), 0)

	bld.AddEdge(tg.a, tg.b, 9, false)
	tg.cheapAB = bld.AddRoad(tg.a, tg.b, 4, false, writer.Road{Name: "Jalan Dr. Radjiman"})
	tg.ab = tg.cheapAB
	tg.bc = bld.AddRoad(tg.b, tg.c, 6, true, writer.Road{
		Name:      "Jalan Slamet Riyadi",
		Waypoints: []datastructure.Coordinate{datastructure.NewCoordinate(-7.5515, 110.8315)},
	})
	tg.cd = bld.AddEdge(tg.c, tg.d, 5, false)
	tg.ce = bld.AddEdge(tg.c, tg.e, 8, false)
	tg.scAC = bld.AddInternalShortcut(tg.a, tg.c, tg.b, 10, false)
	tg.scAD = bld.AddInternalShortcut(tg.a, tg.d, tg.c, 15, false)
	tg.scBE = bld.AddExternalShortcut(tg.b, tg.e, 14, false, []datastructure.Edge{tg.bc, tg.ce})

	tg.path = filepath.Join(t.TempDir(), storage.GRAPH_FILE_NAME)
	require.NoError(t, bld.WriteFile(tg.path))
	return tg
}

func openTestGraph(t *testing.T, tg testGraph, opts Options) *Graph {
	t.Helper()
	g, err := Open(tg.path, opts)
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })
	return g
}

func endpoints(edges []datastructure.Edge) [][2]datastructure.VertexID {
	out := make([][2]datastructure.VertexID, len(edges))
	for i, e := range edges {
		out[i] = [2]datastructure.VertexID{e.Source(), e.Target()}
	}
	return out
}

func TestOpenAndVertex(t *testing.T) {
	tg := newTestGraph(t)
	for _, mmap := range []bool{false, true} {
		g := openTestGraph(t, tg, Options{UseMmap: mmap, Registerer: prometheus.NewRegistry()})

		v, ok, err := g.Vertex(tg.d)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, tg.d, v.ID)
		assert.Equal(t, datastructure.NewCoordinate(-7.5600, 110.8400), v.Coordinate)
		assert.Equal(t, int64(3), v.OriginalID)

		// offset past the block's vertex count
		_, ok, err = g.Vertex(g.IDCodec().VertexID(1, 7))
		require.NoError(t, err)
		assert.False(t, ok)

		// block id beyond the address table
		_, ok, err = g.Vertex(g.IDCodec().VertexID(9, 0))
		require.NoError(t, err)
		assert.False(t, ok)

		assert.Equal(t, "primary", g.StreetTypeName(2))
		assert.Equal(t, "", g.StreetTypeName(200))
	}
}

func TestEdgesToHigherVertices(t *testing.T) {
	tg := newTestGraph(t)
	g := openTestGraph(t, tg, Options{})

	out, err := g.OutgoingEdgesToHigherVertices(tg.a)
	require.NoError(t, err)
	assert.Len(t, out, 4)
	for _, e := range out {
		assert.Equal(t, tg.a, e.Low)
		assert.True(t, e.Forward)
	}

	in, err := g.IngoingEdgesFromHigherVertices(tg.b)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, tg.c, in[0].High)
	assert.Equal(t, "Jalan Slamet Riyadi", in[0].Name)

	in, err = g.IngoingEdgesFromHigherVertices(tg.a)
	require.NoError(t, err)
	assert.Empty(t, in)
}

func TestUnpackNestedInternalShortcut(t *testing.T) {
	tg := newTestGraph(t)
	g := openTestGraph(t, tg, Options{})

	path, err := g.UnpackShortcut(tg.scAD, tg.a)
	require.NoError(t, err)
	assert.Equal(t, [][2]datastructure.VertexID{{tg.a, tg.b}, {tg.b, tg.c}, {tg.c, tg.d}}, endpoints(path))
	// the cheaper of the parallel a -> b edges
	assert.Equal(t, uint32(4), path[0].Weight)
	assert.Equal(t, "Jalan Dr. Radjiman", path[0].Name)

	var sum uint32
	for _, e := range path {
		sum += e.Weight
	}
	assert.Equal(t, tg.scAD.Weight, sum)
}

func TestUnpackExternalShortcut(t *testing.T) {
	tg := newTestGraph(t)
	g := openTestGraph(t, tg, Options{})

	path, err := g.UnpackShortcut(tg.scBE, tg.b)
	require.NoError(t, err)
	assert.Equal(t, [][2]datastructure.VertexID{{tg.b, tg.c}, {tg.c, tg.e}}, endpoints(path))
	assert.Equal(t, "Jalan Slamet Riyadi", path[0].Name)
}

func TestUnpackNormalEdgeReversed(t *testing.T) {
	tg := newTestGraph(t)
	g := openTestGraph(t, tg, Options{})

	path, err := g.UnpackShortcut(tg.bc, tg.c)
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, tg.c, path[0].Source())
	assert.Equal(t, tg.b, path[0].Target())

	_, err = g.UnpackShortcut(tg.bc, tg.a)
	assert.ErrorIs(t, err, storage.ErrDecodeInconsistency)
}

func TestUnpackMissingHalf(t *testing.T) {
	tg := newTestGraph(t)
	g := openTestGraph(t, tg, Options{})

	// no edge d -> e exists to expand this one
	bogus := tg.scAD
	bogus.High = tg.e
	bogus.Bypassed = tg.d
	_, err := g.UnpackShortcut(bogus, tg.a)
	assert.ErrorIs(t, err, storage.ErrDecodeInconsistency)
}

func openBuilder(t *testing.T, bld *writer.Builder) *Graph {
	t.Helper()
	path := filepath.Join(t.TempDir(), storage.GRAPH_FILE_NAME)
	require.NoError(t, bld.WriteFile(path))
	return openTestGraph(t, testGraph{path: path}, Options{})
}

/*
v0 paling tinggi, v1..v(k+1) naik satu level tiap langkah.

	v0 -> v1 -> v2 -> ... -> v(k+1)

shortcut j: v0 -> v(j+1) via vj, dibangun di atas shortcut j-1
*/
func TestUnpackShortcutChain(t *testing.T) {
	const k = 12
	bld := writer.NewBuilder(writer.DefaultParams())
	vs := make([]datastructure.VertexID, k+2)
	vs[0] = bld.AddVertex(0, datastructure.NewCoordinate(-7.56, 110.80), 100)
	for i := 1; i <= k+1; i++ {
		vs[i] = bld.AddVertex(datastructure.BlockID(i%2), datastructure.NewCoordinate(-7.56, 110.80+float64(i)*0.001), i)
	}
	for i := 0; i <= k; i++ {
		bld.AddEdge(vs[i], vs[i+1], 1, false)
	}
	shortcuts := make([]datastructure.Edge, k+1)
	for j := 1; j <= k; j++ {
		shortcuts[j] = bld.AddInternalShortcut(vs[0], vs[j+1], vs[j], uint32(j+1), false)
	}
	g := openBuilder(t, bld)

	// every nesting level adds exactly one real edge
	for j := 1; j <= k; j++ {
		path, err := g.UnpackShortcut(shortcuts[j], vs[0])
		require.NoError(t, err, "shortcut %d", j)
		require.Len(t, path, j+1, "shortcut %d", j)
		for i, e := range path {
			assert.False(t, e.IsShortcut())
			assert.Equal(t, vs[i], e.Source())
			assert.Equal(t, vs[i+1], e.Target())
		}
	}
}

func TestUnpackCyclicShortcutsFails(t *testing.T) {
	bld := writer.NewBuilder(writer.DefaultParams())
	a := bld.AddVertex(0, datastructure.NewCoordinate(-7.56, 110.80), 2)
	b := bld.AddVertex(0, datastructure.NewCoordinate(-7.56, 110.81), 0)
	c := bld.AddVertex(0, datastructure.NewCoordinate(-7.56, 110.82), 1)
	// each shortcut names the other as its first half
	ac := bld.AddInternalShortcut(a, c, b, 5, false)
	bld.AddInternalShortcut(a, b, c, 3, false)
	g := openBuilder(t, bld)

	_, err := g.UnpackShortcut(ac, a)
	assert.ErrorIs(t, err, storage.ErrDecodeInconsistency)
}

func TestSelectBestCandidate(t *testing.T) {
	mk := func(low, high datastructure.VertexID, w uint32, name string) datastructure.Edge {
		return datastructure.Edge{Low: low, High: high, Weight: w, Name: name, Forward: true, Backward: true}
	}
	tests := []struct {
		name       string
		candidates []datastructure.Edge
		wantName   string
		wantOK     bool
	}{
		{"empty", nil, "", false},
		{"unrelated only", []datastructure.Edge{mk(1, 3, 1, "x")}, "", false},
		{"minimum weight", []datastructure.Edge{mk(1, 2, 9, "slow"), mk(1, 2, 3, "fast"), mk(2, 1, 5, "mid")}, "fast", true},
		{"first wins ties", []datastructure.Edge{mk(1, 2, 3, "first"), mk(2, 1, 3, "second")}, "first", true},
		{"either orientation", []datastructure.Edge{mk(2, 1, 4, "flipped")}, "flipped", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectBestCandidate(tt.candidates, 1, 2)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

func TestNearestVertex(t *testing.T) {
	tg := newTestGraph(t)
	g := openTestGraph(t, tg, Options{})

	v, ok, err := g.NearestVertex(datastructure.NewCoordinate(-7.5509, 110.8311), 200)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tg.b, v.ID)

	v, ok, err = g.NearestVertex(datastructure.NewCoordinate(-6.9668, 110.4166), 50)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tg.far, v.ID)

	// Yogyakarta, nothing within 1 km
	_, ok, err = g.NearestVertex(datastructure.NewCoordinate(-7.7956, 110.3695), 1000)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNearestVertexAcrossAntimeridian(t *testing.T) {
	bld := writer.NewBuilder(writer.DefaultParams())
	east := bld.AddVertex(0, datastructure.NewCoordinate(-16.5, 179.9990), 0)
	west := bld.AddVertex(1, datastructure.NewCoordinate(-16.5, -179.9997), 1)
	bld.AddEdge(east, west, 10, true)
	g := openBuilder(t, bld)

	// 96 m to east, 43 m to west over the date line
	v, ok, err := g.NearestVertex(datastructure.NewCoordinate(-16.5, 179.9999), 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, west, v.ID)

	v, ok, err = g.NearestVertex(datastructure.NewCoordinate(-16.5, -179.9999), 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, west, v.ID)

	v, ok, err = g.NearestVertex(datastructure.NewCoordinate(-16.5, 179.9985), 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, east, v.ID)
}

func TestVerticesInBoundingBox(t *testing.T) {
	tg := newTestGraph(t)
	g := openTestGraph(t, tg, Options{})

	vs, err := g.VerticesInBoundingBox(datastructure.NewBoundingBox(-7.5605, 110.8305, -7.5505, 110.8405))
	require.NoError(t, err)
	ids := make([]datastructure.VertexID, len(vs))
	for i, v := range vs {
		ids[i] = v.ID
	}
	assert.ElementsMatch(t, []datastructure.VertexID{tg.b, tg.c, tg.d}, ids)

	vs, err = g.VerticesInBoundingBox(datastructure.NewBoundingBox(0, 0, 1, 1))
	require.NoError(t, err)
	assert.Empty(t, vs)

	box, ok := g.BoundingBox()
	require.True(t, ok)
	assert.True(t, box.Contains(datastructure.NewCoordinate(-7.2, 110.6)))
}

func TestCacheStatsAfterQueries(t *testing.T) {
	tg := newTestGraph(t)
	g := openTestGraph(t, tg, Options{CacheByteBudget: 1 << 20})

	for i := 0; i < 3; i++ {
		_, _, err := g.Vertex(tg.a)
		require.NoError(t, err)
	}
	stats := g.CacheStats()
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, int64(1<<20), stats.Budget)
}

func TestOpenRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.ch"), Options{})
	assert.ErrorIs(t, err, storage.ErrIOFailure)

	bad := filepath.Join(dir, "bad.ch")
	require.NoError(t, os.WriteFile(bad, make([]byte, 8192), 0o644))
	_, err = Open(bad, Options{})
	assert.ErrorIs(t, err, storage.ErrMalformedHeader)
}
