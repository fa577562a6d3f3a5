package block_test

import (
	"testing"

	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/block"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/writer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	graph         writer.Graph
	a, b, c, f    datastructure.VertexID
	d, e          datastructure.VertexID
	ab, bc, cd    datastructure.Edge
	de            datastructure.Edge
	shortcutAC    datastructure.Edge
	shortcutAE    datastructure.Edge
	slametRiyadi  writer.Road
	manyWaypoints []datastructure.Coordinate
}

/*
block 0: a(level 0) b(1) c(2) f(0)
block 1: d(3) e(4)

a <-> b -> c -> d -> e, f -> c twenty times, shortcut a -> c via b, external shortcut a -> e.
*/
func newFixture(t *testing.T) fixture {
	t.Helper()
	params := writer.DefaultParams()
	params.Debug = true
	bld := writer.NewBuilder(params)

	var fx fixture
	fx.a = bld.AddVertex(0, datastructure.NewCoordinate(-7.550, 110.830), 0)
	fx.b = bld.AddVertex(0, datastructure.NewCoordinate(-7.551, 110.831), 1)
	fx.c = bld.AddVertex(0, datastructure.NewCoordinate(-7.552, 110.829), 2)
	fx.f = bld.AddVertex(0, datastructure.NewCoordinate(-7.549, 110.828), 0)
	fx.d = bld.AddVertex(1, datastructure.NewCoordinate(-7.560, 110.840), 3)
	fx.e = bld.AddVertex(1, datastructure.NewCoordinate(-7.561, 110.842), 4)

	fx.slametRiyadi = writer.Road{
		StreetType: 2,
		Roundabout: true,
		Name:       "Jalan Slamet Riyadi",
		Ref:        "AH2",
		Waypoints: []datastructure.Coordinate{
			datastructure.NewCoordinate(-7.5503, 110.8303),
			datastructure.NewCoordinate(-7.5507, 110.8306),
		},
	}
	for i := 0; i < 20; i++ {
		fx.manyWaypoints = append(fx.manyWaypoints, datastructure.NewCoordinate(-7.5511-float64(i)*0.00001, 110.8301))
	}

	fx.ab = bld.AddRoad(fx.a, fx.b, 10, true, fx.slametRiyadi)
	fx.bc = bld.AddRoad(fx.b, fx.c, 20, false, writer.Road{Name: "Jalan Slamet Riyadi", Waypoints: fx.manyWaypoints})
	fx.cd = bld.AddEdge(fx.c, fx.d, 5, false)
	fx.de = bld.AddEdge(fx.d, fx.e, 7, false)
	for w := uint32(1); w <= 20; w++ {
		bld.AddEdge(fx.f, fx.c, 100+w, true)
	}
	fx.shortcutAC = bld.AddInternalShortcut(fx.a, fx.c, fx.b, 30, false)
	fx.shortcutAE = bld.AddExternalShortcut(fx.a, fx.e, 42, false, []datastructure.Edge{fx.ab, fx.bc, fx.cd, fx.de})

	fx.graph = bld.Build()
	return fx
}

func decodeBlock(t *testing.T, g writer.Graph, id datastructure.BlockID) *block.Block {
	t.Helper()
	data, err := writer.EncodeBlock(id, g.Blocks[id], g.Params)
	require.NoError(t, err)
	padded := append(data, make([]byte, storage.BLOCK_READ_OVERHANG)...)
	blk, err := block.Decode(id, padded, len(data), g.Params)
	require.NoError(t, err)
	return blk
}

func sameEdge(t *testing.T, want, got datastructure.Edge) {
	t.Helper()
	assert.Equal(t, want.Kind, got.Kind)
	assert.Equal(t, want.Low, got.Low)
	assert.Equal(t, want.High, got.High)
	assert.Equal(t, want.Weight, got.Weight)
	assert.Equal(t, want.Forward, got.Forward)
	assert.Equal(t, want.Backward, got.Backward)
}

func TestDecodeRoundTrip(t *testing.T) {
	fx := newFixture(t)
	blk := decodeBlock(t, fx.graph, 0)

	require.Equal(t, 4, blk.VertexCount())
	for i, want := range fx.graph.Blocks[0].Vertices {
		v, ok := blk.Vertex(uint32(i))
		require.True(t, ok)
		assert.Equal(t, want.Coordinate, v.Coordinate)
		assert.Equal(t, want.OriginalID, v.OriginalID)
	}

	out := blk.OutgoingEdgesToHigherVertices(0)
	require.Len(t, out, 3)
	sameEdge(t, fx.ab, out[0])
	sameEdge(t, fx.shortcutAC, out[1])
	sameEdge(t, fx.shortcutAE, out[2])

	ab := out[0]
	assert.Equal(t, "Jalan Slamet Riyadi", ab.Name)
	assert.Equal(t, "AH2", ab.Ref)
	assert.True(t, ab.Roundabout)
	assert.Equal(t, uint8(2), ab.StreetType)
	assert.Equal(t, fx.slametRiyadi.Waypoints, ab.Waypoints)

	assert.Equal(t, fx.b, out[1].Bypassed)
	assert.Equal(t, datastructure.InternalShortcut, out[1].Kind)
	assert.Equal(t, uint32(4), out[2].PathLength)

	in := blk.IngoingEdgesFromHigherVertices(0)
	require.Len(t, in, 1)
	sameEdge(t, fx.ab, in[0])

	bc := blk.OutgoingEdgesToHigherVertices(1)
	require.Len(t, bc, 1)
	assert.Equal(t, fx.manyWaypoints, bc[0].Waypoints)
	assert.Equal(t, "Jalan Slamet Riyadi", bc[0].Name)
	assert.Empty(t, bc[0].Ref)
	assert.Empty(t, blk.IngoingEdgesFromHigherVertices(1))

	// escaped edge count
	assert.Len(t, blk.Edges(3), 20)
	assert.Len(t, blk.IngoingEdgesFromHigherVertices(3), 20)

	ext := block.ExternalEdges(blk)
	require.Len(t, ext, 1)
	sameEdge(t, fx.de, ext[0])

	_, ok := blk.Vertex(99)
	assert.False(t, ok)
	assert.Nil(t, blk.Edges(99))
	assert.Greater(t, blk.Footprint(), int64(0))
}

func TestUnpackNormalEdgeIsIdentity(t *testing.T) {
	fx := newFixture(t)
	blk := decodeBlock(t, fx.graph, 0)
	ab := blk.OutgoingEdgesToHigherVertices(0)[0]

	got, err := blk.UnpackShortcut(ab, fx.a)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, fx.a, got[0].Source())
	assert.Equal(t, fx.b, got[0].Target())
	assert.Equal(t, ab.Weight, got[0].Weight)

	got, err = blk.UnpackShortcut(ab, fx.b)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, fx.b, got[0].Source())
	assert.Equal(t, fx.a, got[0].Target())

	_, err = blk.UnpackShortcut(ab, fx.e)
	assert.ErrorIs(t, err, storage.ErrDecodeInconsistency)
}

func TestUnpackExternalShortcut(t *testing.T) {
	fx := newFixture(t)
	blk := decodeBlock(t, fx.graph, 0)
	shortcut := blk.OutgoingEdgesToHigherVertices(0)[2]

	path, err := blk.UnpackShortcut(shortcut, fx.a)
	require.NoError(t, err)
	require.Len(t, path, 4)
	want := []datastructure.VertexID{fx.a, fx.b, fx.c, fx.d, fx.e}
	var sum uint32
	for i, e := range path {
		assert.Equal(t, want[i], e.Source())
		assert.Equal(t, want[i+1], e.Target())
		sum += e.Weight
	}
	assert.Equal(t, uint32(42), sum)

	path, err = blk.UnpackShortcut(shortcut, fx.e)
	require.NoError(t, err)
	require.Len(t, path, 4)
	for i, e := range path {
		assert.Equal(t, want[4-i], e.Source())
		assert.Equal(t, want[3-i], e.Target())
	}
	assert.Equal(t, []datastructure.Coordinate{fx.manyWaypoints[19], fx.manyWaypoints[18]}, path[2].OrientedWaypoints()[:2])
}

func TestUnpackExternalShortcutInconsistent(t *testing.T) {
	fx := newFixture(t)
	blk := decodeBlock(t, fx.graph, 0)
	shortcut := blk.OutgoingEdgesToHigherVertices(0)[2]

	misaligned := shortcut
	misaligned.PathOffset++
	_, err := blk.UnpackShortcut(misaligned, fx.a)
	assert.ErrorIs(t, err, storage.ErrDecodeInconsistency)

	tooLong := shortcut
	tooLong.PathLength = 1000
	_, err = blk.UnpackShortcut(tooLong, fx.a)
	assert.ErrorIs(t, err, storage.ErrDecodeInconsistency)

	internal := blk.OutgoingEdgesToHigherVertices(0)[1]
	_, err = blk.UnpackShortcut(internal, fx.a)
	assert.ErrorIs(t, err, block.ErrNeedsGraph)
}

func TestDecodeTruncatedBlock(t *testing.T) {
	fx := newFixture(t)
	data, err := writer.EncodeBlock(0, fx.graph.Blocks[0], fx.graph.Params)
	require.NoError(t, err)

	_, err = block.Decode(0, data[:10], 10, fx.graph.Params)
	assert.ErrorIs(t, err, storage.ErrDecodeInconsistency)

	// cut inside the edge lists, the string table offset now points past the end
	cut := len(data) / 2
	_, err = block.Decode(0, append(data[:cut:cut], make([]byte, storage.BLOCK_READ_OVERHANG)...), cut, fx.graph.Params)
	assert.ErrorIs(t, err, storage.ErrDecodeInconsistency)
}

func TestDecodeSecondBlock(t *testing.T) {
	fx := newFixture(t)
	blk := decodeBlock(t, fx.graph, 1)

	assert.Equal(t, datastructure.BlockID(1), blk.ID())
	out := blk.OutgoingEdgesToHigherVertices(0)
	require.Len(t, out, 1)
	sameEdge(t, fx.de, out[0])
	assert.Empty(t, blk.OutgoingEdgesToHigherVertices(1))
	assert.Empty(t, block.ExternalEdges(blk))
}
