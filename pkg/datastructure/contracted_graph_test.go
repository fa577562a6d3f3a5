package datastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVertexIDBijection(t *testing.T) {
	for _, bits := range []uint8{1, 4, 8, 12, 16} {
		codec := NewIDCodec(bits)
		for _, block := range []BlockID{0, 1, 7, 1000} {
			for _, off := range []uint32{0, 1, (1 << bits) - 1} {
				id := codec.VertexID(block, off)
				assert.Equal(t, block, codec.BlockID(id))
				assert.Equal(t, off, codec.VertexOffset(id))
			}
		}
	}

	codec := NewIDCodec(8)
	assert.Equal(t, VertexID(0x305), codec.VertexID(3, 5))
}

func TestEdgeOrientation(t *testing.T) {
	e := Edge{
		Kind:      NormalEdge,
		Forward:   true,
		Low:       1,
		High:      2,
		Weight:    7,
		Waypoints: []Coordinate{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}},
	}

	assert.Equal(t, VertexID(1), e.Source())
	assert.Equal(t, VertexID(2), e.Target())
	assert.True(t, e.TraversableFrom(1))
	assert.False(t, e.TraversableFrom(2))
	assert.False(t, e.TraversableFrom(3))

	rev, ok := e.OrientFrom(2)
	assert.True(t, ok)
	assert.True(t, rev.Reversed())
	assert.Equal(t, VertexID(2), rev.Source())
	assert.Equal(t, VertexID(1), rev.Target())
	assert.Equal(t, []Coordinate{{Lat: 2, Lon: 2}, {Lat: 1, Lon: 1}}, rev.OrientedWaypoints())
	assert.Equal(t, []Coordinate{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}, e.Waypoints)

	_, ok = e.OrientFrom(9)
	assert.False(t, ok)
	assert.Equal(t, VertexID(1), e.Other(2))
	assert.False(t, e.IsShortcut())
}

func TestBoundingBox(t *testing.T) {
	bb := BoundingBoxOf(Coordinate{Lat: 10, Lon: 20}, Coordinate{Lat: -5, Lon: 40})
	assert.Equal(t, BoundingBox{MinLat: -5, MinLon: 20, MaxLat: 10, MaxLon: 40}, bb)

	assert.True(t, bb.Contains(Coordinate{Lat: 0, Lon: 30}))
	assert.False(t, bb.Contains(Coordinate{Lat: 10, Lon: 30}), "border is outside")
	assert.False(t, bb.Contains(Coordinate{Lat: 0, Lon: 41}))

	assert.Equal(t, BoundingBox{MinLat: -5, MinLon: 20, MaxLat: 12, MaxLon: 41},
		bb.Union(BoundingBox{MinLat: 11, MinLon: 40, MaxLat: 12, MaxLon: 41}))

	c := NewCoordinate(-7.550248, 110.8444)
	assert.Equal(t, int32(-7550248), c.Lat)
	assert.InDelta(t, 110.8444, c.LonDegrees(), 1e-9)
}
