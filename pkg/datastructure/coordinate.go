package datastructure

import "math"

// COORDINATE_SCALE converts degrees to the fixed point microdegrees stored in the graph file.
const COORDINATE_SCALE = 1e6

type Coordinate struct {
	Lat int32
	Lon int32
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: int32(math.Round(lat * COORDINATE_SCALE)),
		Lon: int32(math.Round(lon * COORDINATE_SCALE)),
	}
}

func (c Coordinate) LatDegrees() float64 {
	return float64(c.Lat) / COORDINATE_SCALE
}

func (c Coordinate) LonDegrees() float64 {
	return float64(c.Lon) / COORDINATE_SCALE
}

type BoundingBox struct {
	MinLat int32
	MinLon int32
	MaxLat int32
	MaxLon int32
}

func NewBoundingBox(minLat, minLon, maxLat, maxLon float64) BoundingBox {
	min := NewCoordinate(minLat, minLon)
	max := NewCoordinate(maxLat, maxLon)
	return BoundingBox{MinLat: min.Lat, MinLon: min.Lon, MaxLat: max.Lat, MaxLon: max.Lon}
}

// BoundingBoxOf returns the smallest box covering all coords.
func BoundingBoxOf(coords ...Coordinate) BoundingBox {
	if len(coords) == 0 {
		return BoundingBox{}
	}
	bb := BoundingBox{MinLat: coords[0].Lat, MinLon: coords[0].Lon, MaxLat: coords[0].Lat, MaxLon: coords[0].Lon}
	for _, c := range coords[1:] {
		bb = bb.Extend(c)
	}
	return bb
}

func (b BoundingBox) Extend(c Coordinate) BoundingBox {
	b.MinLat = min(b.MinLat, c.Lat)
	b.MinLon = min(b.MinLon, c.Lon)
	b.MaxLat = max(b.MaxLat, c.Lat)
	b.MaxLon = max(b.MaxLon, c.Lon)
	return b
}

func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		MinLat: min(b.MinLat, o.MinLat),
		MinLon: min(b.MinLon, o.MinLon),
		MaxLat: max(b.MaxLat, o.MaxLat),
		MaxLon: max(b.MaxLon, o.MaxLon),
	}
}

// Contains is strict: points on the border are outside.
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lat > b.MinLat && c.Lat < b.MaxLat && c.Lon > b.MinLon && c.Lon < b.MaxLon
}

func (b BoundingBox) Valid() bool {
	return b.MinLat <= b.MaxLat && b.MinLon <= b.MaxLon
}
