package datastructure

import (
	"github.com/twpayne/go-polyline"
)

// CreatePolyline encodes path in the Google polyline format, 5 decimal precision.
func CreatePolyline(path []Coordinate) string {
	coords := make([][]float64, 0, len(path))
	for _, p := range path {
		coords = append(coords, []float64{p.LatDegrees(), p.LonDegrees()})
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline is the inverse of CreatePolyline, up to its precision.
func DecodePolyline(s string) ([]Coordinate, error) {
	coords, _, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, err
	}
	path := make([]Coordinate, 0, len(coords))
	for _, c := range coords {
		path = append(path, NewCoordinate(c[0], c[1]))
	}
	return path, nil
}
