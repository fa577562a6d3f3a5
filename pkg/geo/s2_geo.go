package geo

import (
	"github.com/golang/geo/s2"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
)

func toPoint(c datastructure.Coordinate) s2.Point {
	return s2.PointFromLatLng(toLatLng(c))
}

// PointLinePerpendicularDistance is the distance in meters from p to the segment (a, b).
func PointLinePerpendicularDistance(a, b, p datastructure.Coordinate) float64 {
	if a == b {
		return GreatCircleDistance(a, p)
	}
	return s2.DistanceFromSegment(toPoint(p), toPoint(a), toPoint(b)).Radians() * earthRadiusM
}

// ProjectPointToLineCoord returns the point on segment (a, b) closest to p.
func ProjectPointToLineCoord(a, b, p datastructure.Coordinate) datastructure.Coordinate {
	if a == b {
		return a
	}
	projection := s2.Project(toPoint(p), toPoint(a), toPoint(b))
	ll := s2.LatLngFromPoint(projection)
	return datastructure.NewCoordinate(ll.Lat.Degrees(), ll.Lng.Degrees())
}
