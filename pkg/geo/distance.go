package geo

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
)

const (
	earthRadiusKM = 6371.0
	earthRadiusM  = 6371007
)

func degreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

func radiansToDegree(angle float64) float64 {
	return angle * (180.0 / math.Pi)
}

func toLatLng(c datastructure.Coordinate) s2.LatLng {
	return s2.LatLngFromDegrees(c.LatDegrees(), c.LonDegrees())
}

// GreatCircleDistance returns meters between two fixed point coordinates.
func GreatCircleDistance(a, b datastructure.Coordinate) float64 {
	return toLatLng(a).Distance(toLatLng(b)).Radians() * earthRadiusM
}

// PolylineLength sums the great circle distance of consecutive points, in meters.
func PolylineLength(coords []datastructure.Coordinate) float64 {
	total := 0.0
	for i := 1; i < len(coords); i++ {
		total += GreatCircleDistance(coords[i-1], coords[i])
	}
	return total
}

// GetDestinationPoint travels dist km from (lat, lon) along bearing (degrees).
func GetDestinationPoint(lat, lon, bearing, dist float64) (float64, float64) {
	dr := dist / earthRadiusKM
	bearing = degreeToRadians(bearing)
	lat1 := degreeToRadians(lat)
	lon1 := degreeToRadians(lon)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(dr) + math.Cos(lat1)*math.Sin(dr)*math.Cos(bearing))
	lon2 := lon1 + math.Atan2(math.Sin(bearing)*math.Sin(dr)*math.Cos(lat1),
		math.Cos(dr)-math.Sin(lat1)*math.Sin(lat2))
	// normalize to -180..180
	lon2 = math.Mod(lon2+3*math.Pi, 2*math.Pi) - math.Pi
	return radiansToDegree(lat2), radiansToDegree(lon2)
}

// BoundingBoxesAround returns boxes that together contain every point within radius meters of center.
// A box crossing the antimeridian is split in two, one on each side of it.
func BoundingBoxesAround(center datastructure.Coordinate, radius float64) []datastructure.BoundingBox {
	lat, lon := center.LatDegrees(), center.LonDegrees()
	distKM := radius / 1000.0

	north, _ := GetDestinationPoint(lat, lon, 0, distKM)
	south, _ := GetDestinationPoint(lat, lon, 180, distKM)
	if north < lat {
		// crossed the pole
		north = 90
	}
	if south > lat {
		south = -90
	}
	south, north = math.Max(south, -90), math.Min(north, 90)

	// widest longitude span is at the latitude closest to the pole.
	maxAbsLat := math.Max(math.Abs(north), math.Abs(south))
	if maxAbsLat >= 89.9 {
		return []datastructure.BoundingBox{datastructure.NewBoundingBox(south, -180, north, 180)}
	}
	dLon := radiansToDegree((radius / earthRadiusM) / math.Cos(degreeToRadians(maxAbsLat)))
	if dLon >= 180 {
		return []datastructure.BoundingBox{datastructure.NewBoundingBox(south, -180, north, 180)}
	}

	west, east := lon-dLon, lon+dLon
	boxes := []datastructure.BoundingBox{
		datastructure.NewBoundingBox(south, math.Max(west, -180), north, math.Min(east, 180)),
	}
	if west < -180 {
		boxes = append(boxes, datastructure.NewBoundingBox(south, west+360, north, 180))
	}
	if east > 180 {
		boxes = append(boxes, datastructure.NewBoundingBox(south, -180, north, east-360))
	}
	return boxes
}

// BearingTo returns the initial compass bearing from a to b in degrees, [0, 360).
func BearingTo(a, b datastructure.Coordinate) float64 {
	lat1, lat2 := degreeToRadians(a.LatDegrees()), degreeToRadians(b.LatDegrees())
	dLon := degreeToRadians(b.LonDegrees() - a.LonDegrees())
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return math.Mod(radiansToDegree(math.Atan2(y, x))+360, 360)
}
