package guidance

import (
	"math"

	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/geo"
)

// Leg is one unpacked edge of a route with its full geometry: source vertex, waypoints, target vertex.
type Leg struct {
	Edge     datastructure.Edge
	Geometry []datastructure.Coordinate
}

/*
GetDrivingInstructions. bikin instruksi belokan dari legs rute. Instruksi baru muncul ketika:
  - nama jalan berubah
  - masuk / keluar bundaran
  - belokan tajam di jalan yang sama

jarak tiap instruksi = panjang rute sampai instruksi berikutnya. START dan FINISH selalu ada; rute tanpa legs
(asal dan tujuan di vertex yang sama) mulai dan selesai di origin.
*/
func GetDrivingInstructions(origin datastructure.Coordinate, legs []Leg) []Instruction {
	ins := make([]Instruction, 0, len(legs)+2)
	if len(legs) == 0 {
		return append(ins,
			Instruction{Sign: START, Point: origin},
			Instruction{Sign: FINISH, Point: origin},
		)
	}

	first := legs[0]
	ins = append(ins, Instruction{
		Sign:    START,
		Name:    first.Edge.Name,
		Ref:     first.Edge.Ref,
		Point:   first.Geometry[0],
		Heading: initialBearing(first.Geometry),
	})
	ins[0].Distance = geo.PolylineLength(first.Geometry)

	for i := 1; i < len(legs); i++ {
		prev, leg := legs[i-1], legs[i]
		next := Instruction{
			Name:  leg.Edge.Name,
			Ref:   leg.Edge.Ref,
			Point: leg.Geometry[0],
		}
		emit := true
		switch {
		case leg.Edge.Roundabout && !prev.Edge.Roundabout:
			next.Sign = USE_ROUNDABOUT
		case !leg.Edge.Roundabout && prev.Edge.Roundabout:
			next.Sign = LEAVE_ROUNDABOUT
		case leg.Edge.Roundabout:
			// masih di bundaran
			emit = false
		default:
			next.Sign = getTurnDirection(finalBearing(prev.Geometry), initialBearing(leg.Geometry))
			if isSameStreet(prev.Edge, leg.Edge) {
				emit = next.Sign == TURN_SHARP_LEFT || next.Sign == TURN_SHARP_RIGHT
			}
		}
		if emit {
			ins = append(ins, next)
		}
		ins[len(ins)-1].Distance += geo.PolylineLength(leg.Geometry)
	}

	last := legs[len(legs)-1].Geometry
	return append(ins, Instruction{Sign: FINISH, Point: last[len(last)-1]})
}

func isSameStreet(a, b datastructure.Edge) bool {
	return a.Name == b.Name && a.Ref == b.Ref
}

func initialBearing(coords []datastructure.Coordinate) float64 {
	if len(coords) < 2 {
		return 0
	}
	return geo.BearingTo(coords[0], coords[1])
}

func finalBearing(coords []datastructure.Coordinate) float64 {
	n := len(coords)
	if n < 2 {
		return 0
	}
	return geo.BearingTo(coords[n-2], coords[n-1])
}

// getTurnDirection maps the change of heading to a turn sign. Positive (clockwise) deltas turn right.
func getTurnDirection(prevBearing, bearing float64) int {
	delta := math.Mod(bearing-prevBearing+540, 360) - 180
	deltaDegree := math.Abs(delta)
	if deltaDegree < 12 {
		return CONTINUE_ON_STREET
	} else if deltaDegree < 40 {
		if delta < 0 {
			return TURN_SLIGHT_LEFT
		}
		return TURN_SLIGHT_RIGHT
	} else if deltaDegree < 105 {
		if delta < 0 {
			return TURN_LEFT
		}
		return TURN_RIGHT
	} else if delta < 0 {
		return TURN_SHARP_LEFT
	}
	return TURN_SHARP_RIGHT
}
