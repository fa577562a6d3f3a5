package guidance

import (
	"fmt"
	"strings"

	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
)

const (
	LEAVE_ROUNDABOUT   = -6
	TURN_SHARP_LEFT    = -3
	TURN_LEFT          = -2
	TURN_SLIGHT_LEFT   = -1
	CONTINUE_ON_STREET = 0
	TURN_SLIGHT_RIGHT  = 1
	TURN_RIGHT         = 2
	TURN_SHARP_RIGHT   = 3
	FINISH             = 4
	USE_ROUNDABOUT     = 6
	START              = 101
)

type Instruction struct {
	Sign  int
	Name  string
	Ref   string
	Point datastructure.Coordinate
	// Heading is the compass bearing of the first step, only set on START.
	Heading float64
	// Distance in meters until the next instruction.
	Distance float64
}

func (instr Instruction) streetName() string {
	switch {
	case isEmpty(instr.Name):
		return instr.Ref
	case isEmpty(instr.Ref):
		return instr.Name
	}
	return fmt.Sprintf("%s (%s)", instr.Name, instr.Ref)
}

func (instr Instruction) GetTurnDescription() string {
	streetName := instr.streetName()

	switch instr.Sign {
	case START:
		if isEmpty(streetName) {
			return fmt.Sprintf("Head %s", bearingToCompass(instr.Heading))
		}
		return fmt.Sprintf("Head %s on %s", bearingToCompass(instr.Heading), streetName)
	case FINISH:
		return "You have arrived at your destination"
	case CONTINUE_ON_STREET:
		if isEmpty(streetName) {
			return "Continue"
		}
		return fmt.Sprintf("Continue onto %s", streetName)
	case USE_ROUNDABOUT:
		return "Enter the roundabout"
	}

	dir := getDirectionDescription(instr.Sign)
	if dir == "" {
		return fmt.Sprintf("unknown %d", instr.Sign)
	}
	if isEmpty(streetName) {
		return dir
	}
	return fmt.Sprintf("%s onto %s", dir, streetName)
}

func getDirectionDescription(sign int) string {
	switch sign {
	case LEAVE_ROUNDABOUT:
		return "Leave the roundabout"
	case TURN_SHARP_LEFT:
		return "Turn sharp left"
	case TURN_LEFT:
		return "Turn left"
	case TURN_SLIGHT_LEFT:
		return "Turn slight left"
	case TURN_SLIGHT_RIGHT:
		return "Turn slight right"
	case TURN_RIGHT:
		return "Turn right"
	case TURN_SHARP_RIGHT:
		return "Turn sharp right"
	}
	return ""
}

func bearingToCompass(bearing float64) string {
	if bearing < 22.5 {
		return "North"
	} else if bearing < 67.5 {
		return "North East"
	} else if bearing < 112.5 {
		return "East"
	} else if bearing < 157.5 {
		return "South East"
	} else if bearing < 202.5 {
		return "South"
	} else if bearing < 247.5 {
		return "South West"
	} else if bearing < 292.5 {
		return "West"
	} else if bearing < 337.5 {
		return "North West"
	}
	return "North"
}

func isEmpty(str string) bool {
	return strings.TrimSpace(str) == ""
}
