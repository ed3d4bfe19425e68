package shared

import (
	"encoding/json"
	"fmt"
)

// Direction is a movement intent sent to the server.
type Direction byte

const (
	DIR_NONE Direction = iota
	LEFT
	RIGHT
	UP
	DOWN
	UPLEFT
	UPRIGHT
	DOWNLEFT
	DOWNRIGHT
)

func (d Direction) String() string {
	switch d {
	case LEFT:
		return "left"
	case RIGHT:
		return "right"
	case UP:
		return "up"
	case DOWN:
		return "down"
	case DOWNLEFT:
		return "down-left"
	case DOWNRIGHT:
		return "down-right"
	case UPLEFT:
		return "up-left"
	case UPRIGHT:
		return "up-right"
	default:
		return fmt.Sprintf("invalid direction: %v", int(d))
	}
}

// ParseDirection maps a wire label back to a Direction.
// Unrecognized labels yield DIR_NONE.
func ParseDirection(s string) Direction {
	switch s {
	case "left":
		return LEFT
	case "right":
		return RIGHT
	case "up":
		return UP
	case "down":
		return DOWN
	case "up-left":
		return UPLEFT
	case "up-right":
		return UPRIGHT
	case "down-left":
		return DOWNLEFT
	case "down-right":
		return DOWNRIGHT
	}
	return DIR_NONE
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = ParseDirection(s)
	return nil
}

// Offset returns the unit step for d in world coordinates,
// where y grows downward (screen convention).
func (d Direction) Offset() (dx, dy float64) {
	switch d {
	case LEFT:
		return -1, 0
	case RIGHT:
		return 1, 0
	case UP:
		return 0, -1
	case DOWN:
		return 0, 1
	case UPLEFT:
		return -1, -1
	case UPRIGHT:
		return 1, -1
	case DOWNLEFT:
		return -1, 1
	case DOWNRIGHT:
		return 1, 1
	}
	return 0, 0
}

// Diagonal resolves a pair of held cardinals to an intermediate
// direction. Only the four valid pairs resolve; everything else
// returns DIR_NONE.
func Diagonal(a, b Direction) Direction {
	switch {
	case pairIs(a, b, UP, LEFT):
		return UPLEFT
	case pairIs(a, b, UP, RIGHT):
		return UPRIGHT
	case pairIs(a, b, DOWN, LEFT):
		return DOWNLEFT
	case pairIs(a, b, DOWN, RIGHT):
		return DOWNRIGHT
	}
	return DIR_NONE
}

func pairIs(a, b, want1, want2 Direction) bool {
	return (a == want1 && b == want2) || (a == want2 && b == want1)
}

// Facing is the orientation label the server uses for a participant.
// Avatars key their frame sequences by facing; beyond the four
// compass points the server may send intermediate labels such as
// "north-east".
type Facing string

const (
	FaceNorth Facing = "north"
	FaceSouth Facing = "south"
	FaceEast  Facing = "east"
	FaceWest  Facing = "west"
)
