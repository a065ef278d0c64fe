package relay

import "fmt"

// Direction names one half of the relay by where traffic enters and leaves.
type Direction int

const (
	// DownstreamToUpstream carries what the dialing peer sends.
	DownstreamToUpstream Direction = iota
	// UpstreamToDownstream carries the listening peer's replies.
	UpstreamToDownstream
)

func (d Direction) String() string {
	switch d {
	case DownstreamToUpstream:
		return "down->up"
	case UpstreamToDownstream:
		return "up->down"
	default:
		return "unknown"
	}
}

// ParseDirection is the inverse of String.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "down->up":
		return DownstreamToUpstream, nil
	case "up->down":
		return UpstreamToDownstream, nil
	default:
		return 0, fmt.Errorf("relay: unknown direction %q", s)
	}
}
