package api

import "fmt"

// Side selects which distribution a pipeline run targets.
type Side string

const (
	SideClient Side = "client"
	SideServer Side = "server"
	SideJoined Side = "joined"
)

// ParseSide converts a configuration value to a Side.
func ParseSide(s string) (Side, error) {
	switch side := Side(s); side {
	case SideClient, SideServer, SideJoined:
		return side, nil
	default:
		return "", fmt.Errorf("unknown side %q (valid: %s, %s, %s)", s, SideClient, SideServer, SideJoined)
	}
}

func (s Side) String() string { return string(s) }
