package geom

import (
	"fmt"
	"strings"
)

// ZoneType determines how remotes may traverse a zone.
type ZoneType uint8

const (
	ZoneNone    ZoneType = iota // unclassified
	ZoneOpen                    // freely traversable
	ZoneBlocked                 // stops rays and line of sight
	ZoneClosed                  // off limits to planners, still traversable
)

var zoneTypeNames = [...]string{"none", "open", "blocked", "closed"}

func (t ZoneType) String() string {
	if int(t) < len(zoneTypeNames) {
		return zoneTypeNames[t]
	}
	return fmt.Sprintf("ZoneType(%d)", t)
}

// ParseZoneType converts a config name into a ZoneType.
func ParseZoneType(s string) (ZoneType, error) {
	for i, name := range zoneTypeNames {
		if strings.EqualFold(s, name) {
			return ZoneType(i), nil
		}
	}
	return ZoneNone, fmt.Errorf("unknown zone type %q", s)
}

// Zone is one square cell of the Grid.
type Zone struct {
	Type     ZoneType
	Location Vector // center
	Size     float64
	Ground   Field
	Aerial   Field
}

// Box returns the bounds of the zone.
func (z Zone) Box() Box {
	return Box{
		X:      z.Location.X - z.Size/2,
		Y:      z.Location.Y - z.Size/2,
		Width:  z.Size,
		Height: z.Size,
	}
}

// IsBlocked reports whether the zone stops rays.
func (z Zone) IsBlocked() bool {
	return z.Type == ZoneBlocked
}
