// Package sensors computes what each remote perceives every step.
package sensors

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/recon/geom"
)

// Kind selects the perception model of a sensor.
type Kind uint8

const (
	KindVision  Kind = iota // observation set
	KindComms               // connection set
	KindMonitor             // single monitored remote
)

var kindNames = [...]string{"vision", "comms", "monitor"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind converts a config name into a Kind.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sensor kind %q", s)
}

// KindSet is a bitset of sensor kinds carried by a remote.
type KindSet uint8

// Add returns the set with k included.
func (s KindSet) Add(k Kind) KindSet { return s | 1<<k }

// Has reports whether k is in the set.
func (s KindSet) Has(k Kind) bool { return s&(1<<k) != 0 }

// Stats are the performance figures of a sensor model. An unbounded Range
// reaches every remote in the world.
type Stats struct {
	Range        geom.Limit
	Accuracy     float64
	Delay        float64
	BatteryUsage float64
}

// Proto is the immutable description of a sensor model.
type Proto struct {
	Model    string
	Kind     Kind
	Tags     []string
	Matchers []string // remote tags this sensor perceives; empty matches all
	Stats    Stats

	// LineOfSight excludes subjects hidden behind BLOCKED zones.
	LineOfSight bool
}

// Config attaches sensors built from Proto to a remote, either Count of them
// with generated IDs or one per entry in IDs.
type Config struct {
	Proto  *Proto
	Count  int
	IDs    []string
	Active bool
}
