// Package components defines ECS components for the simulation.
package components

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/recon/geom"
)

// Kind selects the capability set of a remote.
type Kind uint8

const (
	KindStatic Kind = iota // fixed installation, e.g. a base
	KindAerial             // drone
	KindGround             // ground traffic, e.g. a victim
)

var kindNames = [...]string{"static", "aerial", "ground"}

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
	return 0, fmt.Errorf("unknown remote kind %q", s)
}

// Lifecycle holds a remote's identity and activity flags.
type Lifecycle struct {
	ID    string
	Team  string
	Label string // prototype name
	Kind  Kind
	Tags  []string

	Enabled bool // prototype switch; fuel is checked separately
	Active  bool
	Done    bool
	Dynamic bool // driven by external intents; fixed for the run

	Home    geom.Vector // initial location, target of GoHome
	HasHome bool
}
