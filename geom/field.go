package geom

import (
	"fmt"
	"strings"
)

// FieldType selects how a zone field acts on remotes inside the zone.
type FieldType uint8

const (
	FieldNone FieldType = iota
	FieldJerk           // applies the jerk vector
	FieldPush           // pushes along the point, or away from the zone center
	FieldPull           // pulls toward the point, or toward the zone center
)

var fieldTypeNames = [...]string{"none", "jerk", "push", "pull"}

func (t FieldType) String() string {
	if int(t) < len(fieldTypeNames) {
		return fieldTypeNames[t]
	}
	return fmt.Sprintf("FieldType(%d)", t)
}

// ParseFieldType converts a config name into a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	if s == "" {
		return FieldNone, nil
	}
	for i, name := range fieldTypeNames {
		if strings.EqualFold(s, name) {
			return FieldType(i), nil
		}
	}
	return FieldNone, fmt.Errorf("unknown field type %q", s)
}

// Field is a directional force attached to a zone.
type Field struct {
	Type      FieldType
	Point     Vector
	Magnitude float64
	Jerk      Vector
}

// Force returns the force the field exerts on a remote at location inside a
// zone centered on center.
func (f Field) Force(location, center Vector) Vector {
	switch f.Type {
	case FieldJerk:
		return f.Jerk
	case FieldPush:
		if f.Point.Magnitude() > 0 {
			return f.Point.Unit().Scale(f.Magnitude)
		}
		return location.Sub(center).XY().Unit().Scale(f.Magnitude)
	case FieldPull:
		target := center
		if f.Point.Magnitude() > 0 {
			target = f.Point
		}
		return target.Sub(location).XY().Unit().Scale(f.Magnitude)
	default:
		return Vector{}
	}
}
