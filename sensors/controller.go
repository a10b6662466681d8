package sensors

import (
	"errors"
	"fmt"
)

// Controller owns the sensors of one remote.
type Controller struct {
	sensors []*Sensor
	byID    map[string]*Sensor
}

// NewController builds the sensors described by configs. Generated IDs take
// the form "<model>:(<n>)" with n counting sensors of that model.
func NewController(configs []Config) (Controller, error) {
	c := Controller{byID: make(map[string]*Sensor)}
	counts := make(map[string]int)
	for _, cfg := range configs {
		if cfg.Proto == nil {
			return Controller{}, errors.New("sensor config without proto")
		}
		ids := cfg.IDs
		if len(ids) == 0 {
			for i := 0; i < cfg.Count; i++ {
				ids = append(ids, fmt.Sprintf("%s:(%d)", cfg.Proto.Model, counts[cfg.Proto.Model]))
				counts[cfg.Proto.Model]++
			}
		}
		for _, id := range ids {
			if _, dup := c.byID[id]; dup {
				return Controller{}, fmt.Errorf("duplicate sensor id %q", id)
			}
			s := &Sensor{ID: id, Proto: cfg.Proto, active: cfg.Active}
			c.sensors = append(c.sensors, s)
			c.byID[id] = s
		}
	}
	return c, nil
}

// Sensors returns the sensors in creation order.
func (c *Controller) Sensors() []*Sensor { return c.sensors }

// Sensor looks up a sensor by ID.
func (c *Controller) Sensor(id string) (*Sensor, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Kinds returns the set of sensor kinds carried.
func (c *Controller) Kinds() KindSet {
	var set KindSet
	for _, s := range c.sensors {
		set = set.Add(s.Proto.Kind)
	}
	return set
}

// Activate turns on the named sensors, or every sensor when ids is empty.
// Unknown IDs are returned.
func (c *Controller) Activate(ids ...string) []string {
	return c.apply(ids, (*Sensor).activate)
}

// Deactivate turns off the named sensors, or every sensor when ids is empty,
// clearing their payloads immediately. Unknown IDs are returned.
func (c *Controller) Deactivate(ids ...string) []string {
	return c.apply(ids, (*Sensor).deactivate)
}

func (c *Controller) apply(ids []string, fn func(*Sensor)) []string {
	if len(ids) == 0 {
		for _, s := range c.sensors {
			fn(s)
		}
		return nil
	}
	var unknown []string
	for _, id := range ids {
		s, ok := c.byID[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		fn(s)
	}
	return unknown
}

// HasActive reports whether any sensor is on.
func (c *Controller) HasActive() bool {
	for _, s := range c.sensors {
		if s.active {
			return true
		}
	}
	return false
}

// HasInactive reports whether any sensor is off.
func (c *Controller) HasInactive() bool {
	for _, s := range c.sensors {
		if !s.active {
			return true
		}
	}
	return false
}

// BatteryUsage returns the summed draw of the active sensors.
func (c *Controller) BatteryUsage() float64 {
	var total float64
	for _, s := range c.sensors {
		if s.active {
			total += s.Proto.Stats.BatteryUsage
		}
	}
	return total
}

// Update recomputes every sensor's payload for the owner against the
// population. Sensors of an inactive owner are cleared.
func (c *Controller) Update(owner Subject, population []Subject, los LineOfSight) {
	for _, s := range c.sensors {
		s.update(owner, population, los)
	}
}
