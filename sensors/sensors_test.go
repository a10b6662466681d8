package sensors

import (
	"slices"
	"testing"

	"github.com/pthm-cable/recon/geom"
)

func subject(id string, x, y float64, tags ...string) Subject {
	return Subject{ID: id, Location: geom.Vec2(x, y), Located: true, Tags: tags, Active: true}
}

func newController(t *testing.T, cfgs ...Config) Controller {
	t.Helper()
	c, err := NewController(cfgs)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c
}

func TestVisionRangeBoundary(t *testing.T) {
	proto := &Proto{Model: "cam", Kind: KindVision, Stats: Stats{Range: geom.Bounded(10)}}
	c := newController(t, Config{Proto: proto, Count: 1, Active: true})
	owner := subject("drone", 0, 0)

	tests := []struct {
		name string
		x    float64
		want bool
	}{
		{"inside", 5, true},
		{"exactly at range", 10, true},
		{"within tolerance", 10.005, true},
		{"beyond range", 10.05, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pop := []Subject{owner, subject("victim", tt.x, 0)}
			c.Update(owner, pop, nil)
			got := slices.Contains(c.Sensors()[0].Observations(), "victim")
			if got != tt.want {
				t.Errorf("observed mismatch: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisionExcludesOwnerAndMatchesTags(t *testing.T) {
	proto := &Proto{Model: "cam", Kind: KindVision, Matchers: []string{"victim"}}
	c := newController(t, Config{Proto: proto, Count: 1, Active: true})
	owner := subject("drone", 0, 0, "victim")
	pop := []Subject{
		owner,
		subject("v2", 500, 500, "victim"),
		subject("v1", 1, 1, "victim"),
		subject("base", 2, 2, "base"),
	}
	c.Update(owner, pop, nil)

	got := c.Sensors()[0].Observations()
	want := []string{"v1", "v2"}
	if !slices.Equal(got, want) {
		t.Errorf("observations mismatch: got %v, want %v", got, want)
	}
}

func TestVisionReplacesObservations(t *testing.T) {
	proto := &Proto{Model: "cam", Kind: KindVision, Stats: Stats{Range: geom.Bounded(5)}}
	c := newController(t, Config{Proto: proto, Count: 1, Active: true})
	owner := subject("drone", 0, 0)

	c.Update(owner, []Subject{owner, subject("a", 1, 0)}, nil)
	c.Update(owner, []Subject{owner, subject("a", 50, 0), subject("b", 2, 0)}, nil)

	got := c.Sensors()[0].Observations()
	if !slices.Equal(got, []string{"b"}) {
		t.Errorf("stale observations: got %v, want [b]", got)
	}
}

func TestCommsRequiresCounterpart(t *testing.T) {
	proto := &Proto{Model: "radio", Kind: KindComms, Stats: Stats{Range: geom.Bounded(100)}}
	c := newController(t, Config{Proto: proto, Count: 1, Active: true})
	owner := subject("base", 0, 0)
	owner.Kinds = c.Kinds()

	withRadio := subject("drone", 10, 0)
	withRadio.Kinds = KindSet(0).Add(KindComms)
	withoutRadio := subject("victim", 5, 0)
	withoutRadio.Kinds = KindSet(0).Add(KindVision)

	c.Update(owner, []Subject{owner, withRadio, withoutRadio}, nil)
	got := c.Sensors()[0].Connections()
	if !slices.Equal(got, []string{"drone"}) {
		t.Errorf("connections mismatch: got %v, want [drone]", got)
	}
	if c.Sensors()[0].Observations() != nil {
		t.Error("comms sensor reported observations")
	}
}

func TestMonitorPicksNearestActive(t *testing.T) {
	proto := &Proto{Model: "tracker", Kind: KindMonitor, Stats: Stats{Range: geom.Bounded(20)}}
	c := newController(t, Config{Proto: proto, IDs: []string{"trk"}, Active: true})
	owner := subject("drone", 0, 0)

	near := subject("near", 3, 0)
	near.Active = false
	pop := []Subject{owner, near, subject("mid", 6, 0), subject("far", 15, 0)}
	c.Update(owner, pop, nil)

	s, _ := c.Sensor("trk")
	if id, ok := s.Monitoring(); !ok || id != "mid" {
		t.Errorf("monitoring mismatch: got %q, want mid", id)
	}

	pop[2].Active = false
	pop[3].Active = false
	c.Update(owner, pop, nil)
	if id, ok := s.Monitoring(); ok {
		t.Errorf("monitor should clear when target is inactive, got %q", id)
	}
}

func TestInactiveOwnerClearsPayload(t *testing.T) {
	proto := &Proto{Model: "cam", Kind: KindVision}
	c := newController(t, Config{Proto: proto, Count: 2, Active: true})
	owner := subject("drone", 0, 0)
	pop := []Subject{owner, subject("v", 1, 1)}

	c.Update(owner, pop, nil)
	if len(c.Sensors()[0].Observations()) != 1 {
		t.Fatalf("expected one observation")
	}

	owner.Active = false
	c.Update(owner, pop, nil)
	for _, s := range c.Sensors() {
		if len(s.Observations()) != 0 {
			t.Errorf("sensor %s kept observations for inactive owner", s.ID)
		}
	}
}

func TestDeactivateClearsImmediately(t *testing.T) {
	proto := &Proto{Model: "cam", Kind: KindVision}
	c := newController(t, Config{Proto: proto, Count: 2, Active: true})
	owner := subject("drone", 0, 0)
	c.Update(owner, []Subject{owner, subject("v", 1, 1)}, nil)

	if unknown := c.Deactivate("cam:(0)", "nope"); !slices.Equal(unknown, []string{"nope"}) {
		t.Errorf("unknown mismatch: got %v", unknown)
	}
	s0, _ := c.Sensor("cam:(0)")
	s1, _ := c.Sensor("cam:(1)")
	if s0.IsActive() || len(s0.Observations()) != 0 {
		t.Error("deactivated sensor kept state")
	}
	if !s1.IsActive() || len(s1.Observations()) != 1 {
		t.Error("other sensor should be untouched")
	}
	if !c.HasActive() || !c.HasInactive() {
		t.Error("expected a mix of active and inactive sensors")
	}

	c.Deactivate()
	if c.HasActive() {
		t.Error("Deactivate() should turn off every sensor")
	}
	c.Activate()
	if c.HasInactive() {
		t.Error("Activate() should turn on every sensor")
	}
}

func TestLineOfSight(t *testing.T) {
	proto := &Proto{Model: "cam", Kind: KindVision, LineOfSight: true}
	c := newController(t, Config{Proto: proto, Count: 1, Active: true})
	owner := subject("drone", 0, 0)
	pop := []Subject{owner, subject("hidden", 10, 0), subject("seen", 0, 10)}
	wallAtX5 := func(a, b geom.Vector) bool { return b.X < 5 }

	c.Update(owner, pop, wallAtX5)
	if got := c.Sensors()[0].Observations(); !slices.Equal(got, []string{"seen"}) {
		t.Errorf("observations mismatch: got %v, want [seen]", got)
	}
}

func TestBatteryUsageAndIDs(t *testing.T) {
	cam := &Proto{Model: "cam", Kind: KindVision, Stats: Stats{BatteryUsage: 0.5}}
	radio := &Proto{Model: "radio", Kind: KindComms, Stats: Stats{BatteryUsage: 2}}
	c := newController(t,
		Config{Proto: cam, Count: 2, Active: true},
		Config{Proto: radio, IDs: []string{"uplink"}},
	)

	var ids []string
	for _, s := range c.Sensors() {
		ids = append(ids, s.ID)
	}
	if want := []string{"cam:(0)", "cam:(1)", "uplink"}; !slices.Equal(ids, want) {
		t.Errorf("ids mismatch: got %v, want %v", ids, want)
	}
	if got := c.BatteryUsage(); got != 1 {
		t.Errorf("battery usage mismatch: got %v, want 1", got)
	}
	if !c.Kinds().Has(KindComms) || c.Kinds().Has(KindMonitor) {
		t.Errorf("kinds mismatch: %08b", c.Kinds())
	}

	if _, err := NewController([]Config{{Proto: cam, IDs: []string{"a", "a"}}}); err == nil {
		t.Error("expected duplicate id error")
	}
}
