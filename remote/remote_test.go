package remote

import (
	"testing"

	"github.com/pthm-cable/recon/components"
	"github.com/pthm-cable/recon/geom"
	"github.com/pthm-cable/recon/intent"
	"github.com/pthm-cable/recon/kinematics"
	"github.com/pthm-cable/recon/sensors"
)

var camera = &sensors.Proto{
	Model: "cam",
	Kind:  sensors.KindVision,
	Stats: sensors.Stats{Range: geom.Bounded(50), BatteryUsage: 1},
}

func drone() *Proto {
	home := geom.Vec2(10, 10)
	return &Proto{
		Label: "drone",
		Kind:  components.KindAerial,
		Kinematics: kinematics.Proto{
			Location: &home,
			Motion: &kinematics.MotionProto{
				MaxVelocity:     geom.Bounded(5),
				MaxAcceleration: geom.Bounded(1),
			},
			Fuel: &kinematics.FuelProto{Initial: 100, Max: geom.Bounded(100)},
		},
		Sensors: []sensors.Config{{Proto: camera, Count: 1}},
	}
}

func build(t *testing.T, p *Proto, spec Spec) Remote {
	t.Helper()
	parts, err := p.Build(spec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return parts.Remote()
}

func TestProtoValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Proto)
		wantErr bool
	}{
		{"valid", func(p *Proto) {}, false},
		{"no label", func(p *Proto) { p.Label = "" }, true},
		{"static with motion", func(p *Proto) { p.Kind = components.KindStatic }, true},
		{"ground fields on aerial", func(p *Proto) { p.Ground = &GroundSpec{SpeedMean: 1} }, true},
		{"battery without fuel", func(p *Proto) {
			p.Aerial = &AerialSpec{}
			p.Kinematics.Fuel = nil
		}, true},
		{"sensor without proto", func(p *Proto) { p.Sensors = []sensors.Config{{Count: 1}} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := drone()
			tt.mutate(p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildOverrides(t *testing.T) {
	p := drone()
	p.Aerial = &AerialSpec{BatteryUsage: geom.Vec(2, 0, 0)}
	loc := geom.Vec2(40, 40)
	vel := geom.Vec2(1, 0)

	r := build(t, p, Spec{ID: "d1", Team: "blue", Active: true, Location: &loc, Velocity: &vel})

	if got, _ := r.Kin.Location(); got != loc {
		t.Errorf("location mismatch: got %v, want %v", got, loc)
	}
	if !r.HasHome || r.Home != loc {
		t.Errorf("home mismatch: got %v (%v), want %v", r.Home, r.HasHome, loc)
	}
	if got := r.Kin.Velocity(); got != vel {
		t.Errorf("velocity mismatch: got %v, want %v", got, vel)
	}
	if got := r.Kin.Fuel().Usage(); got != geom.Vec(2, 0, 0) {
		t.Errorf("usage mismatch: got %v, want battery usage", got)
	}
	if p.Kinematics.Motion.InitialVelocity != (geom.Vector{}) {
		t.Errorf("Build modified the proto")
	}
	if _, ok := r.Sensors.Sensor("cam:(0)"); !ok {
		t.Errorf("expected generated sensor id cam:(0)")
	}
}

func TestLifecycle(t *testing.T) {
	r := build(t, drone(), Spec{ID: "d1", Active: true})
	r.Apply(intent.Activate(), 1)
	if !r.Sensors.HasActive() {
		t.Fatal("expected active sensors")
	}

	r.Apply(intent.Shutdown(), 1)
	if r.IsActive() || r.Sensors.HasActive() {
		t.Errorf("shutdown should deactivate remote and sensors")
	}

	r.Apply(intent.Startup(), 1)
	if !r.IsActive() {
		t.Errorf("startup should reactivate")
	}
	if r.Sensors.HasActive() {
		t.Errorf("startup should not switch sensors back on")
	}

	r.Apply(intent.Done(), 1)
	if !r.Done || r.IsActive() {
		t.Errorf("done should retire the remote")
	}
	if r.Subject().Active {
		t.Errorf("done remote should not be an active subject")
	}
}

func TestDisabledProto(t *testing.T) {
	p := drone()
	p.Disabled = true
	r := build(t, p, Spec{ID: "d1", Active: true})
	if r.IsEnabled() || r.IsActive() {
		t.Errorf("disabled proto should never be active")
	}
}

func TestFuelExhaustionDisables(t *testing.T) {
	p := drone()
	p.Kinematics.Fuel = &kinematics.FuelProto{Initial: 2.5}
	r := build(t, p, Spec{ID: "d1", Active: true})
	r.Apply(intent.Activate(), 1)

	r.Apply(intent.None(), 1)
	if !r.IsActive() {
		t.Fatal("expected remote active with fuel left")
	}
	r.Apply(intent.None(), 1)
	if r.IsEnabled() {
		t.Errorf("expected remote disabled once sensors drain the battery, fuel %v", r.Kin.Fuel().Amount())
	}
}

func TestGoToAndHome(t *testing.T) {
	r := build(t, drone(), Spec{ID: "d1", Active: true})
	dest := geom.Vec2(30, 10)

	for i := 0; i < 40; i++ {
		r.Apply(intent.GoTo(dest), 1)
	}
	if got, _ := r.Kin.Location(); !got.Near(dest) {
		t.Errorf("goto mismatch: got %v, want %v", got, dest)
	}

	for i := 0; i < 40; i++ {
		r.Apply(intent.GoHome(), 1)
	}
	if got, _ := r.Kin.Location(); !got.Near(r.Home) {
		t.Errorf("go home mismatch: got %v, want %v", got, r.Home)
	}
}

func TestGoToWithinTighterLimits(t *testing.T) {
	r := build(t, drone(), Spec{ID: "d1", Active: true})
	dest := geom.Vec2(200, 10)

	r.Apply(intent.GoToWithin(dest, geom.Unbounded, geom.Bounded(0.5)), 1)
	if got := r.Kin.Velocity().Magnitude(); got > 0.5+1e-9 {
		t.Errorf("first step speed mismatch: got %v, want <= 0.5", got)
	}

	for i := 0; i < 20; i++ {
		r.Apply(intent.GoToWithin(dest, geom.Bounded(2), geom.Unbounded), 1)
		if got := r.Kin.Velocity().Magnitude(); got > 2+1e-9 {
			t.Fatalf("step %d speed mismatch: got %v, want <= 2", i, got)
		}
	}
	if got := r.Kin.Velocity().Magnitude(); got < 2-1e-9 {
		t.Errorf("cruise speed mismatch: got %v, want 2", got)
	}
}

func TestSteerKeepsSpeed(t *testing.T) {
	vel := geom.Vec2(3, 0)
	r := build(t, drone(), Spec{ID: "d1", Active: true, Velocity: &vel})

	for i := 0; i < 10; i++ {
		r.Apply(intent.Steer(geom.Vec2(0, 1)), 1)
	}
	got := r.Kin.Velocity()
	if !got.Near(geom.Vec2(0, 3)) {
		t.Errorf("steer mismatch: got %v, want (0, 3)", got)
	}
}

func TestInactiveRemoteBrakes(t *testing.T) {
	vel := geom.Vec2(3, 0)
	r := build(t, drone(), Spec{ID: "d1", Active: false, Velocity: &vel})

	r.Apply(intent.Move(geom.Vec2(1, 0)), 1)
	if got := r.Kin.Velocity(); got != geom.Vec2(2, 0) {
		t.Errorf("velocity mismatch: got %v, want (2, 0)", got)
	}
}

func TestPushIgnoresAccelerationCap(t *testing.T) {
	r := build(t, drone(), Spec{ID: "d1", Active: true})
	push, err := intent.Push(geom.Vec2(4, 0))
	if err != nil {
		t.Fatal(err)
	}
	r.Apply(push, 1)
	if got := r.Kin.Velocity(); got != geom.Vec2(4, 0) {
		t.Errorf("velocity mismatch: got %v, want (4, 0)", got)
	}
}

func TestUnknownSensorIDs(t *testing.T) {
	r := build(t, drone(), Spec{ID: "d1", Active: true})
	unknown := r.Apply(intent.Activate("cam:(0)", "lidar"), 1)
	if len(unknown) != 1 || unknown[0] != "lidar" {
		t.Errorf("unknown mismatch: got %v, want [lidar]", unknown)
	}
}

func TestPassive(t *testing.T) {
	tests := []struct {
		name      string
		active    bool
		sensorsOn bool
		first     bool
		inBounds  bool
		want      intent.Type
		wantOK    bool
	}{
		{"first step activates", true, false, true, true, intent.TypeActivate, true},
		{"inactive deactivates", false, true, false, true, intent.TypeDeactivate, true},
		{"holds course", true, true, false, true, intent.TypeNone, true},
		{"out of bounds skipped", true, true, false, false, intent.TypeNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := build(t, drone(), Spec{ID: "d1", Active: tt.active})
			if tt.sensorsOn {
				r.Sensors.Activate()
			}
			got, ok := r.Passive(tt.first, tt.inBounds)
			if ok != tt.wantOK {
				t.Fatalf("ok mismatch: got %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Type != tt.want {
				t.Errorf("intent mismatch: got %v, want %v", got.Type, tt.want)
			}
		})
	}
}
