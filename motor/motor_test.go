package motor

import (
	"errors"
	"math"
	"testing"
)

type fakeBody struct {
	pos      Vec
	vel      Vec
	gravity  float64
	impulses []Vec
	moves    []Vec
}

func (b *fakeBody) Position() Vec { return b.pos }
func (b *fakeBody) Velocity() Vec { return b.vel }
func (b *fakeBody) SetVelocity(v Vec) { b.vel = v }
func (b *fakeBody) GravityScale() float64 { return b.gravity }
func (b *fakeBody) SetGravityScale(s float64) { b.gravity = s }

func (b *fakeBody) ApplyImpulse(impulse Vec) {
	b.impulses = append(b.impulses, impulse)
	b.vel.X += impulse.X
	b.vel.Y += impulse.Y
}

func (b *fakeBody) MoveTo(p Vec) {
	b.moves = append(b.moves, p)
	b.pos = p
}

// integrate stands in for the physics step: unit mass, no gravity.
func (b *fakeBody) integrate(dt float64) {
	b.pos.X += b.vel.X * dt
	b.pos.Y += b.vel.Y * dt
}

func (b *fakeBody) displacementX(from Vec) float64 { return b.pos.X - from.X }

type fakeProbe struct {
	grounded bool
	point    Vec
	radius   float64
}

func (p *fakeProbe) Grounded(point Vec, radius float64) bool {
	p.point = point
	p.radius = radius
	return p.grounded
}

type fakeInput struct {
	axis  float64
	edges map[string]bool
}

func (in *fakeInput) Axis(name string) float64 {
	if name != AxisHorizontal {
		return 0
	}
	return in.axis
}

func (in *fakeInput) ButtonDown(name string) bool {
	return in.edges[name]
}

type rig struct {
	m     *Motor
	body  *fakeBody
	probe *fakeProbe
	input *fakeInput
}

func newRig(t *testing.T, cfg Config) *rig {
	t.Helper()
	r := &rig{
		body:  &fakeBody{gravity: 1},
		probe: &fakeProbe{grounded: true},
		input: &fakeInput{edges: map[string]bool{}},
	}
	m, err := New(cfg, r.body, r.probe, r.input)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.m = m
	return r
}

// frame samples once with the given axis and button edges held for that
// frame only.
func (r *rig) frame(axis float64, buttons ...string) {
	r.input.axis = axis
	for _, b := range buttons {
		r.input.edges[b] = true
	}
	r.m.Sample()
	r.input.edges = map[string]bool{}
}

func (r *rig) tick(dt float64) {
	r.m.Step(dt)
	r.body.integrate(dt)
}

func ticksFor(seconds, dt float64) int {
	return int(math.Ceil(seconds/dt - 1e-9))
}

func TestNewRejectsBadSetup(t *testing.T) {
	good := DefaultConfig()
	body := &fakeBody{}
	probe := &fakeProbe{}
	input := &fakeInput{}

	cases := []struct {
		name  string
		cfg   Config
		body  Body
		probe GroundProbe
		input InputSource
		want  error
	}{
		{"zero_duration", func() Config { c := good; c.DashDuration = 0; return c }(), body, probe, input, ErrInvalidConfig},
		{"negative_cooldown", func() Config { c := good; c.DashCooldown = -1; return c }(), body, probe, input, ErrInvalidConfig},
		{"zero_radius", func() Config { c := good; c.GroundCheckRadius = 0; return c }(), body, probe, input, ErrInvalidConfig},
		{"negative_grace", func() Config { c := good; c.GroundGraceTicks = -1; return c }(), body, probe, input, ErrInvalidConfig},
		{"missing_body", good, nil, probe, input, ErrMissingBody},
		{"missing_probe", good, body, nil, input, ErrMissingGroundProbe},
		{"missing_input", good, body, probe, nil, ErrMissingInput},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(c.cfg, c.body, c.probe, c.input)
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
		})
	}

	if _, err := New(good, body, probe, input); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestJumpAppliesOneImpulse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WalkSpeed = 5
	cfg.JumpImpulse = 10
	r := newRig(t, cfg)
	const dt = 1.0 / 50

	r.tick(dt) // refresh grounded
	r.frame(0, ButtonJump)
	if !r.m.State().PendingJump {
		t.Fatalf("jump edge while grounded should latch a pending jump")
	}

	r.m.Step(dt)
	if len(r.body.impulses) != 1 || r.body.impulses[0] != (Vec{Y: -10}) {
		t.Fatalf("expected one upward impulse of 10, got %v", r.body.impulses)
	}
	if r.body.vel.Y != -10 {
		t.Fatalf("expected vertical velocity -10, got %v", r.body.vel.Y)
	}
	if r.m.State().PendingJump {
		t.Fatalf("pending jump should be consumed by the tick")
	}

	r.frame(0)
	r.m.Step(dt)
	if len(r.body.impulses) != 1 {
		t.Fatalf("second tick without an edge applied another impulse: %v", r.body.impulses)
	}
}

func TestJumpIgnoredWhenAirborne(t *testing.T) {
	r := newRig(t, DefaultConfig())
	r.probe.grounded = false
	r.tick(0.02)

	r.frame(0, ButtonJump)
	if r.m.State().PendingJump {
		t.Fatalf("jump edge while airborne should be ignored")
	}
	r.tick(0.02)
	if len(r.body.impulses) != 0 {
		t.Fatalf("unexpected impulse %v", r.body.impulses)
	}
}

func TestJumpRaceKeepsSampledRequest(t *testing.T) {
	r := newRig(t, DefaultConfig())
	r.tick(0.02)
	r.frame(0, ButtonJump)

	// Leaves the ground between the sample and the tick.
	r.probe.grounded = false
	r.m.Step(0.02)
	if len(r.body.impulses) != 1 {
		t.Fatalf("request sampled while grounded should still apply, got %v", r.body.impulses)
	}
}

func TestPendingJumpClearedDuringDash(t *testing.T) {
	r := newRig(t, DefaultConfig())
	r.tick(0.02)
	r.frame(1, ButtonDash)
	r.tick(0.02)
	r.frame(0, ButtonJump)
	if !r.m.State().PendingJump {
		t.Fatalf("grounded jump edge should latch even while dashing")
	}
	r.m.Step(0.02)
	if r.m.State().PendingJump {
		t.Fatalf("pending jump must not carry past one tick")
	}
	if len(r.body.impulses) != 0 {
		t.Fatalf("jump must not apply while dashing")
	}
}

func TestWalkSetsHorizontalVelocityOnly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WalkSpeed = 5
	r := newRig(t, cfg)
	r.body.vel = Vec{X: 0, Y: 3}

	r.frame(-0.5)
	r.m.Step(0.02)
	if r.body.vel != (Vec{X: -2.5, Y: 3}) {
		t.Fatalf("expected (-2.5, 3), got %v", r.body.vel)
	}

	r.frame(4) // clamped
	r.m.Step(0.02)
	if r.body.vel.X != 5 {
		t.Fatalf("axis should clamp to 1, got vx=%v", r.body.vel.X)
	}
}

func TestFacing(t *testing.T) {
	r := newRig(t, DefaultConfig())
	if r.m.State().Facing != FacingRight {
		t.Fatalf("spawn facing should be right")
	}
	r.frame(-1)
	if r.m.State().Facing != FacingLeft {
		t.Fatalf("negative axis should face left")
	}
	r.frame(0)
	if r.m.State().Facing != FacingLeft {
		t.Fatalf("zero axis should keep facing")
	}

	r.tick(0.02)
	r.frame(0, ButtonDash)
	if got := r.m.State().DashDirection; got != -1 {
		t.Fatalf("dash without input should use facing, got %v", got)
	}
	r.frame(1)
	if r.m.State().Facing != FacingLeft {
		t.Fatalf("facing must stay locked while dashing")
	}
}

func TestDashWithInputFacesInput(t *testing.T) {
	r := newRig(t, DefaultConfig())
	r.frame(0.3, ButtonDash)
	st := r.m.State()
	if st.DashDirection != 1 || st.Facing != FacingRight {
		t.Fatalf("expected dash right facing right, got dir=%v facing=%v", st.DashDirection, st.Facing)
	}

	r2 := newRig(t, DefaultConfig())
	r2.frame(-0.3, ButtonDash)
	st = r2.m.State()
	if st.DashDirection != -1 || st.Facing != FacingLeft {
		t.Fatalf("expected dash left facing left, got dir=%v facing=%v", st.DashDirection, st.Facing)
	}
}

func TestSampleIsIdempotentWithoutInput(t *testing.T) {
	r := newRig(t, DefaultConfig())
	r.tick(0.02)
	before := r.m.State()
	for i := 0; i < 5; i++ {
		r.frame(0)
	}
	if after := r.m.State(); after != before {
		t.Fatalf("idle sampling changed state: %+v -> %+v", before, after)
	}
	if len(r.body.moves) != 0 || len(r.body.impulses) != 0 {
		t.Fatalf("sampling must not touch the body")
	}
}

func TestSampleNeverWritesBody(t *testing.T) {
	r := newRig(t, DefaultConfig())
	r.tick(0.02)
	r.body.vel = Vec{X: 7, Y: 8}
	r.frame(1, ButtonDash, ButtonJump)
	if r.body.vel != (Vec{X: 7, Y: 8}) || r.body.gravity != 1 {
		t.Fatalf("sample wrote the body: vel=%v gravity=%v", r.body.vel, r.body.gravity)
	}
	if r.m.State().DashPhase != DashDashing {
		t.Fatalf("dash edge should start the dash")
	}
}

func TestDashScenario(t *testing.T) {
	cases := []struct {
		name string
		dt   float64
	}{
		{"50hz", 1.0 / 50},
		{"60hz", 1.0 / 60},
		{"144hz", 1.0 / 144},
		{"coarse_0.03", 0.03},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DashDistance = 5
			cfg.DashDuration = 0.2
			r := newRig(t, cfg)
			r.body.vel = Vec{X: 3, Y: -4}

			start := r.body.pos
			r.frame(1, ButtonDash)
			want := ticksFor(0.2, c.dt)
			for i := 0; i < want; i++ {
				if got := r.m.State().DashPhase; got != DashDashing {
					t.Fatalf("tick %d: expected dashing, got %v", i, got)
				}
				r.tick(c.dt)
				if i < want-1 && r.body.gravity != 0 {
					t.Fatalf("gravity should be suspended during the dash")
				}
			}
			if got := r.m.State().DashPhase; got != DashCoolingDown {
				t.Fatalf("after %d ticks expected cooling_down, got %v", want, got)
			}
			if d := r.body.displacementX(start); math.Abs(d-5) > 1e-9 {
				t.Fatalf("expected displacement 5, got %v", d)
			}
			if r.body.pos.Y != start.Y {
				t.Fatalf("dash must be horizontal, y moved to %v", r.body.pos.Y)
			}
			if r.body.vel != (Vec{}) {
				t.Fatalf("velocity should be zero after the dash, got %v", r.body.vel)
			}
		})
	}
}

func TestDashSuppressesWalk(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WalkSpeed = 5
	r := newRig(t, cfg)
	r.frame(1, ButtonDash)
	r.m.Step(0.02)
	if r.body.vel != (Vec{}) {
		t.Fatalf("walk should not set velocity while dashing, got %v", r.body.vel)
	}
}

func TestGravityRestoredAfterDash(t *testing.T) {
	for _, g := range []float64{1, 0.5, 2.75, 0} {
		cfg := DefaultConfig()
		cfg.DashCooldown = 0
		r := newRig(t, cfg)
		r.body.gravity = g
		r.frame(1, ButtonDash)
		for i := 0; i < 100 && r.m.State().DashPhase == DashDashing; i++ {
			r.tick(0.01)
		}
		if r.body.gravity != g {
			t.Fatalf("gravity %v not restored, got %v", g, r.body.gravity)
		}

		// External change between dashes is what the next dash restores.
		r.body.gravity = g + 1
		r.frame(-1, ButtonDash)
		for i := 0; i < 100 && r.m.State().DashPhase == DashDashing; i++ {
			r.tick(0.01)
		}
		if r.body.gravity != g+1 {
			t.Fatalf("gravity %v not restored on second dash, got %v", g+1, r.body.gravity)
		}
	}
}

func TestCooldownBoundary(t *testing.T) {
	const dt = 0.001
	cfg := DefaultConfig()
	cfg.DashDistance = 5
	cfg.DashDuration = 0.2
	cfg.DashCooldown = 1

	run := func(cooldownTicks int) *rig {
		r := newRig(t, cfg)
		r.frame(0, ButtonDash)
		for i := 0; i < ticksFor(0.2, dt); i++ {
			r.tick(dt)
		}
		if r.m.State().DashPhase != DashCoolingDown {
			t.Fatalf("dash should have finished, phase=%v", r.m.State().DashPhase)
		}
		for i := 0; i < cooldownTicks; i++ {
			r.tick(dt)
		}
		return r
	}

	early := run(999)
	if early.m.State().DashPhase != DashCoolingDown {
		t.Fatalf("at 0.999s expected cooling_down, got %v", early.m.State().DashPhase)
	}
	early.frame(0, ButtonDash)
	if early.m.State().DashPhase != DashCoolingDown {
		t.Fatalf("dash edge during cooldown must be ignored")
	}

	onTime := run(1000)
	if onTime.m.State().DashPhase != DashIdle {
		t.Fatalf("at 1s expected idle, got %v", onTime.m.State().DashPhase)
	}
	onTime.frame(0, ButtonDash)
	if onTime.m.State().DashPhase != DashDashing {
		t.Fatalf("dash edge after cooldown should start a dash")
	}
}

func TestZeroCooldownReturnsToIdle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DashCooldown = 0
	r := newRig(t, cfg)
	var seen []DashPhase
	r.m.SetObserver(ObserverFunc(func(from, to DashPhase, _ State) { seen = append(seen, to) }))

	r.frame(1, ButtonDash)
	for i := 0; i < ticksFor(cfg.DashDuration, 0.02); i++ {
		r.tick(0.02)
	}
	want := []DashPhase{DashDashing, DashCoolingDown, DashIdle}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, seen)
		}
	}
}

func TestZeroDistanceDashEndsOnFirstTick(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DashDistance = 0
	r := newRig(t, cfg)
	r.frame(1, ButtonDash)
	r.tick(0.02)
	if r.m.State().DashPhase != DashCoolingDown {
		t.Fatalf("expected cooling_down, got %v", r.m.State().DashPhase)
	}
	if len(r.body.moves) != 0 {
		t.Fatalf("zero distance dash should not move, got %v", r.body.moves)
	}
}

func TestDashTransitionsOnlyFollowTheCycle(t *testing.T) {
	allowed := map[[2]DashPhase]bool{
		{DashIdle, DashDashing}:        true,
		{DashDashing, DashCoolingDown}: true,
		{DashCoolingDown, DashIdle}:    true,
	}

	cfg := DefaultConfig()
	cfg.DashCooldown = 0.1
	r := newRig(t, cfg)
	r.m.SetObserver(ObserverFunc(func(from, to DashPhase, _ State) {
		if !allowed[[2]DashPhase{from, to}] {
			t.Fatalf("illegal transition %v -> %v", from, to)
		}
	}))

	// Deterministic pseudo-random input stream.
	seed := uint32(7)
	next := func() uint32 {
		seed = seed*1664525 + 1013904223
		return seed
	}
	axes := []float64{-1, -0.4, 0, 0.4, 1}
	var inDash, inCooldown int
	for frame := 0; frame < 5000; frame++ {
		var buttons []string
		if next()%3 == 0 {
			buttons = append(buttons, ButtonDash)
		}
		if next()%5 == 0 {
			buttons = append(buttons, ButtonJump)
		}
		r.probe.grounded = next()%4 != 0

		before := r.m.State().DashPhase
		r.frame(axes[next()%uint32(len(axes))], buttons...)
		after := r.m.State().DashPhase
		if before != DashIdle && after != before {
			t.Fatalf("frame %d: dash edge changed phase %v -> %v outside idle", frame, before, after)
		}
		switch after {
		case DashDashing:
			inDash++
		case DashCoolingDown:
			inCooldown++
		}
		r.tick(1.0 / 60)
	}
	if inDash == 0 || inCooldown == 0 {
		t.Fatalf("stream never exercised the dash: dashing=%d cooling=%d", inDash, inCooldown)
	}
}

func TestGroundProbeUsesOffsetAndRadius(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GroundCheckRadius = 0.25
	cfg.GroundCheckOffsetY = 0.5
	r := newRig(t, cfg)
	r.body.pos = Vec{X: 2, Y: 3}
	r.m.Step(0.02)
	if r.probe.point != (Vec{X: 2, Y: 3.5}) || r.probe.radius != 0.25 {
		t.Fatalf("probe got point=%v radius=%v", r.probe.point, r.probe.radius)
	}
}

func TestGroundGrace(t *testing.T) {
	cases := []struct {
		name  string
		grace int
		want  []bool
	}{
		{"no_grace_overwrites_every_tick", 0, []bool{true, false, false, false}},
		{"two_tick_grace", 2, []bool{true, true, true, false}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.GroundGraceTicks = c.grace
			r := newRig(t, cfg)
			var got []bool
			for i := range c.want {
				r.probe.grounded = i == 0
				r.m.Step(0.02)
				got = append(got, r.m.State().Grounded)
			}
			for i := range c.want {
				if got[i] != c.want[i] {
					t.Fatalf("expected %v, got %v", c.want, got)
				}
			}
		})
	}
}

func TestPhaseStrings(t *testing.T) {
	if DashCoolingDown.String() != "cooling_down" || FacingLeft.String() != "left" {
		t.Fatalf("unexpected names %q %q", DashCoolingDown, FacingLeft)
	}
}
