package motor

// startDash moves Idle -> Dashing. Physics entry actions wait for the next
// tick so the sampler never writes the body.
func (m *Motor) startDash(dir float64) {
	m.state.DashDirection = dir
	m.state.DashCovered = 0
	m.state.CooldownElapsed = 0
	m.state.dashEntered = false
	m.setPhase(DashDashing)
}

// stepDash moves the body one tick along the dash and finishes the dash on
// the tick that covers the configured distance.
func (m *Motor) stepDash(dt float64) {
	if !m.state.dashEntered {
		m.state.SavedGravityScale = m.body.GravityScale()
		m.body.SetGravityScale(0)
		m.body.SetVelocity(Vec{})
		m.state.dashEntered = true
	}

	remaining := m.cfg.DashDistance - m.state.DashCovered
	step := m.cfg.DashSpeed() * dt
	if step > remaining {
		step = remaining
	}
	if step > 0 {
		pos := m.body.Position()
		m.body.MoveTo(Vec{X: pos.X + m.state.DashDirection*step, Y: pos.Y})
		m.state.DashCovered += step
	}

	if m.cfg.DashDistance-m.state.DashCovered <= progressEpsilon {
		m.endDash()
	}
}

// endDash moves Dashing -> CoolingDown and undoes the entry actions.
func (m *Motor) endDash() {
	m.body.SetGravityScale(m.state.SavedGravityScale)
	m.body.SetVelocity(Vec{})
	m.state.dashEntered = false
	m.state.CooldownElapsed = 0
	m.setPhase(DashCoolingDown)

	if m.cfg.DashCooldown <= progressEpsilon {
		m.setPhase(DashIdle)
	}
}

func (m *Motor) stepCooldown(dt float64) {
	m.state.CooldownElapsed += dt
	if m.state.CooldownElapsed >= m.cfg.DashCooldown-progressEpsilon {
		m.setPhase(DashIdle)
	}
}
