package system

import (
	"go.uber.org/zap"

	"github.com/milk9111/dashmotor/ecs"
	"github.com/milk9111/dashmotor/ecs/component"
	"github.com/milk9111/dashmotor/motor"
)

// MotorSystem advances every character motor by one fixed tick. It must run
// before PhysicsSystem in the same tick.
type MotorSystem struct {
	dt float64
}

func NewMotorSystem(dt float64) *MotorSystem {
	return &MotorSystem{dt: dt}
}

func (s *MotorSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	ecs.ForEach(w, component.CharacterMotorComponent.Kind(), func(e ecs.Entity, m *component.CharacterMotor) {
		if m.Motor == nil {
			return
		}
		m.Motor.Step(s.dt)
	})
}

// LogDashTransitions returns an observer that logs every dash phase change
// at debug level.
func LogDashTransitions(log *zap.Logger, e ecs.Entity) motor.Observer {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.Stringer("entity", e))
	return motor.ObserverFunc(func(from, to motor.DashPhase, s motor.State) {
		log.Debug("dash phase",
			zap.Stringer("from", from),
			zap.Stringer("to", to),
			zap.Stringer("facing", s.Facing),
			zap.Float64("covered", s.DashCovered),
			zap.Bool("grounded", s.Grounded),
		)
	})
}
