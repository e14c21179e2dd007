package component

import "github.com/milk9111/dashmotor/motor"

// CharacterMotor attaches a locomotion motor to an entity.
type CharacterMotor struct {
	Motor *motor.Motor
}

var CharacterMotorComponent = NewComponent[CharacterMotor]()
