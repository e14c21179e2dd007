package system

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/dashmotor/ecs"
	"github.com/milk9111/dashmotor/ecs/component"
	"github.com/milk9111/dashmotor/motor"
)

const (
	collisionTypePlayer cp.CollisionType = iota + 1
	collisionTypeSolid
)

// moveSkin keeps swept moves this far inside the collider so a body resting
// on a floor does not register the floor as an obstacle.
const moveSkin = 1.0

// PhysicsSystem owns the Chipmunk space. It creates bodies for entities with
// a PhysicsBody and Transform, steps the space once per fixed tick and
// copies positions back into transforms.
type PhysicsSystem struct {
	space *cp.Space
	dt    float64
	log   *zap.Logger

	entities  map[ecs.Entity]*bodyInfo
	nextGroup uint
}

type bodyInfo struct {
	body   *cp.Body
	shapes []*cp.Shape
	static bool
	group  uint
}

func NewPhysicsSystem(gravity float64, iterations int, dt float64, log *zap.Logger) *PhysicsSystem {
	if log == nil {
		log = zap.NewNop()
	}
	space := cp.NewSpace()
	if iterations > 0 {
		space.Iterations = uint(iterations)
	}
	space.SetGravity(cp.Vector{X: 0, Y: gravity})
	return &PhysicsSystem{
		space:    space,
		dt:       dt,
		log:      log,
		entities: make(map[ecs.Entity]*bodyInfo),
	}
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}

	ps.syncEntities(w)
	ps.syncWorldBounds(w)

	ps.space.Step(ps.dt)

	ps.syncTransforms(w)
}

// EnsureBody creates the Chipmunk body for e if needed and returns the
// adapter the motor drives. e must be dynamic. The body's gravity follows
// the entity's GravityScale component, which is added when missing.
func (ps *PhysicsSystem) EnsureBody(w *ecs.World, e ecs.Entity) (*Body, error) {
	bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok {
		return nil, fmt.Errorf("physics: entity %s has no physics body", e)
	}
	if bodyComp.Static {
		return nil, fmt.Errorf("physics: entity %s is static", e)
	}
	transform, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return nil, fmt.Errorf("physics: entity %s has no transform", e)
	}
	scale, ok := ecs.Get(w, e, component.GravityScaleComponent.Kind())
	if !ok {
		scale = &component.GravityScale{Scale: 1}
		if err := ecs.Add(w, e, component.GravityScaleComponent.Kind(), scale); err != nil {
			return nil, fmt.Errorf("physics: add gravity scale: %w", err)
		}
	}

	info := ps.entities[e]
	if info == nil {
		info = ps.createBodyInfo(transform, bodyComp, ecs.Has(w, e, component.PlayerTagComponent.Kind()))
		ps.entities[e] = info
	}
	bodyComp.Body = info.body
	bodyComp.Shape = info.shapes[0]
	info.body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
		cp.BodyUpdateVelocity(body, gravity.Mult(scale.Scale), damping, dt)
	})

	radius := min(bodyComp.Width, bodyComp.Height)/2 - moveSkin
	if radius < 0 {
		radius = 0
	}
	return &Body{
		space:  ps.space,
		body:   info.body,
		scale:  scale,
		filter: cp.NewShapeFilter(info.group, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES),
		radius: radius,
	}, nil
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ps.cleanupEntities(w)

	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, transform *component.Transform) {
		if _, ok := ps.entities[e]; ok {
			return
		}
		if !bodyComp.Static {
			// Dynamic bodies go through EnsureBody so they pick up their
			// gravity scale.
			if _, err := ps.EnsureBody(w, e); err != nil {
				ps.log.Warn("physics: create body", zap.Stringer("entity", e), zap.Error(err))
			}
			return
		}
		info := ps.createBodyInfo(transform, bodyComp, false)
		ps.entities[e] = info
		bodyComp.Body = info.body
		bodyComp.Shape = info.shapes[0]
	})
}

func (ps *PhysicsSystem) createBodyInfo(transform *component.Transform, bodyComp *component.PhysicsBody, isPlayer bool) *bodyInfo {
	width := bodyComp.Width
	height := bodyComp.Height
	if width <= 0 || height <= 0 {
		width = 32
		height = 32
	}

	if bodyComp.Static {
		bb := cp.BB{
			L: transform.X - width/2,
			B: transform.Y - height/2,
			R: transform.X + width/2,
			T: transform.Y + height/2,
		}
		shape := cp.NewBox2(ps.space.StaticBody, bb, 0)
		shape.SetFriction(bodyComp.Friction)
		shape.SetElasticity(bodyComp.Elasticity)
		shape.SetCollisionType(collisionTypeSolid)
		ps.space.AddShape(shape)
		return &bodyInfo{body: ps.space.StaticBody, shapes: []*cp.Shape{shape}, static: true}
	}

	mass := bodyComp.Mass
	if mass <= 0 {
		mass = 1
	}

	// Characters never rotate.
	body := cp.NewBody(mass, cp.INFINITY)
	body.SetPosition(cp.Vector{X: transform.X, Y: transform.Y})
	body.SetAngle(0)

	ps.nextGroup++
	shape := cp.NewBox(body, width, height, 0)
	shape.SetFriction(bodyComp.Friction)
	shape.SetElasticity(bodyComp.Elasticity)
	shape.SetFilter(cp.NewShapeFilter(ps.nextGroup, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES))
	if isPlayer {
		shape.SetCollisionType(collisionTypePlayer)
	} else {
		shape.SetCollisionType(collisionTypeSolid)
	}

	ps.space.AddBody(body)
	ps.space.AddShape(shape)

	return &bodyInfo{body: body, shapes: []*cp.Shape{shape}, group: ps.nextGroup}
}

func (ps *PhysicsSystem) syncWorldBounds(w *ecs.World) {
	boundsEntity, ok := ecs.First(w, component.LevelBoundsComponent.Kind())
	if !ok {
		return
	}
	if _, exists := ps.entities[boundsEntity]; exists {
		return
	}
	bounds, ok := ecs.Get(w, boundsEntity, component.LevelBoundsComponent.Kind())
	if !ok || bounds.Width <= 0 || bounds.Height <= 0 {
		return
	}

	worldW := bounds.Width
	worldH := bounds.Height
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: worldW, Y: 0}},           // top
		{a: cp.Vector{X: 0, Y: worldH}, b: cp.Vector{X: worldW, Y: worldH}}, // bottom
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: worldH}},           // left
		{a: cp.Vector{X: worldW, Y: 0}, b: cp.Vector{X: worldW, Y: worldH}}, // right
	}

	info := &bodyInfo{static: true, body: ps.space.StaticBody}
	for _, seg := range segments {
		shape := cp.NewSegment(ps.space.StaticBody, seg.a, seg.b, 1)
		shape.SetFriction(0.8)
		shape.SetCollisionType(collisionTypeSolid)
		ps.space.AddShape(shape)
		info.shapes = append(info.shapes, shape)
	}

	ps.entities[boundsEntity] = info
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, transform *component.Transform) {
		if bodyComp.Static || bodyComp.Body == nil {
			return
		}
		pos := bodyComp.Body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
		transform.Rotation = bodyComp.Body.Angle()
	})
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e := range ps.entities {
		if ecs.IsAlive(w, e) && (ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) || ecs.Has(w, e, component.LevelBoundsComponent.Kind())) {
			continue
		}
		ps.Remove(e)
	}
}

// Remove drops e's body and shapes from the space immediately.
func (ps *PhysicsSystem) Remove(e ecs.Entity) {
	info, ok := ps.entities[e]
	if !ok {
		return
	}
	for _, shape := range info.shapes {
		ps.space.RemoveShape(shape)
	}
	if !info.static && info.body != nil {
		ps.space.RemoveBody(info.body)
	}
	delete(ps.entities, e)
}

// Body adapts a Chipmunk body to motor.Body. It also answers ground probes
// while ignoring the body's own shapes.
type Body struct {
	space  *cp.Space
	body   *cp.Body
	scale  *component.GravityScale
	filter cp.ShapeFilter
	radius float64
}

var (
	_ motor.Body        = (*Body)(nil)
	_ motor.GroundProbe = (*Body)(nil)
)

func (b *Body) Position() motor.Vec {
	return toVec(b.body.Position())
}

func (b *Body) Velocity() motor.Vec {
	return toVec(b.body.Velocity())
}

func (b *Body) SetVelocity(v motor.Vec) {
	b.body.SetVelocityVector(toCP(v))
}

// GravityScale reads the entity's GravityScale component.
func (b *Body) GravityScale() float64 {
	return b.scale.Scale
}

// SetGravityScale writes the entity's GravityScale component; the velocity
// update func applies it on the next space step.
func (b *Body) SetGravityScale(scale float64) {
	b.scale.Scale = scale
}

func (b *Body) ApplyImpulse(impulse motor.Vec) {
	b.body.ApplyImpulseAtWorldPoint(toCP(impulse), b.body.Position())
}

// MoveTo sweeps a circle toward p and stops at the first solid hit.
func (b *Body) MoveTo(p motor.Vec) {
	from := b.body.Position()
	to := toCP(p)
	hit := b.space.SegmentQueryFirst(from, to, b.radius, b.filter)
	if hit.Shape != nil {
		to = from.Lerp(to, hit.Alpha)
	}
	b.body.SetPosition(to)
}

func (b *Body) Grounded(point motor.Vec, radius float64) bool {
	info := b.space.PointQueryNearest(toCP(point), radius, b.filter)
	return info != nil && info.Shape != nil
}

func toVec(v cp.Vector) motor.Vec {
	return motor.Vec{X: v.X, Y: v.Y}
}

func toCP(v motor.Vec) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}
