package component

// Transform is the world-space center of an entity. Y grows downward.
type Transform struct {
	X        float64
	Y        float64
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()
