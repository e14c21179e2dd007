package component

// Player records which prefab built the player so it can be rebuilt.
type Player struct {
	Prefab string
	SpawnX float64
	SpawnY float64
}

var PlayerComponent = NewComponent[Player]()
