package component

// ReloadRequest asks the game loop to rebuild the player from its prefab.
// The watcher adds it to a short-lived entity; the game loop consumes it.
type ReloadRequest struct {
	Prefab string
}

var ReloadRequestComponent = NewComponent[ReloadRequest]()
