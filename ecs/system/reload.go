package system

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/milk9111/dashmotor/ecs"
	"github.com/milk9111/dashmotor/ecs/component"
	"github.com/milk9111/dashmotor/prefabs"
)

// ReloadSystem turns prefab file changes into ReloadRequest entities. It
// never blocks on the watcher.
type ReloadSystem struct {
	events <-chan string
	errs   <-chan error
	log    *zap.Logger
}

func NewReloadSystem(watcher *prefabs.Watcher, log *zap.Logger) *ReloadSystem {
	if watcher == nil {
		return newReloadSystem(nil, nil, log)
	}
	return newReloadSystem(watcher.Events, watcher.Errors, log)
}

func newReloadSystem(events <-chan string, errs <-chan error, log *zap.Logger) *ReloadSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReloadSystem{events: events, errs: errs, log: log}
}

func (s *ReloadSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	for {
		select {
		case name, ok := <-s.events:
			if !ok {
				s.events = nil
				continue
			}
			base := filepath.Base(name)
			s.log.Info("prefab changed", zap.String("file", base))
			e := ecs.CreateEntity(w)
			if err := ecs.Add(w, e, component.ReloadRequestComponent.Kind(), &component.ReloadRequest{Prefab: base}); err != nil {
				s.log.Warn("queue reload", zap.Error(err))
			}
		case err, ok := <-s.errs:
			if !ok {
				s.errs = nil
				continue
			}
			s.log.Warn("prefab watcher", zap.Error(err))
		default:
			return
		}
	}
}

// DrainReloads removes every pending ReloadRequest and returns the distinct
// prefab names in arrival order.
func DrainReloads(w *ecs.World) []string {
	var (
		names   []string
		seen    = make(map[string]bool)
		handled []ecs.Entity
	)
	ecs.ForEach(w, component.ReloadRequestComponent.Kind(), func(e ecs.Entity, req *component.ReloadRequest) {
		handled = append(handled, e)
		if !seen[req.Prefab] {
			seen[req.Prefab] = true
			names = append(names, req.Prefab)
		}
	})
	for _, e := range handled {
		ecs.DestroyEntity(w, e)
	}
	return names
}
