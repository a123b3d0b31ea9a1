package scene

import (
	"time"

	"github.com/zeusync/zeuscene/internal/core/cache"
	"github.com/zeusync/zeuscene/internal/core/resource"
)

// Snapshot is a point-in-time view of the scene for inspection.
type Snapshot struct {
	Time      time.Time      `json:"time"`
	Running   bool           `json:"running"`
	Frames    uint64         `json:"frames"`
	Instances []InstanceInfo `json:"instances"`
	Stage     int            `json:"stage"`
	Mixers    int            `json:"mixers"`
	Hovered   string         `json:"hovered,omitempty"`
	Cache     cache.Stats    `json:"cache"`
	Loads     resource.Stats `json:"loads"`
}

// InstanceInfo describes one live instance.
type InstanceInfo struct {
	Name      string `json:"name"`
	Component string `json:"component"`
	State     string `json:"state"`
}

// Snapshot collects a point-in-time view of the scene.
func (s *Scene) Snapshot() Snapshot {
	all := s.registry.All()
	infos := make([]InstanceInfo, 0, len(all))
	for _, inst := range all {
		infos = append(infos, InstanceInfo{
			Name:      inst.Name(),
			Component: inst.Kind(),
			State:     inst.State().String(),
		})
	}

	snap := Snapshot{
		Time:      time.Now(),
		Running:   s.loop.Running(),
		Frames:    s.loop.Frames(),
		Instances: infos,
		Stage:     s.stage.Len(),
		Mixers:    s.animations.Len(),
		Cache:     s.resources.CacheStats(),
		Loads:     s.resources.Stats(),
	}
	if obj := s.dispatcher.Hovered(); obj != nil {
		snap.Hovered = obj.ID()
	}
	return snap
}
