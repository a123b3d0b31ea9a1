package scene

import (
	"sync"

	"github.com/zeusync/zeuscene/internal/core/component"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
)

// Stage is the root render-graph node. Instances are attached to it before
// they mount and detached when disposed.
type Stage struct {
	mu     sync.RWMutex
	nodes  map[string]*component.Instance
	order  []string
	logger log.Log
}

func NewStage(logger log.Log) *Stage {
	return &Stage{
		nodes:  make(map[string]*component.Instance),
		logger: logger,
	}
}

// Attach adds inst to the stage. A name already staged is left as is.
func (s *Stage) Attach(inst *component.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[inst.Name()]; ok {
		return
	}
	s.nodes[inst.Name()] = inst
	s.order = append(s.order, inst.Name())
	s.logger.Debug("attached to stage", log.Instance(inst.Name()))
}

func (s *Stage) Detach(inst *component.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.nodes[inst.Name()]
	if !ok || cur != inst {
		return
	}
	delete(s.nodes, inst.Name())
	for i, name := range s.order {
		if name == inst.Name() {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.logger.Debug("detached from stage", log.Instance(inst.Name()))
}

func (s *Stage) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[name]
	return ok
}

func (s *Stage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// Names lists attached instances in attach order.
func (s *Stage) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

var _ component.Container = (*Stage)(nil)
