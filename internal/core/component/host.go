package component

import (
	"github.com/zeusync/zeuscene/internal/core/animation"
	"github.com/zeusync/zeuscene/internal/core/interaction"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/core/resource"
)

// Host is the scene context handed to every factory.
type Host interface {
	Logger() log.Log
	Resources() *resource.Manager
	Animations() *animation.Coordinator
	Interaction() *interaction.Dispatcher
}

// Container is the render graph node instances are attached to. An
// instance is attached before OnMounted runs and detached on disposal.
type Container interface {
	Attach(inst *Instance)
	Detach(inst *Instance)
}
