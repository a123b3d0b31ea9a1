package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/core/scene"
	"github.com/zeusync/zeuscene/internal/inspector"
)

// App is everything a running process needs.
type App struct {
	Logger    log.Log
	Scene     *scene.Scene
	Inspector *inspector.Server
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideScene,
	ProvideInspector,
	wire.Struct(new(App), "*"),
)

// ProvideLogger builds the process logger from the scene config's log section.
func ProvideLogger(cfg scene.Config) (log.Log, error) {
	logger, err := log.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return logger, nil
}

func ProvideScene(cfg scene.Config, logger log.Log, opts []scene.Option) (*scene.Scene, error) {
	return scene.New(cfg, append([]scene.Option{scene.WithLogger(logger)}, opts...)...)
}

// ProvideInspector returns nil when the inspector is disabled.
func ProvideInspector(cfg scene.Config, s *scene.Scene, logger log.Log) *inspector.Server {
	if !cfg.Inspector.Enabled {
		return nil
	}
	return inspector.New(s, cfg.Inspector, logger)
}
