//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/zeuscene/internal/core/scene"
)

// InitializeApp builds the logger, the scene and the optional inspector.
func InitializeApp(cfg scene.Config, opts []scene.Option) (*App, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
