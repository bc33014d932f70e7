//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/scenecore/internal/core/config"
)

// InitializeRuntime builds a Runtime from the config file at path.
func InitializeRuntime(path ConfigPath) (*Runtime, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}

// InitializeRuntimeFromConfig builds a Runtime from an already loaded config.
func InitializeRuntimeFromConfig(cfg *config.Config) (*Runtime, func(), error) {
	wire.Build(RuntimeSet)
	return nil, nil, nil
}
