//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/config"
)

func InitializeApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	wire.Build(CoreSet, GameSet)
	return nil, nil, nil
}
