//go:build wireinject
// +build wireinject

package main

import (
	"context"
	"io"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arcanum/internal/config"
)

func initializeSimulator(ctx context.Context, cfg config.Config, secrets config.Secrets, seed Seed, out io.Writer, logger *zap.Logger) (*simulator, func(), error) {
	wire.Build(providerSet)
	return nil, nil, nil
}
