package main

import (
	config "github.com/NordCoder/Inkwell/internal/config/api"
	"github.com/NordCoder/Inkwell/internal/obs"

	"go.uber.org/zap"
)

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return obs.NewLogger(cfg.AsLoggerConfig())
}
