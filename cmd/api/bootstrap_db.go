package main

import (
	"context"

	config "github.com/NordCoder/Inkwell/internal/config/api"
	pg "github.com/NordCoder/Inkwell/internal/repository/postgres"
	redisrepo "github.com/NordCoder/Inkwell/internal/repository/redis"

	"github.com/redis/go-redis/v9"
)

func initDB(ctx context.Context, cfg *config.Config) (*pg.DB, error) {
	return pg.NewDB(ctx, cfg.DB)
}

func initRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	return redisrepo.NewClient(ctx, &cfg.Redis)
}
