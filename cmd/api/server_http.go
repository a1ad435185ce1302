package main

import (
	"net/http"

	config "github.com/NordCoder/Inkwell/internal/config/api"
	"github.com/NordCoder/Inkwell/internal/obs/retry"
	kafkax "github.com/NordCoder/Inkwell/internal/repository/kafka"
	pg "github.com/NordCoder/Inkwell/internal/repository/postgres"
	redisrepo "github.com/NordCoder/Inkwell/internal/repository/redis"
	authsvc "github.com/NordCoder/Inkwell/internal/services/api/auth"
	commentsvc "github.com/NordCoder/Inkwell/internal/services/api/comment"
	"github.com/NordCoder/Inkwell/internal/services/api/forms"
	"github.com/NordCoder/Inkwell/internal/services/api/middleware"
	postsvc "github.com/NordCoder/Inkwell/internal/services/api/post"
	tagsvc "github.com/NordCoder/Inkwell/internal/services/api/tag"

	"github.com/NordCoder/Inkwell/internal/auth"
	appoutbox "github.com/NordCoder/Inkwell/internal/outbox"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type app struct {
	httpSrv *http.Server
	outbox  *appoutbox.Runner
}

func buildApp(cfg *config.Config, logger *zap.Logger, db *pg.DB, rdb *redis.Client) (*app, error) {
	codec, err := auth.NewCodec(auth.CodecConfig{Secret: []byte(cfg.Auth.JWTSecret)})
	if err != nil {
		return nil, err
	}

	users := pg.NewUserRepo(db)
	posts := pg.NewPostRepo(db)
	comments := pg.NewCommentRepo(db)
	tags := pg.NewTagRepo(db)
	likes := pg.NewLikeRepo(db)
	outboxRepo := pg.NewOutboxRepo(db)
	tx := pg.NewTransactor(db, logger)

	revoked := redisrepo.NewRevocationStore(rdb)
	postCache := redisrepo.NewPostCache(rdb, cfg.Cache.PostTTL)

	authUC := authsvc.NewUseCase(users, codec, revoked, outboxRepo, tx, authsvc.Config{
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	})
	postUC := postsvc.NewUseCase(posts, likes, tags, postCache, logger)
	commentUC := commentsvc.NewUseCase(comments, posts)
	tagUC := tagsvc.NewUseCase(tags)

	producer := kafkax.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic).WithLogger(logger)
	events := kafkax.NewUserEventsKafka(producer)
	runner := appoutbox.NewOutboxRunner(
		logger, outboxRepo,
		appoutbox.MakeGlobalOutboxHandler(events, retry.DefaultKafkaPolicy(logger)),
		cfg.Outbox.Workers, cfg.Outbox.BatchSize, cfg.Outbox.Interval, cfg.Outbox.InProgressTTL,
	)

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	binding.Validator = new(forms.DefaultValidator)

	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.Server.CORSOrigin))
	r.Use(requestid.New(requestid.WithCustomHeaderStrKey("X-Request-Id")))
	r.Use(middleware.RequestLogger(logger))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.RateLimit.Enable {
		limiter := redisrepo.NewRateLimiter(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window)
		r.Use(middleware.RateLimit(limiter, logger))
	}

	v1 := r.Group("/api/v1")
	authsvc.NewController(authUC).Register(v1)
	postsvc.NewController(postUC, authUC).Register(v1)
	commentsvc.NewController(commentUC, authUC).Register(v1)
	tagsvc.NewController(tagUC, authUC).Register(v1)

	httpSrv := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      otelhttp.NewHandler(r, "api"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return &app{httpSrv: httpSrv, outbox: runner}, nil
}

func serveHTTP(srv *http.Server, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("http listening", zap.String("addr", cfg.Server.HTTPAddr))
	return srv.ListenAndServe()
}
