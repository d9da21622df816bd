package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Blog_Community/internal/cache"
	"Blog_Community/internal/config"
	"Blog_Community/internal/pkg"
	"Blog_Community/internal/repository/mysql"
	"Blog_Community/internal/repository/redis"
	"Blog_Community/internal/router"
	"Blog_Community/internal/service"
	"Blog_Community/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err = pkg.InitLogger(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer func() { _ = pkg.Logger.Sync() }()
	pkg.SetSecrets(cfg.AccessSecret, cfg.RefreshSecret)

	if err = mysql.InitDB(cfg.MySQLDSN); err != nil {
		pkg.Logger.Fatal("connect mysql failed", zap.Error(err))
	}
	// 自动建表
	if err = mysql.AutoMigrate(mysql.DB); err != nil {
		pkg.Logger.Fatal("auto migrate failed", zap.Error(err))
	}

	// 连接redis
	rdb, err := redis.Init(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		pkg.Logger.Fatal("connect redis failed", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	var pageCache cache.PageCache
	if cfg.PageCacheStore == "memory" {
		pageCache = cache.NewMemory(cfg.PageCacheTTL, time.Now)
	} else {
		pageCache = redis.NewPageCache(rdb, cfg.PageCacheTTL)
	}

	images, err := storage.NewLocalImages(cfg.MediaRoot)
	if err != nil {
		pkg.Logger.Fatal("init media storage failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 关注事件投递：配置了 kafka 就发 kafka，否则只打日志
	var sender service.Sender = service.LogSender
	producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Brokers(), Topic: cfg.KafkaTopic})
	switch {
	case err == nil:
		defer func() { _ = producer.Close() }()
		sender = service.KafkaSender(producer)
	case errors.Is(err, pkg.ErrNoBrokers):
		pkg.Logger.Info("kafka brokers not configured, follow events go to the log")
	default:
		pkg.Logger.Fatal("init kafka producer failed", zap.Error(err))
	}
	go service.NewOutboxRelayer(mysql.DB, sender).Run(ctx)

	db := mysql.DB
	tokens := &redis.TokenRepository{RDB: rdb}
	emails := service.NewEmailService(db, &redis.EmailRepository{RDB: rdb}, pkg.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, pkg.SendEmail)
	follows := service.NewFollowService(db)
	selector := service.NewPostSelector(db, follows)

	r := router.InitRouter(router.Deps{
		Feeds:     service.NewFeedService(db, selector, follows, cfg.PostsPerPage),
		Posts:     service.NewPostService(db, images, pageCache),
		Comments:  service.NewCommentService(db),
		Follows:   follows,
		Groups:    service.NewGroupService(db),
		Users:     service.NewUserService(db, tokens, emails),
		Emails:    emails,
		Tokens:    tokens,
		PageCache: pageCache,
		Origins:   cfg.Origins(),
		MediaRoot: cfg.MediaRoot,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		pkg.Logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			pkg.Logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		pkg.Logger.Error("http server shutdown failed", zap.Error(err))
	}
	pkg.Logger.Info("server stopped")
}
