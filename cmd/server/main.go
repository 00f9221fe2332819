package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/logger"
	"inkwell/internal/router"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

var errTerminated = errors.New("terminated")

func main() {
	configPath := flag.String("config", "", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "inkwell",
	})
	log := logger.L()

	// Initialize Database
	conn, err := db.Open(db.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer func() {
		if err := db.Close(conn); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	// 关注计数：启用 redis 时走缓存
	var counter services.FollowCounter = services.NewDBFollowCounter(conn)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, follow counts will hit the database")
		} else {
			counter = services.NewRedisFollowCounter(rdb, services.NewDBFollowCounter(conn), cfg.Redis.CountTTL)
		}
	}

	commentCache, err := utils.NewTTLCache[uint, []services.CommentView](cfg.Cache.CommentsSize, cfg.Cache.CommentsTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create comment cache")
	}

	posts := services.NewPostService(conn)
	svc := router.Services{
		Accounts:      services.NewAccountService(conn),
		Posts:         posts,
		Comments:      services.NewCommentService(conn, posts, commentCache),
		Likes:         services.NewLikeService(conn, posts),
		Follows:       services.NewFollowService(conn, counter),
		Notifications: services.NewNotificationService(conn),
	}

	gin.SetMode(cfg.Server.Mode)
	r := router.New(svc, router.Options{
		Logger:        *log,
		SessionName:   cfg.Session.Name,
		SessionSecret: cfg.Session.Secret,
		SessionMaxAge: cfg.Session.MaxAge,
		SecureCookie:  cfg.Server.Mode == gin.ReleaseMode,
		Ping: func(ctx context.Context) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gr, gctx := errgroup.WithContext(ctx)
	gr.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	gr.Go(func() error {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigs)

		select {
		case s := <-sigs:
			log.Info().Str("signal", s.String()).Msg("shutting down")
		case <-gctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return errTerminated
	})

	log.Info().Str("addr", srv.Addr).Msg("inkwell server starting")

	if err := gr.Wait(); err != nil && !errors.Is(err, errTerminated) {
		log.Error().Err(err).Msg("server unexpectedly closed")
		return
	}
	log.Info().Msg("server stopped")
}
