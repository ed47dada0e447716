package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"onsamuse/internal/cache"
	"onsamuse/internal/config"
	"onsamuse/internal/media"
	"onsamuse/internal/repository"
	"onsamuse/internal/service"
	"onsamuse/internal/transport/rest"
	"onsamuse/internal/transport/ws"
)

func serve(ctx context.Context, cfg *config.Config) error {
	slog.SetDefault(cfg.NewLogger(os.Stderr))
	slog.Info("starting onsamuse", "version", releaseVersion)

	roster, err := cfg.Roster()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddress(),
	})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	slog.Info("connected to redis", "addr", cfg.RedisAddress())

	// MongoDB holds the round history; the games run without it
	var history repository.HistoryRepo
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		defer mongoClient.Disconnect(context.Background())

		if err := mongoClient.Ping(pingCtx, nil); err != nil {
			return fmt.Errorf("failed to ping mongodb: %w", err)
		}
		db := mongoClient.Database(cfg.MongoDatabase)
		if err := repository.EnsureIndexes(ctx, db); err != nil {
			slog.Warn("failed to create history indexes", "error", err)
		}
		history = repository.NewHistoryRepo(db)
		slog.Info("connected to mongodb", "database", cfg.MongoDatabase)
	} else {
		slog.Warn("no mongo uri configured, round history disabled")
	}

	// Photos
	var store media.PhotoStore
	if cfg.S3Bucket != "" {
		s3Store, err := media.NewS3Store(ctx, cfg.S3Region, cfg.S3Bucket, cfg.SessionTTL)
		if err != nil {
			return fmt.Errorf("failed to configure s3: %w", err)
		}
		store = s3Store
		slog.Info("photos offloaded to s3", "bucket", cfg.S3Bucket, "region", cfg.S3Region)
	}
	photos := media.NewProcessor(cfg.PhotoMaxDim, store)

	wsHub := ws.NewHub()
	defer wsHub.Close()

	// Caches
	sessions := cache.NewSessionCache(rdb, cfg.SessionTTL)
	leaderboard := cache.NewLeaderboardCache(rdb)
	missions := cache.NewMissionCache(rdb)
	memes := cache.NewMemeCache(rdb)
	legacy := cache.NewLegacyZoomCache(rdb)

	// Services
	authSvc := service.NewAuthService(cfg.HouseholdPassword, cfg.JWTSecret, roster)

	zoomSvc := service.NewZoomService(sessions, leaderboard, missions, roster, loc)
	zoomSvc.SetPhotoProcessor(photos)
	zoomSvc.SetBroadcaster(wsHub)

	turnSvc := service.NewTurnService(memes, legacy, roster, loc)
	turnSvc.SetPhotoProcessor(photos)
	turnSvc.SetBroadcaster(wsHub)

	container := &rest.Container{
		AuthService: authSvc,
		ZoomService: zoomSvc,
		TurnService: turnSvc,
		WSHub:       wsHub,
		CORSOrigins: cfg.CORSOrigins,
	}
	if history != nil {
		zoomSvc.SetHistory(history)
		turnSvc.SetHistory(history)
		container.HistoryService = service.NewHistoryService(history)
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           rest.NewRouter(container),
		ReadHeaderTimeout: 10 * time.Second,
		// photos arrive as data URIs
		ReadTimeout: time.Minute,
		IdleTimeout: 10 * time.Minute,
	}

	errs := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr, "players", roster.Players(), "timezone", cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
