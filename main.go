package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sosmed/config"
	"sosmed/config/database"
	postRepository "sosmed/internal/post/repository"
	postService "sosmed/internal/post/service"
	userRepository "sosmed/internal/user/repository"
	"sosmed/messaging"
	"sosmed/pkg/logger"
	"sosmed/pkg/ratelimit"
	"sosmed/pkg/token"
	"sosmed/router"
	"sosmed/socket"
	"sosmed/store/memory"

	"github.com/google/uuid"
)

func main() {
	cfg, dotenv := config.Load()
	logger.Init(cfg.LogLevel)
	defer logger.Sync()
	if !dotenv {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		accounts router.AccountRepository
		posts    postService.PostStore
	)
	switch cfg.StoreDriver {
	case "memory":
		db := memory.New()
		accounts, posts = db.Accounts(), db.Posts()
		logger.Sugar.Warn("Using the in-memory store; data is lost on exit")
	default:
		client := database.Connect(cfg.MongoURI)
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Sugar.Errorf("Failed to disconnect from database: %v", err)
			}
		}()
		db := client.Database(cfg.MongoDB)
		if err := database.EnsureIndexes(ctx, db); err != nil {
			logger.Sugar.Fatalf("Failed to create indexes: %v", err)
		}
		accounts = userRepository.NewUserRepository(db, cfg.Transactions)
		posts = postRepository.NewPostRepository(db)
	}

	hub := socket.NewHub()
	go hub.Run()

	events := messaging.Fanout{hub}
	if cfg.NATSURL != "" {
		nc, err := messaging.ConnectNATS(cfg.NATSURL)
		if err != nil {
			logger.Sugar.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer nc.Drain()
		origin := uuid.NewString()
		events = append(events, messaging.NewNATSPublisher(nc, origin))
		if _, err := messaging.Relay(nc, origin, hub); err != nil {
			logger.Sugar.Fatalf("Failed to subscribe to NATS events: %v", err)
		}
		logger.Sugar.Infof("Relaying events from other instances, origin %s", origin)
	}

	var limiter ratelimit.Limiter = ratelimit.NewMemory()
	if cfg.RedisAddr != "" {
		rdb, err := ratelimit.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Sugar.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		limiter = ratelimit.NewRedis(rdb)
	}

	handler := router.Setup(router.Deps{
		Accounts:       accounts,
		Posts:          posts,
		Tokens:         token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Hub:            hub,
		Events:         events,
		Limiter:        limiter,
		StoreDriver:    cfg.StoreDriver,
		BcryptCost:     cfg.BcryptCost,
		AuthRatePerMin: cfg.AuthRatePerMin,
		CORSOrigin:     cfg.CORSOrigin,
		TrustedProxies: cfg.TrustedProxies,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Sugar.Infof("Backend listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar.Errorf("Graceful shutdown failed: %v", err)
	}
}
