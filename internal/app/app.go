package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/mediasync/internal/controller"
	"github.com/sharetube/mediasync/internal/metrics"
	"github.com/sharetube/mediasync/internal/repository/connection/inmemory"
	instanceRedis "github.com/sharetube/mediasync/internal/repository/instance/redis"
	"github.com/sharetube/mediasync/internal/service"
	"github.com/sharetube/mediasync/pkg/ctxlogger"
	"github.com/sharetube/mediasync/pkg/redisclient"
)

type AppConfig struct {
	Secret            string        `json:"-"`
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	ParticipantsLimit int           `json:"participants_limit"`
	InstanceExp       time.Duration `json:"instance_exp"`
	LogLevel          string        `json:"log_level"`
	RedisPort         int           `json:"redis_port"`
	RedisHost         string        `json:"redis_host"`
	RedisPassword     string        `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Secret == "" {
		return errors.New("secret must not be empty")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range", cfg.Port)
	}
	if cfg.ParticipantsLimit < 1 {
		return errors.New("participants limit must be greater than 0")
	}
	if cfg.InstanceExp <= 0 {
		return errors.New("instance expiration must be positive")
	}
	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(h), nil
}

// NewHandler wires the repositories, service and controller on top of rc.
func NewHandler(rc *redis.Client, cfg *AppConfig, logger *slog.Logger) http.Handler {
	instanceRepo := instanceRedis.NewRepo(rc, cfg.InstanceExp)
	connectionRepo := inmemory.NewRepo()
	instanceService := service.New(instanceRepo, connectionRepo, &service.Config{
		ParticipantsLimit: cfg.ParticipantsLimit,
		Secret:            cfg.Secret,
		InstanceExp:       cfg.InstanceExp,
	})
	controller := controller.NewController(instanceService, metrics.New(), logger)

	return controller.GetMux()
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)
	defer serverStopCtx()

	// hijacked websocket connections are closed through the base context
	connCtx, cancelConns := context.WithCancel(ctx)
	defer cancelConns()

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: NewHandler(rc, cfg, logger),
		BaseContext: func(net.Listener) context.Context {
			return connCtx
		},
	}
	server.RegisterOnShutdown(cancelConns)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sig)
	go func() {
		select {
		case <-sig:
		case <-serverCtx.Done():
		}

		shutdownCtx, c := context.WithTimeout(context.Background(), 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown server", "error", err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-serverCtx.Done()

	return nil
}
