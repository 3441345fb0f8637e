// Package participant runs a headless participant: a virtual media element
// kept in sync with a hosted instance and driven by text commands.
package participant

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sharetube/mediasync/internal/client"
	"github.com/sharetube/mediasync/internal/device"
	"github.com/sharetube/mediasync/internal/device/virtual"
	"github.com/sharetube/mediasync/internal/mediasync"
	"github.com/sharetube/mediasync/internal/protocol"
	"github.com/sharetube/mediasync/pkg/ctxlogger"
)

type Config struct {
	ServerURL          string        `json:"server_url"`
	InstanceID         string        `json:"instance_id"`
	Token              string        `json:"-"`
	Identity           string        `json:"identity"`
	Kind               string        `json:"kind"`
	MediaURL           string        `json:"media_url"`
	Poster             string        `json:"poster"`
	LogLevel           string        `json:"log_level"`
	AutoplayBlocked    bool          `json:"autoplay_blocked"`
	TimeUpdateInterval time.Duration `json:"timeupdate_interval"`
	RemovalGrace       time.Duration `json:"removal_grace"`
	KeepAlive          time.Duration `json:"keep_alive"`
}

func (cfg *Config) Validate() error {
	if cfg.ServerURL == "" {
		return errors.New("server url must not be empty")
	}
	if cfg.Token != "" && cfg.InstanceID == "" {
		return errors.New("a token needs an instance id")
	}
	if cfg.InstanceID == "" && cfg.MediaURL == "" {
		return errors.New("creating an instance needs a media url")
	}
	if cfg.InstanceID != "" && cfg.Token == "" {
		if _, err := mediasync.ParseIdentity(cfg.Identity); err != nil {
			return err
		}
	}
	if cfg.RemovalGrace < 0 {
		return errors.New("removal grace must not be negative")
	}
	return nil
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	return slog.New(ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}),
	}), nil
}

// credentials returns the instance and token to connect with, creating the
// instance or registering a participant when needed.
func credentials(ctx context.Context, cfg *Config, rest *client.RESTClient, logger *slog.Logger) (string, string, error) {
	if cfg.Token != "" {
		return cfg.InstanceID, cfg.Token, nil
	}

	if cfg.InstanceID == "" {
		created, err := rest.CreateInstance(ctx, &protocol.CreateInstanceInput{
			Kind:   cfg.Kind,
			URL:    cfg.MediaURL,
			Poster: cfg.Poster,
		})
		if err != nil {
			return "", "", err
		}

		logger.InfoContext(ctx, "instance created", "instance_id", created.InstanceID)
		return created.InstanceID, created.Token, nil
	}

	added, err := rest.AddParticipant(ctx, cfg.InstanceID, &protocol.AddParticipantInput{Identity: cfg.Identity})
	if err != nil {
		return "", "", err
	}

	return cfg.InstanceID, added.Token, nil
}

func Run(ctx context.Context, cfg *Config, in io.Reader, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	instanceID, token, err := credentials(ctx, cfg, client.NewRESTClient(cfg.ServerURL, nil), logger)
	if err != nil {
		return err
	}

	conn, err := client.Dial(ctx, &client.Config{
		ServerURL:  cfg.ServerURL,
		InstanceID: instanceID,
		Token:      token,
		KeepAlive:  cfg.KeepAlive,
	}, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx = ctxlogger.AppendCtx(ctx, slog.String("instance_id", instanceID))
	ctx = ctxlogger.AppendCtx(ctx, slog.String("participant_id", conn.ParticipantID()))

	el := virtual.New(virtual.Config{
		BlockAutoplay:      cfg.AutoplayBlocked,
		TimeUpdateInterval: cfg.TimeUpdateInterval,
	})
	defer el.Close()

	instance := conn.Instance()
	kind, err := device.ParseKind(instance.Kind)
	if err != nil {
		return err
	}

	dev, err := device.New(kind, el, instance.URL, instance.Poster)
	if err != nil {
		return err
	}

	engine := mediasync.NewEngine(conn, dev, conn,
		mediasync.WithLogger(logger),
		mediasync.WithRemovalGrace(cfg.RemovalGrace),
		mediasync.WithInstanceHost(conn),
	)
	defer engine.Close()

	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	logger.InfoContext(ctx, "joined instance",
		"identity", conn.Identity(),
		"kind", instance.Kind,
		"url", instance.URL,
	)

	go engine.Run(ctx)

	commands := make(chan string)
	go readCommands(ctx, in, commands)

	connErr := make(chan error, 1)
	go func() { connErr <- conn.Run(ctx) }()

	p := &player{element: el, engine: engine, store: conn, out: out}
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-connErr:
			if errors.Is(err, client.ErrInstanceRemoved) {
				el.Pause()
				logger.InfoContext(ctx, "instance removed")
				return nil
			}
			return err
		case line, ok := <-commands:
			if !ok {
				return nil
			}
			if err := p.exec(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				fmt.Fprintln(out, "error:", err)
			}
		}
	}
}

func readCommands(ctx context.Context, in io.Reader, commands chan<- string) {
	defer close(commands)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		select {
		case commands <- line:
		case <-ctx.Done():
			return
		}
	}
}
