package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/mediasync/internal/mediasync"
	"github.com/sharetube/mediasync/internal/protocol"
	"github.com/sharetube/mediasync/pkg/wsrouter"
)

var (
	ErrInstanceRemoved   = errors.New("instance removed")
	ErrUnexpectedMessage = errors.New("unexpected message")
)

const (
	joinTimeout      = 10 * time.Second
	DefaultKeepAlive = 30 * time.Second
)

type Config struct {
	ServerURL  string
	InstanceID string
	Token      string
	// KeepAlive is the interval between ALIVE messages. Zero disables them.
	KeepAlive time.Duration
}

// Conn is a participant's connection to a hosted instance. It serves as the
// attribute store, instance host and identity source of an engine.
type Conn struct {
	conn      *wsrouter.Conn
	registry  *mediasync.Registry
	joined    protocol.InstanceJoinedPayload
	keepAlive time.Duration
	removed   atomic.Bool
	logger    *slog.Logger
}

// Dial connects to the instance and waits for the server to confirm the join.
func Dial(ctx context.Context, cfg *Config, logger *slog.Logger) (*Conn, error) {
	u, err := wsURL(cfg.ServerURL, cfg.InstanceID, cfg.Token)
	if err != nil {
		return nil, err
	}

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to dial instance: %s: %w", resp.Status, err)
		}

		return nil, fmt.Errorf("failed to dial instance: %w", err)
	}

	conn := wsrouter.NewConn(ws)

	ws.SetReadDeadline(time.Now().Add(joinTimeout))
	msg, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read join message: %w", err)
	}
	ws.SetReadDeadline(time.Time{})

	switch msg.Type {
	case protocol.TypeInstanceJoined:
	case protocol.TypeError:
		conn.Close()
		var payload protocol.ErrorPayload
		json.Unmarshal(msg.Payload, &payload)
		return nil, fmt.Errorf("failed to join instance: %s: %s", payload.Code, payload.Message)
	default:
		conn.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedMessage, msg.Type)
	}

	var joined protocol.InstanceJoinedPayload
	if err := json.Unmarshal(msg.Payload, &joined); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to decode join message: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Conn{
		conn:      conn,
		registry:  mediasync.NewRegistry(joined.Attributes),
		joined:    joined,
		keepAlive: cfg.KeepAlive,
		logger:    logger.With("instance_id", joined.Instance.ID, "participant_id", joined.ParticipantID),
	}, nil
}

func wsURL(serverURL, instanceID, token string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse server url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	u = u.JoinPath("api/v1/ws/instances", instanceID)
	u.RawQuery = url.Values{"token": {token}}.Encode()

	return u.String(), nil
}

func (c *Conn) Identity() mediasync.Identity {
	return mediasync.Identity(c.joined.Identity)
}

func (c *Conn) ParticipantID() string {
	return c.joined.ParticipantID
}

func (c *Conn) Instance() protocol.Instance {
	return c.joined.Instance
}

func (c *Conn) Attributes() mediasync.State {
	return c.registry.State()
}

func (c *Conn) Subscribe(f mediasync.Field, fn mediasync.ChangeFunc) func() {
	return c.registry.Subscribe(f, fn)
}

// WriteAttributes applies p locally and sends it to the server, which
// forwards the changed fields to the other participants.
func (c *Conn) WriteAttributes(ctx context.Context, p mediasync.Partial) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if c.removed.Load() {
		return ErrInstanceRemoved
	}

	p = p.Rounded()
	c.registry.Publish(ctx, p)

	return c.conn.WriteMessage(protocol.TypeWriteAttributes, p)
}

func (c *Conn) RemoveInstance(ctx context.Context) error {
	if c.removed.Load() {
		return ErrInstanceRemoved
	}

	return c.conn.WriteMessage(protocol.TypeRemoveInstance, nil)
}

// Run reads server messages until ctx is done, the connection fails or the
// instance is removed, in which case ErrInstanceRemoved is returned.
func (c *Conn) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, func() {
		c.conn.Close()
	})
	defer stop()

	if c.keepAlive > 0 {
		go c.sendAlive(ctx)
	}

	for {
		msg, err := c.conn.ReadMessage()
		if err != nil {
			if c.removed.Load() {
				return ErrInstanceRemoved
			}

			if ctx.Err() != nil {
				return ctx.Err()
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		if err := c.handle(ctx, msg); err != nil {
			return err
		}
	}
}

func (c *Conn) handle(ctx context.Context, msg wsrouter.Message) error {
	switch msg.Type {
	case protocol.TypeAttributesUpdated:
		var payload protocol.AttributesUpdatedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.logger.WarnContext(ctx, "failed to decode attributes", "error", err)
			return nil
		}

		c.registry.Publish(ctx, payload.Attributes)
	case protocol.TypeInstanceRemoved:
		c.removed.Store(true)
		c.conn.Close()
		return ErrInstanceRemoved
	case protocol.TypeError:
		var payload protocol.ErrorPayload
		json.Unmarshal(msg.Payload, &payload)
		c.logger.WarnContext(ctx, "server rejected message", "code", payload.Code, "message", payload.Message)
	default:
		c.logger.DebugContext(ctx, "unknown message", "type", msg.Type)
	}

	return nil
}

func (c *Conn) sendAlive(ctx context.Context) {
	ticker := time.NewTicker(c.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteMessage(protocol.TypeAlive, nil); err != nil {
				c.logger.DebugContext(ctx, "failed to send alive", "error", err)
				return
			}
		}
	}
}

func (c *Conn) Close() error {
	if err := c.conn.CloseWithReason(websocket.CloseNormalClosure, "bye"); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}
