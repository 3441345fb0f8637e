package participant

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sharetube/mediasync/internal/device"
	"github.com/sharetube/mediasync/internal/device/virtual"
	"github.com/sharetube/mediasync/internal/mediasync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlayer(t *testing.T, identity mediasync.Identity) (*player, *mediasync.MemoryStore, *bytes.Buffer) {
	t.Helper()

	store := mediasync.NewMemoryStore(mediasync.DefaultState())
	el := virtual.New(virtual.Config{TimeUpdateInterval: time.Hour})
	t.Cleanup(el.Close)

	engine := mediasync.NewEngine(store, device.NewAudio(el, "a.mp3"), mediasync.StaticIdentity(identity),
		mediasync.WithRemovalGrace(0),
	)
	t.Cleanup(engine.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, engine.Start(ctx))
	go engine.Run(ctx)
	require.Eventually(t, func() bool { return el.Subscribers() == 1 }, time.Second, time.Millisecond)

	var out bytes.Buffer
	return &player{element: el, engine: engine, store: store, out: &out}, store, &out
}

func TestHostCommandsArePublished(t *testing.T) {
	p, store, _ := newTestPlayer(t, mediasync.IdentityHost)
	ctx := context.Background()

	require.NoError(t, p.exec(ctx, "seek 12"))
	require.NoError(t, p.exec(ctx, "volume 0.25"))
	require.NoError(t, p.exec(ctx, "play"))

	require.Eventually(t, func() bool {
		attrs := store.Attributes()
		return attrs.Seek == 12 && attrs.Volume == 0.25 && attrs.Play
	}, time.Second, time.Millisecond)

	require.NoError(t, p.exec(ctx, "remove"))
	require.Eventually(t, func() bool { return !store.Attributes().Play }, time.Second, time.Millisecond)
}

func TestGuestCommandsStayLocal(t *testing.T) {
	p, store, out := newTestPlayer(t, mediasync.IdentityGuest)
	ctx := context.Background()

	require.NoError(t, p.exec(ctx, "seek 30"))
	require.NoError(t, p.exec(ctx, "mute"))
	assert.ErrorIs(t, p.exec(ctx, "remove"), mediasync.ErrNotAuthority)

	require.NoError(t, p.exec(ctx, "status"))
	assert.Contains(t, out.String(), "position=30.0")
	assert.Contains(t, out.String(), "muted=true")
	assert.Equal(t, mediasync.DefaultState(), store.Attributes())
}

func TestCommandErrors(t *testing.T) {
	p, _, out := newTestPlayer(t, mediasync.IdentityGuest)
	ctx := context.Background()

	assert.ErrorIs(t, p.exec(ctx, "rewind"), ErrUnknownCommand)
	assert.Error(t, p.exec(ctx, "seek"))
	assert.Error(t, p.exec(ctx, "seek soon"))
	assert.Error(t, p.exec(ctx, "volume 3"))
	assert.ErrorIs(t, p.exec(ctx, "quit"), errQuit)

	require.NoError(t, p.exec(ctx, "help"))
	assert.True(t, strings.HasPrefix(out.String(), "commands:"))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"create", Config{ServerURL: "http://localhost", Kind: "audio", MediaURL: "https://example.com/a.mp3"}, false},
		{"join", Config{ServerURL: "http://localhost", InstanceID: "i", Identity: "listener"}, false},
		{"token", Config{ServerURL: "http://localhost", InstanceID: "i", Token: "t"}, false},
		{"no server", Config{InstanceID: "i", Token: "t"}, true},
		{"token without instance", Config{ServerURL: "http://localhost", Token: "t"}, true},
		{"create without media", Config{ServerURL: "http://localhost"}, true},
		{"unknown identity", Config{ServerURL: "http://localhost", InstanceID: "i", Identity: "admin"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
