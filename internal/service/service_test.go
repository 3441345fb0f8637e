package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/mediasync/internal/mediasync"
	"github.com/sharetube/mediasync/internal/repository/connection/inmemory"
	instanceRedis "github.com/sharetube/mediasync/internal/repository/instance/redis"
	"github.com/sharetube/mediasync/pkg/wsrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, participantsLimit int) *service {
	t.Helper()

	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	t.Cleanup(func() { rc.Close() })

	return New(instanceRedis.NewRepo(rc, time.Hour), inmemory.NewRepo(), &Config{
		ParticipantsLimit: participantsLimit,
		Secret:            "secret",
		InstanceExp:       time.Hour,
	})
}

func createTestInstance(t *testing.T, s *service) CreateInstanceResponse {
	t.Helper()

	resp, err := s.CreateInstance(context.Background(), &CreateInstanceParams{
		Kind:   "audio",
		URL:    "https://example.com/track.mp3",
		Poster: "",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.InstanceId, "instance id is empty")
	assert.NotEmpty(t, resp.ParticipantId, "participant id is empty")
	assert.NotEmpty(t, resp.Token, "token is empty")
	assert.Equal(t, mediasync.IdentityHost, resp.Identity)

	return resp
}

func connect(t *testing.T, s *service, instanceId, token string) (Participant, *wsrouter.Conn) {
	t.Helper()

	ctx := context.Background()
	participant, err := s.Authenticate(ctx, instanceId, token)
	require.NoError(t, err)

	conn := &wsrouter.Conn{}
	_, err = s.ConnectParticipant(ctx, &ConnectParticipantParams{
		InstanceId:    instanceId,
		ParticipantId: participant.Id,
		Conn:          conn,
	})
	require.NoError(t, err)

	return participant, conn
}

func TestCreateInstanceStartsFromDefaults(t *testing.T) {
	s := newTestService(t, 4)
	created := createTestInstance(t, s)

	state, err := s.GetInstanceState(context.Background(), created.InstanceId)
	require.NoError(t, err)
	assert.Equal(t, mediasync.DefaultState(), state.Attributes)
	assert.Equal(t, "audio", state.Instance.Kind)
	assert.Equal(t, 1, state.Participants)
	assert.Zero(t, state.Connected)
}

func TestAddParticipant(t *testing.T) {
	s := newTestService(t, 2)
	ctx := context.Background()
	created := createTestInstance(t, s)

	_, err := s.AddParticipant(ctx, &AddParticipantParams{InstanceId: created.InstanceId, Identity: "host"})
	assert.ErrorIs(t, err, ErrPermissionDenied, "a second host must not be issued")

	_, err = s.AddParticipant(ctx, &AddParticipantParams{InstanceId: created.InstanceId, Identity: "admin"})
	assert.Error(t, err)

	_, err = s.AddParticipant(ctx, &AddParticipantParams{InstanceId: "missing", Identity: "guest"})
	assert.ErrorIs(t, err, ErrInstanceNotFound)

	guest, err := s.AddParticipant(ctx, &AddParticipantParams{InstanceId: created.InstanceId, Identity: "guest"})
	require.NoError(t, err)
	assert.Equal(t, mediasync.IdentityGuest, guest.Identity)

	_, err = s.AddParticipant(ctx, &AddParticipantParams{InstanceId: created.InstanceId, Identity: "listener"})
	assert.ErrorIs(t, err, ErrParticipantsLimitReached)
}

func TestAuthenticate(t *testing.T) {
	s := newTestService(t, 4)
	ctx := context.Background()
	first := createTestInstance(t, s)
	second := createTestInstance(t, s)

	participant, err := s.Authenticate(ctx, first.InstanceId, first.Token)
	require.NoError(t, err)
	assert.Equal(t, Participant{Id: first.ParticipantId, Identity: mediasync.IdentityHost}, participant)

	_, err = s.Authenticate(ctx, second.InstanceId, first.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Authenticate(ctx, first.InstanceId, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.Authenticate(ctx, first.InstanceId, first.Token)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired token must be rejected")
}

func TestConnectParticipantTwice(t *testing.T) {
	s := newTestService(t, 4)
	ctx := context.Background()
	created := createTestInstance(t, s)
	connect(t, s, created.InstanceId, created.Token)

	_, err := s.ConnectParticipant(ctx, &ConnectParticipantParams{
		InstanceId:    created.InstanceId,
		ParticipantId: created.ParticipantId,
		Conn:          &wsrouter.Conn{},
	})
	assert.ErrorIs(t, err, ErrAlreadyConnected)

	assert.True(t, s.DisconnectParticipant(ctx, &DisconnectParticipantParams{
		InstanceId:    created.InstanceId,
		ParticipantId: created.ParticipantId,
	}))
	assert.False(t, s.DisconnectParticipant(ctx, &DisconnectParticipantParams{
		InstanceId:    created.InstanceId,
		ParticipantId: created.ParticipantId,
	}))
}

func TestWriteAttributes(t *testing.T) {
	s := newTestService(t, 4)
	ctx := context.Background()
	created := createTestInstance(t, s)
	connect(t, s, created.InstanceId, created.Token)

	guest, err := s.AddParticipant(ctx, &AddParticipantParams{InstanceId: created.InstanceId, Identity: "guest"})
	require.NoError(t, err)
	guestParticipant, guestConn := connect(t, s, created.InstanceId, guest.Token)

	_, err = s.WriteAttributes(ctx, &WriteAttributesParams{
		InstanceId: created.InstanceId,
		SenderId:   guestParticipant.Id,
		Attributes: mediasync.Partial{Play: mediasync.Bool(true)},
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = s.WriteAttributes(ctx, &WriteAttributesParams{
		InstanceId: created.InstanceId,
		SenderId:   created.ParticipantId,
		Attributes: mediasync.Partial{Volume: mediasync.Float(2)},
	})
	assert.ErrorIs(t, err, mediasync.ErrInvalidAttributes)

	resp, err := s.WriteAttributes(ctx, &WriteAttributesParams{
		InstanceId: created.InstanceId,
		SenderId:   created.ParticipantId,
		Attributes: mediasync.Partial{Play: mediasync.Bool(true), Volume: mediasync.Float(1), Seek: mediasync.Float(42)},
	})
	require.NoError(t, err)
	assert.Equal(t, mediasync.Partial{Play: mediasync.Bool(true), Seek: mediasync.Float(42)}, resp.Attributes,
		"only changed fields are broadcast")
	require.Len(t, resp.Conns, 1, "the sender does not receive its own write")
	assert.Same(t, guestConn, resp.Conns[0])

	resp, err = s.WriteAttributes(ctx, &WriteAttributesParams{
		InstanceId: created.InstanceId,
		SenderId:   created.ParticipantId,
		Attributes: mediasync.Partial{Play: mediasync.Bool(true)},
	})
	require.NoError(t, err)
	assert.True(t, resp.Attributes.IsEmpty())
	assert.Empty(t, resp.Conns)

	state, err := s.GetInstanceState(ctx, created.InstanceId)
	require.NoError(t, err)
	assert.Equal(t, mediasync.State{Play: true, Seek: 42, Volume: 1}, state.Attributes)
	assert.Equal(t, 2, state.Connected)
}

func TestWriteAttributesRoundsPositions(t *testing.T) {
	s := newTestService(t, 4)
	ctx := context.Background()
	created := createTestInstance(t, s)

	resp, err := s.WriteAttributes(ctx, &WriteAttributesParams{
		InstanceId: created.InstanceId,
		SenderId:   created.ParticipantId,
		Attributes: mediasync.Partial{Seek: mediasync.Float(12.6), CurrentTime: mediasync.Float(3.2)},
	})
	require.NoError(t, err)
	assert.Equal(t, mediasync.Partial{Seek: mediasync.Float(13), CurrentTime: mediasync.Float(3)}, resp.Attributes)

	resp, err = s.WriteAttributes(ctx, &WriteAttributesParams{
		InstanceId: created.InstanceId,
		SenderId:   created.ParticipantId,
		Attributes: mediasync.Partial{Seek: mediasync.Float(13.4)},
	})
	require.NoError(t, err)
	assert.True(t, resp.Attributes.IsEmpty(), "a seek within the same second is not a change")

	state, err := s.GetInstanceState(ctx, created.InstanceId)
	require.NoError(t, err)
	assert.Equal(t, 13.0, state.Attributes.Seek)
	assert.Equal(t, 3.0, state.Attributes.CurrentTime)
}

func TestRemoveInstance(t *testing.T) {
	s := newTestService(t, 4)
	ctx := context.Background()
	created := createTestInstance(t, s)
	connect(t, s, created.InstanceId, created.Token)

	guest, err := s.AddParticipant(ctx, &AddParticipantParams{InstanceId: created.InstanceId, Identity: "listener"})
	require.NoError(t, err)
	listener, _ := connect(t, s, created.InstanceId, guest.Token)

	_, err = s.RemoveInstance(ctx, &RemoveInstanceParams{InstanceId: created.InstanceId, SenderId: listener.Id})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	resp, err := s.RemoveInstance(ctx, &RemoveInstanceParams{InstanceId: created.InstanceId, SenderId: created.ParticipantId})
	require.NoError(t, err)
	assert.Len(t, resp.Conns, 2)
	assert.Zero(t, s.ConnectedParticipants())

	_, err = s.GetInstanceState(ctx, created.InstanceId)
	assert.ErrorIs(t, err, ErrInstanceNotFound)

	_, err = s.WriteAttributes(ctx, &WriteAttributesParams{
		InstanceId: created.InstanceId,
		SenderId:   created.ParticipantId,
		Attributes: mediasync.Partial{Play: mediasync.Bool(true)},
	})
	assert.ErrorIs(t, err, ErrPermissionDenied, "participants are gone with the instance")
}
