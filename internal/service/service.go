package service

import (
	"context"
	"errors"
	"time"

	"github.com/sharetube/mediasync/internal/repository/instance"
	"github.com/sharetube/mediasync/pkg/wsrouter"
)

var (
	ErrPermissionDenied         = errors.New("permission denied")
	ErrInstanceNotFound         = errors.New("instance not found")
	ErrParticipantsLimitReached = errors.New("participants limit reached")
	ErrAlreadyConnected         = errors.New("participant already connected")
)

type iInstanceRepo interface {
	// instance
	SetInstance(context.Context, *instance.SetInstanceParams) error
	GetInstance(context.Context, string) (instance.Instance, error)
	RemoveInstance(context.Context, string) error
	// attributes
	GetAttributes(context.Context, string) (instance.Attributes, error)
	UpdateAttributes(context.Context, *instance.UpdateAttributesParams) error
	// participant
	SetParticipant(context.Context, *instance.SetParticipantParams) error
	GetParticipant(ctx context.Context, instanceId, participantId string) (instance.Participant, error)
	GetParticipants(context.Context, string) ([]instance.Participant, error)
}

type iConnRepo interface {
	Add(instanceId, participantId string, conn *wsrouter.Conn) error
	Remove(instanceId, participantId string) (*wsrouter.Conn, error)
	RemoveInstance(instanceId string) []*wsrouter.Conn
	GetConns(instanceId, excludeId string) []*wsrouter.Conn
	Count(instanceId string) int
	Total() int
}

type service struct {
	instanceRepo      iInstanceRepo
	connRepo          iConnRepo
	participantsLimit int
	secret            []byte
	instanceExp       time.Duration
	now               func() time.Time
}

type Config struct {
	ParticipantsLimit int
	Secret            string
	InstanceExp       time.Duration
}

func New(instanceRepo iInstanceRepo, connRepo iConnRepo, cfg *Config) *service {
	return &service{
		instanceRepo:      instanceRepo,
		connRepo:          connRepo,
		participantsLimit: cfg.ParticipantsLimit,
		secret:            []byte(cfg.Secret),
		instanceExp:       cfg.InstanceExp,
		now:               time.Now,
	}
}
