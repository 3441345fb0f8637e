package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/mediasync/internal/metrics"
	"github.com/sharetube/mediasync/internal/service"
	"github.com/sharetube/mediasync/pkg/validator"
	"github.com/sharetube/mediasync/pkg/wsrouter"
)

type iService interface {
	CreateInstance(context.Context, *service.CreateInstanceParams) (service.CreateInstanceResponse, error)
	GetInstanceState(context.Context, string) (service.InstanceState, error)
	RemoveInstance(context.Context, *service.RemoveInstanceParams) (service.RemoveInstanceResponse, error)
	AddParticipant(context.Context, *service.AddParticipantParams) (service.AddParticipantResponse, error)
	Authenticate(ctx context.Context, instanceId, token string) (service.Participant, error)
	ConnectParticipant(context.Context, *service.ConnectParticipantParams) (service.InstanceState, error)
	DisconnectParticipant(context.Context, *service.DisconnectParticipantParams) bool
	WriteAttributes(context.Context, *service.WriteAttributesParams) (service.WriteAttributesResponse, error)
	ConnectedParticipants() int
}

type controller struct {
	service  iService
	upgrader websocket.Upgrader
	validate *validator.Validator
	metrics  *metrics.Metrics
	logger   *slog.Logger
	wsmux    *wsrouter.WSRouter
}

func NewController(service iService, metrics *metrics.Metrics, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		service:  service,
		validate: validator.NewValidator(),
		metrics:  metrics,
		logger:   logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}
