package service

import (
	"context"
	"fmt"

	"github.com/sharetube/mediasync/internal/mediasync"
	"github.com/sharetube/mediasync/internal/repository/instance"
	"github.com/sharetube/mediasync/pkg/wsrouter"
)

type CreateInstanceParams struct {
	Kind   string
	URL    string
	Poster string
}

type CreateInstanceResponse struct {
	InstanceId    string
	ParticipantId string
	Identity      mediasync.Identity
	Token         string
}

// CreateInstance creates an instance with default attributes and registers
// its creator as the host.
func (s service) CreateInstance(ctx context.Context, params *CreateInstanceParams) (CreateInstanceResponse, error) {
	instanceId := s.generateId()
	if err := s.instanceRepo.SetInstance(ctx, &instance.SetInstanceParams{
		InstanceId: instanceId,
		Instance: instance.Instance{
			Kind:      params.Kind,
			URL:       params.URL,
			Poster:    params.Poster,
			CreatedAt: s.now().Unix(),
		},
		Attributes: stateToAttributes(mediasync.DefaultState()),
	}); err != nil {
		return CreateInstanceResponse{}, fmt.Errorf("failed to set instance: %w", err)
	}

	participantId := s.generateId()
	if err := s.instanceRepo.SetParticipant(ctx, &instance.SetParticipantParams{
		InstanceId:    instanceId,
		ParticipantId: participantId,
		Identity:      string(mediasync.IdentityHost),
	}); err != nil {
		return CreateInstanceResponse{}, fmt.Errorf("failed to set participant: %w", err)
	}

	token, err := s.generateJWT(&Claims{
		ParticipantId: participantId,
		InstanceId:    instanceId,
		Identity:      string(mediasync.IdentityHost),
	})
	if err != nil {
		return CreateInstanceResponse{}, fmt.Errorf("failed to generate jwt: %w", err)
	}

	return CreateInstanceResponse{
		InstanceId:    instanceId,
		ParticipantId: participantId,
		Identity:      mediasync.IdentityHost,
		Token:         token,
	}, nil
}

func (s service) GetInstanceState(ctx context.Context, instanceId string) (InstanceState, error) {
	i, err := s.instanceRepo.GetInstance(ctx, instanceId)
	if err != nil {
		return InstanceState{}, fmt.Errorf("failed to get instance: %w", s.mapRepoError(err))
	}

	attributes, err := s.instanceRepo.GetAttributes(ctx, instanceId)
	if err != nil {
		return InstanceState{}, fmt.Errorf("failed to get attributes: %w", s.mapRepoError(err))
	}

	participants, err := s.instanceRepo.GetParticipants(ctx, instanceId)
	if err != nil {
		return InstanceState{}, fmt.Errorf("failed to get participants: %w", err)
	}

	return InstanceState{
		Instance: Instance{
			Id:        instanceId,
			Kind:      i.Kind,
			URL:       i.URL,
			Poster:    i.Poster,
			CreatedAt: i.CreatedAt,
		},
		Attributes:   attributesToState(attributes),
		Participants: len(participants),
		Connected:    s.connRepo.Count(instanceId),
	}, nil
}

type RemoveInstanceParams struct {
	InstanceId string
	SenderId   string
}

type RemoveInstanceResponse struct {
	Conns []*wsrouter.Conn
}

// RemoveInstance deletes the instance. The returned connections include the
// sender's and are no longer tracked.
func (s service) RemoveInstance(ctx context.Context, params *RemoveInstanceParams) (RemoveInstanceResponse, error) {
	if err := s.checkIfParticipantAuthority(ctx, params.InstanceId, params.SenderId); err != nil {
		return RemoveInstanceResponse{}, err
	}

	if err := s.instanceRepo.RemoveInstance(ctx, params.InstanceId); err != nil {
		return RemoveInstanceResponse{}, fmt.Errorf("failed to remove instance: %w", s.mapRepoError(err))
	}

	return RemoveInstanceResponse{
		Conns: s.connRepo.RemoveInstance(params.InstanceId),
	}, nil
}

func (s service) ConnectedParticipants() int {
	return s.connRepo.Total()
}
