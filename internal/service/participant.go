package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/mediasync/internal/mediasync"
	"github.com/sharetube/mediasync/internal/repository/connection"
	"github.com/sharetube/mediasync/internal/repository/instance"
	"github.com/sharetube/mediasync/pkg/wsrouter"
)

type AddParticipantParams struct {
	InstanceId string
	Identity   string
}

type AddParticipantResponse struct {
	ParticipantId string
	Identity      mediasync.Identity
	Token         string
}

// AddParticipant registers a follower. The host is only ever created
// together with its instance.
func (s service) AddParticipant(ctx context.Context, params *AddParticipantParams) (AddParticipantResponse, error) {
	identity, err := mediasync.ParseIdentity(params.Identity)
	if err != nil {
		return AddParticipantResponse{}, err
	}

	if mediasync.IsAuthority(identity) {
		return AddParticipantResponse{}, ErrPermissionDenied
	}

	if _, err := s.instanceRepo.GetInstance(ctx, params.InstanceId); err != nil {
		return AddParticipantResponse{}, fmt.Errorf("failed to get instance: %w", s.mapRepoError(err))
	}

	participants, err := s.instanceRepo.GetParticipants(ctx, params.InstanceId)
	if err != nil {
		return AddParticipantResponse{}, fmt.Errorf("failed to get participants: %w", err)
	}

	if len(participants) >= s.participantsLimit {
		return AddParticipantResponse{}, ErrParticipantsLimitReached
	}

	participantId := s.generateId()
	if err := s.instanceRepo.SetParticipant(ctx, &instance.SetParticipantParams{
		InstanceId:    params.InstanceId,
		ParticipantId: participantId,
		Identity:      string(identity),
	}); err != nil {
		return AddParticipantResponse{}, fmt.Errorf("failed to set participant: %w", err)
	}

	token, err := s.generateJWT(&Claims{
		ParticipantId: participantId,
		InstanceId:    params.InstanceId,
		Identity:      string(identity),
	})
	if err != nil {
		return AddParticipantResponse{}, fmt.Errorf("failed to generate jwt: %w", err)
	}

	return AddParticipantResponse{
		ParticipantId: participantId,
		Identity:      identity,
		Token:         token,
	}, nil
}

// Authenticate resolves the participant a token was issued to. The stored
// identity wins over the one carried by the token.
func (s service) Authenticate(ctx context.Context, instanceId, token string) (Participant, error) {
	claims, err := s.parseJWT(token)
	if err != nil {
		return Participant{}, err
	}

	if claims.InstanceId != instanceId {
		return Participant{}, ErrInvalidToken
	}

	participant, err := s.instanceRepo.GetParticipant(ctx, instanceId, claims.ParticipantId)
	if err != nil {
		if errors.Is(err, instance.ErrParticipantNotFound) {
			return Participant{}, ErrInvalidToken
		}

		return Participant{}, fmt.Errorf("failed to get participant: %w", err)
	}

	return Participant{
		Id:       participant.ID,
		Identity: mediasync.Identity(participant.Identity),
	}, nil
}

type ConnectParticipantParams struct {
	InstanceId    string
	ParticipantId string
	Conn          *wsrouter.Conn
}

func (s service) ConnectParticipant(ctx context.Context, params *ConnectParticipantParams) (InstanceState, error) {
	if err := s.connRepo.Add(params.InstanceId, params.ParticipantId, params.Conn); err != nil {
		if errors.Is(err, connection.ErrAlreadyExists) {
			return InstanceState{}, ErrAlreadyConnected
		}

		return InstanceState{}, fmt.Errorf("failed to add conn: %w", err)
	}

	state, err := s.GetInstanceState(ctx, params.InstanceId)
	if err != nil {
		s.connRepo.Remove(params.InstanceId, params.ParticipantId)
		return InstanceState{}, err
	}

	return state, nil
}

type DisconnectParticipantParams struct {
	InstanceId    string
	ParticipantId string
}

// DisconnectParticipant forgets the participant's connection. It reports
// whether the connection was still tracked.
func (s service) DisconnectParticipant(ctx context.Context, params *DisconnectParticipantParams) bool {
	_, err := s.connRepo.Remove(params.InstanceId, params.ParticipantId)
	return err == nil
}
