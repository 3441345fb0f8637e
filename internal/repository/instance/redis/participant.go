package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/mediasync/internal/repository/instance"
)

func (r repo) SetParticipant(ctx context.Context, params *instance.SetParticipantParams) error {
	pipe := r.rc.TxPipeline()

	participantsKey := r.getParticipantsKey(params.InstanceId)
	pipe.HSet(ctx, participantsKey, params.ParticipantId, params.Identity)
	pipe.Expire(ctx, participantsKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set participant: %w", err)
	}

	return nil
}

func (r repo) GetParticipant(ctx context.Context, instanceId, participantId string) (instance.Participant, error) {
	participantsKey := r.getParticipantsKey(instanceId)
	identity, err := r.rc.HGet(ctx, participantsKey, participantId).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return instance.Participant{}, instance.ErrParticipantNotFound
		}

		return instance.Participant{}, fmt.Errorf("failed to get participant: %w", err)
	}

	r.rc.Expire(ctx, participantsKey, r.expireDuration)

	return instance.Participant{
		ID:       participantId,
		Identity: identity,
	}, nil
}

func (r repo) GetParticipants(ctx context.Context, instanceId string) ([]instance.Participant, error) {
	res, err := r.rc.HGetAll(ctx, r.getParticipantsKey(instanceId)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}

	participants := make([]instance.Participant, 0, len(res))
	for id, identity := range res {
		participants = append(participants, instance.Participant{
			ID:       id,
			Identity: identity,
		})
	}

	return participants, nil
}
