package redis

import (
	"context"
	"fmt"

	"github.com/sharetube/mediasync/internal/repository/instance"
)

func (r repo) getInstanceKey(instanceId string) string {
	return "instance:" + instanceId
}

func (r repo) getAttributesKey(instanceId string) string {
	return "instance:" + instanceId + ":attributes"
}

func (r repo) getParticipantsKey(instanceId string) string {
	return "instance:" + instanceId + ":participants"
}

func (r repo) SetInstance(ctx context.Context, params *instance.SetInstanceParams) error {
	instanceKey := r.getInstanceKey(params.InstanceId)
	exists, err := r.rc.Exists(ctx, instanceKey).Result()
	if err != nil {
		return fmt.Errorf("failed to check if instance exists: %w", err)
	}

	if exists > 0 {
		return instance.ErrInstanceExists
	}

	pipe := r.rc.TxPipeline()

	r.hSetStruct(ctx, pipe, instanceKey, params.Instance)
	pipe.Expire(ctx, instanceKey, r.expireDuration)

	attributesKey := r.getAttributesKey(params.InstanceId)
	r.hSetStruct(ctx, pipe, attributesKey, params.Attributes)
	pipe.Expire(ctx, attributesKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set instance: %w", err)
	}

	return nil
}

func (r repo) IsInstanceExists(ctx context.Context, instanceId string) (bool, error) {
	res, err := r.rc.Exists(ctx, r.getInstanceKey(instanceId)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if instance exists: %w", err)
	}

	return res > 0, nil
}

func (r repo) GetInstance(ctx context.Context, instanceId string) (instance.Instance, error) {
	instanceKey := r.getInstanceKey(instanceId)
	res := r.rc.HGetAll(ctx, instanceKey)
	if err := res.Err(); err != nil {
		return instance.Instance{}, fmt.Errorf("failed to get instance: %w", err)
	}

	if len(res.Val()) == 0 {
		return instance.Instance{}, instance.ErrInstanceNotFound
	}

	var i instance.Instance
	if err := res.Scan(&i); err != nil {
		return instance.Instance{}, fmt.Errorf("failed to scan instance: %w", err)
	}

	r.rc.Expire(ctx, instanceKey, r.expireDuration)

	return i, nil
}

// RemoveInstance deletes the instance together with its attributes and
// participants.
func (r repo) RemoveInstance(ctx context.Context, instanceId string) error {
	res, err := r.rc.Del(ctx,
		r.getInstanceKey(instanceId),
		r.getAttributesKey(instanceId),
		r.getParticipantsKey(instanceId),
	).Result()
	if err != nil {
		return fmt.Errorf("failed to remove instance: %w", err)
	}

	if res == 0 {
		return instance.ErrInstanceNotFound
	}

	return nil
}
