package redis

import (
	"context"
	"fmt"

	"github.com/sharetube/mediasync/internal/repository/instance"
)

func (r repo) GetAttributes(ctx context.Context, instanceId string) (instance.Attributes, error) {
	attributesKey := r.getAttributesKey(instanceId)
	res := r.rc.HGetAll(ctx, attributesKey)
	if err := res.Err(); err != nil {
		return instance.Attributes{}, fmt.Errorf("failed to get attributes: %w", err)
	}

	if len(res.Val()) == 0 {
		return instance.Attributes{}, instance.ErrInstanceNotFound
	}

	var attributes instance.Attributes
	if err := res.Scan(&attributes); err != nil {
		return instance.Attributes{}, fmt.Errorf("failed to scan attributes: %w", err)
	}

	r.rc.Expire(ctx, attributesKey, r.expireDuration)

	return attributes, nil
}

func (r repo) UpdateAttributes(ctx context.Context, params *instance.UpdateAttributesParams) error {
	fields := r.structFields(params)
	if len(fields) == 0 {
		return nil
	}

	attributesKey := r.getAttributesKey(params.InstanceId)
	updated, err := r.hSetIfExists(ctx, attributesKey, fields)
	if err != nil {
		return fmt.Errorf("failed to update attributes: %w", err)
	}

	if !updated {
		return instance.ErrInstanceNotFound
	}

	r.rc.Expire(ctx, attributesKey, r.expireDuration)

	return nil
}
