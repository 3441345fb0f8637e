package controller

import "context"

type contextKey int

const (
	instanceIdCtxKey contextKey = iota
	participantIdCtxKey
)

func (c controller) getInstanceIdFromCtx(ctx context.Context) string {
	instanceId, ok := ctx.Value(instanceIdCtxKey).(string)
	if !ok {
		return ""
	}

	return instanceId
}

func (c controller) getParticipantIdFromCtx(ctx context.Context) string {
	participantId, ok := ctx.Value(participantIdCtxKey).(string)
	if !ok {
		return ""
	}

	return participantId
}
