package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sharetube/mediasync/internal/mediasync"
	"github.com/sharetube/mediasync/internal/protocol"
	"github.com/sharetube/mediasync/internal/service"
	"github.com/sharetube/mediasync/pkg/ctxlogger"
	"github.com/sharetube/mediasync/pkg/wsrouter"
)

func (c controller) connectParticipant(w http.ResponseWriter, r *http.Request) {
	instanceId := chi.URLParam(r, "instance-id")

	participant, err := c.service.Authenticate(r.Context(), instanceId, r.URL.Query().Get("token"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	conn := wsrouter.NewConn(ws)
	defer conn.Close()

	ctx := context.WithValue(r.Context(), instanceIdCtxKey, instanceId)
	ctx = context.WithValue(ctx, participantIdCtxKey, participant.Id)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("instance_id", instanceId))
	ctx = ctxlogger.AppendCtx(ctx, slog.String("participant_id", participant.Id))

	state, err := c.service.ConnectParticipant(ctx, &service.ConnectParticipantParams{
		InstanceId:    instanceId,
		ParticipantId: participant.Id,
		Conn:          conn,
	})
	if err != nil {
		c.handleWSError(ctx, conn, err)
		conn.CloseWithReason(websocket.ClosePolicyViolation, "failed to connect")
		return
	}
	defer c.disconnect(ctx, instanceId, participant.Id)

	c.metrics.SetConnectedParticipants(c.service.ConnectedParticipants())
	c.logger.InfoContext(ctx, "participant connected", "identity", participant.Identity)

	if err := conn.WriteMessage(protocol.TypeInstanceJoined, &protocol.InstanceJoinedPayload{
		ParticipantID: participant.Id,
		Identity:      string(participant.Identity),
		Instance:      toProtocolInstance(state.Instance),
		Attributes:    state.Attributes,
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to write instance joined", "error", err)
		return
	}

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "failed to serve conn", "error", err)
	}
}

func (c controller) disconnect(ctx context.Context, instanceId, participantId string) {
	if c.service.DisconnectParticipant(ctx, &service.DisconnectParticipantParams{
		InstanceId:    instanceId,
		ParticipantId: participantId,
	}) {
		c.logger.InfoContext(ctx, "participant disconnected")
	}

	c.metrics.SetConnectedParticipants(c.service.ConnectedParticipants())
}

func (c controller) handleWSError(ctx context.Context, conn *wsrouter.Conn, err error) {
	_, code := c.errorStatus(err)
	c.logger.WarnContext(ctx, "websocket message failed", "code", code, "error", err)

	if err := conn.WriteMessage(protocol.TypeError, &protocol.ErrorPayload{
		Code:    code,
		Message: err.Error(),
	}); err != nil {
		c.logger.DebugContext(ctx, "failed to write error", "error", err)
	}
}

type EmptyInput struct{}

func (c controller) handleAlive(_ context.Context, _ *wsrouter.Conn, _ EmptyInput) error {
	return nil
}

func (c controller) handleWriteAttributes(ctx context.Context, _ *wsrouter.Conn, input mediasync.Partial) error {
	resp, err := c.service.WriteAttributes(ctx, &service.WriteAttributesParams{
		InstanceId: c.getInstanceIdFromCtx(ctx),
		SenderId:   c.getParticipantIdFromCtx(ctx),
		Attributes: input,
	})
	if err != nil {
		if errors.Is(err, service.ErrPermissionDenied) || errors.Is(err, mediasync.ErrInvalidAttributes) {
			c.metrics.WriteRejected()
		}

		return fmt.Errorf("failed to write attributes: %w", err)
	}

	if resp.Attributes.IsEmpty() {
		return nil
	}

	for field := range resp.Attributes.Fields() {
		c.metrics.AttributeWritten(string(field))
	}

	if err := c.broadcast(ctx, resp.Conns, protocol.TypeAttributesUpdated, &protocol.AttributesUpdatedPayload{
		SenderID:   c.getParticipantIdFromCtx(ctx),
		Attributes: resp.Attributes,
	}); err != nil {
		c.logger.InfoContext(ctx, "failed to broadcast attributes updated", "error", err)
	}

	return nil
}

func (c controller) handleRemoveInstance(ctx context.Context, _ *wsrouter.Conn, _ EmptyInput) error {
	instanceId := c.getInstanceIdFromCtx(ctx)
	resp, err := c.service.RemoveInstance(ctx, &service.RemoveInstanceParams{
		InstanceId: instanceId,
		SenderId:   c.getParticipantIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to remove instance: %w", err)
	}

	c.metrics.InstanceRemoved()
	c.metrics.SetConnectedParticipants(c.service.ConnectedParticipants())
	c.logger.InfoContext(ctx, "instance removed")

	if err := c.broadcast(ctx, resp.Conns, protocol.TypeInstanceRemoved, &protocol.InstanceRemovedPayload{
		InstanceID: instanceId,
	}); err != nil {
		c.logger.InfoContext(ctx, "failed to broadcast instance removed", "error", err)
	}

	for _, conn := range resp.Conns {
		conn.CloseWithReason(websocket.CloseNormalClosure, "instance removed")
	}

	return nil
}
