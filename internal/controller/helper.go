package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sharetube/mediasync/internal/mediasync"
	"github.com/sharetube/mediasync/internal/protocol"
	"github.com/sharetube/mediasync/internal/service"
	"github.com/sharetube/mediasync/pkg/rest"
	"github.com/sharetube/mediasync/pkg/wsrouter"
)

func (c controller) generateTimeBasedId() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

func (c controller) broadcast(ctx context.Context, conns []*wsrouter.Conn, messageType string, payload any) error {
	var errs []error
	for _, conn := range conns {
		if err := conn.WriteMessage(messageType, payload); err != nil {
			c.logger.DebugContext(ctx, "failed to write to conn", "remote_addr", conn.RemoteAddr(), "error", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// errorStatus maps an error to an HTTP status and a stable error code.
func (c controller) errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "INVALID_TOKEN"
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden, "PERMISSION_DENIED"
	case errors.Is(err, service.ErrInstanceNotFound):
		return http.StatusNotFound, "INSTANCE_NOT_FOUND"
	case errors.Is(err, service.ErrParticipantsLimitReached):
		return http.StatusConflict, "PARTICIPANTS_LIMIT_REACHED"
	case errors.Is(err, service.ErrAlreadyConnected):
		return http.StatusConflict, "ALREADY_CONNECTED"
	case errors.Is(err, mediasync.ErrInvalidAttributes):
		return http.StatusBadRequest, "INVALID_ATTRIBUTES"
	case errors.Is(err, mediasync.ErrUnknownIdentity):
		return http.StatusBadRequest, "UNKNOWN_IDENTITY"
	case errors.Is(err, wsrouter.ErrInvalidPayload), errors.Is(err, rest.ErrInvalidBody):
		return http.StatusBadRequest, "INVALID_PAYLOAD"
	case errors.Is(err, wsrouter.ErrUnknownMessageType):
		return http.StatusBadRequest, "UNKNOWN_MESSAGE_TYPE"
	}

	return http.StatusInternalServerError, "INTERNAL"
}

func (c controller) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := c.errorStatus(err)
	if status == http.StatusInternalServerError {
		c.logger.ErrorContext(r.Context(), "request failed", "error", err)
		rest.WriteJSON(w, status, rest.Envelope{"code": code, "error": http.StatusText(status)})
		return
	}

	c.logger.DebugContext(r.Context(), "request rejected", "error", err)
	rest.WriteJSON(w, status, rest.Envelope{"code": code, "error": err.Error()})
}

func toProtocolInstance(i service.Instance) protocol.Instance {
	return protocol.Instance{
		ID:        i.Id,
		Kind:      i.Kind,
		URL:       i.URL,
		Poster:    i.Poster,
		CreatedAt: i.CreatedAt,
	}
}
