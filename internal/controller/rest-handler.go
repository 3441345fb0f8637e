package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/mediasync/internal/protocol"
	"github.com/sharetube/mediasync/internal/service"
	"github.com/sharetube/mediasync/pkg/rest"
)

func (c controller) createInstance(w http.ResponseWriter, r *http.Request) {
	var input protocol.CreateInstanceInput
	if err := rest.ReadJSON(w, r, &input); err != nil {
		c.writeError(w, r, err)
		return
	}

	if errs, ok := c.validate.Validate(input); !ok {
		rest.WriteError(w, http.StatusBadRequest, errs)
		return
	}

	resp, err := c.service.CreateInstance(r.Context(), &service.CreateInstanceParams{
		Kind:   input.Kind,
		URL:    input.URL,
		Poster: input.Poster,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.logger.InfoContext(r.Context(), "instance created", "instance_id", resp.InstanceId, "kind", input.Kind)

	rest.WriteJSON(w, http.StatusCreated, &protocol.CreateInstanceOutput{
		InstanceID:    resp.InstanceId,
		ParticipantID: resp.ParticipantId,
		Identity:      string(resp.Identity),
		Token:         resp.Token,
	})
}

func (c controller) addParticipant(w http.ResponseWriter, r *http.Request) {
	instanceId := chi.URLParam(r, "instance-id")

	var input protocol.AddParticipantInput
	if err := rest.ReadJSON(w, r, &input); err != nil {
		c.writeError(w, r, err)
		return
	}

	if errs, ok := c.validate.Validate(input); !ok {
		rest.WriteError(w, http.StatusBadRequest, errs)
		return
	}

	resp, err := c.service.AddParticipant(r.Context(), &service.AddParticipantParams{
		InstanceId: instanceId,
		Identity:   input.Identity,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, &protocol.AddParticipantOutput{
		ParticipantID: resp.ParticipantId,
		Identity:      string(resp.Identity),
		Token:         resp.Token,
	})
}

func (c controller) getInstance(w http.ResponseWriter, r *http.Request) {
	state, err := c.service.GetInstanceState(r.Context(), chi.URLParam(r, "instance-id"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, &protocol.InstanceOutput{
		Instance:     toProtocolInstance(state.Instance),
		Attributes:   state.Attributes,
		Participants: state.Participants,
		Connected:    state.Connected,
	})
}
