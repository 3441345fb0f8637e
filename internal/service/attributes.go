package service

import (
	"context"
	"fmt"

	"github.com/sharetube/mediasync/internal/mediasync"
	"github.com/sharetube/mediasync/internal/repository/instance"
	"github.com/sharetube/mediasync/pkg/wsrouter"
)

type WriteAttributesParams struct {
	InstanceId string
	SenderId   string
	Attributes mediasync.Partial
}

type WriteAttributesResponse struct {
	Attributes mediasync.Partial
	Conns      []*wsrouter.Conn
}

// WriteAttributes stores the fields of an authority write that differ from
// the stored ones, with positions rounded to whole seconds. Only those fields are returned, along with the
// connections of every other participant.
func (s service) WriteAttributes(ctx context.Context, params *WriteAttributesParams) (WriteAttributesResponse, error) {
	if err := s.checkIfParticipantAuthority(ctx, params.InstanceId, params.SenderId); err != nil {
		return WriteAttributesResponse{}, err
	}

	if err := params.Attributes.Validate(); err != nil {
		return WriteAttributesResponse{}, err
	}

	current, err := s.instanceRepo.GetAttributes(ctx, params.InstanceId)
	if err != nil {
		return WriteAttributesResponse{}, fmt.Errorf("failed to get attributes: %w", s.mapRepoError(err))
	}

	changed := changedAttributes(attributesToState(current), params.Attributes.Rounded())
	if changed.IsEmpty() {
		return WriteAttributesResponse{}, nil
	}

	if err := s.instanceRepo.UpdateAttributes(ctx, &instance.UpdateAttributesParams{
		InstanceId:  params.InstanceId,
		Play:        changed.Play,
		Seek:        changed.Seek,
		Volume:      changed.Volume,
		Mute:        changed.Mute,
		CurrentTime: changed.CurrentTime,
	}); err != nil {
		return WriteAttributesResponse{}, fmt.Errorf("failed to update attributes: %w", s.mapRepoError(err))
	}

	return WriteAttributesResponse{
		Attributes: changed,
		Conns:      s.connRepo.GetConns(params.InstanceId, params.SenderId),
	}, nil
}
