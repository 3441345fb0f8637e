package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sharetube/mediasync/internal/mediasync"
	"github.com/sharetube/mediasync/internal/repository/instance"
)

func (s service) generateId() string {
	return uuid.NewString()
}

func (s service) checkIfParticipantAuthority(ctx context.Context, instanceId, participantId string) error {
	participant, err := s.instanceRepo.GetParticipant(ctx, instanceId, participantId)
	if err != nil {
		if errors.Is(err, instance.ErrParticipantNotFound) {
			return ErrPermissionDenied
		}

		return fmt.Errorf("failed to get participant: %w", err)
	}

	if !mediasync.IsAuthority(mediasync.Identity(participant.Identity)) {
		return ErrPermissionDenied
	}

	return nil
}

func (s service) mapRepoError(err error) error {
	if errors.Is(err, instance.ErrInstanceNotFound) {
		return ErrInstanceNotFound
	}

	return err
}

func attributesToState(a instance.Attributes) mediasync.State {
	return mediasync.State{
		Play:        a.Play,
		Seek:        a.Seek,
		Volume:      a.Volume,
		Mute:        a.Mute,
		CurrentTime: a.CurrentTime,
	}
}

func stateToAttributes(s mediasync.State) instance.Attributes {
	return instance.Attributes{
		Play:        s.Play,
		Seek:        s.Seek,
		Volume:      s.Volume,
		Mute:        s.Mute,
		CurrentTime: s.CurrentTime,
	}
}

// changedAttributes keeps the fields of p whose value differs from current.
func changedAttributes(current mediasync.State, p mediasync.Partial) mediasync.Partial {
	var changed mediasync.Partial
	if p.Play != nil && *p.Play != current.Play {
		changed.Play = p.Play
	}
	if p.Seek != nil && *p.Seek != current.Seek {
		changed.Seek = p.Seek
	}
	if p.Volume != nil && *p.Volume != current.Volume {
		changed.Volume = p.Volume
	}
	if p.Mute != nil && *p.Mute != current.Mute {
		changed.Mute = p.Mute
	}
	if p.CurrentTime != nil && *p.CurrentTime != current.CurrentTime {
		changed.CurrentTime = p.CurrentTime
	}

	return changed
}
