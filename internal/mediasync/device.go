package mediasync

import (
	"context"
	"errors"
)

var (
	// ErrPlayNotAllowed is returned by Device.Play when the runtime refuses to
	// start playback without user activation.
	ErrPlayNotAllowed = errors.New("play not allowed")
	// ErrPlayAborted is returned by Device.Play when the start of playback was
	// interrupted, for example by a pause or a new source.
	ErrPlayAborted = errors.New("play aborted")
)

type PlayErrorKind int

const (
	PlayErrorOther PlayErrorKind = iota
	PlayErrorNotAllowed
	PlayErrorAborted
)

func (k PlayErrorKind) String() string {
	switch k {
	case PlayErrorNotAllowed:
		return "NotAllowed"
	case PlayErrorAborted:
		return "Aborted"
	default:
		return "Other"
	}
}

// PlayErrorKindOf classifies an error returned by Device.Play.
func PlayErrorKindOf(err error) PlayErrorKind {
	switch {
	case errors.Is(err, ErrPlayNotAllowed):
		return PlayErrorNotAllowed
	case errors.Is(err, ErrPlayAborted):
		return PlayErrorAborted
	default:
		return PlayErrorOther
	}
}

type EventKind int

const (
	EventPlay EventKind = iota
	EventPause
	EventSeeked
	EventVolumeChanged
	EventTimeUpdate
)

func (k EventKind) String() string {
	switch k {
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventSeeked:
		return "seeked"
	case EventVolumeChanged:
		return "volumechange"
	case EventTimeUpdate:
		return "timeupdate"
	default:
		return "unknown"
	}
}

// Event is emitted by a playback device. Position is the device position in
// seconds when the event fired; Volume and Muted are set for
// EventVolumeChanged.
type Event struct {
	Kind     EventKind
	Position float64
	Volume   float64
	Muted    bool
}

// Device is a local playback device. Implementations must be safe for
// concurrent use.
type Device interface {
	Play(ctx context.Context) error
	Pause()
	SetPosition(seconds float64)
	SetVolume(level float64)
	SetMuted(muted bool)
	Position() float64
	// Events returns a fresh event sequence that ends when ctx is done.
	Events(ctx context.Context) <-chan Event
}
