// Package device adapts raw media elements to mediasync.Device.
package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/mediasync/internal/mediasync"
)

var ErrUnknownKind = errors.New("unknown media kind")

type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindAudio, KindVideo:
		return k, nil
	}

	return "", fmt.Errorf("%w %q", ErrUnknownKind, s)
}

// Element is the set of primitives a playable media element offers.
type Element interface {
	Play(ctx context.Context) error
	Pause()
	Seek(seconds float64)
	SetVolume(level float64)
	SetMuted(muted bool)
	CurrentTime() float64
	Subscribe(ctx context.Context) <-chan mediasync.Event
}

// element forwards to an Element. With no element mounted every call is a
// no-op and the event sequence is empty.
type element struct {
	el Element
}

func (e element) Play(ctx context.Context) error {
	if e.el == nil {
		return nil
	}

	return e.el.Play(ctx)
}

func (e element) Pause() {
	if e.el != nil {
		e.el.Pause()
	}
}

func (e element) SetPosition(seconds float64) {
	if e.el != nil {
		e.el.Seek(seconds)
	}
}

func (e element) SetVolume(level float64) {
	if e.el != nil {
		e.el.SetVolume(level)
	}
}

func (e element) SetMuted(muted bool) {
	if e.el != nil {
		e.el.SetMuted(muted)
	}
}

func (e element) Position() float64 {
	if e.el == nil {
		return 0
	}

	return e.el.CurrentTime()
}

func (e element) Events(ctx context.Context) <-chan mediasync.Event {
	if e.el == nil {
		ch := make(chan mediasync.Event)
		close(ch)
		return ch
	}

	return e.el.Subscribe(ctx)
}

type Audio struct {
	element
	src string
}

func NewAudio(el Element, src string) *Audio {
	return &Audio{
		element: element{el: el},
		src:     src,
	}
}

func (a *Audio) Source() string {
	return a.src
}

type Video struct {
	element
	src    string
	poster string
}

func NewVideo(el Element, src, poster string) *Video {
	return &Video{
		element: element{el: el},
		src:     src,
		poster:  poster,
	}
}

func (v *Video) Source() string {
	return v.src
}

func (v *Video) Poster() string {
	return v.poster
}

// New returns the adapter matching kind. The poster is ignored for audio.
func New(kind Kind, el Element, src, poster string) (mediasync.Device, error) {
	switch kind {
	case KindAudio:
		return NewAudio(el, src), nil
	case KindVideo:
		return NewVideo(el, src, poster), nil
	}

	return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
}
