// Package virtual provides a media element driven by a clock instead of a
// decoder.
package virtual

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sharetube/mediasync/internal/mediasync"
)

const (
	DefaultTimeUpdateInterval = 250 * time.Millisecond
	subscriptionBuffer        = 64
)

type Config struct {
	// BlockAutoplay rejects unmuted Play calls until Activate is called.
	BlockAutoplay bool
	// TimeUpdateInterval is how often a playing element reports its
	// position.
	TimeUpdateInterval time.Duration
	// Duration bounds the position when positive.
	Duration float64
}

// Element advances its position with the wall clock while playing and
// reports what happens to every subscriber. Events are dropped for
// subscribers that fall behind.
type Element struct {
	mu        sync.Mutex
	cfg       Config
	now       func() time.Time
	playing   bool
	base      float64
	baseAt    time.Time
	volume    float64
	muted     bool
	activated bool
	subs      map[uint64]chan mediasync.Event
	nextSub   uint64
	stop      chan struct{}
}

func New(cfg Config) *Element {
	if cfg.TimeUpdateInterval <= 0 {
		cfg.TimeUpdateInterval = DefaultTimeUpdateInterval
	}

	return &Element{
		cfg:    cfg,
		now:    time.Now,
		volume: 1,
		subs:   make(map[uint64]chan mediasync.Event),
	}
}

// Activate records a user gesture, after which unmuted playback is allowed.
func (e *Element) Activate() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.activated = true
}

func (e *Element) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", mediasync.ErrPlayAborted, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.playing {
		return nil
	}

	if e.cfg.BlockAutoplay && !e.activated && !e.muted {
		return mediasync.ErrPlayNotAllowed
	}

	e.playing = true
	e.baseAt = e.now()
	e.stop = make(chan struct{})
	go e.tick(e.stop)

	e.emitLocked(mediasync.EventPlay)

	return nil
}

func (e *Element) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.playing {
		return
	}

	e.base = e.positionLocked()
	e.playing = false
	close(e.stop)

	e.emitLocked(mediasync.EventPause)
}

func (e *Element) Seek(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.base = e.clamp(seconds)
	e.baseAt = e.now()

	e.emitLocked(mediasync.EventSeeked)
}

func (e *Element) SetVolume(level float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	level = min(max(level, 0), 1)
	if level == e.volume {
		return
	}

	e.volume = level
	e.emitLocked(mediasync.EventVolumeChanged)
}

func (e *Element) SetMuted(muted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if muted == e.muted {
		return
	}

	e.muted = muted
	e.emitLocked(mediasync.EventVolumeChanged)
}

func (e *Element) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.positionLocked()
}

func (e *Element) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.playing
}

func (e *Element) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.volume
}

func (e *Element) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.muted
}

// Subscribe returns the events emitted from now on. The channel is closed
// once ctx is done.
func (e *Element) Subscribe(ctx context.Context) <-chan mediasync.Event {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	ch := make(chan mediasync.Event, subscriptionBuffer)
	e.subs[id] = ch
	e.mu.Unlock()

	context.AfterFunc(ctx, func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		delete(e.subs, id)
		close(ch)
	})

	return ch
}

// Subscribers returns the number of open subscriptions.
func (e *Element) Subscribers() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.subs)
}

// Close stops playback without emitting events.
func (e *Element) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.playing {
		e.base = e.positionLocked()
		e.playing = false
		close(e.stop)
	}
}

func (e *Element) tick(stop <-chan struct{}) {
	ticker := time.NewTicker(e.cfg.TimeUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.mu.Lock()
			if e.playing {
				e.emitLocked(mediasync.EventTimeUpdate)
			}
			e.mu.Unlock()
		}
	}
}

func (e *Element) positionLocked() float64 {
	pos := e.base
	if e.playing {
		pos += e.now().Sub(e.baseAt).Seconds()
	}

	return e.clamp(pos)
}

func (e *Element) clamp(pos float64) float64 {
	pos = max(pos, 0)
	if e.cfg.Duration > 0 {
		pos = min(pos, e.cfg.Duration)
	}

	return pos
}

func (e *Element) emitLocked(kind mediasync.EventKind) {
	ev := mediasync.Event{
		Kind:     kind,
		Position: e.positionLocked(),
		Volume:   e.volume,
		Muted:    e.muted,
	}

	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
