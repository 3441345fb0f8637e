package mediasync

import (
	"context"
	"sync"
	"time"
)

type fakeDevice struct {
	mu          sync.Mutex
	position    float64
	volume      float64
	muted       bool
	playing     bool
	playCalls   int
	mutedOnPlay []bool
	playErrs    []error
	onPlay      func(call int)
	pauseCalls  int
	events      chan Event
}

func newFakeDevice(playErrs ...error) *fakeDevice {
	return &fakeDevice{
		volume:   1,
		playErrs: playErrs,
		events:   make(chan Event, 16),
	}
}

func (d *fakeDevice) Play(ctx context.Context) error {
	d.mu.Lock()
	d.playCalls++
	call := d.playCalls
	d.mutedOnPlay = append(d.mutedOnPlay, d.muted)
	var err error
	if len(d.playErrs) > 0 {
		err = d.playErrs[0]
		d.playErrs = d.playErrs[1:]
	}
	if err == nil {
		d.playing = true
	}
	onPlay := d.onPlay
	d.mu.Unlock()

	if onPlay != nil {
		onPlay(call)
	}

	return err
}

func (d *fakeDevice) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.playing = false
	d.pauseCalls++
}

func (d *fakeDevice) SetPosition(seconds float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.position = seconds
}

func (d *fakeDevice) SetVolume(level float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.volume = level
}

func (d *fakeDevice) SetMuted(muted bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.muted = muted
}

func (d *fakeDevice) Position() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.position
}

func (d *fakeDevice) Events(ctx context.Context) <-chan Event {
	return d.events
}

func (d *fakeDevice) snapshot() fakeDevice {
	d.mu.Lock()
	defer d.mu.Unlock()

	return fakeDevice{
		position:    d.position,
		volume:      d.volume,
		muted:       d.muted,
		playing:     d.playing,
		playCalls:   d.playCalls,
		mutedOnPlay: append([]bool(nil), d.mutedOnPlay...),
		pauseCalls:  d.pauseCalls,
	}
}

type recordedWrite struct {
	at      time.Time
	partial Partial
}

// recordingStore wraps a MemoryStore and records every write.
type recordingStore struct {
	*MemoryStore
	mu     sync.Mutex
	writes []recordedWrite
}

func newRecordingStore(initial State) *recordingStore {
	return &recordingStore{MemoryStore: NewMemoryStore(initial)}
}

func (s *recordingStore) WriteAttributes(ctx context.Context, p Partial) error {
	s.mu.Lock()
	s.writes = append(s.writes, recordedWrite{at: time.Now(), partial: p})
	s.mu.Unlock()

	return s.MemoryStore.WriteAttributes(ctx, p)
}

func (s *recordingStore) Writes() []recordedWrite {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]recordedWrite(nil), s.writes...)
}

type recordingHost struct {
	mu        sync.Mutex
	removedAt []time.Time
}

func (h *recordingHost) RemoveInstance(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removedAt = append(h.removedAt, time.Now())
	return nil
}

func (h *recordingHost) Removals() []time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]time.Time(nil), h.removedAt...)
}
