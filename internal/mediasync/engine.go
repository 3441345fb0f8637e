package mediasync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

var ErrEngineClosed = errors.New("engine closed")

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithRemovalGrace(d time.Duration) Option {
	return func(e *Engine) {
		e.grace = max(d, 0)
	}
}

// WithInstanceHost sets the hosting layer used by Remove.
func WithInstanceHost(host InstanceHost) Option {
	return func(e *Engine) {
		e.host = host
	}
}

// Engine keeps a local playback device converged with the shared attribute
// store. Followers mirror attribute changes onto the device; the authority
// writes its device events back to the store.
type Engine struct {
	store    AttributeStore
	identity IdentityResolver
	host     InstanceHost
	logger   *slog.Logger
	grace    time.Duration

	writer   gatedWriter
	selfMute *SelfMute
	autoplay *Autoplay
	removal  *RemovalSequencer

	mu         sync.Mutex
	device     Device
	sharedMute bool
	unsubs     []func()
	closed     bool
	// cancel funcs of in-flight operations, fired by Close
	inflight map[uint64]context.CancelFunc
	nextOp   uint64
}

func NewEngine(store AttributeStore, device Device, identity IdentityResolver, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		identity: identity,
		device:   device,
		logger:   slog.Default(),
		grace:    DefaultRemovalGrace,
		inflight: make(map[uint64]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.writer = gatedWriter{store: store, identity: identity, logger: e.logger}
	e.selfMute = NewSelfMute(func(bool) { e.applyMuted() })
	e.autoplay = NewAutoplay(e.selfMute, e.logger)
	e.removal = &RemovalSequencer{
		writer: e.writer,
		host:   e.host,
		grace:  e.grace,
		after:  time.After,
	}

	return e
}

// Start subscribes to every attribute field and brings the device to the
// current shared state. Followers start playing if the instance is playing.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	stale := e.unsubs
	e.unsubs = make([]func(), 0, len(Fields))
	for _, f := range Fields {
		e.unsubs = append(e.unsubs, e.store.Subscribe(f, e.HandleAttributeChange))
	}
	e.mu.Unlock()

	for _, unsub := range stale {
		unsub()
	}

	attrs := e.store.Attributes()
	if dev := e.getDevice(); dev != nil {
		dev.SetPosition(attrs.CurrentTime)
	}

	if e.isAuthority() {
		// a remounted authority pulls followers back to its position
		if seek := roundSeconds(attrs.CurrentTime); seek != attrs.Seek {
			e.writer.write(ctx, Partial{Seek: Float(seek)})
		}
		return nil
	}

	e.mu.Lock()
	e.sharedMute = attrs.Mute
	e.mu.Unlock()
	e.applyMuted()

	if dev := e.getDevice(); dev != nil {
		dev.SetVolume(attrs.Volume)
	}
	e.applyPlay(ctx, attrs.Play)

	return nil
}

// Run forwards device events to HandleDeviceEvent until ctx is done or the
// engine is closed. Every call subscribes to a fresh event sequence.
func (e *Engine) Run(ctx context.Context) error {
	dev := e.getDevice()
	if dev == nil {
		return nil
	}

	runCtx, cancel := e.bind(ctx)
	defer cancel()

	events := dev.Events(runCtx)
	for {
		select {
		case <-runCtx.Done():
			if e.isClosed() {
				return ErrEngineClosed
			}
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			e.HandleDeviceEvent(runCtx, ev)
		}
	}
}

// Close unsubscribes from the store and cancels every pending grace wait or
// autoplay retry started by the engine.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	unsubs := e.unsubs
	e.unsubs = nil
	inflight := e.inflight
	e.inflight = make(map[uint64]context.CancelFunc)
	e.mu.Unlock()

	for _, cancel := range inflight {
		cancel()
	}
	for _, unsub := range unsubs {
		unsub()
	}
}

func (e *Engine) AttachDevice(dev Device) {
	e.mu.Lock()
	e.device = dev
	e.mu.Unlock()
}

func (e *Engine) DetachDevice() {
	e.AttachDevice(nil)
}

func (e *Engine) SelfMuted() bool {
	return e.selfMute.Enabled()
}

func (e *Engine) AutoplayState() AutoplayState {
	return e.autoplay.State()
}

// EffectiveMuted is the mute state the engine presents to the device.
func (e *Engine) EffectiveMuted() bool {
	e.mu.Lock()
	shared := e.sharedMute
	e.mu.Unlock()

	return EffectiveMuted(shared, e.selfMute.Enabled())
}

// Unmute clears the local self-mute. The shared mute attribute is untouched.
func (e *Engine) Unmute() {
	e.autoplay.Reset()
	e.selfMute.Clear()
}

// Remove stops playback for everyone and removes the instance after the grace
// interval. Only the authority may remove.
func (e *Engine) Remove(ctx context.Context) error {
	ctx, cancel := e.bind(ctx)
	defer cancel()

	return e.removal.Remove(ctx)
}

func (e *Engine) HandleAttributeChange(ctx context.Context, c Change) {
	if e.isAuthority() {
		return
	}

	switch c.Field {
	case FieldPlay:
		play, _ := c.New.(bool)
		e.applyPlay(ctx, play)
	case FieldSeek:
		seek, _ := c.New.(float64)
		if dev := e.getDevice(); dev != nil {
			dev.SetPosition(seek)
		}
	case FieldVolume:
		volume, _ := c.New.(float64)
		if dev := e.getDevice(); dev != nil {
			dev.SetVolume(volume)
		}
	case FieldMute:
		mute, _ := c.New.(bool)
		e.mu.Lock()
		e.sharedMute = mute
		e.mu.Unlock()
		e.applyMuted()
	}
}

func (e *Engine) HandleDeviceEvent(ctx context.Context, ev Event) {
	if !e.isAuthority() {
		return
	}

	switch ev.Kind {
	case EventPlay:
		e.writer.write(ctx, Partial{Play: Bool(true)})
	case EventPause:
		e.writer.write(ctx, Partial{Play: Bool(false)})
	case EventSeeked:
		seek := roundSeconds(ev.Position)
		if seek != e.store.Attributes().Seek {
			e.writer.write(ctx, Partial{Seek: Float(seek)})
		}
	case EventVolumeChanged:
		e.writer.write(ctx, Partial{Volume: Float(ev.Volume), Mute: Bool(ev.Muted)})
	case EventTimeUpdate:
		currentTime := roundSeconds(ev.Position)
		if currentTime != e.store.Attributes().CurrentTime {
			e.writer.write(ctx, Partial{CurrentTime: Float(currentTime)})
		}
	}
}

func (e *Engine) applyPlay(ctx context.Context, play bool) {
	dev := e.getDevice()
	if dev == nil {
		return
	}

	if !play {
		dev.Pause()
		return
	}

	ctx, cancel := e.bind(ctx)
	defer cancel()

	if err := e.autoplay.Start(ctx, dev); err != nil {
		e.logger.WarnContext(ctx, "playback did not start", "error", err)
	}
}

func (e *Engine) applyMuted() {
	if e.isAuthority() || e.isClosed() {
		return
	}

	if dev := e.getDevice(); dev != nil {
		dev.SetMuted(e.EffectiveMuted())
	}
}

func (e *Engine) getDevice() Device {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.device
}

func (e *Engine) isAuthority() bool {
	return isAuthority(e.identity)
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.closed
}

// bind derives a context that Close cancels synchronously, so a suspended
// operation never acts on a torn down instance.
func (e *Engine) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		cancel()
		return ctx, cancel
	}
	id := e.nextOp
	e.nextOp++
	e.inflight[id] = cancel
	e.mu.Unlock()

	return ctx, func() {
		e.mu.Lock()
		delete(e.inflight, id)
		e.mu.Unlock()
		cancel()
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
