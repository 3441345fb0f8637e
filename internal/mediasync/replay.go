package mediasync

import "context"

// Replay follows a recorded session. It has no authority: every attribute
// change is mirrored, and an externally driven isPlaying signal (the replay
// clock) starts and stops the device with the same autoplay fallback as the
// live view.
type Replay struct {
	engine *Engine
}

func NewReplay(store AttributeStore, device Device, opts ...Option) *Replay {
	return &Replay{engine: NewEngine(store, device, StaticIdentity(""), opts...)}
}

func (r *Replay) Start(ctx context.Context) error {
	return r.engine.Start(ctx)
}

// SetPlaying reacts to the replay clock starting or stopping.
func (r *Replay) SetPlaying(ctx context.Context, playing bool) {
	r.engine.applyPlay(ctx, playing)
}

func (r *Replay) Close() {
	r.engine.Close()
}

func (r *Replay) Unmute() {
	r.engine.Unmute()
}

func (r *Replay) SelfMuted() bool {
	return r.engine.SelfMuted()
}

func (r *Replay) EffectiveMuted() bool {
	return r.engine.EffectiveMuted()
}
