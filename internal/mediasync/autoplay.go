package mediasync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

type AutoplayState int

const (
	AutoplayNormal AutoplayState = iota
	AutoplayForcedMute
)

func (s AutoplayState) String() string {
	if s == AutoplayForcedMute {
		return "ForcedMute"
	}

	return "Normal"
}

// Autoplay starts playback on a device, falling back once to muted playback
// when the runtime rejects unmuted autoplay.
type Autoplay struct {
	mu       sync.Mutex
	state    AutoplayState
	selfMute *SelfMute
	logger   *slog.Logger
}

func NewAutoplay(selfMute *SelfMute, logger *slog.Logger) *Autoplay {
	if logger == nil {
		logger = slog.Default()
	}

	return &Autoplay{
		selfMute: selfMute,
		logger:   logger,
	}
}

func (a *Autoplay) State() AutoplayState {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}

// Reset returns to Normal after the user explicitly unmuted.
func (a *Autoplay) Reset() {
	a.mu.Lock()
	a.state = AutoplayNormal
	a.mu.Unlock()
}

// Start asks dev to play. A NotAllowed or Aborted rejection switches to
// ForcedMute, enables the self-mute and retries exactly once. When ctx is
// already done after the first attempt nothing changes and no retry is made. The returned error is the unrecovered
// failure of this attempt, if any.
func (a *Autoplay) Start(ctx context.Context, dev Device) error {
	if dev == nil {
		return nil
	}

	err := dev.Play(ctx)
	if err == nil {
		return nil
	}

	kind := PlayErrorKindOf(err)
	if kind == PlayErrorOther {
		return fmt.Errorf("failed to play: %w", err)
	}

	// an abort caused by teardown must not touch state
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("muted retry skipped: %w", errors.Join(ctxErr, err))
	}

	a.logger.InfoContext(ctx, "autoplay rejected, retrying muted", "kind", kind.String(), "error", err)

	a.mu.Lock()
	a.state = AutoplayForcedMute
	a.mu.Unlock()
	a.selfMute.Set(true)

	if err := dev.Play(ctx); err != nil {
		return fmt.Errorf("failed to play muted: %w", err)
	}

	return nil
}
