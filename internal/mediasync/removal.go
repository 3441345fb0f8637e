package mediasync

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotAuthority = errors.New("local participant is not the authority")

// DefaultRemovalGrace is how long followers get to observe play=false before
// the instance disappears.
const DefaultRemovalGrace = 300 * time.Millisecond

// RemovalSequencer removes a shared instance in two phases: it broadcasts a
// stopped state, waits a grace interval, then asks the host to remove the
// instance. Pause and removal are independent document operations, so the
// delay is what orders them for followers.
type RemovalSequencer struct {
	writer gatedWriter
	host   InstanceHost
	grace  time.Duration
	after  func(time.Duration) <-chan time.Time
}

func NewRemovalSequencer(store AttributeStore, identity IdentityResolver, host InstanceHost, grace time.Duration) *RemovalSequencer {
	return &RemovalSequencer{
		writer: gatedWriter{store: store, identity: identity, logger: discardLogger()},
		host:   host,
		grace:  max(grace, 0),
		after:  time.After,
	}
}

func (r *RemovalSequencer) Grace() time.Duration {
	return r.grace
}

// Remove runs the sequence. If ctx is done during the grace interval the
// instance is left in place and ctx's error is returned.
func (r *RemovalSequencer) Remove(ctx context.Context) error {
	if !isAuthority(r.writer.identity) {
		return ErrNotAuthority
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("removal cancelled: %w", err)
	}

	r.writer.write(ctx, Partial{Play: Bool(false)})

	select {
	case <-r.after(r.grace):
	case <-ctx.Done():
		return fmt.Errorf("removal cancelled: %w", ctx.Err())
	}

	if r.host == nil {
		return nil
	}

	if err := r.host.RemoveInstance(ctx); err != nil {
		return fmt.Errorf("failed to remove instance: %w", err)
	}

	return nil
}
