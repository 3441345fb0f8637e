package mediasync

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Change describes one field transition observed by a subscriber.
type Change struct {
	Field Field
	Old   any
	New   any
}

type ChangeFunc func(ctx context.Context, c Change)

// AttributeStore is the shared, replicated attribute document of a media
// instance. Convergence is last-write-wins per field and is owned by the
// implementation.
type AttributeStore interface {
	Attributes() State
	WriteAttributes(ctx context.Context, p Partial) error
	Subscribe(f Field, fn ChangeFunc) (unsubscribe func())
}

// InstanceHost is the hosting layer that owns the lifetime of the shared
// instance.
type InstanceHost interface {
	RemoveInstance(ctx context.Context) error
}

func ParseField(s string) (Field, error) {
	if f := Field(s); slices.Contains(Fields, f) {
		return f, nil
	}

	return "", fmt.Errorf("unknown field %q", s)
}

type subscription struct {
	fn      ChangeFunc
	removed bool
}

type delivery struct {
	ctx    context.Context
	sub    *subscription
	change Change
}

// Registry keeps a state snapshot and a list of callbacks per field. Publish
// compares the previous and next value of every written field and notifies
// only the subscribers of fields that actually changed. Notifications of a
// field reach its subscribers in publish order; a Publish issued from inside
// a callback is queued behind the current delivery instead of re-entering.
type Registry struct {
	mu         sync.Mutex
	state      State
	subs       map[Field][]*subscription
	queue      []delivery
	delivering bool
}

func NewRegistry(initial State) *Registry {
	return &Registry{
		state: initial,
		subs:  make(map[Field][]*subscription),
	}
}

func (r *Registry) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

func (r *Registry) Subscribe(f Field, fn ChangeFunc) func() {
	sub := &subscription{fn: fn}

	r.mu.Lock()
	r.subs[f] = append(r.subs[f], sub)
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		sub.removed = true
		list := r.subs[f]
		for i, s := range list {
			if s == sub {
				r.subs[f] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(r.subs[f]) == 0 {
			delete(r.subs, f)
		}
	}
}

// Subscribed returns the fields that currently have at least one subscriber.
func (r *Registry) Subscribed() []Field {
	r.mu.Lock()
	defer r.mu.Unlock()

	fields := maps.Keys(r.subs)
	slices.Sort(fields)

	return fields
}

// Publish applies p to the snapshot and notifies the subscribers of every
// changed field. It returns the changes it detected.
func (r *Registry) Publish(ctx context.Context, p Partial) []Change {
	r.mu.Lock()

	prev := r.state
	next := prev.Apply(p)
	r.state = next

	var changes []Change
	for _, f := range Fields {
		if prev.Value(f) == next.Value(f) {
			continue
		}

		c := Change{Field: f, Old: prev.Value(f), New: next.Value(f)}
		changes = append(changes, c)
		for _, sub := range r.subs[f] {
			r.queue = append(r.queue, delivery{ctx: ctx, sub: sub, change: c})
		}
	}

	if r.delivering {
		r.mu.Unlock()
		return changes
	}

	r.delivering = true
	r.mu.Unlock()
	r.deliver()

	return changes
}

// deliver drains the queue. The delivering flag is cleared under the same
// lock that observes the empty queue, and also when a subscriber panics.
func (r *Registry) deliver() {
	drained := false
	defer func() {
		if !drained {
			r.mu.Lock()
			r.delivering = false
			r.mu.Unlock()
		}
	}()

	for {
		r.mu.Lock()
		if len(r.queue) == 0 {
			r.delivering = false
			drained = true
			r.mu.Unlock()
			return
		}

		d := r.queue[0]
		r.queue = r.queue[1:]
		removed := d.sub.removed
		r.mu.Unlock()

		if !removed {
			d.sub.fn(d.ctx, d.change)
		}
	}
}

// MemoryStore is an in-process AttributeStore shared by every participant
// holding a reference to it.
type MemoryStore struct {
	*Registry
}

func NewMemoryStore(initial State) *MemoryStore {
	return &MemoryStore{Registry: NewRegistry(initial)}
}

func (m *MemoryStore) Attributes() State {
	return m.State()
}

func (m *MemoryStore) WriteAttributes(ctx context.Context, p Partial) error {
	if err := p.Validate(); err != nil {
		return err
	}

	m.Publish(ctx, p.Rounded())

	return nil
}
