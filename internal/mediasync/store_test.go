package mediasync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryNotifiesOnlyChangedFields(t *testing.T) {
	r := NewRegistry(DefaultState())
	var got []Change
	for _, f := range Fields {
		r.Subscribe(f, func(_ context.Context, c Change) {
			got = append(got, c)
		})
	}

	changes := r.Publish(context.Background(), Partial{
		Play:   Bool(true),
		Volume: Float(1),
		Seek:   Float(12),
	})

	expected := []Change{
		{Field: FieldPlay, Old: false, New: true},
		{Field: FieldSeek, Old: 0.0, New: 12.0},
	}
	assert.Equal(t, expected, changes)
	assert.Equal(t, expected, got)
	assert.Equal(t, State{Play: true, Seek: 12, Volume: 1}, r.State())
}

func TestRegistryPreservesPerFieldOrder(t *testing.T) {
	r := NewRegistry(DefaultState())
	var seeks []any
	r.Subscribe(FieldSeek, func(_ context.Context, c Change) {
		seeks = append(seeks, c.New)
	})

	ctx := context.Background()
	for _, s := range []float64{3, 7, 7, 1} {
		r.Publish(ctx, Partial{Seek: Float(s)})
	}

	assert.Equal(t, []any{3.0, 7.0, 1.0}, seeks)
}

func TestRegistryReentrantPublishIsQueued(t *testing.T) {
	r := NewRegistry(DefaultState())
	ctx := context.Background()
	var order []string

	r.Subscribe(FieldPlay, func(ctx context.Context, c Change) {
		order = append(order, "play")
		r.Publish(ctx, Partial{Seek: Float(5)})
		order = append(order, "play done")
	})
	r.Subscribe(FieldSeek, func(context.Context, Change) {
		order = append(order, "seek")
	})

	r.Publish(ctx, Partial{Play: Bool(true)})

	assert.Equal(t, []string{"play", "play done", "seek"}, order)
}

func TestRegistryUnsubscribe(t *testing.T) {
	r := NewRegistry(DefaultState())
	calls := 0
	unsub := r.Subscribe(FieldMute, func(context.Context, Change) { calls++ })
	r.Subscribe(FieldVolume, func(context.Context, Change) {})

	assert.Equal(t, []Field{FieldMute, FieldVolume}, r.Subscribed())

	ctx := context.Background()
	r.Publish(ctx, Partial{Mute: Bool(true)})
	unsub()
	r.Publish(ctx, Partial{Mute: Bool(false)})

	assert.Equal(t, 1, calls)
	assert.Equal(t, []Field{FieldVolume}, r.Subscribed())
}

func TestMemoryStoreRejectsInvalidWrites(t *testing.T) {
	store := NewMemoryStore(DefaultState())
	ctx := context.Background()

	require.ErrorIs(t, store.WriteAttributes(ctx, Partial{Volume: Float(1.5)}), ErrInvalidAttributes)
	require.ErrorIs(t, store.WriteAttributes(ctx, Partial{Seek: Float(-1)}), ErrInvalidAttributes)
	require.ErrorIs(t, store.WriteAttributes(ctx, Partial{CurrentTime: Float(-0.5)}), ErrInvalidAttributes)

	assert.Equal(t, DefaultState(), store.Attributes())
}

func TestRegistryRecoversFromPanickingSubscriber(t *testing.T) {
	r := NewRegistry(DefaultState())
	ctx := context.Background()
	var seeks []any
	r.Subscribe(FieldPlay, func(context.Context, Change) { panic("boom") })
	r.Subscribe(FieldSeek, func(_ context.Context, c Change) {
		seeks = append(seeks, c.New)
	})

	assert.Panics(t, func() { r.Publish(ctx, Partial{Play: Bool(true)}) })

	r.Publish(ctx, Partial{Seek: Float(4)})
	assert.Equal(t, []any{4.0}, seeks, "delivery continues after a subscriber panicked")
}

func TestMemoryStoreRoundsPositions(t *testing.T) {
	store := NewMemoryStore(DefaultState())

	require.NoError(t, store.WriteAttributes(context.Background(), Partial{Seek: Float(8.5), CurrentTime: Float(1.4)}))

	assert.Equal(t, 9.0, store.Attributes().Seek)
	assert.Equal(t, 1.0, store.Attributes().CurrentTime)
}

func TestParseField(t *testing.T) {
	f, err := ParseField("currentTime")
	require.NoError(t, err)
	assert.Equal(t, FieldCurrentTime, f)

	_, err = ParseField("poster")
	assert.Error(t, err)
}
