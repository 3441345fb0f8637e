package inmemory

import (
	"testing"

	"github.com/sharetube/mediasync/internal/repository/connection"
	"github.com/sharetube/mediasync/pkg/wsrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionsAreScopedByInstance(t *testing.T) {
	r := NewRepo()
	a, b, c := &wsrouter.Conn{}, &wsrouter.Conn{}, &wsrouter.Conn{}

	require.NoError(t, r.Add("i1", "p1", a))
	require.NoError(t, r.Add("i1", "p2", b))
	require.NoError(t, r.Add("i2", "p1", c))
	assert.ErrorIs(t, r.Add("i1", "p1", c), connection.ErrAlreadyExists)

	assert.ElementsMatch(t, []*wsrouter.Conn{b}, r.GetConns("i1", "p1"))
	assert.ElementsMatch(t, []*wsrouter.Conn{a, b}, r.GetConns("i1", ""))
	assert.Equal(t, 2, r.Count("i1"))
	assert.Equal(t, 3, r.Total())

	conn, err := r.GetConn("i2", "p1")
	require.NoError(t, err)
	assert.Same(t, c, conn)

	removed, err := r.Remove("i1", "p2")
	require.NoError(t, err)
	assert.Same(t, b, removed)
	_, err = r.Remove("i1", "p2")
	assert.ErrorIs(t, err, connection.ErrNotFound)

	assert.ElementsMatch(t, []*wsrouter.Conn{a}, r.RemoveInstance("i1"))
	assert.Zero(t, r.Count("i1"))
	assert.Equal(t, 1, r.Total())
}
