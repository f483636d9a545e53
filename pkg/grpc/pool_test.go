package grpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

func TestPool_ReusesConnection(t *testing.T) {
	p := NewPool(WithCallOptions(grpc.CallContentSubtype("json")))

	a, err := p.GetConnection("localhost:50051")
	require.NoError(t, err)
	b, err := p.GetConnection("localhost:50051")
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = p.GetConnection("localhost:50052")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())

	require.NoError(t, p.Close())
	assert.Equal(t, 0, p.Len())
}

func TestPool_RecreatesClosedConnection(t *testing.T) {
	p := NewPool()
	t.Cleanup(func() { _ = p.Close() })

	a, err := p.GetConnection("localhost:50051")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := p.GetConnection("localhost:50051")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, 1, p.Len())
}
