package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/granary/pkg/types"
)

func TestNewBackend(t *testing.T) {
	g := NewBackend()
	require.NoError(t, g.Attach(types.Config{
		Backend:           types.BackendSQLite,
		DataDir:           t.TempDir(),
		ContainerCapacity: 10,
		StorageCapacity:   20,
	}))
	defer g.Detach()

	remainder, err := g.AddCereal(types.Peas, 11)
	require.NoError(t, err)
	assert.InDelta(t, 1, remainder, 0.01)

	containers, err := g.Containers()
	require.NoError(t, err)
	assert.Equal(t, []types.Container{{Cereal: types.Peas, Amount: 10}}, containers)
}
