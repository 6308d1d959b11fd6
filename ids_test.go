package rendez

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_ValidAndSortable(t *testing.T) {
	gen := UUIDv7Generator{}

	a := gen.Generate()
	b := gen.Generate()

	pa, err := uuid.Parse(a)
	require.NoError(t, err)
	pb, err := uuid.Parse(b)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), pa.Version())
	assert.Equal(t, uuid.Version(7), pb.Version())
	assert.NotEqual(t, a, b)
}
