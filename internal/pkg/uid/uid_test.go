package uid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake_Generate(t *testing.T) {
	gen, err := NewSnowflake(1)
	require.NoError(t, err)

	seen := make(map[int64]struct{}, 1000)
	prev := int64(0)
	for range 1000 {
		id := gen.Generate()
		assert.Positive(t, id)
		assert.Greater(t, id, prev)
		seen[id] = struct{}{}
		prev = id
	}
	assert.Len(t, seen, 1000)
}

func TestNewSnowflake_InvalidNode(t *testing.T) {
	_, err := NewSnowflake(4096)

	assert.Error(t, err)
}

func TestUUID_Generate(t *testing.T) {
	id := NewUUID().Generate()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

var (
	_ StringID = (*UUID)(nil)
	_ NumberID = (*Snowflake)(nil)
)
