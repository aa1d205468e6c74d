package pagination

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Metadata(t *testing.T) {
	p := New([]string{"a", "b"}, 0, 2, 5)

	assert.Equal(t, []string{"a", "b"}, p.Content)
	assert.Equal(t, int64(5), p.TotalElements)
	assert.Equal(t, 3, p.TotalPages)
	assert.False(t, p.Last)

	last := New([]string{"e"}, 2, 2, 5)
	assert.True(t, last.Last)
}

func TestNew_ExactMultiple(t *testing.T) {
	p := New([]string{"a", "b"}, 1, 2, 4)
	assert.Equal(t, 2, p.TotalPages)
	assert.True(t, p.Last)
}

func TestEmpty_KeepsMetadata(t *testing.T) {
	p := Empty[int](7, 10, 23)

	assert.NotNil(t, p.Content)
	assert.Empty(t, p.Content)
	assert.Equal(t, 7, p.Page)
	assert.Equal(t, 10, p.Size)
	assert.Equal(t, int64(23), p.TotalElements)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.Last)
}

func TestEmpty_ZeroTotal(t *testing.T) {
	p := Empty[int](0, 10, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.True(t, p.Last)
}

func TestPage_SerializesEmptyContentAsArray(t *testing.T) {
	b, err := json.Marshal(Empty[int](0, 10, 0))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"content":[]`)
	assert.Contains(t, string(b), `"totalElements":0`)
}
