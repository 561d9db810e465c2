package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeenSet(t *testing.T) {
	set := NewSeenSet("v2", "v1", "v2")

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Has("v1"))
	assert.False(t, set.Has("v3"))

	set.Add("v3")
	set.Add("")

	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []string{"v1", "v2", "v3"}, set.IDs())
}

func TestSeenSet_EmptyIDs(t *testing.T) {
	set := NewSeenSet()
	assert.NotNil(t, set.IDs())
	assert.Empty(t, set.IDs())
}
