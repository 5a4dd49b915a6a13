package utilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSnowflakeID_Unique(t *testing.T) {
	t.Setenv("SNOWFLAKE_NODE", "3")
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewSnowflakeID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNewSnowflakeIDWithNode_FallsBackToKSUID(t *testing.T) {
	// node ids are limited to 10 bits
	id := NewSnowflakeIDWithNode(5000)
	assert.Len(t, id, 27)
}
