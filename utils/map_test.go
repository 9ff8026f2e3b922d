package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedKeys(t *testing.T) {
	m := map[uint8]string{3: "c", 1: "a", 2: "b"}
	assert.Equal(t, []uint8{1, 2, 3}, SortedKeys(m))
	assert.Empty(t, SortedKeys(map[uint8]string{}))
}
