package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	id1 := Generate()
	id2 := Generate()

	assert.Len(t, id1, 36)
	assert.NotEqual(t, id1, id2)
}

func TestShort(t *testing.T) {
	assert.Len(t, Short(), 8)
}
