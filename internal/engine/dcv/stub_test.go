//go:build !dcv || !cgo

package dcv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_NotLinked(t *testing.T) {
	n, err := New()
	assert.Nil(t, n)
	assert.ErrorIs(t, err, ErrNotLinked)
	assert.False(t, Linked)
}
