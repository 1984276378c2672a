package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterationLimiter(t *testing.T) {
	l := NewIterationLimiter(2)

	assert.NoError(t, l.Increment())
	assert.Equal(t, 1, l.Remaining())
	assert.NoError(t, l.Increment())

	err := l.Increment()
	assert.ErrorIs(t, err, ErrIterationLimit)
	assert.Equal(t, 3, l.Count())
}

func TestIterationLimiter_Unlimited(t *testing.T) {
	l := NewIterationLimiter(0)
	for i := 0; i < 100; i++ {
		assert.NoError(t, l.Increment())
	}
	assert.Equal(t, -1, l.Remaining())
}
