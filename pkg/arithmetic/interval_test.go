package arithmetic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterval(t *testing.T) {
	t.Run("Unbounded interval contains every value", func(t *testing.T) {
		//** Arrange
		interval := NewUnboundedInterval()

		//** Act & Assert
		for _, value := range []float64{0, 0.5, 1, 1000} {
			assert.True(t, interval.Contains(value))
		}
		assert.False(t, interval.IsEmpty())
		assert.True(t, interval.IsUnbounded())
	})

	t.Run("Bound types are respected", func(t *testing.T) {
		//** Arrange
		closed := NewInterval(1, Weak, 2, Weak)
		open := NewInterval(1, Strict, 2, Strict)
		lower := NewLowerBoundedInterval(3, Weak)
		upper := NewUpperBoundedInterval(3, Strict)

		//** Assert
		assert.True(t, closed.Contains(1))
		assert.True(t, closed.Contains(2))
		assert.False(t, closed.Contains(2.1))
		assert.False(t, open.Contains(1))
		assert.False(t, open.Contains(2))
		assert.True(t, open.Contains(1.5))
		assert.True(t, lower.Contains(3))
		assert.True(t, lower.Contains(100))
		assert.False(t, lower.Contains(2.9))
		assert.True(t, upper.Contains(0))
		assert.False(t, upper.Contains(3))
	})

	t.Run("Empty intervals", func(t *testing.T) {
		assert.True(t, NewInterval(2, Weak, 1, Weak).IsEmpty())
		assert.True(t, NewInterval(1, Strict, 1, Weak).IsEmpty())
		assert.True(t, NewInterval(1, Weak, 1, Strict).IsEmpty())
		assert.False(t, NewInterval(1, Weak, 1, Weak).IsEmpty())
		assert.False(t, NewLowerBoundedInterval(5, Strict).IsEmpty())
	})

	t.Run("Ordering and printing", func(t *testing.T) {
		//** Arrange
		a := NewInterval(1, Weak, 2, Weak)
		b := NewInterval(1, Strict, 2, Weak)
		c := NewInterval(1, Weak, 3, Weak)

		//** Assert
		assert.Equal(t, -1, a.Compare(b))
		assert.Equal(t, -1, a.Compare(c))
		assert.Equal(t, 1, c.Compare(a))
		assert.Equal(t, 0, a.Compare(NewInterval(1, Weak, 2, Weak)))
		assert.Equal(t, "[1, 2]", a.String())
		assert.Equal(t, "(1, 2]", b.String())
		assert.Equal(t, "[0, ∞)", NewLowerBoundedInterval(0, Weak).String())
		assert.Equal(t, "(-∞, 4)", NewUpperBoundedInterval(4, Strict).String())
	})
}

func TestNumbers(t *testing.T) {
	assert.Equal(t, 0.0, FractionalPart(3))
	assert.Equal(t, 0.0, FractionalPart(2.9999999999))
	assert.InDelta(t, 0.25, FractionalPart(1.25), Epsilon)
	assert.Equal(t, uint(3), IntegralPart(2.9999999999))
	assert.Equal(t, uint(1), IntegralPart(1.75))
	assert.True(t, ApproxEqual(0.1+0.2, 0.3))
	assert.False(t, IsApproxInteger(0.5))
}
