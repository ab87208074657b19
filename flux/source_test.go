package flux

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSource(t *testing.T) {
	t.Run("read and write", func(t *testing.T) {
		count := NewSource(0)
		assert.Equal(t, 0, count.Read())

		count.Write(10)
		assert.Equal(t, 10, count.Read())
	})

	t.Run("zero values", func(t *testing.T) {
		err := NewSource[error](nil)
		assert.Nil(t, err.Read())

		err.Write(errors.New("oops"))
		assert.EqualError(t, err.Read(), "oops")

		err.Write(nil)
		assert.Nil(t, err.Read())
	})

	t.Run("next derives from current value", func(t *testing.T) {
		count := NewSource(1)
		count.Next(func(v int) int { return v + 1 })
		assert.Equal(t, 2, count.Read())
	})

	t.Run("write after dispose is a no-op", func(t *testing.T) {
		var count *Source[int]
		Root(func(dispose func()) any {
			count = NewSource(1)
			dispose()
			return nil
		})

		count.Write(99)
		assert.Equal(t, 1, count.Read())
	})

	t.Run("custom dirty predicate suppresses notification", func(t *testing.T) {
		runs := 0
		Root(func(dispose func()) any {
			defer dispose()

			rounded := NewSource(0, WithSourceDirty(func(old, next int) bool {
				return old/10 != next/10
			}))
			derived := NewComputed(func() int {
				runs++
				return rounded.Read() * 2
			})
			derived.Read()

			rounded.Write(1) // same bucket, no observer enqueued
			Tick()
			derived.Read()

			rounded.Write(15) // new bucket
			Tick()
			derived.Read()

			return nil
		})

		assert.Equal(t, 2, runs)
	})

	t.Run("IsObservable and IsSubject", func(t *testing.T) {
		s := NewSource(0)
		assert.True(t, IsObservable(s))
		assert.True(t, IsSubject(s))

		c := NewComputed(func() int { return s.Read() })
		assert.True(t, IsObservable(c))
		assert.False(t, IsSubject(c))

		assert.False(t, IsObservable(42))
	})
}
