package flux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootAndDispose(t *testing.T) {
	t.Run("children dispose before their parent", func(t *testing.T) {
		var log []string
		Root(func(dispose func()) any {
			OnDispose(func() { log = append(log, "root") })

			Effect(func() func() {
				OnDispose(func() { log = append(log, "child effect") })
				return nil
			})

			dispose()
			return nil
		})

		assert.Equal(t, []string{"child effect", "root"}, log)
	})

	t.Run("onDispose handle runs early and removes itself", func(t *testing.T) {
		Root(func(dispose func()) any {
			defer dispose()

			ran := 0
			cancel := OnDispose(func() { ran++ })

			cancel()
			assert.Equal(t, 1, ran)

			cancel() // idempotent - already removed, already ran
			assert.Equal(t, 1, ran)

			return nil
		})
	})

	t.Run("reads after dispose still return the last value", func(t *testing.T) {
		Root(func(dispose func()) any {
			count := NewSource(5)
			double := NewComputed(func() int { return count.Read() * 2 })
			assert.Equal(t, 10, double.Read())

			dispose()

			assert.Equal(t, 5, count.Read())
			assert.Equal(t, 10, double.Read())
			return nil
		})
	})
}

func TestContext(t *testing.T) {
	t.Run("no scope means no value", func(t *testing.T) {
		_, ok := GetContext("missing")
		assert.False(t, ok)
	})

	t.Run("child scope inherits from parent", func(t *testing.T) {
		type key struct{}

		Root(func(dispose func()) any {
			defer dispose()

			SetContext(key{}, "parent value")

			Effect(func() func() {
				v, ok := GetContext(key{})
				assert.True(t, ok)
				assert.Equal(t, "parent value", v)
				return nil
			})

			return nil
		})
	})

	t.Run("missing key does not walk past a root with no parent", func(t *testing.T) {
		type key struct{}
		Root(func(dispose func()) any {
			defer dispose()
			_, ok := GetContext(key{})
			assert.False(t, ok)
			return nil
		})
	})
}

func TestErrorHandling(t *testing.T) {
	t.Run("ancestor handler catches a derivation panic", func(t *testing.T) {
		Root(func(dispose func()) any {
			defer dispose()

			var caught any
			OnError(func(err any) { caught = err })

			risky := NewComputed(func() int {
				panic("boom")
			})
			risky.Read()

			assert.Equal(t, "boom", caught)
			return nil
		})
	})

	t.Run("a failing handler falls through to the next ancestor", func(t *testing.T) {
		Root(func(dispose func()) any {
			defer dispose()

			var outerCaught any
			OnError(func(err any) { outerCaught = err })

			Effect(func() func() {
				OnError(func(any) { panic("handler itself blew up") })

				risky := NewComputed(func() int {
					panic("boom")
				})
				risky.Read()

				return nil
			})

			assert.Equal(t, "boom", outerCaught)
			return nil
		})
	})

	t.Run("unhandled panic escapes to the read call", func(t *testing.T) {
		Root(func(dispose func()) any {
			defer dispose()

			risky := NewComputed(func() int {
				panic("boom")
			})

			assert.PanicsWithValue(t, "boom", func() {
				risky.Read()
			})
			return nil
		})
	})
}
