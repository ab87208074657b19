package flux

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffect(t *testing.T) {
	t.Run("runs once immediately, reruns after tick with cleanup", func(t *testing.T) {
		var log []string
		Root(func(dispose func()) any {
			defer dispose()

			count := NewSource(0)
			log = append(log, fmt.Sprintf("%d", count.Read()))

			Effect(func() func() {
				log = append(log, fmt.Sprintf("changed %d", count.Read()))
				return func() { log = append(log, "cleanup") }
			})

			count.Write(10)
			log = append(log, fmt.Sprintf("%d", count.Read()))
			Tick()

			count.Write(20)
			Tick()

			return nil
		})

		assert.Equal(t, []string{
			"0",
			"changed 0",
			"10",
			"cleanup",
			"changed 10",
			"cleanup",
			"changed 20",
			"cleanup",
		}, log)
	})

	t.Run("stop runs outstanding cleanup and no further reruns", func(t *testing.T) {
		var log []string
		Root(func(dispose func()) any {
			defer dispose()

			count := NewSource(0)
			stop := Effect(func() func() {
				log = append(log, fmt.Sprintf("running %d", count.Read()))
				return func() { log = append(log, "cleanup") }
			})

			count.Write(1)
			Tick()

			stop()

			count.Write(2)
			Tick()

			return nil
		})

		assert.Equal(t, []string{
			"running 0",
			"cleanup",
			"running 1",
			"cleanup",
		}, log)
	})

	t.Run("diamond dependency settles once per tick", func(t *testing.T) {
		var log []string
		Root(func(dispose func()) any {
			defer dispose()

			count := NewSource(0)
			double := NewComputed(func() int { return count.Read() * 2 })
			quad := NewComputed(func() int { return count.Read() * 4 })

			Effect(func() func() {
				log = append(log, fmt.Sprintf("running %d %d", double.Read(), quad.Read()))
				return nil
			})

			count.Write(10)
			Tick()

			return nil
		})

		assert.Equal(t, []string{
			"running 0 0",
			"running 20 40",
		}, log)
	})

	t.Run("nested effect stops with its parent", func(t *testing.T) {
		var log []string
		Root(func(dispose func()) any {
			outerStop := Effect(func() func() {
				log = append(log, "outer running")
				Effect(func() func() {
					log = append(log, "inner running")
					return func() { log = append(log, "inner cleanup") }
				})
				return func() { log = append(log, "outer cleanup") }
			})

			outerStop()
			return nil
		})

		assert.Equal(t, []string{
			"outer running",
			"inner running",
			"inner cleanup",
			"outer cleanup",
		}, log)
	})
}
