package diagnostics

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wovengraph/flux/internal"
)

// recordingHandler captures every record passed to it, so a test can assert
// on structured fields without parsing text output.
type recordingHandler struct {
	records *[]slog.Record
}

func (h recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h recordingHandler) Handle(_ context.Context, r slog.Record) error {
	*h.records = append(*h.records, r)
	return nil
}
func (h recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestFlushStats(t *testing.T) {
	rt := internal.NewRuntime()
	stats := Attach(rt.Scheduler, 64)

	n := rt.NewDerivationNode(nil, func(*internal.Node) any { return nil }, func(any, any) bool { return true }, true)
	rt.Scheduler.Enqueue(n)
	rt.Scheduler.Flush()

	report := stats.Report()
	assert.Contains(t, report, "flushes")
	assert.Contains(t, report, "1")
}

func TestDumpGraph(t *testing.T) {
	rt := internal.NewRuntime()
	root := rt.NewScopeNode(nil)
	root.Label = "root"

	child := rt.NewSourceNode(root, 1, func(any, any) bool { return true })
	child.Label = "count"

	out := DumpGraph(root)
	assert.True(t, strings.Contains(out, "root"))
	assert.True(t, strings.Contains(out, "count"))
}

func TestAttachLogger(t *testing.T) {
	var records []slog.Record
	logger := NewLogger(recordingHandler{records: &records})

	rt := internal.NewRuntime()
	AttachLogger(rt, logger)

	root := rt.NewScopeNode(nil)
	root.Label = "owner"

	var risky *internal.Node
	risky = rt.NewDerivationNode(root, func(*internal.Node) any {
		panic("boom")
	}, func(any, any) bool { return true }, true)
	risky.Label = "risky"

	rt.Scheduler.Enqueue(risky)

	assert.PanicsWithValue(t, "boom", func() {
		rt.Scheduler.Flush()
	})

	root.Dispose()

	var (
		sawFlush, sawDisposed, sawExhausted bool
	)
	for _, r := range records {
		switch r.Message {
		case "flush":
			sawFlush = true
		case "node disposed":
			sawDisposed = true
		case "error handler chain exhausted":
			sawExhausted = true
		}
	}

	assert.True(t, sawFlush, "expected a flush event")
	assert.True(t, sawDisposed, "expected a node-disposed event")
	assert.True(t, sawExhausted, "expected a handler-chain-exhausted event")
}
