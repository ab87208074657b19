// Package diagnostics holds opt-in introspection for the reactive graph:
// flush-duration statistics, a graph dump table, and a structured debug
// logger. None of it sits on the hot path and none of it is reached unless
// a host explicitly wires it in - the engine itself never logs a user
// error, only structural events.
package diagnostics

import (
	"log/slog"
	"time"

	slogmulti "github.com/samber/slog-multi"

	"github.com/wovengraph/flux/internal"
)

// NewLogger fans a single structured event out to every handler given,
// exactly as reusee-tai's logger wires a terminal handler and a journal
// handler behind one *slog.Logger. Passing no handlers yields a logger that
// discards everything.
func NewLogger(handlers ...slog.Handler) *slog.Logger {
	if len(handlers) == 0 {
		return slog.New(slog.NewTextHandler(discardWriter{}, nil))
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// AttachLogger wires logger into rt's structural events: a flush completing,
// a node finishing disposal, and an error walking the handler chain all the
// way up without being caught. The flush event carries the tick, the
// processed-node count and the flush duration, and the disposal event the
// node's label and kind; the handler-chain-exhausted event also carries the
// escaping error itself, since that error is about to re-panic to the
// caller anyway and logging it is the only record of what it was.
func AttachLogger(rt *internal.Runtime, logger *slog.Logger) {
	rt.Scheduler.AddStatsRecorder(func(d time.Duration, processed int) {
		logger.Info("flush", "tick", rt.Scheduler.CurrentTick(), "processed", processed, "duration", d)
	})
	rt.OnNodeDisposed(func(n *internal.Node) {
		logger.Debug("node disposed", "label", n.Label, "kind", n.Kind.String())
	})
	rt.OnHandlerChainExhausted(func(n *internal.Node, caught any) {
		logger.Warn("error handler chain exhausted", "label", n.Label, "error", caught)
	})
}
