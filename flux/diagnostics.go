package flux

import (
	"log/slog"

	"github.com/wovengraph/flux/internal"
	"github.com/wovengraph/flux/internal/diagnostics"
)

// EnableStats starts sampling every scheduler flush into a rolling window
// of size samples and returns a handle whose Report renders a percentile
// table of flush durations. Opt-in only - nothing samples until this is
// called.
func EnableStats(size int) *diagnostics.FlushStats {
	return diagnostics.Attach(internal.GetRuntime().Scheduler, size)
}

// DumpGraph renders a debugging table of scope's subtree: one row per
// node with its label, kind, dirty/disposed state, and edge counts.
func DumpGraph(scope Scope) string {
	if scope.node == nil {
		return ""
	}
	return diagnostics.DumpGraph(scope.node)
}

// EnableLogging fans every structural event the runtime produces - a flush
// completing, a node finishing disposal, an error exhausting its handler
// chain - out to handlers and returns the logger those events were written
// to. Opt-in only: nothing logs until this is called.
func EnableLogging(handlers ...slog.Handler) *slog.Logger {
	logger := diagnostics.NewLogger(handlers...)
	diagnostics.AttachLogger(internal.GetRuntime(), logger)
	return logger
}
