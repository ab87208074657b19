package diagnostics

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/wovengraph/flux/internal"
)

// FlushStats samples every scheduler flush into a tachymeter window, the
// same way delaneyj-signalparty's benchmark command samples its own
// propagation loop, and renders a percentile report on demand.
type FlushStats struct {
	tach    *tachymeter.Tachymeter
	flushes int64
	nodes   int64
}

// Attach wires fs into sched's stats hook so every future Flush call is
// sampled. size bounds how many recent samples tachymeter retains.
func Attach(sched *internal.Scheduler, size int) *FlushStats {
	fs := &FlushStats{tach: tachymeter.New(&tachymeter.Config{Size: size})}
	sched.AddStatsRecorder(func(d time.Duration, processed int) {
		fs.tach.AddTime(d)
		fs.flushes++
		fs.nodes += int64(processed)
	})
	return fs
}

// Report renders a table of flush-duration percentiles alongside running
// flush/node counters.
func (fs *FlushStats) Report() string {
	calc := fs.tach.Calc()

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"metric", "value"})
	tw.AppendRows([]table.Row{
		{"flushes", humanize.Comma(fs.flushes)},
		{"nodes processed", humanize.Comma(fs.nodes)},
		{"avg", calc.Time.Avg},
		{"min", calc.Time.Min},
		{"p75", calc.Time.P75},
		{"p99", calc.Time.P99},
		{"max", calc.Time.Max},
	})
	return tw.Render()
}
