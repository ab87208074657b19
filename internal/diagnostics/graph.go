package diagnostics

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/wovengraph/flux/internal"
)

// DumpGraph walks root's subtree and renders one row per node: label,
// kind, dirty/disposed state, and observer/dependency/child counts. It is a
// debugging aid for the graph shape, grounded on delaneyj-signalparty's
// benchmark_reactively table dump - not developer-facing error logging,
// which stays the host's responsibility.
func DumpGraph(root *internal.Node) string {
	var sb stringBuilderWriter
	table := tablewriter.NewWriter(&sb)
	table.SetHeader([]string{"label", "kind", "dirty", "disposed", "observers", "deps", "children"})

	walk(root, table)

	table.Render()
	return sb.String()
}

func walk(n *internal.Node, table *tablewriter.Table) {
	table.Append([]string{
		n.Label,
		n.Kind.String(),
		strconv.FormatBool(n.Dirty()),
		strconv.FormatBool(n.Disposed()),
		humanize.Comma(int64(len(n.Observers()))),
		humanize.Comma(int64(len(n.Dependencies()))),
		humanize.Comma(int64(len(n.Children()))),
	})
	for _, c := range n.Children() {
		walk(c, table)
	}
}

// stringBuilderWriter adapts a strings.Builder-shaped buffer to io.Writer
// without pulling os.Stdout into a library function.
type stringBuilderWriter struct {
	buf []byte
}

func (w *stringBuilderWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *stringBuilderWriter) String() string { return string(w.buf) }
