package output

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/bgricker/cite-runner/internal/result"
)

// renderPretty draws the tree as a table, one row per node.
func renderPretty(res result.TestSuiteResult) []byte {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("Test suite " + res.Suite.Name)
	t.AppendHeader(table.Row{"Name", "Status", "Message"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Name", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Message", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	rows := flatten(res.Suite)
	for i, r := range rows {
		t.AppendRow(table.Row{
			treePrefix(rows, i) + statusGlyph(r.Node.Status) + " " + r.Node.Name,
			r.Node.Status.String(),
			oneline(r.Node.Message),
		})
	}

	t.AppendFooter(table.Row{"TOTAL", res.Status().String(), summaryLine(res.Summary)})

	return []byte(t.Render() + "\n")
}

// treePrefix draws the branch lines leading to rows[i].
func treePrefix(rows []row, i int) string {
	depth := rows[i].Depth
	if depth == 0 {
		return ""
	}

	// ancestors[d] is true when the ancestor at depth d was the last child
	ancestors := make([]bool, depth)
	need := depth - 1
	for j := i - 1; j >= 0 && need > 0; j-- {
		if rows[j].Depth == need {
			ancestors[need] = rows[j].Last
			need--
		}
	}

	var b strings.Builder
	for d := 1; d < depth; d++ {
		if ancestors[d] {
			b.WriteString("   ")
		} else {
			b.WriteString("│  ")
		}
	}
	if rows[i].Last {
		b.WriteString("└─ ")
	} else {
		b.WriteString("├─ ")
	}
	return b.String()
}
