// Package render formats quads and triples as markdown tables.
package render

import (
	"fmt"
	"iter"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/wbrown/janus-quads/quads"
)

// TableFormatter renders rows of values as markdown tables
type TableFormatter struct {
	// MaxWidth is the maximum width for a column, 0 for none
	MaxWidth int
	// TruncateString is the string to append when truncating
	TruncateString string
}

// NewTableFormatter creates a new table formatter with default settings
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		MaxWidth:       50,
		TruncateString: "...",
	}
}

// Quads renders quads with subject, predicate, object and graph columns.
// Default graph quads show an empty graph cell.
func Quads[R any](tf *TableFormatter, seq iter.Seq[quads.Quad[R]]) string {
	var rows [][]string
	for q := range seq {
		g := ""
		if label, ok := q.GraphLabel(); ok {
			g = tf.cell(label)
		}
		rows = append(rows, []string{tf.cell(q.Subject), tf.cell(q.Predicate), tf.cell(q.Object), g})
	}
	return tf.Table([]string{"subject", "predicate", "object", "graph"}, rows)
}

// Triples renders triples with subject, predicate and object columns.
func Triples[R any](tf *TableFormatter, seq iter.Seq[quads.Triple[R]]) string {
	var rows [][]string
	for t := range seq {
		rows = append(rows, []string{tf.cell(t.Subject), tf.cell(t.Predicate), tf.cell(t.Object)})
	}
	return tf.Table([]string{"subject", "predicate", "object"}, rows)
}

// Table formats headers and string rows followed by a row count.
func (tf *TableFormatter) Table(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return fmt.Sprintf("_Columns: %v_\n\n_No rows_", headers)
	}

	tableString := &strings.Builder{}

	alignment := make([]tw.Align, len(headers))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(tableString,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(headers)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()

	fmt.Fprintf(tableString, "\n_%d rows_\n", len(rows))
	return tableString.String()
}

func (tf *TableFormatter) cell(v any) string {
	s := fmt.Sprintf("%v", v)
	if tf.MaxWidth > 0 && len(s) > tf.MaxWidth {
		cut := tf.MaxWidth - len(tf.TruncateString)
		if cut < 0 {
			cut = 0
		}
		s = s[:cut] + tf.TruncateString
	}
	// a bare pipe would split the markdown cell
	return strings.ReplaceAll(s, "|", `\|`)
}
