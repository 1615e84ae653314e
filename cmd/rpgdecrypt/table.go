package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// column is a table header plus the alignment of its cells.
type column struct {
	title string
	align text.Align
}

var (
	countColumns = []column{{"Action", text.AlignLeft}, {"Files", text.AlignRight}}
	planColumns  = []column{{"Action", text.AlignLeft}, {"Source", text.AlignLeft}, {"Destination", text.AlignLeft}}
	extColumns   = []column{{"Encrypted", text.AlignLeft}, {"Restored", text.AlignLeft}, {"Files", text.AlignRight}}
)

var titleCaser = cases.Title(language.English)

// actionLabel turns a plan action name into a table label ("decrypt" -> "Decrypt").
func actionLabel(name string) string {
	return titleCaser.String(name)
}

// renderTable draws rows under columns. A positive maxWidth wraps cells so no
// line exceeds it.
func renderTable(columns []column, rows []table.Row, maxWidth int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if maxWidth > 0 {
		tw.SetAllowedRowLength(maxWidth)
	}

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: c.align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.AppendRows(rows)
	tw.SetColumnConfigs(configs)
	return tw.Render()
}
