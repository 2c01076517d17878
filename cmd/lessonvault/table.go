package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type tableColumn struct {
	Title   string
	Numeric bool
}

// tableView renders rows under fixed columns. Short rows are padded; a
// non-empty footer is printed below a separator.
type tableView struct {
	Columns []tableColumn
	Rows    [][]string
	Footer  []string
}

func (v tableView) render() string {
	if len(v.Columns) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault

	header := make(table.Row, len(v.Columns))
	configs := make([]table.ColumnConfig, len(v.Columns))
	for i, col := range v.Columns {
		header[i] = col.Title
		align := text.AlignLeft
		if col.Numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignFooter: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range v.Rows {
		tw.AppendRow(v.pad(row))
	}
	if len(v.Footer) > 0 {
		tw.AppendFooter(v.pad(v.Footer))
	}
	return tw.Render()
}

func (v tableView) pad(cells []string) table.Row {
	row := make(table.Row, len(v.Columns))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
