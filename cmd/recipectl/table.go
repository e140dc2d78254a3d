package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

type column struct {
	title string
	align columnAlignment
}

// tableView is the tabular output of a command. Column titles keep their case.
type tableView struct {
	columns []column
	rows    [][]string
	footer  string
}

func newTableView(columns ...column) *tableView {
	return &tableView{columns: columns}
}

// add appends a row; missing trailing cells render empty.
func (v *tableView) add(cells ...string) {
	v.rows = append(v.rows, cells)
}

func (v *tableView) render() string {
	if len(v.columns) == 0 {
		return ""
	}

	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault

	tw := table.NewWriter()
	tw.SetStyle(style)

	header := make(table.Row, len(v.columns))
	configs := make([]table.ColumnConfig, len(v.columns))
	for i, col := range v.columns {
		header[i] = col.title
		align := text.AlignLeft
		if col.align == alignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft, AlignFooter: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, cells := range v.rows {
		row := make(table.Row, len(v.columns))
		for i := range row {
			row[i] = ""
			if i < len(cells) {
				row[i] = cells[i]
			}
		}
		tw.AppendRow(row)
	}

	if v.footer != "" {
		footer := make(table.Row, len(v.columns))
		footer[0] = v.footer
		for i := 1; i < len(footer); i++ {
			footer[i] = ""
		}
		tw.AppendFooter(footer)
	}

	return tw.Render()
}
