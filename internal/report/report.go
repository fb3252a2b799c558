// Package report renders end-of-run summaries for the command line.
package report

import (
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/service/aggregator"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/service/extractor"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Extraction renders a block extractor summary.
func Extraction(s extractor.Summary) string {
	t := table.NewWriter()
	t.SetTitle("Block extraction")
	t.AppendHeader(table.Row{"From height", "To height", "Written", "Missing", "Malformed"})
	t.AppendRow(table.Row{s.FromHeight, s.ToHeight, s.Written, s.Missing, s.Malformed})
	return t.Render()
}

// Aggregation renders a day aggregator summary.
func Aggregation(s aggregator.Summary) string {
	first, last := "-", "-"
	if s.Days > 0 {
		first, last = s.FirstDay.String(), s.LastDay.String()
	}

	t := table.NewWriter()
	t.SetTitle("Day aggregation")
	t.AppendHeader(table.Row{"Blocks", "Days", "Priced days", "First day", "Last day"})
	t.AppendRow(table.Row{s.Blocks, s.Days, s.Priced, first, last})
	return t.Render()
}
