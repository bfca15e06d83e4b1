package demo

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Render writes the report as a table to w.
func (r Report) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Mode", r.Config.Mode},
		{"Dedup", r.Config.Dedup},
		{"Producers", r.Config.Producers},
		{"Consumers", r.Config.Consumers},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Produced", r.Produced},
		{"Consumed", r.Consumed},
		{"Per consumer", fmt.Sprint(r.PerConsumer)},
		{"Rejected duplicates", r.Rejected},
		{"Consumed twice", r.Duplicates},
		{"Missing", r.Missing},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Queue pushes", r.Stats.Pushed},
		{"Queue pops", r.Stats.Popped},
		{"Discarded", r.Stats.Discarded},
		{"Timed-out waits", r.Stats.TimedOut},
		{"Elapsed", r.Elapsed.Round(time.Microsecond)},
	})
	t.AppendFooter(table.Row{"Result", result(r)})
	t.Render()
}

func result(r Report) string {
	if r.OK() {
		return "OK"
	}
	return "MISMATCH"
}
