package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/domain"
)

// newTable returns a rounded table writing to w.
func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	t.Style().Options.DrawBorder = true
	return t
}

func renderBounds(w io.Writer, index, docType string, bounds domain.DateBounds) {
	t := newTable(w, "Date bounds")
	t.AppendHeader(table.Row{"Data set", "Type", "Start", "End"})
	t.AppendRow(table.Row{index, docType, bounds.Start, bounds.End})
	t.Render()
}

func renderActivity(w io.Writer, activity domain.EmailActivity) {
	account := activity.AccountID
	if account == "" {
		account = "all accounts"
	}

	t := newTable(w, fmt.Sprintf("Email activity: %s (%s)", activity.DataSetID, account))
	t.AppendHeader(table.Row{"Interval", "Inbound", "Outbound"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	var inbound, outbound int64
	for _, r := range activity.Activities {
		t.AppendRow(table.Row{r.IntervalStartDatetime, r.IntervalInboundCount, r.IntervalOutboundCount})
		inbound += r.IntervalInboundCount
		outbound += r.IntervalOutboundCount
	}

	t.AppendFooter(table.Row{"Total", inbound, outbound})
	t.Render()
}

func renderAttachments(w io.Writer, activity domain.AttachmentActivity) {
	t := newTable(w, fmt.Sprintf("Attachments: %s (%s)", activity.DataSetID, activity.AccountID))
	t.AppendHeader(table.Row{"Interval", "Attachments"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	var total int64
	for _, r := range activity.Activities {
		t.AppendRow(table.Row{r.IntervalStartDatetime, r.IntervalAttachCount})
		total += r.IntervalAttachCount
	}

	t.AppendFooter(table.Row{"Total", total})
	t.Render()
}

func renderEntities(w io.Writer, index string, entities []domain.EntityCount) {
	t := newTable(w, "Entities: "+index)
	t.AppendHeader(table.Row{"#", "Entity", "Type", "Emails"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
	})

	for i, e := range entities {
		t.AppendRow(table.Row{i + 1, e.Key, e.Type, e.DocCount})
	}
	if len(entities) == 0 {
		t.AppendRow(table.Row{"", "no entities found", "", ""})
	}
	t.Render()
}
