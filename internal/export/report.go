package export

import (
	"io"

	"uwcatalog/internal/scrapers/uwcatalog"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// Report renders a summary of a scrape, one row per department page followed
// by the pages that could not be fetched.
func Report(w io.Writer, result uwcatalog.Result) {
	pages := newTable(w)
	pages.SetTitle("Department pages")
	pages.AppendHeader(table.Row{"Campus", "Department", "Records", "Failed blocks", "Status"})

	records := 0
	failures := 0
	for _, page := range result.Pages {
		status := "ok"
		if page.Unparseable {
			status = "unparseable"
		}
		pages.AppendRow(table.Row{
			page.Campus.String(),
			page.Department,
			len(page.Records),
			len(page.Failures),
			status,
		})
		records += len(page.Records)
		failures += len(page.Failures)
	}
	pages.AppendFooter(table.Row{"", "Total", records, failures, ""})
	pages.Render()

	if len(result.Errors) == 0 {
		return
	}

	errs := newTable(w)
	errs.SetTitle("Failed pages")
	errs.AppendHeader(table.Row{"Campus", "Link", "Error"})
	for _, pageErr := range result.Errors {
		errs.AppendRow(table.Row{pageErr.Campus.String(), pageErr.Link, pageErr.Err.Error()})
	}
	errs.Render()
}
