package linkcheck

import (
	"fmt"
	"io"

	"github.com/rodaine/table"
)

// PrintSummary writes a table of the broken links in results.
func PrintSummary(w io.Writer, results []Result) {
	broken := Broken(results)
	fmt.Fprintf(w, "\n%d of %d links broken\n", len(broken), len(results))
	if len(broken) == 0 {
		return
	}

	tbl := table.New("URL", "Status", "Error").WithWriter(w)
	for _, r := range broken {
		status := "-"
		if r.Status != 0 {
			status = fmt.Sprint(r.Status)
		}
		reason := ""
		if r.Err != nil {
			reason = r.Err.Error()
		}
		tbl.AddRow(r.URL, status, reason)
	}
	tbl.Print()
}
