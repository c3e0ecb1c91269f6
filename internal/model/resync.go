// internal/model/resync.go
package model

import (
	"fmt"
	"strings"
	"time"
)

type ResyncFilter struct {
	From         *time.Time
	To           *time.Time // start of the last day, inclusive
	Email        string
	UnsyncedOnly bool
	DryRun       bool
}

func (f ResyncFilter) Mode() string {
	if f.DryRun {
		return "dry-run"
	}
	return "live"
}

// ResyncReport is the text summary of a single bulk run.
type ResyncReport struct {
	RunID     string
	Mode      string
	Filters   string
	Selector  string
	Lines     []string
	Synced    int
	Skipped   int
	Errors    int
	WouldSync int
	DryRun    bool
}

func (r *ResyncReport) Addf(at time.Time, format string, args ...any) {
	r.Lines = append(r.Lines, at.UTC().Format("2006-01-02 15:04:05")+" "+fmt.Sprintf(format, args...))
}

func (r *ResyncReport) Totals() string {
	totals := fmt.Sprintf("synced=%d skipped=%d errors=%d", r.Synced, r.Skipped, r.Errors)
	if r.DryRun {
		totals += fmt.Sprintf(" wouldSync=%d", r.WouldSync)
	}
	return totals
}

func (r *ResyncReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Resync %s (mode=%s)\n", r.RunID, r.Mode)
	fmt.Fprintf(&b, "Filters: %s\n", r.Filters)
	fmt.Fprintf(&b, "Selector: %s\n", r.Selector)
	for _, line := range r.Lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(r.Totals())
	b.WriteByte('\n')
	return b.String()
}
