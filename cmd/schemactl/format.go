package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/reglet-dev/schemactl/editor"
	"github.com/reglet-dev/schemactl/editor/entities"
	"github.com/reglet-dev/schemactl/schema"
)

var now = time.Now

const maxCellWidth = 48

// relativeTime renders t as "4 hours ago", or "N/A" when unset.
func relativeTime(t, ref time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return humanize.RelTime(t, ref, "ago", "from now")
}

func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "-"
	}
	if r := []rune(s); len(r) > maxCellWidth {
		return string(r[:maxCellWidth-3]) + "..."
	}
	return s
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeArtifacts(w io.Writer, artifacts []entities.Artifact, ref time.Time) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION\tCREATED\tOWNER\tMODIFIED\tMODIFIED BY")
	for _, a := range artifacts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.Ref,
			cell(a.Name),
			cell(a.Description),
			relativeTime(a.CreatedOn, ref),
			cell(a.Owner),
			relativeTime(a.ModifiedOn, ref),
			cell(a.ModifiedBy),
		)
	}
	return tw.Flush()
}

func writeVersions(w io.Writer, versions []entities.Version, ref time.Time) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "VERSION\tCREATED\tOWNER\tSTATE\tGLOBAL ID")
	for _, v := range versions {
		globalID := "-"
		if v.GlobalID != 0 {
			globalID = fmt.Sprint(v.GlobalID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			v.Version,
			relativeTime(v.CreatedOn, ref),
			cell(v.Owner),
			cell(v.State),
			globalID,
		)
	}
	return tw.Flush()
}

func writeReport(w io.Writer, report schema.Report) {
	fmt.Fprintf(w, "change: %s\n", report.Change())
	if report.Empty() {
		fmt.Fprintln(w, "no field changes")
		return
	}
	fmt.Fprintf(w, "added:   %s\n", joinOrNone(report.Added))
	fmt.Fprintf(w, "removed: %s\n", joinOrNone(report.Removed))
	retyped := make([]string, 0, len(report.Retyped))
	for _, c := range report.Retyped {
		retyped = append(retyped, fmt.Sprintf("%s (%s -> %s)", c.Name, c.From, c.To))
	}
	fmt.Fprintf(w, "retyped: %s\n", joinOrNone(retyped))
}

type retypedJSON struct {
	Name string       `json:"name"`
	From schema.Types `json:"from"`
	To   schema.Types `json:"to"`
}

type reportJSON struct {
	Change  schema.ChangeType `json:"change"`
	Bump    string            `json:"bump"`
	Added   []string          `json:"added"`
	Removed []string          `json:"removed"`
	Retyped []retypedJSON     `json:"retyped"`
}

func writeReportJSON(w io.Writer, report schema.Report) error {
	out := reportJSON{
		Change:  report.Change(),
		Bump:    report.Change().Bump(),
		Added:   append([]string{}, report.Added...),
		Removed: append([]string{}, report.Removed...),
		Retyped: make([]retypedJSON, 0, len(report.Retyped)),
	}
	for _, c := range report.Retyped {
		out.Retyped = append(out.Retyped, retypedJSON{Name: c.Name, From: c.From, To: c.To})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeSaveResult(w io.Writer, subject string, r *editor.SaveResult) {
	verb := "saved"
	if r.DryRun {
		verb = "would save"
	}

	switch r.Change {
	case schema.ChangeNone:
		if r.DryRun {
			fmt.Fprintf(w, "would update metadata of %s (version stays %s)\n", subject, r.From)
		} else {
			fmt.Fprintf(w, "updated metadata of %s (version stays %s)\n", subject, r.From)
		}
	default:
		fmt.Fprintf(w, "%s %s %s -> %s (%s: %s added, %s removed, %s retyped; %s bump)\n",
			verb, subject, r.From, r.To, r.Change,
			plural(len(r.Report.Added), "field"),
			plural(len(r.Report.Removed), "field"),
			plural(len(r.Report.Retyped), "field"),
			r.Change.Bump())
	}
}
