package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pfrederiksen/conf-authors/internal/affiliation"
	"github.com/pfrederiksen/conf-authors/internal/author"
)

// Format specifies the output format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f != FormatText && f != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return f, nil
}

// WriteCrossReference writes the author overlaps in the given format
func WriteCrossReference(w io.Writer, cr *CrossReference, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, cr)
	case FormatText:
		return writeCrossReferenceText(w, cr)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeCrossReferenceText(w io.Writer, cr *CrossReference) error {
	for _, pair := range cr.Pairs {
		fmt.Fprintf(w, "there are %d authors whose paper was accepted in both %s %s and %s events\n",
			pair.Count, cr.Conference, pair.Years[0], cr.Target)
		fmt.Fprintf(w, "\tthey are %s\n", formatIDs(pair.Authors))
	}

	if cr.Combined != nil {
		fmt.Fprintf(w, "there are %d authors whose paper was accepted in both %s (%s) and %s events\n",
			cr.Combined.Count, cr.Conference, strings.Join(cr.Baselines, "/"), cr.Target)
		fmt.Fprintf(w, "\tthey are %s\n", formatIDs(cr.Combined.Authors))
	}

	if cr.AllYears != nil {
		fmt.Fprintf(w, "there are %d authors whose paper was accepted in %s and %s events\n",
			cr.AllYears.Count, strings.Join(cr.Baselines, ", "), cr.Target)
		fmt.Fprintf(w, "\tthey are %s\n", formatIDs(cr.AllYears.Authors))
	}

	fmt.Fprintf(w, "Personal profile can be found here -> %s[id]\n", cr.ProfileURL)
	return nil
}

func formatIDs(ids []author.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// WriteAffiliations writes the per-year institution counts and the
// manual-check list in the given format
func WriteAffiliations(w io.Writer, rep *affiliation.Report, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, rep)
	case FormatText:
		return writeAffiliationsText(w, rep)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeAffiliationsText(w io.Writer, rep *affiliation.Report) error {
	for _, year := range sortedYears(rep.Years) {
		rec := rep.Years[year]
		writeCountTable(w, year+" academia", rec.Academic)
		writeCountTable(w, year+" others", rec.Other)

		// A misspelt keyword can move a name to the other bucket, so names
		// are compared across both.
		similar := SimilarInstitutions(SimilarityThreshold, rec.Academic, rec.Other)
		if len(similar) > 0 {
			fmt.Fprintf(w, "%s names that may be the same institution:\n", year)
			for _, s := range similar {
				fmt.Fprintf(w, "  %s ~ %s (%.2f)\n", s.A, s.B, s.Score)
			}
			fmt.Fprintln(w)
		}
	}

	if len(rep.ManualCheck) == 0 {
		fmt.Fprintln(w, "No profiles need a manual check.")
		return nil
	}

	fmt.Fprintf(w, "%d profile(s) need a manual check:\n", len(rep.ManualCheck))
	for _, u := range rep.ManualCheck {
		fmt.Fprintf(w, "  %s\n", u)
	}
	return nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func writeCountTable(w io.Writer, title string, counts map[string]int) {
	t := newTable(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"#", "Institution", "Count"})

	total := 0
	for i, c := range sortCounts(counts) {
		t.AppendRow(table.Row{i + 1, c.Institution, c.Count})
		total += c.Count
	}
	t.AppendFooter(table.Row{"", "Total", total})
	t.Render()
	fmt.Fprintln(w)
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
