package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/model"
)

func outputRecords(records []model.BusinessRecord, format, outputPath string) error {
	var w io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "output: create file %s", outputPath)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}

	switch format {
	case "json", "":
		return writeRecordsJSON(w, records)
	case "csv":
		return writeRecordsCSV(w, records)
	case "table":
		return writeRecordsTable(w, records)
	default:
		return eris.Errorf("output: unsupported format %q", format)
	}
}

func writeRecordsJSON(w io.Writer, records []model.BusinessRecord) error {
	if records == nil {
		records = []model.BusinessRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(records), "output: encode json")
}

var csvHeader = []string{
	"name", "category", "phone", "email", "website", "address", "area", "emirate",
	"rating", "reviews", "quality_score", "lead_score", "priority", "sources",
}

func writeRecordsCSV(w io.Writer, records []model.BusinessRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return eris.Wrap(err, "output: write CSV header")
	}
	for _, r := range records {
		lead, prio := "", ""
		if r.LeadScore != nil {
			lead = strconv.Itoa(r.LeadScore.Total)
			prio = r.LeadScore.Priority.String()
		}
		rating, reviews := "", ""
		if r.Rating != nil {
			rating = strconv.FormatFloat(*r.Rating, 'f', 1, 64)
		}
		if r.ReviewCount != nil {
			reviews = strconv.Itoa(*r.ReviewCount)
		}
		row := []string{
			r.Name, r.Category, r.Phone, r.Email, r.Website, r.Address, r.Area, r.Emirate,
			rating, reviews, strconv.Itoa(r.QualityScore), lead, prio,
			strings.Join(r.DataSources, ";"),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "output: write CSV row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "output: flush CSV")
}

func writeRecordsTable(w io.Writer, records []model.BusinessRecord) error {
	header := fmt.Sprintf("%-40s %-16s %-18s %7s %5s %-8s\n",
		"Name", "Area", "Phone", "Quality", "Lead", "Priority")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "output: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 99)); err != nil {
		return eris.Wrap(err, "output: write table separator")
	}

	for _, r := range records {
		lead, prio := "-", "-"
		if r.LeadScore != nil {
			lead = strconv.Itoa(r.LeadScore.Total)
			prio = r.LeadScore.Priority.String()
		}
		line := fmt.Sprintf("%-40s %-16s %-18s %7d %5s %-8s\n",
			truncate(r.Name, 40), truncate(r.Area, 16), r.Phone, r.QualityScore, lead, prio)
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "output: write table row")
		}
	}
	return nil
}

func writeStats(w io.Writer, s model.RunStats) error {
	lines := []string{
		fmt.Sprintf("Run:               %s", s.RunID),
		fmt.Sprintf("Query:             %s", s.Query),
		fmt.Sprintf("Sources attempted: %d", s.SourcesAttempted),
		fmt.Sprintf("Sources succeeded: %d", s.SourcesSucceeded),
		fmt.Sprintf("Sources used:      %s", strings.Join(s.SourcesUsed, ", ")),
		fmt.Sprintf("Records fetched:   %d", s.RecordsFetched),
		fmt.Sprintf("Unique records:    %d", s.UniqueRecords),
		fmt.Sprintf("Returned:          %d", s.Returned),
		fmt.Sprintf("Efficiency:        %.1f%%", s.Efficiency*100),
		fmt.Sprintf("Duration:          %s", s.Duration.Round(1e6)),
	}
	if s.BudgetExceeded {
		lines = append(lines, "Run budget exceeded, results are partial")
	}
	for _, ss := range s.Sources {
		lines = append(lines, fmt.Sprintf("  %-20s %-9s attempts=%d retries=%d records=%d",
			ss.Name, ss.Outcome, ss.Attempts, ss.Retries, ss.Records))
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return eris.Wrap(err, "output: write stats")
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
