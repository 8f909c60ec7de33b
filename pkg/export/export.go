// Package export dumps the ledger and its entries as YAML or JSON.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/unowned-ai/learnlog/pkg/journal"
	"gopkg.in/yaml.v3"
)

// Formats lists the accepted values of the format argument to Write.
var Formats = []string{"yaml", "json"}

// Document is the exported view of a month (or of everything when Month is
// empty): every ledger day in order with the entries logged on it.
type Document struct {
	ExportedAt time.Time   `json:"exported_at" yaml:"exported_at"`
	Month      string      `json:"month,omitempty" yaml:"month,omitempty"`
	Days       []DayRecord `json:"days" yaml:"days"`
}

type DayRecord struct {
	Date       string        `json:"date" yaml:"date"`
	MissReason string        `json:"miss_reason,omitempty" yaml:"miss_reason,omitempty"`
	Entries    []EntryRecord `json:"entries" yaml:"entries"`
}

type EntryRecord struct {
	ID        int64     `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Tags      []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Build collects the days and entries matching monthPrefix.
func Build(ctx context.Context, conn *sql.DB, monthPrefix string, now time.Time) (Document, error) {
	days, err := journal.ListDays(ctx, conn, monthPrefix)
	if err != nil {
		return Document{}, fmt.Errorf("list days: %w", err)
	}
	entries, err := journal.ListEntriesForMonth(ctx, conn, monthPrefix)
	if err != nil {
		return Document{}, fmt.Errorf("list entries: %w", err)
	}

	byDate := make(map[string][]EntryRecord, len(days))
	for _, e := range entries {
		rec := EntryRecord{ID: e.ID, Text: e.Text, CreatedAt: e.CreatedAt}
		if e.Tags != "" {
			rec.Tags = e.TagList()
		}
		byDate[e.Date] = append(byDate[e.Date], rec)
	}

	doc := Document{
		ExportedAt: now.UTC().Truncate(time.Second),
		Month:      monthPrefix,
		Days:       make([]DayRecord, 0, len(days)),
	}
	for _, d := range days {
		recs := byDate[d.Date]
		if recs == nil {
			recs = []EntryRecord{}
		}
		delete(byDate, d.Date)
		doc.Days = append(doc.Days, DayRecord{Date: d.Date, MissReason: d.MissReason, Entries: recs})
	}

	// Entries whose date has no ledger row still belong in the export.
	if len(byDate) > 0 {
		for date, recs := range byDate {
			doc.Days = append(doc.Days, DayRecord{Date: date, Entries: recs})
		}
		sort.Slice(doc.Days, func(i, j int) bool { return doc.Days[i].Date < doc.Days[j].Date })
	}

	return doc, nil
}

// Write encodes doc to w in the given format.
func Write(w io.Writer, doc Document, format string) error {
	switch format {
	case "yaml", "yml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return encoder.Close()
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doc)
	default:
		return fmt.Errorf("unsupported export format %q (use yaml or json)", format)
	}
}
