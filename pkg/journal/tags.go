package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

const (
	tagSeparator = ", "

	listTagStringsStatement = `SELECT tags FROM entries WHERE tags IS NOT NULL`
)

// SplitTags splits a comma-separated tag string into trimmed, non-empty tags.
// Order and duplicates are kept as they appear.
func SplitTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// NormalizeTags turns user input like "sql, python, sql" into the stored form
// "python, sql": trimmed, empty tokens dropped, duplicates merged
// case-sensitively, sorted. The empty set normalizes to "".
func NormalizeTags(raw string) string {
	return strings.Join(uniqueSorted(SplitTags(raw)), tagSeparator)
}

func uniqueSorted(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	unique := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		unique = append(unique, tag)
	}
	sort.Strings(unique)
	return unique
}

// DistinctTags returns every tag used across the whole history, sorted.
func DistinctTags(ctx context.Context, conn *sql.DB) ([]string, error) {
	rows, err := conn.QueryContext(ctx, listTagStringsStatement)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var all []string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		all = append(all, SplitTags(raw)...)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return uniqueSorted(all), nil
}
