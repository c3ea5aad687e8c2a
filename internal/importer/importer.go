// Package importer loads club members from CSV files into the record store.
//
// Two layouts are accepted, detected from the header row (case-insensitive):
//
//	first,last[,email][,phone]  - first and last are joined into one name
//	name[,email][,phone]        - name is used directly
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"acecheckin/internal/core"
	applog "acecheckin/internal/log"
	"acecheckin/internal/records"
)

type Options struct {
	// DryRun reports what would be created without writing anything.
	DryRun bool
	// AllowDuplicates disables the existing-name check.
	AllowDuplicates bool
}

type Stats struct {
	TotalRows         int
	Created           int
	SkippedDuplicates int
	SkippedEmpty      int
	Errors            int
}

type Importer struct {
	store  records.Store
	logger *slog.Logger
}

func New(store records.Store) *Importer {
	return &Importer{
		store:  store,
		logger: slog.With(applog.FieldComponent, applog.ComponentImporter),
	}
}

// ImportMembersFile imports members from the CSV file at path.
func (i *Importer) ImportMembersFile(ctx context.Context, path string, opts Options) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	return i.ImportMembers(ctx, f, opts)
}

// ImportMembers reads CSV rows from r and creates a member per row.
// Duplicate names (compared case-insensitively, against the store and
// within the file) are skipped unless opts.AllowDuplicates is set.
func (i *Importer) ImportMembers(ctx context.Context, r io.Reader, opts Options) (Stats, error) {
	var stats Stats

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return Stats{}, fmt.Errorf("csv file is empty")
		}
		return Stats{}, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for idx, col := range header {
		columns[strings.ToLower(strings.TrimSpace(col))] = idx
	}

	nameIdx, hasName := columns["name"]
	firstIdx, hasFirst := columns["first"]
	lastIdx, hasLast := columns["last"]
	if !hasName && !(hasFirst && hasLast) {
		return Stats{}, fmt.Errorf("csv must have a 'name' column or 'first' and 'last' columns, got %v", header)
	}

	seen, err := i.existingNames(ctx, opts)
	if err != nil {
		return Stats{}, err
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil && !errors.Is(err, csv.ErrFieldCount) {
			return stats, fmt.Errorf("read csv row: %w", err)
		}

		stats.TotalRows++

		var name string
		if hasFirst && hasLast {
			name = strings.TrimSpace(field(record, firstIdx) + " " + field(record, lastIdx))
		} else {
			name = field(record, nameIdx)
		}
		if name == "" {
			stats.SkippedEmpty++
			i.logger.Warn("Skipping row with empty name", "row", stats.TotalRows)
			continue
		}

		key := strings.ToUpper(name)
		if _, dup := seen[key]; dup && !opts.AllowDuplicates {
			stats.SkippedDuplicates++
			i.logger.Info("Skipping duplicate member", "name", name)
			continue
		}

		params := records.CreateMemberParams{
			Name:  name,
			Email: fieldByColumn(record, columns, "email"),
			Phone: fieldByColumn(record, columns, "phone"),
		}

		candidate := core.Member{Name: params.Name, Email: params.Email, Phone: params.Phone}
		if err := candidate.Validate(); err != nil {
			stats.Errors++
			i.logger.Error("Invalid member row", "name", name, "error", err)
			continue
		}

		if opts.DryRun {
			stats.Created++
			seen[key] = struct{}{}
			i.logger.Info("Would create member", "name", name)
			continue
		}

		member, err := i.store.CreateMember(ctx, params)
		if err != nil {
			stats.Errors++
			i.logger.Error("Failed to create member", "name", name, "error", err)
			continue
		}

		stats.Created++
		seen[key] = struct{}{}
		i.logger.Info("Created member", "id", member.ID, "name", member.Name)
	}

	return stats, nil
}

// existingNames loads the upper-cased names already in the store.
func (i *Importer) existingNames(ctx context.Context, opts Options) (map[string]struct{}, error) {
	seen := make(map[string]struct{})
	if opts.AllowDuplicates {
		return seen, nil
	}

	members, err := i.store.ListMembers(ctx, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("list existing members: %w", err)
	}
	for _, m := range members {
		seen[strings.ToUpper(m.Name)] = struct{}{}
	}
	return seen, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func fieldByColumn(record []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok {
		return ""
	}
	return field(record, idx)
}
