// Package loader reads tabular cohorts from CSV into the domain store. The
// engine itself does no I/O beyond this edge.
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/clinstat/trs/internal/domain/cohort"
	"github.com/clinstat/trs/internal/domain/model"
	"github.com/clinstat/trs/pkg/logger"
	"github.com/clinstat/trs/pkg/metrics"
)

// Fixed column names; all other columns must be named by the schema.
const (
	colSubjectID = "subject_id"
	colTime      = "time_to_event"
	colEvent     = "event"
)

// Result is a loaded, validated cohort plus its load-time exclusions.
type Result struct {
	Cohort   *cohort.Cohort
	Excluded []cohort.Exclusion
}

// LoadCSV reads a cohort file whose header must contain subject_id,
// time_to_event, event, and every covariate the schema names. Empty cells
// are missing covariates; whether the subject survives them is the cohort
// package's policy. Malformed rows are fatal: silent row-dropping would
// change the cohort under the caller.
func LoadCSV(ctx context.Context, path string, schema cohort.Schema, opts ...cohort.Option) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cohort: %w", err)
	}
	defer f.Close()

	res, err := Read(ctx, f, schema, opts...)
	if err != nil {
		return nil, fmt.Errorf("cohort %s: %w", path, err)
	}
	return res, nil
}

// Read parses a cohort from any reader. Used directly by tests.
func Read(ctx context.Context, r io.Reader, schema cohort.Schema, opts ...cohort.Option) (*Result, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols, err := mapColumns(header, schema)
	if err != nil {
		return nil, err
	}

	var subjects []model.Subject
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		s, err := parseSubject(record, cols, schema)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		subjects = append(subjects, s)
	}

	co, excluded, err := cohort.New(ctx, subjects, schema, opts...)
	if err != nil {
		return nil, err
	}
	for range excluded {
		metrics.RecordSubjectExcluded()
	}
	logger.Get().Named("loader").Info(ctx, "cohort loaded",
		logger.Int("subjects", co.Len()),
		logger.Int("excluded", len(excluded)),
	)
	return &Result{Cohort: co, Excluded: excluded}, nil
}

// columns maps every needed column name to its index.
type columns struct {
	subjectID int
	time      int
	event     int
	numeric   map[string]int
	boolean   map[string]int
}

func mapColumns(header []string, schema cohort.Schema) (*columns, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.ToLower(name))] = i
	}

	cols := &columns{
		numeric: make(map[string]int, len(schema.Numeric)),
		boolean: make(map[string]int, len(schema.Boolean)),
	}
	var ok bool
	if cols.subjectID, ok = index[colSubjectID]; !ok {
		return nil, fmt.Errorf("column %q: %w", colSubjectID, ErrMissingColumn)
	}
	if cols.time, ok = index[colTime]; !ok {
		return nil, fmt.Errorf("column %q: %w", colTime, ErrMissingColumn)
	}
	if cols.event, ok = index[colEvent]; !ok {
		return nil, fmt.Errorf("column %q: %w", colEvent, ErrMissingColumn)
	}
	for _, name := range schema.Numeric {
		if cols.numeric[name], ok = index[name]; !ok {
			return nil, fmt.Errorf("covariate column %q: %w", name, ErrMissingColumn)
		}
	}
	for _, name := range schema.Boolean {
		if cols.boolean[name], ok = index[name]; !ok {
			return nil, fmt.Errorf("covariate column %q: %w", name, ErrMissingColumn)
		}
	}
	return cols, nil
}

func parseSubject(record []string, cols *columns, schema cohort.Schema) (model.Subject, error) {
	s := model.Subject{
		ID:      strings.TrimSpace(record[cols.subjectID]),
		Numeric: make(map[string]float64, len(schema.Numeric)),
		Boolean: make(map[string]bool, len(schema.Boolean)),
	}

	t, err := strconv.ParseFloat(strings.TrimSpace(record[cols.time]), 64)
	if err != nil {
		return s, fmt.Errorf("subject %q: %s: %w", s.ID, colTime, ErrBadValue)
	}
	s.TimeToEvent = t

	ev, err := parseBool(record[cols.event])
	if err != nil {
		return s, fmt.Errorf("subject %q: %s: %w", s.ID, colEvent, ErrBadValue)
	}
	s.Event = ev

	for name, idx := range cols.numeric {
		cell := strings.TrimSpace(record[idx])
		if cell == "" {
			continue // missing
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return s, fmt.Errorf("subject %q: %s: %w", s.ID, name, ErrBadValue)
		}
		s.Numeric[name] = v
	}
	for name, idx := range cols.boolean {
		cell := strings.TrimSpace(record[idx])
		if cell == "" {
			continue // missing
		}
		v, err := parseBool(cell)
		if err != nil {
			return s, fmt.Errorf("subject %q: %s: %w", s.ID, name, ErrBadValue)
		}
		s.Boolean[name] = v
	}
	return s, nil
}

func parseBool(cell string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "1", "true", "yes", "y":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", cell)
}
