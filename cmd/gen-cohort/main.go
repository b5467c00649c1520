package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/clinstat/trs/internal/domain/model"
	"github.com/clinstat/trs/internal/synthcohort"
)

// Default configuration constants.
const (
	defaultSubjects = 150
	defaultSeed     = 42
)

func main() {
	var (
		subjects = flag.Int("subjects", defaultSubjects, "Number of subjects to generate")
		seed     = flag.Int64("seed", defaultSeed, "Random seed for reproducible cohorts")
		output   = flag.String("output", "cohort.csv", "Output CSV file")
	)
	flag.Parse()

	cfg := synthcohort.DefaultConfig()
	cfg.Subjects = *subjects
	cfg.Seed = *seed

	generated := synthcohort.Generate(context.Background(), cfg)

	if err := writeCSV(*output, generated); err != nil {
		os.Stderr.WriteString("failed to write cohort: " + err.Error() + "\n")
		return
	}
	fmt.Printf("wrote %d subjects to %s\n", len(generated), *output)
}

// writeCSV renders subjects in the loader's column layout. Missing
// covariates become empty cells.
func writeCSV(path string, subjects []model.Subject) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	numeric, boolean := synthcohort.Schema()
	header := []string{"subject_id", "time_to_event", "event"}
	header = append(header, numeric...)
	header = append(header, boolean...)

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := range subjects {
		if err := w.Write(row(&subjects[i], numeric, boolean)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func row(s *model.Subject, numeric, boolean []string) []string {
	out := []string{
		s.ID,
		strconv.FormatFloat(s.TimeToEvent, 'f', 2, 64),
		formatBool(s.Event),
	}
	for _, name := range numeric {
		if v, ok := s.Numeric[name]; ok {
			out = append(out, strconv.FormatFloat(v, 'f', 1, 64))
		} else {
			out = append(out, "")
		}
	}
	for _, name := range boolean {
		if v, ok := s.Boolean[name]; ok {
			out = append(out, formatBool(v))
		} else {
			out = append(out, "")
		}
	}
	return out
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
