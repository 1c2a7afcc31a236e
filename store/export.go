package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ExportCSV writes a flat summary of the store: one row per entry with
// its identifier, types, stat total, and evolution count. Meant for
// quick inspection of a crawl, not as a durable format.
func (s *Store) ExportCSV(filename string) error {
	if err := ensureDir(filename); err != nil {
		return err
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("store: create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"name", "identifier", "types", "stat_total", "evolutions"}); err != nil {
		return fmt.Errorf("store: write csv header: %w", err)
	}

	for _, name := range s.Names() {
		record := s.records[name]

		identifier := ""
		types := ""
		if data, ok := record.Sections.Get("pokedexData"); ok {
			if v, ok := data.Get("National №"); ok {
				if scalar, ok := v.Scalar(); ok {
					identifier = scalar.Text()
				}
			}
			if v, ok := data.Get("Type"); ok {
				parts := make([]string, 0, len(v))
				for _, t := range v {
					parts = append(parts, t.Text())
				}
				types = strings.Join(parts, "/")
			}
		}

		total := int64(0)
		for _, stat := range record.BaseStats {
			if stat.StatName == "Total" {
				total = stat.Base
				break
			}
		}

		row := []string{
			name,
			identifier,
			types,
			strconv.FormatInt(total, 10),
			strconv.Itoa(len(record.Evolutions)),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("store: write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("store: flush csv: %w", err)
	}
	return nil
}
