// Package loader reads the book dataset from CSV sources.
//
// The loader fails softly: a broken or missing source yields an empty record
// slice plus a log entry, never an error to the caller. Downstream code treats
// an empty result as "no data yet". Individual malformed rows are dropped by
// the validity filter rather than surfaced.
package loader

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/bookscape/bookscape-server/internal/domain"
)

// Loader parses CSV book datasets into validated records.
type Loader struct {
	logger *slog.Logger
}

// New creates a loader.
func New(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the CSV file at path and returns the valid records.
// The first row must be a header naming BookRecord fields; unknown columns are
// ignored and missing columns leave the zero value. On any whole-source
// failure the result is an empty slice.
func (l *Loader) Load(ctx context.Context, path string) []domain.BookRecord {
	f, err := os.Open(path) //#nosec G304 -- dataset path comes from config
	if err != nil {
		l.logger.Error("failed to open dataset", "path", path, "error", err)
		return nil
	}
	defer f.Close()

	return l.Parse(ctx, f, path)
}

// Parse reads CSV from r. The name is used only for logging.
func (l *Loader) Parse(ctx context.Context, r io.Reader, name string) []domain.BookRecord {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1 // tolerate ragged rows; missing fields coerce to zero

	header, err := cr.Read()
	if err != nil {
		l.logger.Error("failed to read dataset header", "source", name, "error", err)
		return nil
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}

	var (
		records []domain.BookRecord
		dropped int
	)
	for {
		if err := ctx.Err(); err != nil {
			l.logger.Warn("dataset load canceled", "source", name, "parsed", len(records))
			return nil
		}

		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			l.logger.Error("failed to parse dataset", "source", name, "error", err)
			return nil
		}

		rec := parseRow(row, cols)
		if !rec.Valid() {
			dropped++
			continue
		}
		records = append(records, rec)
	}

	l.logger.Info("dataset loaded",
		"source", name,
		"records", len(records),
		"dropped", dropped,
	)
	return records
}

// parseRow maps one CSV row onto a BookRecord using the header column index.
func parseRow(row []string, cols map[string]int) domain.BookRecord {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := domain.BookRecord{
		ID:                 parseInt(field("id")),
		Title:              field("title"),
		Author:             field("author"),
		Genre:              field("genre"),
		Language:           field("language"),
		PublicationYear:    parseInt(field("publicationYear")),
		Publisher:          field("publisher"),
		Description:        field("description"),
		PageCount:          parseInt(field("pageCount")),
		Tags:               field("tags"),
		RatingAverage:      parseFloat(field("ratingAverage")),
		MostPopularCountry: field("mostPopularCountry"),
		BestsellerStatus:   parseBool(field("bestsellerStatus")),
		Awards:             field("awards"),
		AgeCategory:        field("ageCategory"),
		AdaptedToMovie:     parseBool(field("adaptedToMovie")),
		ISBN:               field("isbn"),
	}

	if year := field("movieReleaseYear"); year != "" {
		if y, err := strconv.Atoi(year); err == nil {
			rec.MovieReleaseYear = &y
		}
	}

	return rec
}

// parseInt coerces a numeric field, treating absent/unparseable values as 0.
func parseInt(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Some exports write integers as "123.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0
		}
		return int(f)
	}
	return v
}

// parseFloat coerces a float field, treating absent/unparseable values as 0.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseBool parses by case-insensitive equality to "TRUE".
func parseBool(s string) bool {
	return strings.EqualFold(s, "TRUE")
}
