// Package loader reads the course catalog and language-code table from CSV.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/0xcro3dile/courserag/internal/domain/entities"
)

// Catalog column headers.
const (
	ColTitle       = "Course Title"
	ColDescription = "Course Description"
	ColLanguages   = "Released Languages"
	ColAudience    = "Who This Course is For"

	ColCode     = "Code"
	ColLanguage = "Language"
)

// CSVCatalogLoader implements ports.CatalogLoader over two CSV files.
type CSVCatalogLoader struct {
	coursesPath string
	langMapPath string
}

// NewCSVCatalogLoader creates a loader for the courses and language-map files.
func NewCSVCatalogLoader(coursesPath, langMapPath string) *CSVCatalogLoader {
	return &CSVCatalogLoader{coursesPath: coursesPath, langMapPath: langMapPath}
}

// LoadCourses reads every course row in file order.
func (l *CSVCatalogLoader) LoadCourses(ctx context.Context) ([]entities.CourseRecord, error) {
	rows, err := readTable(l.coursesPath, ColTitle, ColDescription, ColLanguages, ColAudience)
	if err != nil {
		return nil, err
	}

	courses := make([]entities.CourseRecord, 0, len(rows))
	for i, row := range rows {
		codes, err := ParseLanguageCodes(row[ColLanguages])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", l.coursesPath, i+2, err)
		}
		courses = append(courses, entities.CourseRecord{
			Title:         row[ColTitle],
			Description:   row[ColDescription],
			Audience:      row[ColAudience],
			LanguageCodes: codes,
		})
	}
	return courses, nil
}

// LoadLanguageMap reads the code-to-name table.
func (l *CSVCatalogLoader) LoadLanguageMap(ctx context.Context) (entities.LanguageCodeMap, error) {
	rows, err := readTable(l.langMapPath, ColCode, ColLanguage)
	if err != nil {
		return nil, err
	}

	names := make(entities.LanguageCodeMap, len(rows))
	for i, row := range rows {
		code, err := strconv.Atoi(strings.TrimSpace(row[ColCode]))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad code %q", l.langMapPath, i+2, row[ColCode])
		}
		names[code] = strings.TrimSpace(row[ColLanguage])
	}
	return names, nil
}

// Paths lists the files this loader reads, for change watching.
func (l *CSVCatalogLoader) Paths() []string {
	return []string{l.coursesPath, l.langMapPath}
}

// ParseLanguageCodes parses a cell such as "6, 7,11". An empty cell means no
// released languages.
func ParseLanguageCodes(cell string) ([]int, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	parts := strings.Split(cell, ",")
	codes := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		// Spreadsheet exports sometimes write integer codes as floats.
		p = strings.TrimSuffix(p, ".0")
		code, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad language code %q", p)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// readTable loads a headed CSV into header-keyed rows, requiring cols.
func readTable(path string, cols ...string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: empty file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		index[strings.TrimSpace(h)] = i
	}
	for _, c := range cols {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, c)
		}
	}

	var rows []map[string]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		row := make(map[string]string, len(cols))
		for _, c := range cols {
			if i := index[c]; i < len(rec) {
				row[c] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
