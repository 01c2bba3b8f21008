package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/termdojo/internal/domain"
)

// Options configures a bulk term import. Column A holds the word and
// column B the tag.
type Options struct {
	// Path is an .xlsx or .csv file.
	Path string

	// Sheet selects the XLSX sheet. Empty uses the first sheet.
	Sheet string

	// SkipHeader ignores the first row.
	SkipHeader bool

	// DefaultTag is used for rows without a tag.
	DefaultTag string
}

// Result summarises an import.
type Result struct {
	Processed int
	Created   int
	Skipped   int
	Errors    []string
}

// TermCreator registers terms.
type TermCreator interface {
	Create(ctx context.Context, word, tag string) (*domain.Term, error)
}

// Import reads opts.Path and registers every row with repo. Rows that fail
// validation (blank or duplicate words) are skipped and reported; other
// errors abort the import.
func Import(ctx context.Context, repo TermCreator, opts Options) (*Result, error) {
	rows, err := ReadRows(opts.Path, opts.Sheet)
	if err != nil {
		return nil, err
	}
	if opts.SkipHeader && len(rows) > 0 {
		rows = rows[1:]
	}

	result := &Result{Errors: make([]string, 0)}
	for i, row := range rows {
		rowNum := i + 1
		if opts.SkipHeader {
			rowNum++
		}

		word, tag := cell(row, 0), cell(row, 1)
		if word == "" {
			continue
		}
		if tag == "" {
			tag = opts.DefaultTag
		}

		result.Processed++
		if _, err := repo.Create(ctx, word, tag); err != nil {
			if errors.Is(err, domain.ErrValidation) {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", rowNum, domain.Message(err)))
				continue
			}
			return result, fmt.Errorf("import row %d: %w", rowNum, err)
		}
		result.Created++
	}
	return result, nil
}

// ReadRows returns the raw rows of an .xlsx or .csv file.
func ReadRows(path, sheet string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx", ".xlsm":
		return readExcel(path, sheet)
	}
	return nil, domain.Validation("importer.read", "unsupported file type %q (want .xlsx or .csv)", filepath.Ext(path))
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
