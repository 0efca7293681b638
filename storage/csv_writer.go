package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"coinafrique-scraper/models"
)

// CSVWriter writes the records of one category to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu       sync.Mutex
	category models.Category
	path     string
	file     *os.File
	writer   *csv.Writer
}

// ExportPath is where a category's export lands inside dir.
func ExportPath(dir, exportName string) string {
	return filepath.Join(dir, exportName+".csv")
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the category header. Intermediate directories are created automatically.
func NewCSVWriter(path string, category models.Category) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(models.Header(category)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{category: category, path: path, file: f, writer: w}, nil
}

// Path is the file being written.
func (c *CSVWriter) Path() string {
	return c.path
}

// WriteRecords appends one row per record, in column order.
func (c *CSVWriter) WriteRecords(records []*models.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range records {
		if r.Category != c.category {
			return fmt.Errorf("csv: %s record %s in %s export", r.Category, r.URL(), c.category)
		}
		if err := c.writer.Write(r.Row()); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	return c.file.Close()
}

// ReadCSV loads an export back as header and rows.
func ReadCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("csv: read %q: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("csv: %q is empty", path)
	}
	return all[0], all[1:], nil
}
