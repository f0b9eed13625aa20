package table

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column is one fixed-width field of a Layout. Cells are right-aligned to
// Width unless Left is set. Wider cells are written whole.
type Column struct {
	Name  string
	Width int
	Left  bool
}

// Layout describes a fixed-width, separator-joined text table.
type Layout struct {
	Columns []Column
	Sep     string
}

func (l Layout) pad(i int, s string) string {
	c := l.Columns[i]
	if c.Left {
		return fmt.Sprintf("%-*s", c.Width, s)
	}
	return fmt.Sprintf("%*s", c.Width, s)
}

// Header renders the column names, aligned like the rows.
func (l Layout) Header() string {
	names := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		names[i] = c.Name
	}
	line, _ := l.Line(names...)
	return line
}

// Line renders one row without the trailing newline.
func (l Layout) Line(cells ...string) (string, error) {
	if len(cells) != len(l.Columns) {
		return "", fmt.Errorf("table: %d cells for %d columns", len(cells), len(l.Columns))
	}

	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = l.pad(i, cell)
	}
	return strings.Join(padded, l.Sep), nil
}

// Writer streams a Layout to an io.Writer. The first error is sticky and
// returned again by every later call.
type Writer struct {
	layout Layout
	w      *bufio.Writer
	err    error
}

func NewWriter(w io.Writer, layout Layout) *Writer {
	return &Writer{layout: layout, w: bufio.NewWriter(w)}
}

func (w *Writer) WriteHeader() error {
	return w.writeLine(w.layout.Header(), nil)
}

func (w *Writer) Write(cells ...string) error {
	line, err := w.layout.Line(cells...)
	return w.writeLine(line, err)
}

func (w *Writer) writeLine(line string, err error) error {
	if w.err != nil {
		return w.err
	}
	if err != nil {
		w.err = err
		return err
	}
	if _, err := w.w.WriteString(line + "\n"); err != nil {
		w.err = err
	}
	return w.err
}

// Flush writes any buffered rows.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

// WriteFile creates path and writes the header followed by rows.
func WriteFile(
	path string,
	layout Layout,
	rows [][]string,
) (
	err error,
) {

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	w := NewWriter(f, layout)
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row...); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
