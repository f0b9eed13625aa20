package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/HamletTheHamster/xafs-pipeline/internal/table"
)

const (
	CSVFile  = "criteria_report.csv"
	XLSXFile = "criteria_report.xlsx"
	Sheet    = "criteria"
)

func layout(criteria []string) table.Layout {
	l := table.Layout{Sep: ","}
	for _, c := range criteria {
		l.Columns = append(l.Columns, table.Column{Name: c, Width: 12})
	}
	return l
}

// WriteCSV writes the header and one line per report, every cell
// right-aligned to 12 characters.
func (t *Table) WriteCSV(w io.Writer) error {
	tw := table.NewWriter(w, layout(t.Criteria))
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := tw.Write(row...); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// SaveCSV writes the table to path.
func (t *Table) SaveCSV(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := t.WriteCSV(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// SaveXLSX writes the table as a workbook: the report file in column A,
// then one numeric column per criterion.
func (t *Table) SaveXLSX(path string) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", Sheet); err != nil {
		return err
	}

	header := []interface{}{"report"}
	for _, c := range t.Criteria {
		header = append(header, c)
	}
	if err := wb.SetSheetRow(Sheet, "A1", &header); err != nil {
		return err
	}

	for r, row := range t.Rows {
		cells := []interface{}{t.Files[r]}
		for _, v := range row {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				cells = append(cells, f)
			} else {
				cells = append(cells, v)
			}
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(Sheet, axis, &cells); err != nil {
			return err
		}
	}

	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
