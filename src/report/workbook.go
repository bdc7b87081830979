package report

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/mickaelfiorentino/keyv/src/render"
)

// ExportWorkbook writes the values behind every figure to an xlsx file, one
// sheet per figure. Each panel cluster becomes a block of rows: a title row,
// a header row, then one row per category with the series values, the stack
// total and the error half-height when there is one.
func ExportWorkbook(path string, figs []render.Figure) error {
	f := excelize.NewFile()
	defer f.Close()

	for _, fig := range figs {
		if _, err := f.NewSheet(fig.Name); err != nil {
			return errors.Wrapf(err, "workbook sheet %s", fig.Name)
		}
		if err := writeFigure(f, fig); err != nil {
			return errors.Wrapf(err, "workbook sheet %s", fig.Name)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.Wrap(err, "workbook")
	}
	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return nil
}

func writeFigure(f *excelize.File, fig render.Figure) error {
	row := 1
	put := func(values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetSheetRow(fig.Name, cell, &values)
	}

	for _, p := range fig.Panels {
		totals, err := p.Totals()
		if err != nil {
			return err
		}
		for k, c := range p.Clusters {
			title := p.Title
			if len(p.Clusters) > 1 {
				title = fmt.Sprintf("%s #%d", p.Title, k+1)
			}
			if err := put([]interface{}{title}); err != nil {
				return err
			}
			header := []interface{}{"CATEGORY"}
			for j, s := range c.Stack {
				label := s.Label
				if label == "" {
					label = fmt.Sprintf("SERIES %d", j+1)
				}
				header = append(header, label)
			}
			header = append(header, "TOTAL")
			if c.Err != nil {
				header = append(header, "STD")
			}
			if err := put(header); err != nil {
				return err
			}
			for i, cat := range p.Categories {
				line := []interface{}{cat}
				for _, s := range c.Stack {
					line = append(line, s.Values[i])
				}
				line = append(line, totals[k][i])
				if c.Err != nil {
					line = append(line, c.Err[i])
				}
				if err := put(line); err != nil {
					return err
				}
			}
			row++
		}
	}
	return nil
}
