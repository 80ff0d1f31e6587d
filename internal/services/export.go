package services

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/xuri/excelize/v2"

	"retail-dashboard/internal/models"
)

// ExportParams selects what each chart sheet of a workbook shows.
type ExportParams struct {
	Start    time.Time
	End      time.Time
	Category string
	Channel  string
	Weekday  string
}

type sheet struct {
	name   string
	header []any
	rows   [][]any
}

// WriteWorkbook writes one sheet per dashboard chart to w as xlsx.
func WriteWorkbook(w io.Writer, ds *Dataset, p ExportParams) error {
	sheets := []sheet{
		monthlySheet(MonthlyRevenueByChannel(ds, p.Start, p.End)),
		pointsSheet("Countries", "Country", RevenueByCountry(ds, p.Start, p.End)),
		subcategorySheet(SubcategoryRevenueByGender(ds, p.Category)),
		pointsSheet("Weekdays", "Day", SalesByWeekday(ds, p.Channel)),
		pointsSheet("Customers", "Gender", CustomersByGender(ds, p.Channel)),
		pointsSheet("Channel split", "Channel", ChannelSplitForWeekday(ds, p.Weekday)),
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}

		if err := writeRow(f, s.name, 1, s.header); err != nil {
			return err
		}
		for r, row := range s.rows {
			if err := writeRow(f, s.name, r+2, row); err != nil {
				return err
			}
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheetName string, row int, values []any) error {
	cellName, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cellName, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheetName, row, err)
	}
	return nil
}

// monthlySheet lays the per-channel series out as a month by channel grid.
func monthlySheet(series []models.Series) sheet {
	s := sheet{name: "Monthly revenue", header: []any{"Month"}}

	var months []string
	values := make(map[string][]any)
	for c, ser := range series {
		s.header = append(s.header, ser.Name)
		for _, p := range ser.Points {
			row, ok := values[p.Label]
			if !ok {
				row = make([]any, len(series))
				values[p.Label] = row
				months = append(months, p.Label)
			}
			row[c] = p.Value
		}
	}

	slices.Sort(months)
	for _, m := range months {
		s.rows = append(s.rows, append([]any{m}, values[m]...))
	}
	return s
}

func subcategorySheet(series []models.Series) sheet {
	s := sheet{name: "Subcategories", header: []any{"Subcategory", "F", "M"}}
	if len(series) != 2 {
		return s
	}
	female, male := series[0].Points, series[1].Points
	for i := range female {
		s.rows = append(s.rows, []any{female[i].Label, female[i].Value, male[i].Value})
	}
	return s
}

func pointsSheet(name, label string, series models.Series) sheet {
	s := sheet{name: name, header: []any{label, "Value"}}
	for _, p := range series.Points {
		s.rows = append(s.rows, []any{p.Label, p.Value})
	}
	return s
}
