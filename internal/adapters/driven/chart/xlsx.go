package chart

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

const chartSheet = "Chart"

type xlsxEncoder struct{}

func (xlsxEncoder) ext() string { return "xlsx" }

func (xlsxEncoder) mimeType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// encode writes each figure's data to its own sheet and places native
// charts on the first sheet.
func (xlsxEncoder) encode(path string, fig figure, width, height int) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), chartSheet); err != nil {
		return err
	}

	panels := fig.Panels
	w, h := width, height
	if len(panels) == 0 {
		panels = []figure{fig}
	} else {
		w, h = width/2, height/2
	}

	for i, p := range panels {
		dataSheet := fmt.Sprintf("Data%d", i+1)
		if _, err := f.NewSheet(dataSheet); err != nil {
			return err
		}
		if err := writeData(f, dataSheet, p); err != nil {
			return err
		}

		anchor, err := excelize.CoordinatesToCellName(1+(i%2)*(w/64+1), 1+(i/2)*(h/20+1))
		if err != nil {
			return err
		}
		if err := f.AddChart(chartSheet, anchor, xlsxChart(dataSheet, p, w, h)); err != nil {
			return fmt.Errorf("add chart %q: %w", p.Title, err)
		}
	}

	f.SetActiveSheet(0)
	return f.SaveAs(path)
}

// writeData lays out labels in column A and one column per series.
func writeData(f *excelize.File, sheet string, fig figure) error {
	header := []any{"Label"}
	for _, s := range fig.Series {
		header = append(header, s.Name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, label := range fig.Labels {
		row := []any{label}
		for _, s := range fig.Series {
			row = append(row, s.Values[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func xlsxChart(sheet string, fig figure, width, height int) *excelize.Chart {
	last := len(fig.Labels) + 1
	categories := fmt.Sprintf("%s!$A$2:$A$%d", sheet, last)

	chart := &excelize.Chart{
		Type:      excelize.Col,
		Title:     []excelize.RichTextRun{{Text: fig.Title}},
		Dimension: excelize.ChartDimension{Width: uint(width), Height: uint(height)},
		Legend:    excelize.ChartLegend{Position: "bottom"},
	}
	switch fig.Style {
	case domain.StylePie:
		chart.Type = excelize.Pie
	case domain.StyleLine:
		chart.Type = excelize.Line
	}

	for j := range fig.Series {
		col, _ := excelize.ColumnNumberToName(j + 2)
		chart.Series = append(chart.Series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", sheet, col),
			Categories: categories,
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", sheet, col, col, last),
		})
		if chart.Type == excelize.Pie {
			break
		}
	}
	if len(fig.Series) == 1 && chart.Type != excelize.Pie {
		chart.Legend.Position = "none"
	}
	return chart
}
