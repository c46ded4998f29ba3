package report

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/i474232898/jma-forecast/internal/forecast"
	"github.com/i474232898/jma-forecast/internal/logger"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const placeholder = "-"

var headers = []string{"Area", "Area code", "Weather code", "Condition", "Min (°C)", "Max (°C)"}

// Generator renders cached forecast windows as xlsx workbooks.
type Generator struct {
	log logger.Logger
}

// NewGenerator creates a new Generator.
func NewGenerator(log logger.Logger) *Generator {
	return &Generator{log: logger.Component(log, "excel_generator")}
}

// GenerateWindow writes one sheet per date, one row per cached entry.
func (g *Generator) GenerateWindow(ctx context.Context, start string, days []forecast.DayForecast) ([]byte, error) {
	g.log.Infof("generating forecast workbook from %s (%d dates)", start, len(days))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("Weather Forecast from %s", start),
		Subject: "JMA weather forecast",
		Creator: "jma-forecast",
		Created: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	rows := 0
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := g.writeDay(f, day)
		if err != nil {
			return nil, fmt.Errorf("failed to write sheet %s: %w", day.Date, err)
		}
		rows += n
	}

	if len(days) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("failed to delete default sheet: %w", err)
		}
		f.SetActiveSheet(0)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel to buffer: %w", err)
	}

	g.log.Infof("generated workbook with %d rows", rows)
	return buf.Bytes(), nil
}

func (g *Generator) writeDay(f *excelize.File, day forecast.DayForecast) (int, error) {
	sheet := day.Date
	if _, err := f.NewSheet(sheet); err != nil {
		return 0, err
	}

	for i, h := range headers {
		if err := f.SetCellValue(sheet, cell(i+1, 1), h); err != nil {
			return 0, err
		}
	}

	row := 2
	for _, area := range day.Areas {
		for _, e := range area.Entries {
			values := []interface{}{
				e.AreaName,
				e.AreaCode,
				e.WeatherCode,
				string(e.Condition()),
				temp(e.TempMin),
				temp(e.TempMax),
			}
			for col, v := range values {
				if err := f.SetCellValue(sheet, cell(col+1, row), v); err != nil {
					return 0, err
				}
			}
			row++
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return 0, err
	}
	if err := f.SetColWidth(sheet, "B", "F", 14); err != nil {
		return 0, err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return 0, err
	}

	return row - 2, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func temp(v *float64) interface{} {
	if v == nil {
		return placeholder
	}
	return *v
}
