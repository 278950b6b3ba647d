package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/gerardosocias29/cms-station/internal/models"
)

const sheet = "Queue History"

// WriteHistoryXLSX exports one day's history for a department as a
// spreadsheet, for front-desk reporting.
func WriteHistoryXLSX(path, departmentName, date string, rows []models.Patient) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s - %s", departmentName, date))

	headers := []string{"Ticket", "Name", "Priority", "Status", "Created", "Completed"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, header)
	}

	for i, p := range rows {
		completed := ""
		if p.CompletedAt != nil {
			completed = p.CompletedAt.Format("2006-01-02 15:04:05")
		}
		values := []interface{}{
			p.Ticket(),
			p.Name,
			models.PriorityLabel(p.Priority),
			p.Status,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
			completed,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+3)
			if err != nil {
				return err
			}
			f.SetCellValue(sheet, cell, value)
		}
	}

	if err := f.SetColWidth(sheet, "A", "F", 20); err != nil {
		return err
	}
	return f.SaveAs(path)
}
