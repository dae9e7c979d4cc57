package output

import (
	"fmt"

	"github.com/tealeg/xlsx/v2"

	"github.com/law-makers/promptscrape/pkg/models"
)

// SaveExcel writes records to an XLSX workbook with one sheet, using
// the same column order as the CSV writer
func SaveExcel(records []*models.Record, filepath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("records")
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headers := columnOrder(records)
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetString(h)
	}

	for _, rec := range records {
		flat := rec.Map()
		row := sheet.AddRow()
		for _, h := range headers {
			row.AddCell().SetString(flat[h])
		}
	}

	return file.Save(filepath)
}
