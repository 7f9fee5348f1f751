package export

import (
	"github.com/xuri/excelize/v2"

	"github.com/fieldstack/workorder-tracker/internal/entity"
)

// WorkOrdersXLSX returns an XLSX workbook with the same columns as the CSV
// export.
func WorkOrdersXLSX(orders []*entity.WorkOrder) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Work Orders"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, h := range csvHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, wo := range orders {
		for col, v := range csvRow(wo) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
