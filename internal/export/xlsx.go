package export

import (
	"bytes"
	"fmt"

	"vitalwatch/internal/models"

	"github.com/xuri/excelize/v2"
)

// SheetName XLSX 工作表名
const SheetName = "Health Logs"

// XLSX 生成历史记录 Excel 文件；记录为空时不生成（返回 false）
func XLSX(records []models.HistoricalRecord) ([]byte, bool, error) {
	if len(records) == 0 {
		return nil, false, nil
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create sheet: %w", err)
	}
	// 删除默认的 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, false, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return nil, false, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(Header))
	if err != nil {
		return nil, false, fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, false, fmt.Errorf("failed to set header style: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "A", 28); err != nil {
		return nil, false, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "J", "J", 48); err != nil {
		return nil, false, fmt.Errorf("failed to set column width: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2) // 第1行是表头
		if err != nil {
			return nil, false, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		row := cellValues(rec)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, false, fmt.Errorf("failed to write row %s: %w", rec.ID, err)
		}
	}

	// 冻结表头
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, false, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, false, fmt.Errorf("failed to write excel file: %w", err)
	}
	return buf.Bytes(), true, nil
}

// cellValues 数值列保留为数字，缺失轴写 N/A
func cellValues(rec models.HistoricalRecord) []any {
	values := []any{
		FormatTimestamp(rec.Timestamp),
		rec.HeartRate,
		rec.SpO2,
	}
	for _, v := range []*float64{rec.AccelX, rec.AccelY, rec.AccelZ, rec.GyroX, rec.GyroY, rec.GyroZ} {
		if v == nil {
			values = append(values, notAvailable)
		} else {
			values = append(values, *v)
		}
	}
	return append(values, rec.BPWarning, yesNo(rec.FallDetected))
}
