package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"time"

	common_models "go-docmap/internal/common/models"
	"go-docmap/internal/features/instance"
	"go-docmap/internal/features/template"
	"go-docmap/pkg/transform"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

const rowPageSize = 1000

type ExportService interface {
	// ExportInstance renders a completed instance into the requested format
	// and stamps the export metadata. Only COMPLETED instances can be
	// exported; EXPORTED instances can be downloaded again unchanged.
	ExportInstance(ctx context.Context, instanceID, format, actor string) ([]byte, string, error)
}

type ExportServiceImpl struct {
	Instances instance.InstanceRepository
	Rows      instance.RowRepository
	Templates template.TemplateRepository
	Logger    *zap.Logger
}

func NewExportService(
	instances instance.InstanceRepository,
	rows instance.RowRepository,
	templates template.TemplateRepository,
	logger *zap.Logger,
) ExportService {
	return &ExportServiceImpl{
		Instances: instances,
		Rows:      rows,
		Templates: templates,
		Logger:    logger,
	}
}

func (s *ExportServiceImpl) ExportInstance(ctx context.Context, instanceID, format, actor string) ([]byte, string, error) {
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatCSV {
		return nil, "", fmt.Errorf("unsupported format: %s", format)
	}

	inst, err := s.Instances.Get(ctx, instanceID)
	if err != nil {
		return nil, "", err
	}
	if inst.Status != instance.StatusCompleted && inst.Status != instance.StatusExported {
		return nil, "", fmt.Errorf("instance is %s, export requires COMPLETED", inst.Status)
	}

	tmpl, err := s.Templates.Get(ctx, inst.TemplateID.Hex())
	if err != nil {
		return nil, "", err
	}
	columns := orderedColumns(tmpl)

	rows, err := s.loadRows(ctx, inst)
	if err != nil {
		return nil, "", err
	}

	var payload []byte
	switch format {
	case FormatXLSX:
		payload, err = buildWorkbook(columns, rows)
	case FormatCSV:
		payload, err = buildCSV(columns, rows)
	}
	if err != nil {
		return nil, "", err
	}

	if inst.Status == instance.StatusCompleted {
		if err := s.Instances.SetExported(ctx, inst.ID, format, actor); err != nil {
			return nil, "", err
		}
	}

	s.Logger.Info("instance exported",
		zap.String("instance_id", instanceID),
		zap.String("format", format),
		zap.Int("rows", len(rows)),
	)

	filename := fmt.Sprintf("%s_%s.%s", tmpl.Name, time.Now().Format("20060102_150405"), format)
	return payload, filename, nil
}

func (s *ExportServiceImpl) loadRows(ctx context.Context, inst *instance.TemplateInstance) ([]instance.Row, error) {
	var all []instance.Row
	for offset := int64(0); ; offset += rowPageSize {
		page, err := s.Rows.List(ctx, inst.ID, rowPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < rowPageSize {
			break
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].RowIndex < all[j].RowIndex })
	return all, nil
}

func orderedColumns(tmpl *template.DataTemplate) []common_models.TemplateColumn {
	columns := make([]common_models.TemplateColumn, len(tmpl.Columns))
	copy(columns, tmpl.Columns)
	sort.SliceStable(columns, func(i, j int) bool { return columns[i].Order < columns[j].Order })
	return columns
}

func columnLabel(col common_models.TemplateColumn) string {
	if col.Label != "" {
		return col.Label
	}
	return col.Name
}

func buildWorkbook(columns []common_models.TemplateColumn, rows []instance.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Export"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, columnLabel(col))
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range rows {
		for colIdx, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			val := row.FieldValues[col.Name]
			switch v := val.(type) {
			case nil:
				// leave the cell empty
			case time.Time:
				f.SetCellValue(sheetName, cell, v.Format("2006-01-02 15:04:05"))
			case string, bool, int, int32, int64, float32, float64:
				f.SetCellValue(sheetName, cell, v)
			default:
				f.SetCellValue(sheetName, cell, transform.Stringify(v))
			}
		}
	}

	for i := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 15)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func buildCSV(columns []common_models.TemplateColumn, rows []instance.Row) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = columnLabel(col)
	}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			val := row.FieldValues[col.Name]
			if t, ok := val.(time.Time); ok {
				record[i] = t.Format("2006-01-02 15:04:05")
			} else {
				record[i] = transform.Stringify(val)
			}
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
