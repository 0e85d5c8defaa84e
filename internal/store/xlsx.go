package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

var xlsxHeader = []string{"platform", "content_id", "source_url", "type", "caption", "created_at"}

// ExportXLSX writes the full history (newest first) as a spreadsheet.
func ExportXLSX(ctx context.Context, path string, limit int) error {
	rows, err := ListResolutions(ctx, limit)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "resolutions"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	if err := writeXLSXRow(f, sheet, 1, xlsxHeader); err != nil {
		return err
	}
	for i, r := range rows {
		cells := []string{
			r.Platform, r.ContentID, r.SourceURL, r.Type, r.Caption,
			r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := writeXLSXRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeXLSXRow(f *excelize.File, sheet string, row int, cells []string) error {
	for col, v := range cells {
		name, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, name, v); err != nil {
			return fmt.Errorf("set cell %s: %w", name, err)
		}
	}
	return nil
}
