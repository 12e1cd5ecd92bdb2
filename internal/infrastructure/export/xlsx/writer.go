// Package xlsx renders case records as an Excel workbook.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

const sheet = "Cases"

var headers = []string{
	"Position",
	"Case ID",
	"Court",
	"Date",
	"Judge",
	"Petitioners",
	"Respondents",
	"Sections",
	"Outcome",
	"Document ID",
	"Full Text",
}

type Writer struct {
	logger *slog.Logger
}

func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

func (x *Writer) Write(ctx context.Context, w io.Writer, records []domain.CaseRecord) error {
	start := time.Now()
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, bold)
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := i + 2
		values := []any{
			rec.Position,
			rec.CaseID,
			rec.Court,
			rec.Date,
			rec.Judge,
			strings.Join(rec.Petitioners, "; "),
			strings.Join(rec.Respondents, "; "),
			strings.Join(rec.Sections, ", "),
			rec.Outcome,
			rec.DocumentID,
			rec.FullText,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "C", "C", 30)
	_ = f.SetColWidth(sheet, "E", "G", 26)
	_ = f.SetColWidth(sheet, "K", "K", 80)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	x.logger.Info("cases_exported", "rows", len(records), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}
