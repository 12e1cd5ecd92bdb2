package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/kirillkom/judgment-assistant/internal/core/ports"
)

type ExportUseCase struct {
	cases    ports.CaseRepository
	exporter ports.CaseExporter
}

func NewExportUseCase(cases ports.CaseRepository, exporter ports.CaseExporter) *ExportUseCase {
	return &ExportUseCase{cases: cases, exporter: exporter}
}

// ExportXLSX writes every indexed record to w and returns how many were written.
func (uc *ExportUseCase) ExportXLSX(ctx context.Context, w io.Writer) (int, error) {
	records, err := uc.cases.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list case records: %w", err)
	}
	if err := uc.exporter.Write(ctx, w, records); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	return len(records), nil
}
