// Package extractor routes stored judgments to the text-layer, plain-text or OCR readers.
package extractor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
	"github.com/kirillkom/judgment-assistant/internal/core/ports"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/extractor/pdftext"
	"github.com/kirillkom/judgment-assistant/internal/infrastructure/extractor/plaintext"
)

// DefaultMinTextLayerChars is the text-layer length below which a PDF is treated as a scan.
const DefaultMinTextLayerChars = 200

// Recognizer is the OCR engine used for scans and image documents.
type Recognizer interface {
	PDF(ctx context.Context, data []byte) (domain.SourceText, error)
	Image(ctx context.Context, data []byte, ext string) (domain.SourceText, error)
}

type ChainOptions struct {
	MinTextLayerChars int
	Logger            *slog.Logger
}

type Chain struct {
	storage  ports.ObjectStorage
	ocr      Recognizer
	minChars int
	logger   *slog.Logger
	// pdfText is replaced in tests.
	pdfText func([]byte) (domain.SourceText, error)
}

// NewChain builds the extractor. A nil recognizer disables OCR: image documents then fail
// and PDFs use whatever text layer they have.
func NewChain(storage ports.ObjectStorage, ocr Recognizer, opts ChainOptions) *Chain {
	if opts.MinTextLayerChars <= 0 {
		opts.MinTextLayerChars = DefaultMinTextLayerChars
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		storage:  storage,
		ocr:      ocr,
		minChars: opts.MinTextLayerChars,
		logger:   logger,
		pdfText:  pdftext.Extract,
	}
}

func (c *Chain) Extract(ctx context.Context, doc *domain.Document) (domain.SourceText, error) {
	raw, err := c.read(ctx, doc.StoragePath)
	if err != nil {
		return domain.SourceText{}, err
	}

	ext := strings.ToLower(filepath.Ext(doc.Filename))
	switch ext {
	case ".txt":
		return plaintext.Extract(raw)
	case ".pdf":
		return c.pdf(ctx, doc.ID, raw)
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		if c.ocr == nil {
			return domain.SourceText{}, domain.WrapError(domain.ErrSourceUnavailable, "extract image", fmt.Errorf("ocr is disabled"))
		}
		return c.ocr.Image(ctx, raw, ext)
	default:
		return domain.SourceText{}, domain.WrapError(domain.ErrSourceUnavailable, "extract", fmt.Errorf("unsupported source type %q", ext))
	}
}

func (c *Chain) pdf(ctx context.Context, docID string, raw []byte) (domain.SourceText, error) {
	layer, layerErr := c.pdfText(raw)
	if layerErr == nil && len(strings.TrimSpace(layer.Text)) >= c.minChars {
		return layer, nil
	}
	if c.ocr == nil {
		if layerErr != nil {
			return domain.SourceText{}, domain.WrapError(domain.ErrSourceUnavailable, "extract pdf", layerErr)
		}
		return layer, nil
	}

	c.logger.Info("ocr_fallback",
		"document_id", docID,
		"text_layer_chars", len(strings.TrimSpace(layer.Text)),
		"text_layer_error", errString(layerErr),
	)
	scanned, err := c.ocr.PDF(ctx, raw)
	if err != nil {
		if strings.TrimSpace(layer.Text) != "" {
			layer.Warnings = append(layer.Warnings, "ocr fallback failed: "+err.Error())
			return layer, nil
		}
		return scanned, err
	}
	if layerErr != nil {
		scanned.Warnings = append(scanned.Warnings, "text layer unreadable: "+layerErr.Error())
	}
	return scanned, nil
}

func (c *Chain) read(ctx context.Context, key string) ([]byte, error) {
	reader, err := c.storage.Open(ctx, key)
	if err != nil {
		return nil, domain.WrapError(domain.ErrSourceUnavailable, "open source document", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, domain.WrapError(domain.ErrSourceUnavailable, "read source document", err)
	}
	return raw, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
