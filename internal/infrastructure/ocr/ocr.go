// Package ocr rasterizes scanned judgments with pdftoppm and reads them with tesseract.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

const (
	MethodPDF   = "pdf-ocr"
	MethodImage = "image-ocr"

	pageBreak = "\n\f\n"
)

type Config struct {
	Pdftoppm    string
	Tesseract   string
	Lang        string
	TessdataDir string
	DPI         int
	// MaxPages caps rasterized pages; 0 means no limit.
	MaxPages int
}

func (c Config) withDefaults() Config {
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.Lang == "" {
		c.Lang = "eng"
	}
	if c.DPI <= 0 {
		c.DPI = 300
	}
	return c
}

type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Engine)

func WithRunner(r Runner) Option {
	return func(e *Engine) {
		if r != nil {
			e.runner = r
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{cfg: cfg.withDefaults(), logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.runner == nil {
		e.runner = execRunner{logger: e.logger}
	}
	return e
}

// PDF renders every page of a PDF and recognizes them in page order. Pages that fail
// recognition are reported as warnings; a PDF with no readable page is unavailable.
func (e *Engine) PDF(ctx context.Context, data []byte) (domain.SourceText, error) {
	tmpDir, err := os.MkdirTemp("", "judgment-ocr-*")
	if err != nil {
		return domain.SourceText{}, fmt.Errorf("create ocr workdir: %w", err)
	}
	defer e.cleanup(tmpDir)

	input := filepath.Join(tmpDir, "source.pdf")
	if err := os.WriteFile(input, data, 0o600); err != nil {
		return domain.SourceText{}, fmt.Errorf("write ocr input: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	if _, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", input, prefix); err != nil {
		return domain.SourceText{}, domain.WrapError(domain.ErrSourceUnavailable, "pdftoppm", commandError(err, errb))
	}

	// pdftoppm zero-pads page numbers, so lexical order is page order.
	images, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(images)
	if e.cfg.MaxPages > 0 && len(images) > e.cfg.MaxPages {
		images = images[:e.cfg.MaxPages]
	}
	if len(images) == 0 {
		return domain.SourceText{}, domain.WrapError(domain.ErrSourceUnavailable, "pdftoppm", errors.New("no pages rendered"))
	}

	var (
		b        strings.Builder
		warnings []string
		readable int
	)
	for i, img := range images {
		text, err := e.tesseract(ctx, img)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i+1, err))
			continue
		}
		if b.Len() > 0 {
			b.WriteString(pageBreak)
		}
		b.WriteString(text)
		readable++
	}
	if readable == 0 {
		return domain.SourceText{Pages: len(images), Method: MethodPDF, Warnings: warnings},
			domain.WrapError(domain.ErrSourceUnavailable, "tesseract", errors.New("no page could be recognized"))
	}
	return domain.SourceText{
		Text:     b.String(),
		Pages:    len(images),
		Method:   MethodPDF,
		Warnings: warnings,
	}, nil
}

// Image recognizes a single scanned page. ext keeps the original suffix so tesseract
// can pick the right decoder.
func (e *Engine) Image(ctx context.Context, data []byte, ext string) (domain.SourceText, error) {
	tmpDir, err := os.MkdirTemp("", "judgment-ocr-*")
	if err != nil {
		return domain.SourceText{}, fmt.Errorf("create ocr workdir: %w", err)
	}
	defer e.cleanup(tmpDir)

	input := filepath.Join(tmpDir, "page"+strings.ToLower(ext))
	if err := os.WriteFile(input, data, 0o600); err != nil {
		return domain.SourceText{}, fmt.Errorf("write ocr input: %w", err)
	}
	text, err := e.tesseract(ctx, input)
	if err != nil {
		return domain.SourceText{}, domain.WrapError(domain.ErrSourceUnavailable, "tesseract", err)
	}
	return domain.SourceText{Text: text, Pages: 1, Method: MethodImage}, nil
}

func (e *Engine) tesseract(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Lang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", commandError(err, errb)
	}
	return string(out), nil
}

func (e *Engine) cleanup(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		e.logger.Warn("ocr_cleanup_failed", "dir", dir, "error", err)
	}
}

func commandError(err error, stderr []byte) error {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, truncate(msg, 512))
}
