package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kuesten-code/Werkbank-sub000/constants"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "deu"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300

	ToolTimeout time.Duration // per tool invocation, default 60s
	TempRoot    string        // parent of the per-call working dirs; empty -> os.TempDir()

	Enhance           bool // grayscale + contrast + sharpen before recognition
	UseTextLayer      bool // try the embedded PDF text before rasterizing
	MinTextLayerChars int  // below this the text layer counts as absent, default 50
}

// Provider turns scanned PDFs and images into plain text using external tools.
type Provider struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Provider)

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(p *Provider) { p.runner = r }
}

func NewProvider(cfg Config, logger *slog.Logger, opts ...Option) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "deu"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = 60 * time.Second
	}
	if cfg.MinTextLayerChars <= 0 {
		cfg.MinTextLayerChars = 50
	}
	p := &Provider{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	if p.runner == nil {
		p.runner = NewExecRunner(cfg.ToolTimeout, logger)
	}
	return p
}

// ExtractText returns the recognized text of data. The file name only selects
// the strategy. Unsupported types yield an empty string and no error. All
// intermediate files live in a private directory that is removed before
// ExtractText returns.
func (p *Provider) ExtractText(ctx context.Context, data []byte, fileName string) (string, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(fileName))
	format := constants.MapExtToFormat(ext)
	if format != constants.PDF && format != constants.IMAGE {
		p.logger.Debug("no ocr strategy for extension", "file", fileName, "ext", ext)
		return "", nil
	}

	tmpDir, err := os.MkdirTemp(p.cfg.TempRoot, "intake-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create ocr work dir: %w", err)
	}
	defer p.removeWorkDir(tmpDir)

	input := filepath.Join(tmpDir, "input."+ext)
	if err := os.WriteFile(input, data, 0o600); err != nil {
		return "", fmt.Errorf("write ocr input: %w", err)
	}

	var text, method string
	switch format {
	case constants.PDF:
		text, method, err = p.extractPDF(ctx, tmpDir, input, data)
	default:
		text, err = p.extractImage(ctx, tmpDir, input)
		method = "image-ocr"
	}
	if err != nil {
		p.logger.Error("ocr extraction failed", "file", fileName, "error", err)
		return "", err
	}

	text = strings.TrimSpace(text)
	p.logger.Info("ocr extraction complete",
		"file", fileName,
		"method", method,
		"chars", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

func (p *Provider) removeWorkDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.logger.Warn("failed to remove ocr work dir", "dir", dir, "error", err)
	}
}
