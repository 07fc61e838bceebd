package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

func (p *Provider) extractPDF(ctx context.Context, tmpDir, path string, data []byte) (string, string, error) {
	if p.cfg.UseTextLayer {
		text, err := firstPageText(data)
		switch {
		case err != nil:
			p.logger.Debug("pdf text layer unreadable, falling back to ocr", "error", err)
		case len([]rune(strings.TrimSpace(text))) >= p.cfg.MinTextLayerChars:
			return text, "pdf-text", nil
		default:
			p.logger.Debug("pdf text layer too short, falling back to ocr", "chars", len(text))
		}
	}

	img, err := p.rasterizeFirstPage(ctx, tmpDir, path)
	if err != nil {
		return "", "", err
	}
	text, err := p.recognize(ctx, img)
	return text, "pdf-ocr", err
}

// rasterizeFirstPage renders page one only; invoices carry their header data there.
func (p *Provider) rasterizeFirstPage(ctx context.Context, tmpDir, path string) (string, error) {
	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -f 1 -l 1 -png <in.pdf> <tmp/page>
	_, _, err := p.runner.Run(ctx, p.cfg.Pdftoppm,
		"-r", strconv.Itoa(p.cfg.DPI), "-f", "1", "-l", "1", "-png", path, prefix)
	if err != nil {
		return "", err
	}

	// pdftoppm pads the page number depending on the page count (page-1.png, page-01.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", &ToolError{Tool: p.cfg.Pdftoppm, ExitCode: 0, Err: fmt.Errorf("no page rendered")}
	}
	return matches[0], nil
}
