package ocr

import (
	"context"
	"path/filepath"

	"github.com/disintegration/imaging"
)

func (p *Provider) extractImage(ctx context.Context, tmpDir, path string) (string, error) {
	if p.cfg.Enhance {
		enhanced, err := enhanceImage(path, tmpDir)
		if err != nil {
			p.logger.Warn("image enhancement failed, using original", "error", err)
		} else {
			path = enhanced
		}
	}
	return p.recognize(ctx, path)
}

func (p *Provider) recognize(ctx context.Context, img string) (string, error) {
	// tesseract <img> stdout -l deu
	args := []string{img, "stdout", "-l", p.cfg.TesseractLang}
	if p.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", p.cfg.TessdataDir)
	}
	out, _, err := p.runner.Run(ctx, p.cfg.Tesseract, args...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// enhanceImage writes a grayscale, contrast-boosted and sharpened copy of src
// into dir and returns its path.
func enhanceImage(src, dir string) (string, error) {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", err
	}
	gray := imaging.Grayscale(img)
	contrasted := imaging.AdjustContrast(gray, 30)
	sharp := imaging.Sharpen(contrasted, 1.0)

	out := filepath.Join(dir, "enhanced.png")
	if err := imaging.Save(sharp, out); err != nil {
		return "", err
	}
	return out, nil
}
