package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
)

// Intaker is the part of the intake pipeline the ingestor drives.
type Intaker interface {
	Intake(ctx context.Context, r io.Reader, fileName string) (*entity.ExtractionResult, error)
}

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	HashHex      string
	Deduplicated bool
	OutputPath   string
	IngestedAt   time.Time
	Result       *entity.ExtractionResult
}

// FSIngestor runs files from the local filesystem through the pipeline and
// writes each result as <name>.json into OutDir. Files whose content was
// already ingested by this process are skipped.
type FSIngestor struct {
	Pipeline    Intaker
	OutDir      string
	AllowedExts map[string]struct{}
	logger      *slog.Logger

	mu   sync.Mutex
	seen map[string]string // content hash -> output path
}

func NewFSIngestor(p Intaker, outDir string, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{
		Pipeline: p,
		OutDir:   outDir,
		logger:   logger,
		seen:     map[string]string{},
	}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	var out IngestionResult

	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("abs path error", "path", path, "error", err)
		return out, err
	}
	if !AllowedExt(filepath.Ext(abs), i.AllowedExts) {
		i.logger.Warn("unsupported or missing extension", "path", abs)
		return out, fmt.Errorf("unsupported or missing extension: %q", filepath.Ext(abs))
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		i.logger.Error("read file error", "path", abs, "error", err)
		return out, err
	}
	sum := sha256.Sum256(data)
	out = IngestionResult{
		SourcePath: abs,
		HashHex:    hex.EncodeToString(sum[:]),
		IngestedAt: time.Now().UTC(),
	}

	i.mu.Lock()
	prev, dup := i.seen[out.HashHex]
	i.mu.Unlock()
	if dup {
		i.logger.Info("skipping duplicate document", "path", abs, "hash", out.HashHex, "first_output", prev)
		out.Deduplicated = true
		out.OutputPath = prev
		return out, nil
	}

	res, err := i.Pipeline.Intake(ctx, bytes.NewReader(data), filepath.Base(abs))
	if err != nil {
		return out, fmt.Errorf("intake %s: %w", abs, err)
	}
	out.Result = res

	if i.OutDir != "" {
		out.OutputPath, err = i.writeResult(abs, res)
		if err != nil {
			return out, err
		}
	}

	i.mu.Lock()
	i.seen[out.HashHex] = out.OutputPath
	i.mu.Unlock()
	return out, nil
}

func (i *FSIngestor) writeResult(src string, res *entity.ExtractionResult) (string, error) {
	if err := os.MkdirAll(i.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".json"
	dst := filepath.Join(i.OutDir, name)

	body, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}

	tmp, err := os.CreateTemp(i.OutDir, ".result-*.json")
	if err != nil {
		return "", fmt.Errorf("create temp result: %w", err)
	}
	defer func() {
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			i.logger.Warn("failed to remove temp result", "path", tmp.Name(), "error", err)
		}
	}()
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write result: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close result: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("publish result: %w", err)
	}
	i.logger.Debug("result written", "path", dst)
	return dst, nil
}
