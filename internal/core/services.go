package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/kuesten-code/Werkbank-sub000/internal/common"
	"github.com/kuesten-code/Werkbank-sub000/internal/einvoice"
	"github.com/kuesten-code/Werkbank-sub000/internal/metrics"
	"github.com/kuesten-code/Werkbank-sub000/internal/ocr"
	"github.com/kuesten-code/Werkbank-sub000/internal/patterns"
	"github.com/kuesten-code/Werkbank-sub000/internal/pipeline"
	"github.com/kuesten-code/Werkbank-sub000/internal/repository"
	"github.com/kuesten-code/Werkbank-sub000/internal/supplier"
)

// Services is the fully wired intake stack shared by the binaries.
type Services struct {
	DB        *repository.Handle
	Patterns  repository.PatternStore
	Suppliers repository.SupplierDirectory
	Metrics   *metrics.Metrics
	Pipeline  *pipeline.Pipeline

	redis  *redis.Client
	logger *slog.Logger
}

// NewServices connects the configured database, optionally fronts the
// pattern store with Redis, and assembles the pipeline. reg may be nil.
func NewServices(ctx context.Context, cfg *common.Config, reg prometheus.Registerer, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return nil, err
	}

	db, err := repository.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	s := &Services{
		DB:        db,
		Patterns:  db.Patterns(),
		Suppliers: db.Suppliers(),
		logger:    logger,
	}

	if cfg.Redis.Addr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.Patterns = repository.NewCachedPatternStore(s.Patterns, s.redis, cfg.Redis.TTL, logger)
		logger.Info("pattern cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	}

	if reg != nil {
		s.Metrics = metrics.New(reg)
	}

	extractCfg := patterns.Config{
		MatchTimeout: cfg.Extraction.MatchTimeout,
		MaxTextRunes: cfg.Extraction.MaxTextRunes,
		ContextRunes: cfg.Extraction.ContextRunes,
	}
	ocrCfg := ocr.Config{
		Pdftoppm:      cfg.OCR.Rasterizer,
		Tesseract:     cfg.OCR.Recognizer,
		TesseractLang: cfg.OCR.Language,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		ToolTimeout:   cfg.OCR.ToolTimeout,
		TempRoot:      cfg.OCR.TempRoot,
		Enhance:       cfg.OCR.Enhance,
		UseTextLayer:  cfg.OCR.UseTextLayer,
	}

	s.Pipeline = pipeline.NewPipeline(
		einvoice.NewParser(logger),
		ocr.NewProvider(ocrCfg, logger),
		supplier.NewResolver(s.Suppliers, logger),
		patterns.NewExtractor(s.Patterns, extractCfg, logger, s.Metrics),
		patterns.NewLearner(s.Patterns, extractCfg, logger, s.Metrics),
		s.Metrics,
		logger,
	)
	return s, nil
}

func (s *Services) Close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn("failed to close redis client", "error", err)
		}
	}
	s.DB.Close()
}
