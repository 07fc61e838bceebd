package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kuesten-code/Werkbank-sub000/internal/common"
	"github.com/kuesten-code/Werkbank-sub000/internal/core"
	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
	"github.com/kuesten-code/Werkbank-sub000/internal/export"
	"github.com/kuesten-code/Werkbank-sub000/internal/ingest"
)

const usage = `usage:
  intake [-xlsx out.xlsx] [-raw] <file|dir>...
  intake learn <supplier-id> <field> <text-file> <value>
  intake suppliers add <name> [tax-id] [iban]
  intake suppliers list
`

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		xlsxOut = flag.String("xlsx", "", "also write the results to this XLSX file")
		withRaw = flag.Bool("raw", false, "include the recognized raw text in the JSON output")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Usage = func() { printError(usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := core.NewServices(ctx, common.LoadConfig(), prometheus.NewRegistry(), logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	args := flag.Args()
	switch args[0] {
	case "learn":
		err = runLearn(ctx, svc, os.Stdout, args[1:])
	case "suppliers":
		err = runSuppliers(ctx, svc, args[1:])
	default:
		err = runIntake(ctx, svc, args, *xlsxOut, *withRaw)
	}
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}

func runIntake(ctx context.Context, svc *core.Services, targets []string, xlsxOut string, withRaw bool) error {
	var files []string
	for _, t := range targets {
		fi, err := os.Stat(t)
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			files = append(files, t)
			continue
		}
		found, stats, err := ingest.ScanDirectory(t, nil, true)
		if err != nil {
			return err
		}
		slog.Info("directory scanned", "root", t, "matched", stats.Matched, "failed", stats.Failed)
		files = append(files, found...)
	}

	results := make([]entity.ExtractionResult, 0, len(files))
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		res, err := svc.Pipeline.Intake(ctx, f, filepath.Base(path))
		_ = f.Close()
		if err != nil {
			return err
		}
		if !withRaw {
			res.RawText = ""
		}
		results = append(results, *res)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	if xlsxOut != "" {
		data, err := export.WriteResultsXLSX(results)
		if err != nil {
			return err
		}
		if err := os.WriteFile(xlsxOut, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", xlsxOut, err)
		}
	}
	return nil
}
