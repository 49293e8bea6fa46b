package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alejandrodnm/kscan/internal/application/scanner"
)

func runBacktest(ctx context.Context, s *scanner.Scanner) {
	slog.Info("=== BACKTEST MODE: replay strategy over historical window ===")

	result, err := s.RunBacktest(ctx)
	if err != nil {
		slog.Error("backtest failed", "err", err)
		os.Exit(1)
	}

	if result.TotalTrades == 0 {
		slog.Warn("no resolved trades in window — check data_days vs window_days")
	}
}
