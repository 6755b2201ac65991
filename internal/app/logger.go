package app

import (
	"log/slog"
	"os"

	"delivery-analytics/internal/logx"
)

func NewLogger() logx.Logger {
	base := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	return logx.NewSlogAdapter(base).With(logx.String("app", "delivery-analytics"))
}
