// Package sl содержит вспомогательные функции для логгера slog:
// построение атрибута ошибки и создание логгера по окружению.
package sl

import (
	"io"
	"log/slog"
)

// Окружения, задаваемые в конфиге.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// SetupLogger создаёт логгер для окружения env: текстовый с уровнем Debug
// для local и dev, JSON с уровнем Info для prod и всего остального.
func SetupLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case EnvLocal, EnvDev:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
