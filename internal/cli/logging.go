package cli

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tabula/tabula/internal/config"
)

// setupLogging configures the global logger: human-readable in development,
// JSON otherwise. Logs always go to w so command output stays parseable.
func setupLogging(cfg *config.Config, w io.Writer) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
		return
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
