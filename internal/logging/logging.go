// Package logging builds the process slog.Logger. JSON goes to log
// collectors, the text format renders through charmbracelet/log for local use.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

type Options struct {
	Writer io.Writer
	Level  string
	Format string //json or text
}

func New(opts Options) *slog.Logger {
	var w io.Writer = os.Stdout
	if opts.Writer != nil {
		w = opts.Writer
	}

	lvl, err := charmlog.ParseLevel(opts.Level)
	if err != nil {
		lvl = charmlog.InfoLevel
	}

	if strings.EqualFold(opts.Format, "text") {
		return slog.New(charmlog.NewWithOptions(w, charmlog.Options{
			Level:           lvl,
			ReportTimestamp: true,
			ReportCaller:    true,
		}))
	}

	//Json handler, adds file name and line number
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     slog.Level(lvl),
		AddSource: true,
	})
	return slog.New(handler)
}
