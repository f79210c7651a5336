// Package debug builds the command line tool's logger: zerolog console
// output with colored levels and short caller references.
package debug

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// NewConsoleLogger returns a logger writing human-readable lines to out
// at the given level, with millisecond timestamps and caller locations.
func NewConsoleLogger(out io.Writer, level zerolog.Level) zerolog.Logger {
	writer := zerolog.ConsoleWriter{
		Out:          out,
		TimeFormat:   "15:04:05.000",
		FormatLevel:  formatLevel,
		FormatCaller: formatCaller,
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Caller().Logger()
}

func formatLevel(i any) string {
	lvl, _ := i.(string)
	c := color.New(color.Faint)
	switch lvl {
	case zerolog.LevelDebugValue:
		c = color.New(color.FgMagenta)
	case zerolog.LevelInfoValue:
		c = color.New(color.FgGreen)
	case zerolog.LevelWarnValue:
		c = color.New(color.FgYellow)
	case zerolog.LevelErrorValue, zerolog.LevelFatalValue, zerolog.LevelPanicValue:
		c = color.New(color.FgRed, color.Bold)
	}
	return c.Sprint(strings.ToUpper(lvl))
}

// formatCaller trims the caller to file:line, dropping the directory
// part of the path.
func formatCaller(i any) string {
	caller, _ := i.(string)
	if caller == "" {
		return ""
	}
	file, line := splitCaller(caller)
	if slash := strings.LastIndexByte(file, '/'); slash >= 0 {
		file = file[slash+1:]
	}
	sep := color.New(color.Faint).Sprint(":")
	return fmt.Sprintf("%s%s%s", color.New(color.Bold).Sprint(file), sep, line)
}

func splitCaller(caller string) (file, line string) {
	if colon := strings.LastIndexByte(caller, ':'); colon >= 0 {
		return caller[:colon], caller[colon+1:]
	}
	return caller, ""
}
