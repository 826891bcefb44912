// Package logger builds the zerolog logger shared by the sync engine's
// components. Diagnostics go to a writer or an append-only file; the
// file form is what a desktop install uses so background sync failures
// are inspectable after the fact.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

const permission = 0o664

// Build assembles a logger destination step by step.
type Build struct {
	writer io.Writer
	path   string
	level  zerolog.Level
}

// New starts a build writing to stderr at warn level.
func New() *Build {
	return &Build{writer: os.Stderr, level: zerolog.WarnLevel}
}

// ToPath sends log output to an append-only file at path.
func (b *Build) ToPath(path string) *Build {
	b.path = path
	return b
}

// ToWriter sends log output to w.
func (b *Build) ToWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

// Level sets the minimum level emitted.
func (b *Build) Level(level zerolog.Level) *Build {
	b.level = level
	return b
}

// Make opens the destination and returns the configured logger.
func (b *Build) Make() (zerolog.Logger, error) {
	writer := b.writer
	if b.path != "" {
		file, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return zerolog.Nop(), err
		}
		writer = zerolog.SyncWriter(file)
	}
	return zerolog.New(writer).Level(b.level).With().Timestamp().Logger(), nil
}
