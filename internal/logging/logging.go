// Package logging configures the process-wide standard logger.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where log lines go. An empty File logs to stdout only.
type Options struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Setup points the standard logger at stdout and, when configured, a rotating
// file. The returned closer releases the file handle.
func Setup(opts Options) io.Closer {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if opts.File == "" {
		log.SetOutput(os.Stdout)
		return nopCloser{}
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		log.SetOutput(os.Stdout)
		log.Printf("[logging] cannot create log dir for %s, using stdout only: %v", opts.File, err)
		return nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return rotator
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
