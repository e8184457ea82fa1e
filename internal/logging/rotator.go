package logging

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Rotator writes to a per-day file named <prefix>_YYYY-MM-DD.log in dir and
// gzip-compresses the previous day's file after rotation.
type Rotator struct {
	dir    string
	prefix string
	useUTC bool
	logger *logrus.Logger

	mutex       sync.RWMutex
	currentFile *os.File
	currentDate string
}

// NewRotator creates the log directory if needed and opens today's file.
func NewRotator(dir, prefix string, useUTC bool, logger *logrus.Logger) (*Rotator, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	r := &Rotator{
		dir:    dir,
		prefix: prefix,
		useUTC: useUTC,
		logger: logger,
	}
	if err := r.rotate(); err != nil {
		return nil, fmt.Errorf("failed to open initial log file: %w", err)
	}
	return r, nil
}

// Run checks once a minute whether the date has changed and rotates when it
// has. It returns when ctx is cancelled.
func (r *Rotator) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("Log rotator stopping")
			return
		case <-ticker.C:
			r.mutex.Lock()
			if r.currentDate != r.today() {
				r.logger.WithFields(logrus.Fields{
					"old_date": r.currentDate,
					"new_date": r.today(),
				}).Info("Rotating message log")
				if err := r.rotate(); err != nil {
					r.logger.WithError(err).Error("Failed to rotate message log")
				}
			}
			r.mutex.Unlock()
		}
	}
}

func (r *Rotator) today() string {
	now := time.Now()
	if r.useUTC {
		now = now.UTC()
	}
	return now.Format("2006-01-02")
}

func (r *Rotator) fileFor(date string) string {
	return filepath.Join(r.dir, fmt.Sprintf("%s_%s.log", r.prefix, date))
}

// rotate closes the current file, kicks off compression of it, and opens a
// file for today. Callers other than NewRotator must hold the mutex.
func (r *Rotator) rotate() error {
	if r.currentFile != nil {
		if err := r.currentFile.Close(); err != nil {
			r.logger.WithError(err).Error("Failed to close old message log")
		}
		go r.compress(r.currentDate)
	}

	date := r.today()
	file, err := os.OpenFile(r.fileFor(date), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", r.fileFor(date), err)
	}

	r.currentFile = file
	r.currentDate = date
	r.logger.WithField("file", r.fileFor(date)).Info("Opened message log")
	return nil
}

// compress gzips the named day's file and removes the original.
func (r *Rotator) compress(date string) {
	src := r.fileFor(date)
	dst := src + ".gz"

	in, err := os.Open(src)
	if err != nil {
		r.logger.WithError(err).WithField("file", src).Error("Failed to open log for compression")
		return
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		r.logger.WithError(err).WithField("file", dst).Error("Failed to create compressed log")
		return
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	gz.Name = filepath.Base(src)
	gz.ModTime = time.Now()
	if _, err := io.Copy(gz, in); err != nil {
		r.logger.WithError(err).Error("Failed to compress log file")
		return
	}
	if err := gz.Close(); err != nil {
		r.logger.WithError(err).Error("Failed to flush compressed log")
		return
	}

	if err := os.Remove(src); err != nil {
		r.logger.WithError(err).WithField("file", src).Error("Failed to remove compressed original")
		return
	}
	r.logger.WithField("file", dst).Info("Compressed message log")
}

// Writer returns the current day's file.
func (r *Rotator) Writer() (io.Writer, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.currentFile == nil {
		return nil, fmt.Errorf("no open log file")
	}
	return r.currentFile, nil
}

// CurrentFile returns the path of the file currently being written.
func (r *Rotator) CurrentFile() string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.currentDate == "" {
		return ""
	}
	return r.fileFor(r.currentDate)
}

// Close closes the current file. Run must have returned already.
func (r *Rotator) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.currentFile == nil {
		return nil
	}
	err := r.currentFile.Close()
	r.currentFile = nil
	return err
}
