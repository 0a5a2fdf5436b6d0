package batch

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ProgressCallback receives progress updates while a batch runs.
type ProgressCallback interface {
	OnStart(total int)
	OnProgress(current, total int)
	OnComplete()
	OnError(path string, err error)
}

// ConsoleProgressCallback draws a progress bar on a terminal.
type ConsoleProgressCallback struct {
	writer         io.Writer
	prefix         string
	width          int
	updateInterval time.Duration
	lastUpdate     time.Time
	startTime      time.Time
	mu             sync.Mutex
}

// NewConsoleProgressCallback creates a console progress reporter.
func NewConsoleProgressCallback(w io.Writer, prefix string) *ConsoleProgressCallback {
	return &ConsoleProgressCallback{
		writer:         w,
		prefix:         prefix,
		width:          40,
		updateInterval: 100 * time.Millisecond,
	}
}

// WithUpdateInterval sets how frequently the bar is redrawn.
func (c *ConsoleProgressCallback) WithUpdateInterval(interval time.Duration) *ConsoleProgressCallback {
	if interval > 0 {
		c.updateInterval = interval
	}
	return c
}

func (c *ConsoleProgressCallback) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startTime = time.Now()
	c.lastUpdate = time.Time{}
	_, _ = fmt.Fprintf(c.writer, "%s0/%d (0.0%%)\n", c.prefix, total)
}

func (c *ConsoleProgressCallback) OnProgress(current, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.Sub(c.lastUpdate) < c.updateInterval && current < total {
		return
	}
	c.lastUpdate = now
	if total == 0 {
		return
	}

	filled := c.width * current / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", c.width-filled)
	percent := float64(current) / float64(total) * 100
	_, _ = fmt.Fprintf(c.writer, "\r%s[%s] %d/%d (%.1f%%)", c.prefix, bar, current, total, percent)
}

func (c *ConsoleProgressCallback) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintf(c.writer, "\n%sCompleted in %v\n", c.prefix, time.Since(c.startTime).Round(time.Millisecond))
}

func (c *ConsoleProgressCallback) OnError(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintf(c.writer, "\n%sError in %s: %v\n", c.prefix, path, err)
}

// LogProgressCallback reports progress through structured logging.
type LogProgressCallback struct {
	logger   *slog.Logger
	interval int
}

// NewLogProgressCallback logs every interval processed images.
func NewLogProgressCallback(logger *slog.Logger, interval int) *LogProgressCallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgressCallback{logger: logger, interval: max(1, interval)}
}

func (l *LogProgressCallback) OnStart(total int) {
	l.logger.Info("batch started", "total", total)
}

func (l *LogProgressCallback) OnProgress(current, total int) {
	if current%l.interval == 0 || current == total {
		l.logger.Debug("batch progress", "current", current, "total", total)
	}
}

func (l *LogProgressCallback) OnComplete() {
	l.logger.Info("batch completed")
}

func (l *LogProgressCallback) OnError(path string, err error) {
	l.logger.Warn("trace failed", "file", path, "error", err)
}
