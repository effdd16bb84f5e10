// Package debug logs runtime and memory statistics while the booth runs.
// Started only when config.Debug is true; pixel buffers dominate memory, so
// heap and RSS are logged side by side to spot leaked shots.
package debug

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/dustin/go-humanize"
)

// Sample is one reading of the process.
type Sample struct {
	Goroutines uint64
	HeapAlloc  uint64
	HeapInuse  uint64
	StackInuse uint64
	NumGC      uint32
	RSS        uint64
}

// Read takes a Sample. RSS is zero when the platform query fails.
func Read() (Sample, error) {
	samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
	metrics.Read(samples)
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s := Sample{
		HeapAlloc:  ms.HeapAlloc,
		HeapInuse:  ms.HeapInuse,
		StackInuse: ms.StackInuse,
		NumGC:      ms.NumGC,
	}
	if samples[0].Value.Kind() == metrics.KindUint64 {
		s.Goroutines = samples[0].Value.Uint64()
	}
	rss, err := readRSS()
	s.RSS = rss
	return s, err
}

// StartMemLogger logs a Sample every interval until ctx is done. Failures to
// query RSS are logged once and suppressed.
func StartMemLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			s, err := Read()
			if err != nil && !rssErrLogged {
				logger.Warn("memlog: rss query failed", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			logger.Info("memstats",
				slog.Uint64("goroutines", s.Goroutines),
				slog.String("heap_alloc", humanize.IBytes(s.HeapAlloc)),
				slog.String("heap_inuse", humanize.IBytes(s.HeapInuse)),
				slog.String("stack_inuse", humanize.IBytes(s.StackInuse)),
				slog.String("rss", humanize.IBytes(s.RSS)),
				slog.Uint64("num_gc", uint64(s.NumGC)),
			)
		}
	}()
}
