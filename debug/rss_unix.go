//go:build unix

package debug

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// readRSS returns the peak resident set size reported by getrusage.
func readRSS() (uint64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}
	rss := uint64(ru.Maxrss)
	// Linux reports kilobytes, Darwin and the BSDs bytes.
	if runtime.GOOS == "linux" {
		rss *= 1024
	}
	return rss, nil
}
