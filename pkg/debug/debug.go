// Package debug provides global debug tracing flags
package debug

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// Tracking controls whether per-frame tracing is printed (centroids, misses, clicks).
// Use the -debug flag to enable these very verbose lines.
var Tracking atomic.Bool

// Out is where trace lines are written.
var Out io.Writer = os.Stdout

// TrackLog prints a message only if tracking debug mode is enabled
func TrackLog(format string, args ...interface{}) {
	if Tracking.Load() {
		fmt.Fprintf(Out, format, args...)
	}
}
