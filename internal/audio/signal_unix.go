//go:build !windows

package audio

import (
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"
)

var neutralizeSigpipeOnce sync.Once

// neutralizeBrokenPipeSignal installs a process-wide ignore for SIGPIPE,
// so a broken pipe to the engine's stdin/stdout surfaces as an ordinary
// write error instead of killing the host process (spec §9). It runs
// once per process; callers invoke it before the first piped call.
func neutralizeBrokenPipeSignal() {
	neutralizeSigpipeOnce.Do(func() {
		signal.Ignore(unix.SIGPIPE)
	})
}
