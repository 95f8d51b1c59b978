//go:build !windows && !plan9

package vcon

import (
	"os"
	"os/signal"
	"syscall"
)

// resizeWatcher records terminal resize signals until they are polled.
type resizeWatcher struct {
	sigChan chan os.Signal
}

func watchResize() *resizeWatcher {
	rw := &resizeWatcher{sigChan: make(chan os.Signal, 1)}
	signal.Notify(rw.sigChan, syscall.SIGWINCH)
	return rw
}

// pending reports whether the terminal was resized since the last call.
func (rw *resizeWatcher) pending() bool {
	resized := false
	for {
		select {
		case <-rw.sigChan:
			resized = true
		default:
			return resized
		}
	}
}

func (rw *resizeWatcher) stop() {
	signal.Stop(rw.sigChan)
}
