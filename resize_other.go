//go:build windows || plan9

package vcon

// resizeWatcher never reports a resize on platforms without SIGWINCH.
type resizeWatcher struct{}

func watchResize() *resizeWatcher {
	return &resizeWatcher{}
}

func (rw *resizeWatcher) pending() bool {
	return false
}

func (rw *resizeWatcher) stop() {}
