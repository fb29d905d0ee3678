package logging

import (
	"context"
	"sync/atomic"
)

// MirrorFunc receives a copy of each log record so it can be forwarded to a
// secondary sink (e.g. the observability package's Uptrace log mirror).
type MirrorFunc func(ctx context.Context, level Level, msg string, args ...any)

var mirrorFunc atomic.Pointer[MirrorFunc]

// SetMirror installs fn as the active log mirror. Passing nil removes it.
func SetMirror(fn MirrorFunc) {
	if fn == nil {
		mirrorFunc.Store(nil)
		return
	}
	mirrorFunc.Store(&fn)
}
