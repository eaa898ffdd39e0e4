// Package monitoring carries the diagnostic logger shared by the detector
// and scan packages.
package monitoring

import (
	"log"
	"strings"
	"sync"
)

var (
	mu      sync.RWMutex
	logf    = log.Printf
	enabled map[string]bool // nil enables every subsystem
)

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	mu.Lock()
	defer mu.Unlock()
	if f == nil {
		logf = func(string, ...interface{}) {}
		return
	}
	logf = f
}

// SetSubsystems restricts Tracef to the named subsystems. A name ending in
// "/" also enables every subsystem below it. No names re-enables all.
func SetSubsystems(names ...string) {
	mu.Lock()
	defer mu.Unlock()
	if len(names) == 0 {
		enabled = nil
		return
	}
	enabled = make(map[string]bool, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			enabled[n] = true
		}
	}
}

// Logf writes through the current logger. It is safe for concurrent use.
func Logf(format string, v ...interface{}) {
	mu.RLock()
	f := logf
	mu.RUnlock()
	f(format, v...)
}

// Tracef logs through Logf with the message prefixed by "[subsystem] ",
// unless the subsystem has been filtered out by SetSubsystems.
func Tracef(subsystem, format string, v ...interface{}) {
	mu.RLock()
	f, on := logf, subsystemEnabled(subsystem)
	mu.RUnlock()
	if !on {
		return
	}
	f("["+subsystem+"] "+format, v...)
}

func subsystemEnabled(subsystem string) bool {
	if enabled == nil || enabled[subsystem] {
		return true
	}
	if i := strings.IndexByte(subsystem, '/'); i > 0 {
		return enabled[subsystem[:i+1]]
	}
	return false
}
