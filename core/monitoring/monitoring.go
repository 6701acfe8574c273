// Package monitoring forwards unexpected errors and panics to an error
// tracker. The default monitor drops everything.
package monitoring

import (
	"fmt"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	current.CaptureException(err, tags)
}

// CaptureRequestError records an error raised while serving a route request
// received on channel.
func CaptureRequestError(err error, channel, requestID string) {
	CaptureException(err, map[string]string{"channel": channel, "request_id": requestID})
}

// Recover captures panics in goroutines. It must be deferred directly.
func Recover() {
	if r := recover(); r != nil {
		current.CaptureException(fmt.Errorf("panic: %v", r), map[string]string{"panic": "true"})
		current.Flush(2 * time.Second)
		panic(r)
	}
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	current.Flush(d)
}
