package testutil

import (
	"fmt"
	"sync"

	"launchpd/shared"
)

// Event is one call recorded by Reporter.
type Event struct {
	Kind string
	Msg  string
}

// Reporter records status calls instead of drawing them.
type Reporter struct {
	mu     sync.Mutex
	Events []Event
}

var _ shared.Reporter = (*Reporter)(nil)

func (r *Reporter) record(kind, msg string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Event{Kind: kind, Msg: fmt.Sprintf(msg, args...)})
}

func (r *Reporter) Start(msg string, args ...interface{})   { r.record("start", msg, args...) }
func (r *Reporter) Succeed(msg string, args ...interface{}) { r.record("succeed", msg, args...) }
func (r *Reporter) Fail(msg string, args ...interface{})    { r.record("fail", msg, args...) }
func (r *Reporter) Warn(msg string, args ...interface{})    { r.record("warn", msg, args...) }
func (r *Reporter) Info(msg string, args ...interface{})    { r.record("info", msg, args...) }

// Progress records "done/total label" under the "progress" kind.
func (r *Reporter) Progress(current, total int, label string) {
	r.record("progress", "%d/%d %s", current, total, label)
}

// Messages returns the messages recorded with kind.
func (r *Reporter) Messages(kind string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e.Msg)
		}
	}
	return out
}
