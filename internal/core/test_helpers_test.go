package core

import (
	"testing"
	"time"
)

// mustEvent returns the next event of kind from ch, skipping other kinds. It fails when the
// channel is closed or nothing matching arrives in time.
func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	timeout := time.NewTimer(2 * time.Second)
	defer timeout.Stop()
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed while waiting for %s", kind)
			}
			if ev != nil && ev.Kind == kind {
				return ev
			}
		case <-timeout.C:
			t.Fatalf("expected event %s not received", kind)
		}
	}
}
