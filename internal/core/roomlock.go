package core

import (
	"slices"
	"sync"
)

// roomLocks hands out one mutex per room and forgets it once nobody holds it.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[string]*refLock)}
}

// lock acquires the locks of all non-empty rooms in sorted order and returns the release func.
func (l *roomLocks) lock(rooms ...string) func() {
	keys := make([]string, 0, len(rooms))
	for _, room := range rooms {
		if room != "" {
			keys = append(keys, room)
		}
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)

	held := make([]*refLock, 0, len(keys))
	for _, key := range keys {
		l.mu.Lock()
		rl, ok := l.locks[key]
		if !ok {
			rl = &refLock{}
			l.locks[key] = rl
		}
		rl.refs++
		l.mu.Unlock()

		rl.Lock()
		held = append(held, rl)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
			l.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(l.locks, keys[i])
			}
			l.mu.Unlock()
		}
	}
}
