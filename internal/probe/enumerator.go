package probe

import (
	"fmt"
	"iter"

	"github.com/smazurov/alsaprobe/internal/audio"
)

// Enumerator is a lazy, finite walk over the cards of a subsystem. Each
// advance asks for the card after the previous one; handles may come back in
// any order but never twice. It cannot be rewound; start a new walk with
// CardProbe.Enumerate.
type Enumerator struct {
	sub     audio.Subsystem
	cur     DeviceHandle
	seen    map[DeviceHandle]struct{}
	started bool
	done    bool
	err     error
}

func newEnumerator(sub audio.Subsystem) *Enumerator {
	return &Enumerator{sub: sub, cur: NoDevice, seen: make(map[DeviceHandle]struct{})}
}

// Next advances to the next card. It returns false once the sentinel is
// reached or the subsystem reports an error, and keeps returning false after.
func (e *Enumerator) Next() bool {
	if e.done {
		return false
	}

	next, err := e.sub.NextCard(int(e.cur))
	if err == nil && next >= 0 {
		if _, dup := e.seen[DeviceHandle(next)]; dup {
			err = fmt.Errorf("%w: card %d", errRepeatedCard, next)
		}
	}
	if err != nil {
		e.err = &EnumerationError{Initial: !e.started, After: e.cur, Err: err}
		e.done = true
		return false
	}
	e.started = true

	if next < 0 {
		e.cur = NoDevice
		e.done = true
		return false
	}
	e.cur = DeviceHandle(next)
	e.seen[e.cur] = struct{}{}
	return true
}

// Handle returns the current card, or NoDevice before the first call to Next
// and after the walk ends.
func (e *Enumerator) Handle() DeviceHandle {
	if e.done {
		return NoDevice
	}
	return e.cur
}

// Err returns the *EnumerationError that ended the walk, if any.
func (e *Enumerator) Err() error {
	return e.err
}

// All yields the remaining cards. Check Err afterwards.
func (e *Enumerator) All() iter.Seq[DeviceHandle] {
	return func(yield func(DeviceHandle) bool) {
		for e.Next() {
			if !yield(e.cur) {
				return
			}
		}
	}
}
