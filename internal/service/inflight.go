package service

import (
	"sync"

	"github.com/craftfolio/craftfolio/internal/apperror"
)

// InFlight rejects a second mutation of a resource while the first is
// still running, across requests and browser tabs of the same user.
type InFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{keys: make(map[string]struct{})}
}

// Acquire marks (userID, resource) busy. The caller must invoke release
// when the mutation is done.
func (f *InFlight) Acquire(userID, resource string) (release func(), err error) {
	key := userID + "|" + resource

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.keys[key]; busy {
		return nil, apperror.Busy("This change is already in progress")
	}
	f.keys[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.keys, key)
			f.mu.Unlock()
		})
	}, nil
}
