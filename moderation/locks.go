package moderation

import (
	"sync"

	"modix/model"
)

// keyedMutex serializes work per key while letting distinct keys proceed.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func subjectKey(guildID, subjectID string, typ model.InfractionType) string {
	return guildID + ":" + subjectID + ":" + string(typ)
}

// lockSubject holds the per-member lock for exclusive types and is a no-op
// for notices and warnings.
func (s *Service) lockSubject(guildID, subjectID string, typ model.InfractionType) func() {
	if !typ.Exclusive() {
		return func() {}
	}
	return s.locks.Lock(subjectKey(guildID, subjectID, typ))
}
