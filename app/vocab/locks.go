package vocab

import "sync"

// keyedMutex serializes callers holding the same key
type keyedMutex struct {
	mx    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sync.Mutex
	waiters int
}

// Lock acquires lock for the key and returns its release function
func (m *keyedMutex) Lock(key string) func() {
	m.mx.Lock()
	if m.locks == nil {
		m.locks = make(map[string]*keyLock)
	}
	l, ok := m.locks[key]
	if !ok {
		l = &keyLock{}
		m.locks[key] = l
	}
	l.waiters++
	m.mx.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		m.mx.Lock()
		l.waiters--
		if l.waiters == 0 {
			delete(m.locks, key)
		}
		m.mx.Unlock()
	}
}
